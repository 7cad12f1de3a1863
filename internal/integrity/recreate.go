package integrity

import (
	"context"
	"errors"

	"dome/internal/apperr"
	"dome/internal/contextutil"
)

// RecreateOnce runs attempt; if it fails with a dimension mismatch, recreate runs and
// attempt is retried exactly once. Any other failure is returned unchanged.
func RecreateOnce(ctx context.Context, op string, attempt func(context.Context) error, recreate func(context.Context, error) error) error {
	err := attempt(ctx)
	if err == nil || !errors.Is(err, apperr.ErrDimensionMismatch) {
		return err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.WarnContext(ctx, "dimension mismatch, recreating table", "op", op, "error", err)

	if rerr := recreate(ctx, err); rerr != nil {
		return apperr.Wrap(op, apperr.ErrDimensionMismatch, "", errors.Join(err, rerr))
	}
	if err := attempt(ctx); err != nil {
		if errors.Is(err, apperr.ErrDimensionMismatch) {
			return err
		}
		return apperr.Wrap(op, nil, "", err)
	}
	return nil
}
