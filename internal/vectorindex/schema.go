package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/storage"
)

// Class is an entity class with its own vector table.
type Class string

const (
	ClassResource   Class = "resource"
	ClassSource     Class = "source"
	ClassAnnotation Class = "annotation"
)

// Classes lists every entity class.
var Classes = []Class{ClassResource, ClassSource, ClassAnnotation}

// ParseClass validates s as a Class.
func ParseClass(s string) (Class, error) {
	for _, c := range Classes {
		if string(c) == s {
			return c, nil
		}
	}
	return "", apperr.Invalid("class", "unknown entity class %q", s)
}

// Table returns the vector table name for the class.
func (c Class) Table() string {
	return string(c) + "_embeddings"
}

// Schema is the declared shape of a class table.
type Schema struct {
	Class     Class  `json:"class"`
	Dimension int    `json:"dimension"`
	Version   int    `json:"version"`
	Model     string `json:"model,omitempty"`
}

// Registry persists the schema of every class table in settings, so the
// expected dimension survives restarts and every change is versioned.
type Registry struct {
	settings storage.SettingsStore
}

// NewRegistry creates a Registry over settings.
func NewRegistry(settings storage.SettingsStore) *Registry {
	return &Registry{settings: settings}
}

func settingKey(c Class, field string) string {
	return "vector." + string(c) + "." + field
}

// Get returns the recorded schema. Returns apperr.ErrNotFound if the class
// has never been created.
func (r *Registry) Get(ctx context.Context, c Class) (Schema, error) {
	raw, err := r.settings.GetSetting(ctx, settingKey(c, "dimension"))
	if err != nil {
		return Schema{}, err
	}
	dim, err := strconv.Atoi(raw)
	if err != nil {
		return Schema{}, fmt.Errorf("invalid stored dimension %q for %s: %w", raw, c, err)
	}

	s := Schema{Class: c, Dimension: dim, Version: 1}
	if raw, err := r.settings.GetSetting(ctx, settingKey(c, "version")); err == nil {
		if v, err := strconv.Atoi(raw); err == nil {
			s.Version = v
		}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return Schema{}, err
	}
	if model, err := r.settings.GetSetting(ctx, settingKey(c, "model")); err == nil {
		s.Model = model
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return Schema{}, err
	}
	return s, nil
}

// Record stores dimension (and model, when set) for c. The version is bumped
// whenever the dimension differs from the recorded one.
func (r *Registry) Record(ctx context.Context, c Class, dimension int, model string) (Schema, error) {
	logger := contextutil.LoggerFromContext(ctx)

	prev, err := r.Get(ctx, c)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		prev = Schema{Class: c}
	case err != nil:
		return Schema{}, err
	}

	next := prev
	next.Dimension = dimension
	if model != "" {
		next.Model = model
	}
	if prev.Dimension != dimension {
		next.Version = prev.Version + 1
	}
	if next == prev {
		return prev, nil
	}

	writes := []struct{ key, value string }{
		{settingKey(c, "dimension"), strconv.Itoa(next.Dimension)},
		{settingKey(c, "version"), strconv.Itoa(next.Version)},
	}
	if next.Model != "" {
		writes = append(writes, struct{ key, value string }{settingKey(c, "model"), next.Model})
	}
	for _, w := range writes {
		if err := r.settings.SetSetting(ctx, w.key, w.value); err != nil {
			return Schema{}, fmt.Errorf("failed to record schema for %s: %w", c, err)
		}
	}

	if prev.Dimension != 0 && prev.Dimension != dimension {
		logger.WarnContext(ctx, "vector schema changed",
			"class", c, "from_dimension", prev.Dimension, "to_dimension", dimension,
			"version", next.Version, "model", next.Model)
	} else if prev.Dimension == 0 {
		logger.InfoContext(ctx, "vector schema registered", "class", c, "dimension", dimension, "model", next.Model)
	}
	return next, nil
}
