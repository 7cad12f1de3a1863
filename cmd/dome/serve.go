package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"

	"dome/internal/http"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background orphan sweep",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		a.ensureTables(ctx)

		router := http.NewRouter(&http.Deps{
			Library:     a.library,
			Searcher:    a.search,
			Metadata:    a.store,
			VectorStore: a.vectors,
			Index:       a.index,
			Embedder:    a.embedder,
			Reindexer:   a.indexer,
			Sweeper:     a.sweeper,
			Blobs:       a.blobs,
		})

		go a.sweeper.Run(ctx)

		addr := ":" + a.cfg.APIPort
		srv := &nethttp.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Starting API server", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, nethttp.ErrServerClosed) {
				return fmt.Errorf("API server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("API server shutdown: %w", err)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
