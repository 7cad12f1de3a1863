package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API stores resources (notes, documents, media) with their annotations
// and links, and searches them by keyword and by meaning.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Dome API
//   description: |
//     Hybrid resource store: content-addressed blobs, a SQLite metadata store with
//     full-text search, and per-class vector tables for semantic search.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

var rootCmd = &cobra.Command{
	Use:   "dome",
	Short: "Hybrid resource store",
	Long: `dome keeps imported files in a content-addressed blob store, their metadata and
text in SQLite with a full-text index, and embeddings in per-class vector tables.`,
	SilenceUsage: true,
}

// runWithApp builds the app for one command and closes it afterwards.
func runWithApp(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, cmd, a, args)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
