package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dome/internal/search"
	"dome/internal/service"
	"dome/internal/storage"
	"dome/internal/vectorindex"
)

var (
	projectID  string
	folderID   string
	limit      int
	outputJSON bool
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a file, or a directory tree as folders",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		out := cmd.OutOrStdout()
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}

		if info.IsDir() {
			res, err := a.library.ImportFolder(ctx, service.FolderRequest{Path: args[0], ProjectID: projectID, FolderID: folderID})
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "Imported %d files into %d folders (%d duplicates, %d failed)\n",
				len(res.Imported)-res.Duplicates, res.Folders, res.Duplicates, len(res.Failed))
			for path, reason := range res.Failed {
				fmt.Fprintf(out, "  failed %s: %s\n", path, reason)
			}
			return nil
		}

		typ, _ := cmd.Flags().GetString("type")
		title, _ := cmd.Flags().GetString("title")
		res, err := a.library.ImportFile(ctx, service.ImportRequest{
			Path:      args[0],
			Type:      storage.ResourceType(typ),
			Title:     title,
			ProjectID: projectID,
			FolderID:  folderID,
		})
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(out, res)
		}
		r := res.Resource
		if res.Duplicate {
			fmt.Fprintf(out, "Already stored as %s (%s)\n", r.ID, r.Title)
			return nil
		}
		fmt.Fprintf(out, "Imported %s %q as %s (%s)\n", r.Type, r.Title, r.ID, humanize.Bytes(uint64(r.Size)))
		return nil
	}),
}

var noteCmd = &cobra.Command{
	Use:   "note <title>",
	Short: "Create a note; content comes from --content or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		content, _ := cmd.Flags().GetString("content")
		if content == "-" {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			content = string(raw)
		}
		r, err := a.library.CreateNote(ctx, service.NoteRequest{
			Title:     args[0],
			Content:   content,
			ProjectID: projectID,
			FolderID:  folderID,
		})
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), r)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created note %q as %s\n", r.Title, r.ID)
		return nil
	}),
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over resources and interactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		res, err := a.search.Search(ctx, strings.Join(args, " "), search.Options{
			Limit:        limit,
			ProjectID:    projectID,
			ResourceType: storage.ResourceType(typ),
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(out, res)
		}
		printResults(out, res)
		return nil
	}),
}

func printResults(out io.Writer, res *search.Results) {
	for _, r := range res.Resources {
		fmt.Fprintf(out, "%s  %-8s  %s\n", r.ID, r.Type, r.Title)
	}
	for _, in := range res.Interactions {
		fmt.Fprintf(out, "%s  %-8s  %s  (on %s)\n", in.ID, in.Type, snippet(in.Content, 60), in.ResourceID)
	}
	if len(res.Resources)+len(res.Interactions) == 0 {
		fmt.Fprintln(out, "No results")
	}
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var semanticCmd = &cobra.Command{
	Use:   "semantic <class> <text>",
	Short: "Semantic search over one class: resource, source or annotation",
	Args:  cobra.MinimumNArgs(2),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		class, err := vectorindex.ParseClass(args[0])
		if err != nil {
			return err
		}
		owner, _ := cmd.Flags().GetString("owner")
		res, err := a.search.SemanticSearch(ctx, search.SemanticRequest{
			Class:     class,
			Query:     strings.Join(args[1:], " "),
			Limit:     limit,
			OwnerID:   owner,
			ProjectID: projectID,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(out, res)
		}
		if res.Degraded {
			fmt.Fprintf(out, "Semantic search unavailable (%s), keyword results:\n", res.Reason)
			if res.Fallback != nil {
				printResults(out, res.Fallback)
			}
			return nil
		}
		for _, m := range res.Matches {
			fmt.Fprintf(out, "%.4f  %s#%d  %s\n", m.Distance, m.EntityID, m.ChunkIndex, snippet(m.Text, 70))
		}
		if len(res.Matches) == 0 {
			fmt.Fprintln(out, "No results")
		}
		return nil
	}),
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the metadata store and full-text index",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		report, err := a.store.CheckIntegrity(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			if err := printJSON(out, report); err != nil {
				return err
			}
		} else {
			for _, e := range report.Errors {
				fmt.Fprintln(out, e)
			}
		}
		if !report.OK {
			return errors.New("integrity check failed, run dome repair")
		}
		if !outputJSON {
			fmt.Fprintln(out, "ok")
		}
		return nil
	}),
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair the full-text index; --deep rebuilds it from the base tables",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		deep, _ := cmd.Flags().GetBool("deep")
		if deep {
			if err := a.store.RebuildFullTextIndex(ctx); err != nil {
				return err
			}
		} else if _, err := a.store.RepairFullTextIndex(ctx); err != nil {
			return err
		}
		report, err := a.store.CheckIntegrity(ctx)
		if err != nil {
			return err
		}
		if !report.OK {
			if !deep {
				return errors.New("full-text index still failing, try dome repair --deep")
			}
			return fmt.Errorf("full-text index still failing: %s", strings.Join(report.Errors, "; "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Full-text index ok")
		return nil
	}),
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete orphan blobs and interactions now",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		report, err := a.sweeper.RunOnce(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(out, report)
		}
		fmt.Fprintf(out, "Deleted %d orphan blobs (%s freed) and %d orphan interactions in %s\n",
			report.Blobs.DeletedCount, humanize.Bytes(uint64(report.Blobs.FreedBytes)),
			report.Interactions, report.Duration.Round(time.Millisecond))
		return nil
	}),
}

var reindexCmd = &cobra.Command{
	Use:   "reindex <class>",
	Short: "Re-embed every entity of a class: resource, source or annotation",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		class, err := vectorindex.ParseClass(args[0])
		if err != nil {
			return err
		}
		report, err := a.indexer.ReindexClass(ctx, class)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(out, report)
		}
		fmt.Fprintf(out, "%s: %d indexed, %d skipped, %d failed of %d (%d chunks, p95 %d tokens) in %s\n",
			report.Class, report.Indexed, report.Skipped, report.Failed, report.Total,
			report.Chunks, report.Tokens.P95, report.Duration.Round(time.Millisecond))
		return nil
	}),
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")

	for _, cmd := range []*cobra.Command{importCmd, noteCmd, searchCmd, semanticCmd} {
		cmd.Flags().StringVar(&projectID, "project", "", "project id")
	}
	for _, cmd := range []*cobra.Command{importCmd, noteCmd} {
		cmd.Flags().StringVar(&folderID, "folder", "", "parent folder resource id")
	}
	for _, cmd := range []*cobra.Command{searchCmd, semanticCmd} {
		cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results")
	}

	importCmd.Flags().String("type", "", "resource type, detected from the content when empty")
	importCmd.Flags().String("title", "", "title, derived from the content or file name when empty")
	noteCmd.Flags().String("content", "", `note body in markdown, "-" reads stdin`)
	searchCmd.Flags().String("type", "", "only resources of this type")
	semanticCmd.Flags().String("owner", "", "only records of this entity id")
	repairCmd.Flags().Bool("deep", false, "drop and rebuild the full-text index")

	rootCmd.AddCommand(importCmd, noteCmd, searchCmd, semanticCmd, checkCmd, repairCmd, sweepCmd, reindexCmd)
}
