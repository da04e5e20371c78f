package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/portal/internal/catalog"
	"github.com/lehigh-university-libraries/portal/internal/models"
	"github.com/lehigh-university-libraries/portal/internal/report"
	"github.com/lehigh-university-libraries/portal/internal/storage"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, search and convert catalog files",
		Long: `Offline tools for the book catalog served by the portal.

Every subcommand reads --catalog when given and falls back to the configured
catalog path, then to the built-in sample collection.`,
	}

	cmd.PersistentFlags().String("catalog", "", "Catalog file (.yaml, .json, .jsonl or .parquet)")

	cmd.AddCommand(newCatalogSearchCmd(opts))
	cmd.AddCommand(newCatalogExportCmd(opts))
	cmd.AddCommand(newCatalogValidateCmd(opts))

	return cmd
}

// sourceBooks loads the catalog the command should operate on
func sourceBooks(cmd *cobra.Command, opts *rootOptions) ([]models.Book, string, error) {
	cfg, err := opts.loadConfig(cmd, map[string]string{"catalog.path": "catalog"})
	if err != nil {
		return nil, "", err
	}
	if cfg.Catalog.Path == "" {
		return storage.Fixtures(), "sample collection", nil
	}
	books, err := storage.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, "", err
	}
	return books, cfg.Catalog.Path, nil
}

func newCatalogSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		query        string
		categories   []string
		availability string
		sortKey      string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter and sort the catalog the same way the browse page does",
		Example: `  # Title or author search
  portal catalog search -q algorithm

  # Checked out software design books, newest first, as CSV
  portal catalog search --category "Software Design" --availability unavailable --sort newest --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			avail, err := catalog.ParseAvailability(availability)
			if err != nil {
				return err
			}
			key, err := catalog.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			books, source, err := sourceBooks(cmd, opts)
			if err != nil {
				return err
			}

			state := catalog.NewFilterState(query, categories, avail, key)
			results := catalog.FilterAndSort(books, state)
			slog.Debug("Catalog search", "source", source, "state", state.Key(), "results", len(results))
			return report.Write(cmd.OutOrStdout(), format, results)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive title or author substring")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Restrict to these categories (repeatable)")
	cmd.Flags().StringVar(&availability, "availability", "all", "all, available or unavailable")
	cmd.Flags().StringVar(&sortKey, "sort", "relevance", "relevance, title-asc, title-desc, newest or oldest")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format ("+strings.Join(report.Formats, ", ")+")")

	return cmd
}

func newCatalogExportCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the catalog to another file format or print it",
		Example: `  # Convert the sample collection to parquet
  portal catalog export -o books.parquet

  # Print a YAML catalog as CSV
  portal catalog export --catalog books.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, source, err := sourceBooks(cmd, opts)
			if err != nil {
				return err
			}
			if output == "" {
				return report.Write(cmd.OutOrStdout(), format, books)
			}
			if err := storage.Save(output, books); err != nil {
				return err
			}
			slog.Info("Exported catalog", "source", source, "output", output, "books", len(books))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file; the extension picks the format")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Stdout format when no --output is given ("+strings.Join(report.Formats, ", ")+")")

	return cmd
}

func newCatalogValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every record in the catalog before serving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, source, err := sourceBooks(cmd, opts)
			if err != nil {
				return err
			}

			problems := validateBooks(books)
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s: %d invalid records", source, len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d books OK\n", source, len(books))
			return nil
		},
	}
}

// validateBooks reports every invariant violation and duplicate ID, not just the first
func validateBooks(books []models.Book) []error {
	var problems []error
	seen := make(map[string]int, len(books))
	for i, b := range books {
		if err := b.CheckInvariants(); err != nil {
			problems = append(problems, fmt.Errorf("record %d (%s): %w", i+1, b.ID, err))
		}
		if first, dup := seen[b.ID]; dup {
			problems = append(problems, fmt.Errorf("record %d: %w: %s (first at record %d)", i+1, storage.ErrDuplicateID, b.ID, first))
			continue
		}
		seen[b.ID] = i + 1
	}
	return problems
}
