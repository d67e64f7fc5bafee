package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ammiranda/feed_service/internal/app"
	"github.com/ammiranda/feed_service/migrations"
	"github.com/ammiranda/feed_service/models"
	"github.com/ammiranda/feed_service/repository"

	"github.com/spf13/cobra"
)

// bootstrap is replaced in tests
var bootstrap = app.Bootstrap

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedctl",
		Short:         "Manage the feed hierarchy of the feed service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTreeCmd(), newImportCmd(), newExportCmd(), newMigrateCmd())
	return root
}

// withApp bootstraps the service, loads the hierarchy and runs fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func newTreeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the feed hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				view := a.Service.Snapshot()
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(view)
				}
				printTree(cmd.OutOrStdout(), view, 0)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the hierarchy as JSON")
	return cmd
}

func printTree(w io.Writer, view *models.NodeView, depth int) {
	indent := strings.Repeat("  ", depth)
	switch view.Kind {
	case models.KindFeed.String():
		fmt.Fprintf(w, "%s- %s <%s> [%s]\n", indent, view.Title, view.URL, view.Type)
	default:
		fmt.Fprintf(w, "%s%s/\n", indent, view.Title)
	}
	for _, child := range view.Children {
		printTree(w, child, depth+1)
	}
}

func newImportCmd() *cobra.Command {
	var unchecked []string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an OPML file into the feed hierarchy",
		Long: `Merge the outlines of an OPML 2.0 file into the feed hierarchy.

Every outline is selected unless excluded with --unchecked, which takes a
slash separated title path such as "News/Sports". Categories that already
exist are reused, their new children are merged into them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer file.Close()

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, message, err := a.Service.ImportOPML(ctx, file, unchecked)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&unchecked, "unchecked", nil, "Title path excluded from the import (repeatable)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the feed hierarchy as OPML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if output == "" {
					return a.Service.ExportOPML(cmd.OutOrStdout())
				}

				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				if err := a.Service.ExportOPML(file); err != nil {
					file.Close()
					return err
				}
				return file.Close()
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

var errNotSQL = errors.New("storage driver has no schema migrations")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(fn func(w io.Writer, repo repository.SQLRepository) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// Opening a SQL repository applies pending migrations
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			repo, ok := a.Repo.(repository.SQLRepository)
			if !ok {
				return errNotSQL
			}
			return fn(cmd.OutOrStdout(), repo)
		}
	}

	printVersion := func(w io.Writer, repo repository.SQLRepository) error {
		version, dirty, err := migrations.Version(repo.DB(), repo.Dialect())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "schema version %d (dirty: %t)\n", version, dirty)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(w io.Writer, repo repository.SQLRepository) error {
				if err := migrations.RunMigrations(repo.DB(), repo.Dialect()); err != nil {
					return err
				}
				return printVersion(w, repo)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: run(func(w io.Writer, repo repository.SQLRepository) error {
				if err := migrations.RollbackMigration(repo.DB(), repo.Dialect()); err != nil {
					return err
				}
				return printVersion(w, repo)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: run(func(w io.Writer, repo repository.SQLRepository) error {
				return printVersion(w, repo)
			}),
		},
	)
	return cmd
}
