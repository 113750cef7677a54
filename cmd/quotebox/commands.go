package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/quotebox/internal/app"
	"github.com/five82/quotebox/internal/devremote"
	"github.com/five82/quotebox/internal/logging"
	"github.com/five82/quotebox/internal/quote"
)

// withRuntime opens the runtime for a one-shot command and closes it after fn.
func withRuntime(ctx context.Context, flags *globalFlags, fn func(rt *app.Runtime) error) error {
	rt, err := app.Open(ctx, flags.options())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func newSyncCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle and exit",
		Long: `Push unsynced quotes, fetch the remote collection and merge it into the
local one. With conflict_policy = "manual", conflicts are listed and the local
quotes are kept until resolved in the interactive view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, func(rt *app.Runtime) error {
				res, err := rt.Engine.Sync(cmd.Context())
				if err != nil {
					if errors.Is(err, app.ErrSyncDisabled) {
						return fmt.Errorf("sync is disabled (offline or sync_enabled = false)")
					}
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, res.Summary())
				for _, c := range rt.Engine.Snapshot().Conflicts {
					fmt.Fprintf(out, "conflict %s: local %q / server %q\n", c.ID, c.Local.Text, c.Remote.Text)
				}
				return nil
			})
		},
	}
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	var text, category string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, func(rt *app.Runtime) error {
				r, err := rt.Engine.AddQuote(cmd.Context(), text, category)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", r.ID, r.Category)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "quote text")
	cmd.Flags().StringVar(&category, "category", "", "quote category")
	return cmd
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a random quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, func(rt *app.Runtime) error {
				if cmd.Flags().Changed("category") {
					if _, err := rt.Engine.SetFilter(cmd.Context(), category); err != nil {
						return err
					}
				}
				out := cmd.OutOrStdout()
				r, ok := rt.Engine.ShowRandom()
				if !ok {
					fmt.Fprintln(out, quote.EmptyPlaceholder)
					return nil
				}
				fmt.Fprintf(out, "%q\n  %s\n", r.Text, r.Category)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", `category to pick from ("all" for every quote); saved as the default`)
	return cmd
}

func newCategoriesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, func(rt *app.Runtime) error {
				snap := rt.Engine.Snapshot()
				out := cmd.OutOrStdout()
				for _, c := range snap.Categories {
					marker := " "
					if c == snap.Filter {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s (%d)\n", marker, c, len(quote.Filter(snap.Records, c)))
				}
				return nil
			})
		},
	}
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the collection as JSON (default quotes.json)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return withRuntime(cmd.Context(), flags, func(rt *app.Runtime) error {
				written, err := rt.Engine.ExportFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d quotes to %s\n", len(rt.Engine.Snapshot().Records), written)
				return nil
			})
		},
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the collection with a JSON array from FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), flags, func(rt *app.Runtime) error {
				n, err := rt.Engine.ImportFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d quotes\n", n)
				return nil
			})
		},
	}
}

func newRemoteCmd(flags *globalFlags) *cobra.Command {
	var addr string
	var empty bool
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Serve an in-memory stand-in for the remote endpoint",
		Long: `Serve GET /posts?limit=N and POST /posts on --addr for local development.
Point remote_url at http://<addr>/posts to sync against it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New("", flags.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var seed []devremote.Post
			if !empty {
				seed = devremote.DefaultSeed(nowFunc())
			}
			server := devremote.NewServer(logger, nowFunc, seed...)
			fmt.Fprintf(cmd.OutOrStdout(), "serving http://%s/posts\n", strings.TrimPrefix(addr, "http://"))
			return server.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7488", "listen address")
	cmd.Flags().BoolVar(&empty, "empty", false, "start without seed posts")
	return cmd
}
