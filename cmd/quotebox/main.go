package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/quotebox/internal/app"
	"github.com/five82/quotebox/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "quotebox: %v\n", err)
		return 1
	}
	return 0
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	poll       time.Duration
	offline    bool
	verbose    bool
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PollEvery:  g.poll,
		Offline:    g.offline,
		Verbose:    g.verbose,
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "quotebox",
		Short: "A terminal quote collection that syncs with a remote endpoint",
		Long: `quotebox shows a random quote from your collection, lets you add and
filter quotes, import and export them as JSON, and keeps the collection in
sync with a remote endpoint using last-write-wins merging.

Run without a subcommand to open the interactive view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/quotebox/config.toml)")
	root.PersistentFlags().DurationVar(&flags.poll, "poll", 0, "sync interval, overrides poll_interval")
	root.PersistentFlags().BoolVar(&flags.offline, "offline", false, "never contact the remote")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newSyncCmd(flags),
		newAddCmd(flags),
		newShowCmd(flags),
		newCategoriesCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newRemoteCmd(flags),
	)
	return root
}

func runTUI(ctx context.Context, flags *globalFlags) error {
	rt, err := app.Open(ctx, flags.options())
	if err != nil {
		return err
	}
	defer rt.Close()

	pollCtx, stopPoll := context.WithCancel(ctx)
	done := rt.StartSync(pollCtx)
	defer func() {
		stopPoll()
		<-done
	}()

	return ui.Run(ui.Options{
		Context:   ctx,
		Engine:    rt.Engine,
		LogPath:   rt.Config.LogPath(),
		SyncEvery: rt.Poll,
		ThemeName: rt.Engine.Prefs().Theme,
	})
}

var nowFunc = time.Now
