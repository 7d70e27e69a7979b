package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/five82/nowplaying/internal/app"
	"github.com/five82/nowplaying/internal/config"
	"github.com/five82/nowplaying/internal/logtail"
	"github.com/five82/nowplaying/internal/media"
	"github.com/five82/nowplaying/internal/nowplaying"
	"github.com/five82/nowplaying/internal/plugin"
)

type globalFlags struct {
	configPath  string
	prefsPath   string
	provider    string
	metricsAddr string
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath:  g.configPath,
		PrefsPath:   g.prefsPath,
		Provider:    g.provider,
		MetricsAddr: g.metricsAddr,
	}
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand opens the viewer.
func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "nowplaying",
		Short: "Wait for and read the metadata of the media currently playing",
		Long: `nowplaying watches a media source (a now-playing file, a companion
daemon or a built-in demo) and reports the title, artist, album and other
metadata of whatever is playing. Callers block until something changes
instead of polling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/nowplaying/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "viewer preferences file (default ~/.config/nowplaying/prefs.toml)")
	pf.StringVar(&flags.provider, "provider", "", "override the configured provider (file, remote, memory)")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		newWatchCmd(&flags),
		newDemoCmd(&flags),
		newWaitCmd(&flags),
		newGetCmd(&flags),
		newCallCmd(&flags),
		newLogsCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the now-playing viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
}

func newDemoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Show the viewer fed by built-in demo tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.Provider = config.ProviderMemory
			return app.Run(cmd.Context(), opts)
		},
	}
}

func newWaitCmd(flags *globalFlags) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until the media changes, then print its metadata",
		Long: `wait blocks until the media metadata changes and prints every reported
field. The first wait also returns once the current media has been read.
Use --count 0 to keep printing changes until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.Build(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			for i := 0; count <= 0 || i < count; i++ {
				if err := rt.Service.WaitForMedia(cmd.Context()); err != nil {
					if interrupted(cmd.Context(), err) {
						return nil
					}
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				printSnapshot(out, rt.Service)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "c", 1, "number of changes to report (0 = until interrupted)")
	return cmd
}

func newGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <field>",
		Short: "Print one metadata field of the current media",
		Long: fmt.Sprintf(`get waits for the current media to be read and prints one field.

Fields: %v`, media.Fields()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := media.ParseField(args[0])
			if !ok {
				return fmt.Errorf("unknown field %q", args[0])
			}
			rt, err := app.Build(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Service.WaitForMedia(cmd.Context()); err != nil {
				if interrupted(cmd.Context(), err) {
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.Service.Field(field))
			return nil
		},
	}
}

// interrupted reports whether err only says that ctx was cancelled, as on
// SIGINT. The pending wait has been released and there is nothing to print.
func interrupted(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) && ctx.Err() != nil
}

func newCallCmd(flags *globalFlags) *cobra.Command {
	var client string
	cmd := &cobra.Command{
		Use:   "call <entry>...",
		Short: "Invoke host entry points in order and print their results",
		Long: `call runs each named entry point against one service instance and prints
"<code> <data>" per call, the way a hosting client sees them.

Entry points: wait_for_media, halt, version and every field name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.Build(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			defer rt.Close()

			host := plugin.New(rt.Service, buildInfo(client))
			for _, name := range args {
				fmt.Fprintln(cmd.OutOrStdout(), host.Call(cmd.Context(), name))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&client, "client", "cli", "client name reported by the version entry point")
	return cmd
}

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var filter logtail.Filter
	var raw bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the service log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.LogFile == "" {
				return fmt.Errorf("no log_file configured")
			}
			tail, err := logtail.Tail(cfg.LogFile, filter)
			if err != nil {
				return err
			}
			if !raw {
				tail = logtail.ColorizeLines(tail)
			}
			for _, line := range tail {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&filter.Lines, "lines", "n", 50, "number of lines to print (0 = all)")
	cmd.Flags().StringVar(&filter.Component, "component", "", "only lines from this component (app, watcher, filesource, remote, plugin)")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "minimum level to print (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print lines without highlighting")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := plugin.New(nil, buildInfo("cli")).Call(context.Background(), plugin.EntryVersion)
			fmt.Fprintln(cmd.OutOrStdout(), res.Data)
			return nil
		},
	}
}

func buildInfo(client string) plugin.Info {
	return plugin.Info{Name: "nowplaying", Version: version, Client: client}
}

// printSnapshot writes one "field: value" line per reported field.
func printSnapshot(w io.Writer, svc *nowplaying.Service) {
	for _, f := range media.Fields() {
		if v := svc.Field(f); v != "" {
			fmt.Fprintf(w, "%s: %s\n", f, v)
		}
	}
}
