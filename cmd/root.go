package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tilemenu/pkg/logger"
	"github.com/oakwood-commons/tilemenu/pkg/settings"
)

// rootOptions holds the flag values of one command tree.
type rootOptions struct {
	configFile string
	debug      bool
	logFile    string
	startKeys  []string

	snapshotPath   string
	snapshotWidth  int
	snapshotHeight int
	settleTimeout  time.Duration

	homeURL     string
	rowFilter   string
	keyMode     string
	tilesPerRow int
	noRefSets   bool
	rowLimit    int
	rowOffset   int
	rowTail     int

	configOutput string
	configExpr   string

	// ctx carries the run settings and the logger once PersistentPreRunE ran.
	ctx     context.Context
	logSink *os.File
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{ctx: context.Background()}

	cmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Browse a remote media menu in the terminal",
		Long: `tilemenu fetches a home menu document, lays its sets out as rows of tiles and
lets you browse them with the arrow keys while thumbnails download in the
background. With --snapshot it renders the menu headless to a PNG file.`,
		Example: `  tilemenu
  tilemenu --home-url ./home.json --key-mode emacs
  tilemenu --snapshot menu.png --press "<Down><Right>"
  tilemenu --row-filter 'kind == "curated" && size > 5'
  tilemenu config get -o json -e '_.layout.tile_width'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       cliVersionString(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			opts.closeLog()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to a YAML, TOML or JSON config file (default $XDG_CONFIG_HOME/tilemenu/config.yaml)")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file (interactive runs discard logs without it)")

	f := cmd.Flags()
	f.StringArrayVar(&opts.startKeys, "press", nil, `simulate keys on startup, e.g. --press "<Down><Right>" or --press ll`)
	f.StringVar(&opts.snapshotPath, "snapshot", "", "render the menu headless to this PNG file and exit ('-' writes to stdout)")
	f.IntVar(&opts.snapshotWidth, "width", 1920, "snapshot frame width in pixels")
	f.IntVar(&opts.snapshotHeight, "height", 1080, "snapshot frame height in pixels")
	f.DurationVar(&opts.settleTimeout, "settle-timeout", time.Minute, "how long a snapshot waits for thumbnails before it is written")
	f.StringVar(&opts.homeURL, "home-url", "", "home menu document URL or path (overrides menu.home_url)")
	f.StringVar(&opts.rowFilter, "row-filter", "", "CEL expression selecting rows (overrides menu.row_filter)")
	f.StringVar(&opts.keyMode, "key-mode", "", "keybinding mode: vim, emacs or function (overrides ui.key_mode)")
	f.IntVar(&opts.tilesPerRow, "tiles-per-row", 0, "cap the tiles of each row, 0 shows all (overrides menu.tiles_per_row)")
	f.BoolVar(&opts.noRefSets, "no-ref-sets", false, "skip referenced sets instead of fetching them")
	f.IntVar(&opts.rowLimit, "limit", 0, "show only this many rows (overrides menu.rows.limit)")
	f.IntVar(&opts.rowOffset, "offset", 0, "skip the first N rows (overrides menu.rows.offset)")
	f.IntVar(&opts.rowTail, "tail", 0, "show only the last N rows; mutually exclusive with --limit (overrides menu.rows.tail)")

	cmd.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return cmd
}

// setup builds the run settings and the logger shared by every subcommand.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	run := settings.NewCliParams()
	run.MinLogLevel = logger.Level(o.debug)
	run.LogFile = o.logFile
	if cmd == cmd.Root() && o.snapshotPath != "" {
		run.Mode = settings.ModeSnapshot
		run.SnapshotPath = o.snapshotPath
	}

	var sink io.Writer
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		o.logSink = f
		sink = f
	case !run.Interactive() || cmd != cmd.Root():
		sink = os.Stderr
	}
	lgr := logger.Init(sink, run.MinLogLevel)
	lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name())

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	o.ctx = logger.WithLogger(settings.IntoContext(base, run), lgr)
	return nil
}

func (o *rootOptions) closeLog() {
	if o.logSink == nil {
		return
	}
	logger.Sync()
	_ = o.logSink.Close()
	o.logSink = nil
}

func (o *rootOptions) run(cmd *cobra.Command) error {
	defer o.closeLog()
	run, ok := settings.FromContext(o.ctx)
	if !ok {
		return errors.New("run settings are missing")
	}
	lgr := *logger.FromContext(o.ctx)

	cfg, err := loadMergedConfig(resolveConfigPath(o.configFile))
	if err != nil {
		return err
	}
	if err := o.applyOverrides(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lgr.V(1).Info("configuration loaded", "home_url", cfg.Menu.HomeURL, "mode", string(run.Mode))

	if !run.Interactive() {
		return runSnapshot(o.ctx, cfg, snapshotOptions{
			path:          run.SnapshotPath,
			width:         o.snapshotWidth,
			height:        o.snapshotHeight,
			settleTimeout: o.settleTimeout,
			keys:          o.startKeys,
			out:           cmd.OutOrStdout(),
		}, lgr)
	}
	return runInteractive(o.ctx, cfg, o.startKeys, lgr)
}

// cliVersionString is the text printed by --version and the version command.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tilemenu version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
