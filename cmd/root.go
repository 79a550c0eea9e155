package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fioncat/otree/internal/config"
	"github.com/fioncat/otree/internal/formatter"
	"github.com/fioncat/otree/internal/limiter"
	"github.com/fioncat/otree/internal/reload"
	"github.com/fioncat/otree/internal/ui"
	"github.com/fioncat/otree/pkg/core"
	"github.com/fioncat/otree/pkg/logger"
	"github.com/fioncat/otree/pkg/settings"
)

var (
	inputType     string
	configFile    string
	filterQuery   string
	filterMode    string
	ignoreCase    bool
	regexFilter   bool
	excludeFilter bool
	startRoot     string
	expandAll     bool
	liveReload    bool
	limitRecords  int
	offsetRecords int
	tailRecords   int
	printTree     bool
	printPayload  bool
	arrayStyle    string
	treeMaxDepth  int
	noColor       bool
	showTypes     bool
	debug         bool
	logFile       string
)

var rootCtx = context.Background()

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file]",
	Short: "Browse JSON, JSONL, YAML, TOML, HCL and XML documents as a collapsible tree",
	Long: `otree opens a structured document as a tree you can fold, filter and
re-root from the keyboard. Input comes from a file or from stdin; the format
is taken from --type, then the file extension, then the content itself.`,
	Example: "\n  otree config.yaml\n  otree --filter error --ignore-case app.jsonl\n  kubectl get pods -o json | otree --root items\n  otree --print --expand-all Cargo.toml\n  otree --live-reload terraform.tfvars\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		lgr, err := logger.Setup(logger.Options{Level: logLevel(cmd.Flags()), Path: logFile})
		if err != nil {
			return err
		}
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = logger.WithLogger(context.Background(), lgr)
		return nil
	},
	RunE: runRoot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print otree version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return nil
	},
}

// cliVersionString builds a human-readable version string for the version
// command and cobra's --version flag.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, go %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	limits := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := limits.Validate(); err != nil {
		return fmt.Errorf("record limiting: %w", err)
	}
	if err := formatter.ValidateArrayStyle(arrayStyle); err != nil {
		return err
	}

	in, err := readInput(args, cmd.InOrStdin())
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	run := settings.NewRun(settings.InputSettings{Path: in.Path, FromStdin: in.Path == "", Format: in.Format.String()})
	switch {
	case printPayload:
		run.Mode = settings.ModePayload
	case printTree:
		run.Mode = settings.ModeTree
	}
	run.NoColor = cfg.UI.NoColor
	run.LiveReload = cfg.LiveReload.Enabled
	run.LogFile = logFile
	if err := run.Validate(); err != nil {
		return err
	}
	ctx := settings.IntoContext(rootCtx, run)

	lgr := logger.FromContext(ctx).WithValues(logger.FormatKey, in.Format.String(), logger.PathKey, in.Path)
	lgr.V(1).Info("input loaded", "bytes", len(in.Data))

	state := cfg.FilterState()
	state.Query = filterQuery
	engine, err := core.New(in.Data, in.Format,
		core.WithPageSize(cfg.UI.PageSize),
		core.WithLogger(lgr),
		core.WithLimiter(limits),
		core.WithFilter(state),
	)
	if err != nil {
		return err
	}
	if startRoot != "" {
		if err := engine.ChangeRootTo(startRoot); err != nil {
			return err
		}
	}
	if expandAll {
		engine.ExpandAll()
	}

	out := cmd.OutOrStdout()
	switch run.Mode {
	case settings.ModePayload:
		payload, err := engine.Payload()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, payload.Content)
		return nil
	case settings.ModeTree:
		fmt.Fprint(out, formatter.FormatAsTree(engine.Tree(), engine.Visibility(), formatter.TreeOptions{
			MaxDepth:     treeMaxDepth,
			MaxStringLen: formatter.TerminalWidth() / 2,
			ArrayStyle:   arrayStyle,
		}))
		return nil
	}
	return runInteractive(ctx, cfg, engine)
}

func runInteractive(parent context.Context, cfg config.Config, engine *core.Engine) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	lgr := *logger.FromContext(ctx)
	opts := ui.DefaultOptions(cfg)
	opts.Logger = lgr

	if run, ok := settings.FromContext(ctx); ok && run.LiveReload && run.Watchable() {
		w, err := reload.NewWatcher(run.Input.Path, reload.WatcherOptions{
			MaxDataSize: cfg.LiveReload.MaxDataSize,
			MinInterval: cfg.LiveReload.MinInterval,
		}, lgr)
		if err != nil {
			return err
		}
		go w.Run(ctx)
		opts.Events = w.Events()
	}

	progOpts, cleanup := getProgramOptions(ctx)
	defer cleanup()
	return ui.Run(ctx, engine, opts, progOpts...)
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().StringVarP(&inputType, "type", "t", "", "input format: json|jsonl|yaml|toml|xml|hcl (default from extension or content)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&filterQuery, "filter", "", "initial filter query")
	rootCmd.Flags().StringVar(&filterMode, "filter-mode", "", "filter target: all|key|value (default from config)")
	rootCmd.Flags().BoolVar(&ignoreCase, "ignore-case", false, "match the filter case-insensitively")
	rootCmd.Flags().BoolVar(&regexFilter, "regex", false, "treat the filter as a regular expression")
	rootCmd.Flags().BoolVar(&excludeFilter, "exclude", false, "hide nodes that neither match nor contain a match")
	rootCmd.Flags().StringVar(&startRoot, "root", "", "start with the node at this path as root, e.g. 'items[0].spec'")
	rootCmd.Flags().BoolVar(&expandAll, "expand-all", false, "start with every node expanded")
	rootCmd.Flags().BoolVar(&liveReload, "live-reload", false, "reload the view when the file changes")
	rootCmd.Flags().IntVar(&limitRecords, "limit", 0, "Limit total number of records displayed")
	rootCmd.Flags().IntVar(&offsetRecords, "offset", 0, "Skip the first N records")
	rootCmd.Flags().IntVar(&tailRecords, "tail", 0, "Show the last N records (mutually exclusive with --limit; ignores --offset)")
	rootCmd.Flags().BoolVar(&printTree, "print", false, "print the tree and exit instead of opening the TUI")
	rootCmd.Flags().BoolVar(&printPayload, "payload", false, "print the serialized start node and exit")
	rootCmd.Flags().StringVar(&arrayStyle, "array-style", "index", "Array index style for --print: none, index, numbered, bullet")
	rootCmd.Flags().IntVar(&treeMaxDepth, "print-depth", 0, "Limit --print depth (0 = unlimited)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().BoolVar(&showTypes, "types", false, "show value kinds next to labels")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs (see --log-file)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append structured logs to this file")
	rootCmd.MarkFlagsMutuallyExclusive("print", "payload")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
