// Package main provides the CLI entrypoint for shoplog.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/shoplog/internal/analyzer"
	"github.com/verte-zerg/shoplog/internal/catalog"
	"github.com/verte-zerg/shoplog/internal/config"
	"github.com/verte-zerg/shoplog/internal/extract"
	"github.com/verte-zerg/shoplog/internal/logfile"
	"github.com/verte-zerg/shoplog/internal/logger"
	"github.com/verte-zerg/shoplog/internal/model"
	"github.com/verte-zerg/shoplog/internal/picker"
	"github.com/verte-zerg/shoplog/internal/report"
	"github.com/verte-zerg/shoplog/internal/store"
)

const (
	defaultWorkers  = 0
	defaultWidth    = report.DefaultWidth
	defaultCurrency = report.DefaultCurrency
	minWidth        = 40
)

var (
	analyzeDir       string
	analyzeWorkers   int
	analyzeWidth     int
	analyzeCurrency  string
	analyzeNoColor   bool
	analyzeWait      bool
	analyzeVerbose   bool
	catalogDBPath    string
	fileCfg          config.FileConfig
	log              = zap.NewNop()
	errMultipleFiles = errors.New("multiple log files found; pass one as an argument")
)

func main() {
	if l, err := logger.New(logger.Config{}); err == nil {
		log = l
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error("command failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shoplog [file.log]",
		Short: "Summarize shop purchases from a game server log",
		Long: `shoplog reads a game server log, counts shop purchases per item and per
player, and prints both summaries. Without a file argument it looks for
*.log files in --dir and lets you pick one.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadSettings,
		RunE:              runAnalyzeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&catalogDBPath, "catalog-db", "", "price catalog database (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "log diagnostics to stderr")

	rootCmd.Flags().StringVar(&analyzeDir, "dir", ".", "directory to search for .log files")
	rootCmd.Flags().IntVar(&analyzeWorkers, "workers", defaultWorkers, "parallel workers (0: one per CPU)")
	rootCmd.Flags().IntVar(&analyzeWidth, "width", defaultWidth, "maximum width of player item lists")
	rootCmd.Flags().StringVar(&analyzeCurrency, "currency", defaultCurrency, "currency label")
	rootCmd.Flags().BoolVar(&analyzeNoColor, "no-color", false, "disable colored output")
	rootCmd.Flags().BoolVar(&analyzeWait, "wait", false, "wait for Enter before exiting")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newSampleCmd())

	return rootCmd
}

// loadSettings reads the config file and builds the logger before any command runs.
func loadSettings(cmd *cobra.Command, _ []string) error {
	var err error
	fileCfg, err = config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logCfg := logger.Config{}
	if fileCfg.Log.Level != nil {
		logCfg.Level = *fileCfg.Log.Level
	}
	if fileCfg.Log.Format != nil {
		logCfg.Format = *fileCfg.Log.Format
	}
	if analyzeVerbose {
		logCfg.Level = "debug"
	}
	l, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	log = l
	if !cmd.Flags().Changed("catalog-db") && fileCfg.Analyze.CatalogDB != nil {
		catalogDBPath = *fileCfg.Analyze.CatalogDB
	}
	return nil
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	applyIntConfig(cmd, "workers", &analyzeWorkers, fileCfg.Analyze.Workers)
	applyIntConfig(cmd, "width", &analyzeWidth, fileCfg.Analyze.Width)
	applyStringConfig(cmd, "currency", &analyzeCurrency, fileCfg.Analyze.Currency)
	applyBoolConfig(cmd, "no-color", &analyzeNoColor, fileCfg.Analyze.NoColor)

	cfg := model.Config{
		Workers:   analyzeWorkers,
		Width:     analyzeWidth,
		Currency:  analyzeCurrency,
		NoColor:   analyzeNoColor,
		Verbs:     fileCfg.Analyze.Verbs,
		CatalogDB: catalogDBPath,
		Wait:      analyzeWait,
		Verbose:   analyzeVerbose,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	path, err := resolveLogPath(cmd, args)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cmd.Context(), cfg.CatalogDB)
	if err != nil {
		return err
	}
	ext, err := extract.New(cfg.Verbs...)
	if err != nil {
		return err
	}

	logErrf("\nAnalyzing %s...\n\n", path)
	lines, err := logfile.ReadLines(path)
	if err != nil {
		return err
	}
	res, err := analyzer.Analyze(cmd.Context(), lines, cat, analyzer.Options{
		Workers:   cfg.Workers,
		Extractor: ext,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	log.Debug("analysis finished",
		zap.String("path", path),
		zap.Int("lines", res.Stats.Lines),
		zap.Int("short_lines", res.Stats.ShortLines),
		zap.Int("events", res.Stats.Events),
		zap.Int("duplicates", res.Stats.Duplicates),
		zap.Int("accepted", res.Stats.Accepted),
		zap.Int("workers", res.Stats.Workers),
		zap.Int("items", len(res.Items)),
		zap.Int("players", len(res.Players)),
	)

	out := cmd.OutOrStdout()
	rep := report.Build(res.Items, res.Players, cat)
	if err := report.Render(out, rep, report.Options{
		Width:    effectiveWidth(out, cfg.Width),
		Currency: cfg.Currency,
		Color:    !cfg.NoColor && isTerminal(out),
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Wait {
		waitForEnter(cmd.InOrStdin())
	}
	return nil
}

// resolveLogPath returns the explicit argument when it is a .log file, and
// otherwise discovers log files in --dir.
func resolveLogPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		err := logfile.CheckPath(args[0])
		if err == nil {
			return args[0], nil
		}
		log.Warn("ignoring path argument, searching for log files", zap.String("path", args[0]), zap.Error(err))
	}

	paths, err := logfile.Discover(analyzeDir)
	if err != nil {
		return "", err
	}
	log.Debug("discovered log files", zap.Strings("paths", paths))
	if len(paths) == 1 {
		return paths[0], nil
	}
	if isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
		return picker.Run(paths)
	}
	logErrln("Available .log files:")
	for i, p := range paths {
		logErrf("%d. %s\n", i+1, p)
	}
	return "", errMultipleFiles
}

// loadCatalog layers config prices and catalog database prices over the
// built-in price list. The default database is only read when it exists.
func loadCatalog(ctx context.Context, dbPath string) (*catalog.Catalog, error) {
	cat := catalog.Default().Merge(fileCfg.Prices).WithAliases(fileCfg.Aliases)

	explicit := dbPath != ""
	if !explicit {
		dbPath = config.DefaultCatalogDBPath()
	}
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cat, nil
		}
		return nil, fmt.Errorf("failed to stat catalog db: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close catalog db: %v\n", cerr)
		}
	}()
	prices, err := st.ListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog db: %w", err)
	}
	log.Debug("loaded catalog db", zap.String("path", dbPath), zap.Int("prices", len(prices)))
	return cat.Merge(prices), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# shoplog configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# workers = %d              # Parallel workers (0: one per CPU)
# width = %d               # Maximum width of player item lists
# currency = %q         # Currency label
# no-color = false         # Disable colored output
# catalog-db = ""          # Price catalog database path
# verbs = ["ᴢᴀᴋᴜᴘɪʟ", "zakupil"]  # Purchase verbs

[log]
# level = "warn"           # debug, info, warn, error
# format = "console"       # console or json

# Price overrides, item name = unit price.
[prices]
# "gigabox (x1)" = 24.99

# Short labels for long item names in the item summary.
[aliases]
# "gigabox (x5)" = "gigabox x5"
`,
		defaultWorkers,
		defaultWidth,
		defaultCurrency,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	if cfg.Width < minWidth {
		return fmt.Errorf("--width must be >= %d", minWidth)
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return fmt.Errorf("--currency must not be empty")
	}
	return nil
}

// effectiveWidth narrows width to the terminal when output is one.
func effectiveWidth(w io.Writer, width int) int {
	f, ok := w.(*os.File)
	if !ok {
		return width
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 || cols >= width {
		return width
	}
	if cols < minWidth {
		return minWidth
	}
	return cols
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func waitForEnter(r io.Reader) {
	logErrln("\nPress Enter to exit...")
	_, _ = bufio.NewReader(r).ReadString('\n')
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
