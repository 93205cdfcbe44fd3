package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/bekirdag/gridview/internal/companies"
	"github.com/bekirdag/gridview/internal/logging"
)

var (
	verbose     bool
	theme       string
	sourceURL   string
	dbPath      string
	locale      string
	noTelemetry bool
	timeout     time.Duration
	listenAddr  string
)

var rootCmd = &cobra.Command{
	Use:   "gridview",
	Short: "Browse construction companies in a filterable, sortable terminal grid",
	Long: `gridview shows the construction companies list in a data grid.

Companies come from a local SQLite store by default, or from a companies
server when --source is set. Run "gridview serve" to start that server.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the companies list over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: config dir)")

	rootCmd.Flags().StringVar(&theme, "theme", "", "help rendering theme: auto, light, or dark")
	rootCmd.Flags().StringVar(&sourceURL, "source", "", "companies server base URL (default: local store)")
	rootCmd.Flags().StringVar(&locale, "locale", "", "collation locale for sorting text columns, e.g. de or sv")
	rootCmd.Flags().BoolVar(&noTelemetry, "no-telemetry", false, "do not record interaction events")
	rootCmd.Flags().DurationVar(&timeout, "timeout", companies.DefaultTimeout, "request timeout for the companies server")

	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	dir := resolveConfigDir()
	saved, cfgPath := loadUIConfig(dir)
	// flags apply to this run only; saved stays what gets persisted
	cfg := *saved
	applyFlagOverrides(cmd, &cfg)

	logger, err := logging.New(logging.Options{Path: filepath.Join(dir, "gridview.log"), Verbose: verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := modelOptions{
		logger:     logger,
		config:     saved,
		configPath: cfgPath,
		locale:     parseLocale(cfg.Locale, logger),
		theme:      markdownThemeFromString(cfg.Theme),
		timeout:    timeout,
	}
	if url := strings.TrimSpace(cfg.SourceURL); url != "" {
		opts.source = companies.NewClient(url, timeout)
		opts.sourceName = url
	} else {
		store, err := companies.OpenStore(cfg.databasePath())
		if err != nil {
			return fmt.Errorf("open company store: %w", err)
		}
		defer store.Close()
		opts.source = store
		opts.sourceName = store.Path()
	}
	if cfg.telemetryEnabled() {
		opts.telemetry = newTelemetryLogger(filepath.Join(dir, "grid-events.ndjson"), newTelemetrySessionID(), resolveTelemetryUserID())
	}

	m, err := newModel(opts)
	if err != nil {
		return err
	}
	logger.Info("starting gridview", zap.String("source", opts.sourceName))
	if _, err := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logging.Options{Verbose: verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, _ := loadUIConfig(resolveConfigDir())
	applyFlagOverrides(cmd, cfg)
	store, err := companies.OpenStore(cfg.databasePath())
	if err != nil {
		return fmt.Errorf("open company store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return companies.NewServer(store, logger).ListenAndServe(ctx, listenAddr)
}

// applyFlagOverrides lets explicitly set flags win over ui.yaml.
func applyFlagOverrides(cmd *cobra.Command, cfg *uiConfig) {
	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("source") {
		cfg.SourceURL = sourceURL
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("locale") {
		cfg.Locale = locale
	}
	if flags.Changed("no-telemetry") {
		enabled := !noTelemetry
		cfg.Telemetry = &enabled
	}
}

func parseLocale(value string, logger *zap.Logger) language.Tag {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und
	}
	tag, err := language.Parse(value)
	if err != nil {
		logger.Warn("unknown locale, using root collation", zap.String("locale", value), zap.Error(err))
		return language.Und
	}
	return tag
}
