package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/hpdata/cmd/catalog"
	"github.com/lepinkainen/hpdata/cmd/curves"
	"github.com/lepinkainen/hpdata/cmd/export"
	"github.com/lepinkainen/hpdata/cmd/scores"
	"github.com/lepinkainen/hpdata/internal/browser"
	"github.com/lepinkainen/hpdata/internal/cache"
	"github.com/lepinkainen/hpdata/internal/cmdutil"
	"github.com/lepinkainen/hpdata/internal/config"
	"github.com/lepinkainen/hpdata/internal/metrics"
	"github.com/lepinkainen/hpdata/internal/pipeline"
	"github.com/lepinkainen/hpdata/internal/ratelimit"
	"github.com/lepinkainen/hpdata/internal/rtings"
)

// documentRenderer is a page fetcher backed by a browser that must be closed.
type documentRenderer interface {
	scores.DocumentFetcher
	Close()
}

var (
	runCatalog  = catalog.Run
	runScores   = scores.Run
	runCurves   = curves.Run
	runExport   = export.Run
	newClient   = defaultClient
	newRenderer = func(ctx context.Context, opts browser.Options) (documentRenderer, error) {
		r, err := browser.NewRenderer(ctx, opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	summaryOut io.Writer = os.Stdout
)

// CLI represents the complete command structure for the hpdata application
type CLI struct {
	// Global flags
	Session     string `help:"Value of the _rtings_session cookie (overrides config and environment)"`
	Throttle    string `help:"Minimum delay between two products, e.g. 1s or 500ms"`
	DataDir     string `help:"Directory holding every artifact" type:"path"`
	Debug       bool   `help:"Enable debug logging"`
	MetricsAddr string `help:"Serve Prometheus metrics on this address while running, e.g. :9090"`

	// Datasette flags
	Datasette bool `help:"Also write each command's results to the SQLite database"`

	// Cache flags
	CacheResponses bool   `help:"Reuse fresh responses from the cache database instead of requesting them again"`
	CacheDBFile    string `help:"Path to cache SQLite database file (defaults to <data-dir>/cache.db)"`
	CacheTTL       string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`

	Catalog CatalogCmd `cmd:"" help:"Fetch the headphone catalog and normalize it"`
	Scores  ScoresCmd  `cmd:"" help:"Extract scored attributes from every review page"`
	Curves  CurvesCmd  `cmd:"" help:"Extract the frequency response curve of every product"`
	Export  ExportCmd  `cmd:"" help:"Load the JSON artifacts into the SQLite database"`
	Cache   CacheCmd   `cmd:"" help:"Manage the response cache"`
}

// CatalogCmd represents the catalog command
type CatalogCmd struct{}

// ScoresCmd represents the scores command
type ScoresCmd struct {
	Render bool `help:"Fetch review pages through headless Chrome"`
	Resume bool `help:"Keep existing results and skip products already present"`
}

// CurvesCmd represents the curves command
type CurvesCmd struct {
	TestID string `name:"test-id" help:"Graph tool test identifier (defaults to curves.testid in config)"`
	Resume bool   `help:"Keep existing results and skip products already present"`
}

// ExportCmd represents the export command
type ExportCmd struct {
	DB string `name:"db" help:"Path to the SQLite database file (defaults to datasette.dbfile or <data-dir>/hpdata.db)"`
}

// CacheCmd groups the cache maintenance commands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Remove cached responses of one source"`
}

func kongOptions(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name("hpdata"),
		kong.Description("Harvest headphone measurements from rtings.com into JSON and SQLite."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	runID := uuid.NewString()
	initLogging(false, runID)

	if err := initConfig(); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	ctx := kong.Parse(&cli, kongOptions(sigCtx)...)

	if cli.Debug {
		initLogging(true, runID)
	}

	if err := updateGlobalConfig(&cli); err != nil {
		ctx.FatalIfErrorf(err)
	}

	if err := metrics.Serve(sigCtx, viper.GetString("metrics.addr")); err != nil {
		slog.Error("Failed to start metrics server", "error", err)
	}

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() error {
	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.dbfile", "")

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttl", "720h") // 30 days

	if loaded, err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	} else if len(loaded) > 0 {
		slog.Debug("Loaded environment files", "files", loaded)
	}

	if err := config.BindEnv(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("Config file not found, using defaults and environment")
	}

	config.InitConfig()
	return nil
}

func updateGlobalConfig(cli *CLI) error {
	// Flags only override config when given
	if cli.Session != "" {
		config.SetSessionToken(cli.Session)
	}
	if cli.Throttle != "" {
		d, err := time.ParseDuration(cli.Throttle)
		if err != nil {
			return fmt.Errorf("invalid --throttle %q: %w", cli.Throttle, err)
		}
		config.SetThrottle(d)
	}
	if cli.DataDir != "" {
		config.SetDataDir(cli.DataDir)
	}
	if cli.MetricsAddr != "" {
		viper.Set("metrics.addr", cli.MetricsAddr)
	}
	if cli.Datasette {
		viper.Set("datasette.enabled", true)
	}

	// Update cache config
	if cli.CacheResponses {
		viper.Set("cache.enabled", true)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if viper.GetString("cache.dbfile") == "" {
		viper.Set("cache.dbfile", filepath.Join(config.DataDir, "cache.db"))
	}
	if cli.CacheTTL != "" {
		if _, err := time.ParseDuration(cli.CacheTTL); err != nil {
			return fmt.Errorf("invalid --cache-ttl %q: %w", cli.CacheTTL, err)
		}
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	return nil
}

// openCache opens the response cache when it is enabled; otherwise it returns nil.
func openCache() (*cache.CacheDB, time.Duration, error) {
	if !viper.GetBool("cache.enabled") {
		return nil, 0, nil
	}

	ttl, err := time.ParseDuration(viper.GetString("cache.ttl"))
	if err != nil {
		slog.Warn("Invalid cache TTL, using default", "ttl", viper.GetString("cache.ttl"), "error", err)
		ttl = cache.DefaultCacheTTL
	}

	db, err := cache.NewCacheDB(viper.GetString("cache.dbfile"))
	if err != nil {
		return nil, 0, err
	}
	slog.Info("Using response cache", "path", db.Path(), "ttl", ttl)
	return db, ttl, nil
}

func defaultClient() *rtings.Client {
	return rtings.NewClient(config.SessionToken,
		rtings.WithBaseURL(config.Origin),
		rtings.WithAssetURL(config.AssetOrigin),
		rtings.WithTimeout(config.RequestTimeout),
		rtings.WithRetries(config.RetryAttempts),
		rtings.WithCloudflareBypass(),
	)
}

func requireSession() error {
	if config.SessionToken == "" {
		return fmt.Errorf("session token is required (provide via --session flag, HPDATA_SESSION or rtings.session in config)")
	}
	return nil
}

func newLimiter() *ratelimit.Limiter {
	return ratelimit.New("rtings", config.Throttle)
}

// Run methods for each command

func (c *CatalogCmd) Run(ctx context.Context) error {
	if err := requireSession(); err != nil {
		return err
	}
	paths, err := cmdutil.SetupDataDir(config.DataDir)
	if err != nil {
		return err
	}

	return runCatalog(ctx, catalog.Options{
		Paths:   paths,
		Fetcher: newClient(),
		Origin:  config.Origin,
	})
}

func (s *ScoresCmd) Run(ctx context.Context) error {
	if err := requireSession(); err != nil {
		return err
	}
	paths, err := cmdutil.SetupDataDir(config.DataDir)
	if err != nil {
		return err
	}

	var fetcher scores.DocumentFetcher = newClient()
	if s.Render {
		renderer, err := newRenderer(ctx, browser.Options{
			Origin:   config.Origin,
			Session:  config.SessionToken,
			Headless: true,
			Timeout:  config.RequestTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer renderer.Close()
		fetcher = renderer
	}

	cacheDB, ttl, err := openCache()
	if err != nil {
		return err
	}
	if cacheDB != nil {
		defer func() { _ = cacheDB.Close() }()
		fetcher = &cache.DocumentFetcher{Fetcher: fetcher, DB: cacheDB, TTL: ttl}
	}

	summary, err := runScores(ctx, scores.Options{
		Paths:      paths,
		Fetcher:    fetcher,
		Limiter:    newLimiter(),
		FlushEvery: config.FlushEvery,
		Resume:     s.Resume,
	})
	printSummary(summaryOut, summary)
	return err
}

func (c *CurvesCmd) Run(ctx context.Context) error {
	if err := requireSession(); err != nil {
		return err
	}
	paths, err := cmdutil.SetupDataDir(config.DataDir)
	if err != nil {
		return err
	}

	testID := c.TestID
	if testID == "" {
		testID = config.TestID
	}

	var source curves.GraphSource = newClient()
	cacheDB, ttl, err := openCache()
	if err != nil {
		return err
	}
	if cacheDB != nil {
		defer func() { _ = cacheDB.Close() }()
		source = &cache.GraphSource{Source: source, DB: cacheDB, TTL: ttl}
	}

	summary, err := runCurves(ctx, curves.Options{
		Paths:      paths,
		Source:     source,
		Limiter:    newLimiter(),
		TestID:     testID,
		FlushEvery: config.FlushEvery,
		Resume:     c.Resume,
	})
	printSummary(summaryOut, summary)
	return err
}

func (e *ExportCmd) Run() error {
	paths, err := cmdutil.SetupDataDir(config.DataDir)
	if err != nil {
		return err
	}
	if e.DB != "" {
		paths.Database = e.DB
	}

	result, err := runExport(paths)
	if err != nil {
		return err
	}
	for table, n := range result {
		slog.Info("Exported table", "table", table, "records", n)
	}
	return nil
}

func initLogging(debug bool, runID string) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler).With("run", runID))
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	summaryFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	summaryMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func renderSummary(s pipeline.Summary) string {
	if s.Name == "" {
		return ""
	}
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		summaryTitleStyle.Render(s.Name),
		summaryOKStyle.Render(fmt.Sprintf("%d/%d ok", s.Succeeded, s.Total)),
		summaryFailStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
		summaryMutedStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)),
		summaryMutedStyle.Render(s.Elapsed.Round(time.Millisecond).String()),
	)
}

func printSummary(w io.Writer, s pipeline.Summary) {
	if line := renderSummary(s); line != "" {
		_, _ = fmt.Fprintln(w, line)
	}
}
