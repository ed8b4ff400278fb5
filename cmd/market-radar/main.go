// Command market-radar fetches HeadHunter vacancies matching a query and
// saves them as a CSV file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/market-radar/pkg/client"
	"github.com/Sternrassler/market-radar/pkg/export"
	"github.com/Sternrassler/market-radar/pkg/logging"
	"github.com/Sternrassler/market-radar/pkg/metrics"
	"github.com/Sternrassler/market-radar/pkg/vacancy"
	"github.com/joho/godotenv"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

type runConfig struct {
	request     vacancy.Request
	outDir      string
	metricsFile string
	baseURL     string
	userAgent   string
	logging     logging.Config

	fetcher vacancy.Config
	retry   client.RetryConfig
	now     func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
	}

	cfg, err := parseConfig(args, stderr, os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg.logging.Output = stderr
	logger := logging.Setup(cfg.logging)

	err = execute(ctx, cfg, stdout)

	if cfg.metricsFile != "" {
		if err := metrics.WriteTextfile(cfg.metricsFile); err != nil {
			logger.Warn().Err(err).Msg("Could not write metrics textfile")
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("Interrupted")
			return exitInterrupted
		}
		logger.Error().Err(err).Msg("Fetch failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func parseConfig(args []string, stderr io.Writer, getenv func(string) string) (runConfig, error) {
	cfg := runConfig{
		baseURL:   getEnv(getenv, "HH_API_BASE_URL", client.DefaultBaseURL),
		userAgent: getEnv(getenv, "HH_USER_AGENT", client.DefaultUserAgent),
		logging:   logging.ConfigFromEnv(getenv),
		fetcher:   vacancy.DefaultConfig(),
		retry:     client.DefaultRetryConfig(),
		now:       time.Now,
	}

	flags := flag.NewFlagSet("market-radar", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: market-radar [flags]")
		fmt.Fprintln(stderr, "Fetch HeadHunter vacancies and save them as CSV.")
		fmt.Fprintln(stderr)
		flags.PrintDefaults()
	}

	var logLevel string
	flags.StringVar(&cfg.request.Query, "query", vacancy.DefaultQuery, "search query matched against vacancy titles")
	flags.StringVar(&cfg.request.Query, "q", vacancy.DefaultQuery, "shorthand for --query")
	flags.IntVar(&cfg.request.Limit, "limit", vacancy.DefaultLimit, "maximum number of vacancies to fetch")
	flags.IntVar(&cfg.request.Limit, "l", vacancy.DefaultLimit, "shorthand for --limit")
	flags.IntVar(&cfg.request.AreaID, "area", vacancy.DefaultAreaID, "HH area id (113 = Russia, 1 = Moscow)")
	flags.IntVar(&cfg.request.AreaID, "a", vacancy.DefaultAreaID, "shorthand for --area")
	flags.StringVar(&cfg.outDir, "out-dir", ".", "directory for the CSV file")
	flags.StringVar(&cfg.outDir, "o", ".", "shorthand for --out-dir")
	flags.StringVar(&cfg.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.BoolVar(&cfg.logging.Pretty, "log-pretty", cfg.logging.Pretty, "human-readable log output (overrides LOG_PRETTY)")

	if err := flags.Parse(args); err != nil {
		return runConfig{}, err
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
		flags.Usage()
		return runConfig{}, fmt.Errorf("unexpected arguments")
	}
	if logLevel != "" {
		cfg.logging.Level = logging.LogLevel(strings.ToLower(logLevel))
	}

	return cfg, nil
}

func execute(ctx context.Context, cfg runConfig, stdout io.Writer) error {
	logger := logging.NewLogger("cli")

	if err := cfg.request.Validate(); err != nil {
		return err
	}
	if cfg.request.Limit > vacancy.LargeLimit {
		logger.Warn().
			Int("limit", cfg.request.Limit).
			Msg("Large limit: every vacancy needs its own detail request, this will take a while")
	}

	clientCfg := client.DefaultConfig(cfg.userAgent)
	clientCfg.BaseURL = cfg.baseURL
	clientCfg.Retry = cfg.retry

	hh, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create HH client: %w", err)
	}
	defer hh.Close()

	records, err := vacancy.NewFetcher(hh, cfg.fetcher).Fetch(ctx, cfg.request)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		logger.Warn().
			Str("query", cfg.request.Query).
			Int("area", cfg.request.AreaID).
			Msg("No vacancies found, nothing to save")
	} else {
		path := filepath.Join(cfg.outDir, export.FileName(cfg.now(), cfg.request.Query))
		if err := export.Export(records, path); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved %d vacancies to: %s\n", len(records), path)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
