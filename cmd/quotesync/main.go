package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/rickgao/quotesync/internal/api"
	"github.com/rickgao/quotesync/internal/config"
	"github.com/rickgao/quotesync/internal/database"
	"github.com/rickgao/quotesync/internal/downloader"
	"github.com/rickgao/quotesync/internal/metrics"
	"github.com/rickgao/quotesync/internal/pricesync"
	"github.com/rickgao/quotesync/internal/version"
	"github.com/rickgao/quotesync/internal/writer"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [banktivity data dir]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		return 1
	}
	dataDir := flag.Arg(0)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", cfg.Log.Level)
		return 1
	}

	// Set up structured logging
	runID := uuid.New().String()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With("run_id", runID)
	slog.SetDefault(logger)

	logger.Info("starting quotesync",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"driver", cfg.Store.Driver,
	)

	if cfg.Store.Driver == config.DriverSQLite && dataDir == "" && cfg.Store.DataDir == "" {
		flag.Usage()
		return 1
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	store, err := database.Open(ctx, cfg.Store, dataDir)
	if err != nil {
		return fail(logger, &pricesync.FatalError{Stage: pricesync.StageOpen, Err: err})
	}
	defer store.Close()

	logger.Info("store opened")

	userAgent := cfg.Quotes.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	client := api.NewClient(
		cfg.Quotes.URLTemplate,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Quotes.Timeout),
		api.WithUserAgent(userAgent),
	)
	defer client.Close()

	m := metrics.New()
	dl := downloader.New(downloader.Config{
		Concurrency:     cfg.Downloader.Concurrency,
		PollInterval:    cfg.Downloader.PollInterval,
		ChunkSize:       cfg.Downloader.ChunkSize,
		TransferTimeout: cfg.Downloader.TransferTimeout,
	}, client, logger, m)

	summary, err := pricesync.Run(ctx, pricesync.Deps{
		Store:      store,
		Downloader: dl,
		Writer:     writer.NewPriceWriter(logger, m),
		Limits: pricesync.Limits{
			MaxIDLength:     cfg.Securities.MaxIDLength,
			MaxSymbolLength: cfg.Securities.MaxSymbolLength,
		},
		Logger:  logger,
		Metrics: m,
	})

	if cfg.Metrics.PushURL != "" {
		host, _ := os.Hostname()
		if pushErr := m.Push(ctx, cfg.Metrics.PushURL, cfg.Metrics.Job, host); pushErr != nil {
			logger.Warn("failed to push metrics", "error", pushErr)
		}
	}

	if err != nil {
		return fail(logger, err)
	}

	logger.Info("quotesync finished",
		"securities", summary.Securities,
		"written", summary.Written,
		"duration", summary.Duration,
	)
	return 0
}

// fail logs a run failure and returns its exit code.
func fail(logger *slog.Logger, err error) int {
	logger.Error("security price synchronization failed", "error", err)

	var fe *pricesync.FatalError
	if errors.As(err, &fe) {
		return fe.Stage.ExitCode()
	}
	return 1
}
