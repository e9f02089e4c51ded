package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/conorfennell/ankimcp/internal/anki"
	"github.com/conorfennell/ankimcp/internal/config"
	"github.com/conorfennell/ankimcp/internal/store"
	"github.com/conorfennell/ankimcp/internal/tools"
)

const defaultConfigPath = "ankimcp.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ankimcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Define and parse command-line flags
	flags := pflag.NewFlagSet("ankimcp", pflag.ContinueOnError)
	configPath := flags.String("config", defaultConfigPath, "Path to the YAML config file")
	flags.String("ankiconnect-url", "", "AnkiConnect endpoint URL")
	flags.Int("http-timeout-seconds", 0, "HTTP timeout for AnkiConnect calls, in seconds")
	flags.Int("utc-offset-minutes", 0, "Local timezone offset from UTC, in minutes")
	flags.Int("day-start-hour", 0, "Hour of day at which the study day rolls over")
	flags.Int("default-window-days", 0, "Default window for retention and learning curve queries")
	flags.Int("ease-threshold", 0, "Ease factor below which a card counts as a problem")
	flags.Int("lapse-threshold", 0, "Lapse count at or above which a card counts as a problem")
	flags.Int("problem-card-limit", 0, "Default number of problem cards to report")
	flags.String("cache-path", "", "Path to the SQLite review cache (empty disables caching)")
	logLevel := flags.String("log-level", "info", "Log level: debug, info, warn or error")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	// 2. Load configuration (defaults < file < env < flags)
	explicit := flags.Changed("config")
	cfg, err := config.Load(*configPath, explicit, flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr; stdout carries the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevel),
	}))

	client := anki.NewClient(cfg.AnkiConnectURL, cfg.HTTPTimeout())

	// 3. Wire the review log source, cached when a cache path is set
	var logs tools.ReviewSource = client
	if cfg.CachePath != "" {
		db, err := store.Open(cfg.CachePath)
		if err != nil {
			return fmt.Errorf("opening review cache: %w", err)
		}
		defer db.Close()
		logs = store.NewCachedSource(db, client, log)
		log.Info("review cache enabled", "path", cfg.CachePath)
	}

	// 4. Serve tool calls over stdio until the client disconnects
	srv := tools.New(client, logs, cfg, log)
	log.Info("starting server", "ankiconnect_url", cfg.AnkiConnectURL)
	return srv.ServeStdio()
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
