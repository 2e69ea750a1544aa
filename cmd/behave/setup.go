package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"behave/internal/config"
	"behave/internal/knowledge"
	"behave/internal/pipeline"
	"behave/internal/storage"
)

// loadConfig reads the config file. The default path may be absent; an
// explicitly given one must exist.
func loadConfig() (*config.Config, error) {
	path := configPath
	if !rootCmd.PersistentFlags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// initStore opens the SQLite store named by the config.
func initStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// initGenerator builds the configured LLM client.
func initGenerator(ctx context.Context, cfg *config.Config) (knowledge.Generator, error) {
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI API key not configured (set BEHAVE_API_KEY or ai.api_key)")
	}
	gen, err := knowledge.NewGenerator(ctx, knowledge.GeneratorOptions{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return gen, nil
}

// initPipeline wires the pipeline from config. With a generator, annotations
// come from the LLM; otherwise they are derived by rules.
func initPipeline(cfg *config.Config, logger *slog.Logger, gen knowledge.Generator) *pipeline.Pipeline {
	opts := pipeline.OptionsFromConfig(cfg)
	opts.Logger = logger
	opts.Generator = gen
	if gen != nil {
		opts.Annotator = knowledge.NewLLMAnnotator(gen, logger)
	}
	return pipeline.New(opts)
}
