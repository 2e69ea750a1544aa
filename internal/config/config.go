package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Extraction struct {
		Strict      bool `yaml:"strict"`
		StringAware bool `yaml:"string_aware"`
	} `yaml:"extraction"`
	Quality struct {
		MinScore  float64 `yaml:"min_score"`  // hard floor, below it a run fails
		WarnScore float64 `yaml:"warn_score"` // soft floor, below it a run warns
	} `yaml:"quality"`
	Linearizer struct {
		Compact       bool `yaml:"compact"`
		MaxDepth      int  `yaml:"max_depth"` // -1 means unlimited
		IncludeValues bool `yaml:"include_values"`
		IncludeNames  bool `yaml:"include_names"`
	} `yaml:"linearizer"`
	AI struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		MaxRetries  int     `yaml:"max_retries"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"ai"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Extraction.Strict = true
	cfg.Quality.MinScore = 0.3
	cfg.Quality.WarnScore = 0.5
	cfg.Linearizer.MaxDepth = -1
	cfg.Linearizer.IncludeValues = true
	cfg.Linearizer.IncludeNames = true
	cfg.AI.Provider = "gemini"
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.AI.MaxRetries = 3
	cfg.AI.Temperature = 0.1
	cfg.Storage.Path = "behave.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig layers the YAML file at path (skipped when path is empty) and
// the environment over Default.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if apiKey := os.Getenv("BEHAVE_API_KEY"); apiKey != "" {
		c.AI.APIKey = apiKey
	}
	if provider := os.Getenv("BEHAVE_AI_PROVIDER"); provider != "" {
		c.AI.Provider = provider
	}
	if model := os.Getenv("BEHAVE_AI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if db := os.Getenv("BEHAVE_DB"); db != "" {
		c.Storage.Path = db
	}
	if err := envFloat("BEHAVE_MIN_SCORE", &c.Quality.MinScore); err != nil {
		return err
	}
	return envFloat("BEHAVE_WARN_SCORE", &c.Quality.WarnScore)
}

func envFloat(key string, dst *float64) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Quality.MinScore < 0 || c.Quality.MinScore > 1 {
		errs = append(errs, fmt.Errorf("quality.min_score must be within [0,1], got %v", c.Quality.MinScore))
	}
	if c.Quality.WarnScore < 0 || c.Quality.WarnScore > 1 {
		errs = append(errs, fmt.Errorf("quality.warn_score must be within [0,1], got %v", c.Quality.WarnScore))
	}
	if c.Quality.MinScore > c.Quality.WarnScore {
		errs = append(errs, fmt.Errorf("quality.min_score (%v) exceeds quality.warn_score (%v)", c.Quality.MinScore, c.Quality.WarnScore))
	}
	if c.Linearizer.MaxDepth < -1 {
		errs = append(errs, fmt.Errorf("linearizer.max_depth must be -1 or greater, got %d", c.Linearizer.MaxDepth))
	}
	if c.AI.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("ai.max_retries must be at least 1, got %d", c.AI.MaxRetries))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("ai.temperature must be within [0,2], got %v", c.AI.Temperature))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
