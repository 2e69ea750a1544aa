package pipeline

import (
	"log/slog"

	"behave/internal/config"
	"behave/internal/extractor"
	"behave/internal/knowledge"
	"behave/internal/sbt"
	"behave/internal/validator"
)

type Options struct {
	Logger     *slog.Logger
	Extraction extractor.Options
	// Strict makes Evaluate fail with *extractor.ExtractionError when the
	// input holds no parseable object. Non-strict inputs fail the same way
	// later, but their invalid candidates are logged first.
	Strict     bool
	MinScore   float64
	WarnScore  float64
	Linearizer *sbt.Linearizer
	// Annotator supplies annotations when Input carries none.
	Annotator knowledge.Annotator
	// Generator backs FromSource.
	Generator   knowledge.Generator
	MaxRetries  int
	Temperature float64
}

func DefaultOptions() Options {
	return Options{
		Strict:      true,
		MinScore:    validator.DefaultMinScore,
		WarnScore:   validator.DefaultWarnScore,
		MaxRetries:  3,
		Temperature: 0.1,
	}
}

// OptionsFromConfig translates the file configuration into pipeline options.
// Logger, Annotator and Generator are left for the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Extraction:  extractor.Options{StringAware: cfg.Extraction.StringAware},
		Strict:      cfg.Extraction.Strict,
		MinScore:    cfg.Quality.MinScore,
		WarnScore:   cfg.Quality.WarnScore,
		MaxRetries:  cfg.AI.MaxRetries,
		Temperature: cfg.AI.Temperature,
	}
	if cfg.Linearizer.Compact {
		depth := cfg.Linearizer.MaxDepth
		if depth == sbt.Unlimited {
			depth = sbt.DefaultCompactDepth
		}
		opts.Linearizer = sbt.NewCompactLinearizer(depth)
	} else {
		opts.Linearizer = sbt.NewLinearizer(sbt.Options{
			IncludeValues: cfg.Linearizer.IncludeValues,
			IncludeNames:  cfg.Linearizer.IncludeNames,
			MaxDepth:      cfg.Linearizer.MaxDepth,
		})
	}
	return opts
}
