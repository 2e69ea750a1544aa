package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"behave/internal/ir"
	"behave/internal/knowledge"
)

// SourceInput is program text to be turned into an AST by the Generator.
type SourceInput struct {
	Source string
	// Path names the source; its extension selects the language when
	// Language is empty.
	Path     string
	Language knowledge.Language
}

// FromSource asks the Generator for an AST of in.Source, retrying up to
// MaxRetries times with rising temperature, and assembles a model from the
// best answer. It stops early once an answer reaches the warning threshold.
func (p *Pipeline) FromSource(ctx context.Context, in SourceInput) (*ir.BehavioralModel, error) {
	if strings.TrimSpace(in.Source) == "" {
		return nil, ErrEmptySource
	}
	if p.opts.Generator == nil {
		return nil, ErrNoGenerator
	}

	lang := in.Language
	if lang == "" {
		lang = knowledge.DetectLanguage(in.Path)
	}
	prompt := p.prompts.BuildASTPrompt(in.Source, lang)

	var (
		best    *Evaluation
		lastErr error
	)
	for attempt := 0; attempt < p.opts.MaxRetries; attempt++ {
		temperature := p.opts.Temperature + 0.1*float64(attempt)
		p.logger.Info("generation_attempt",
			slog.String("source", in.Path),
			slog.Int("attempt", attempt+1),
			slog.Float64("temperature", temperature),
		)

		resp, err := p.opts.Generator.Generate(ctx, prompt, knowledge.GenerateOptions{Temperature: temperature})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("generation_failed", slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
			var genErr *knowledge.GenerationError
			if errors.As(err, &genErr) && !genErr.Retryable() {
				return nil, err
			}
			lastErr = err
			continue
		}

		ev, err := p.Evaluate(resp)
		if err != nil {
			p.logger.Warn("attempt_rejected", slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if best == nil || ev.Score > best.Score {
			best = ev
		}
		if best.Score >= p.opts.WarnScore {
			break
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no usable AST after %d attempts: %w", p.opts.MaxRetries, lastErr)
	}
	return p.assemble(ctx, best, Input{SourceRef: in.Path, Source: in.Source}, ContentHash(in.Source))
}
