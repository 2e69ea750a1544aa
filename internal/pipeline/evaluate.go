package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"behave/internal/extractor"
	"behave/internal/validator"
)

// Evaluation is the best structurally valid candidate of one raw input.
type Evaluation struct {
	Object    map[string]any
	Score     float64
	Breakdown validator.Breakdown
	Warnings  []string
	// Index is the position of the winner among the parsed candidates.
	Index      int
	Candidates int
	Rejected   []Rejection
}

// Rejection is a parsed candidate that failed structural validation.
type Rejection struct {
	Index  int
	Errors []string
}

// Evaluate extracts every JSON candidate from raw, validates and scores each
// and returns the highest-scoring valid one. On ties the earliest wins.
func (p *Pipeline) Evaluate(raw string) (*Evaluation, error) {
	res, err := p.extractor.Extract(raw, p.opts.Strict)
	if err != nil {
		p.logger.Warn("no_json_found", slog.Int("invalid_candidates", len(res.Invalid)))
		return nil, err
	}
	for _, inv := range res.Invalid {
		p.logger.Debug("candidate_unparseable", slog.String("error", inv.Error))
	}
	if len(res.Valid) == 0 {
		p.logger.Warn("no_json_found", slog.Int("invalid_candidates", len(res.Invalid)))
		return nil, &extractor.ExtractionError{Invalid: res.Invalid}
	}

	var best *Evaluation
	var rejected []Rejection
	for i, obj := range res.Valid {
		if err := p.validator.Check(obj); err != nil {
			var se *validator.StructuralError
			if !errors.As(err, &se) {
				return nil, err
			}
			p.logger.Debug("candidate_rejected", slog.Int("index", i), slog.Any("errors", se.Messages))
			rejected = append(rejected, Rejection{Index: i, Errors: se.Messages})
			continue
		}

		_, warnings := p.validator.ValidateCompleteness(obj)
		breakdown := p.scorer.Breakdown(obj)
		p.logger.Debug("candidate_accepted",
			slog.Int("index", i),
			slog.Float64("score", breakdown.Total),
			slog.Int("warnings", len(warnings)),
		)

		if best == nil || breakdown.Total > best.Score {
			best = &Evaluation{
				Object:    obj,
				Score:     breakdown.Total,
				Breakdown: breakdown,
				Warnings:  warnings,
				Index:     i,
			}
		}
	}

	if best == nil {
		var msgs []string
		for _, r := range rejected {
			for _, e := range r.Errors {
				msgs = append(msgs, fmt.Sprintf("candidate %d: %s", r.Index, e))
			}
		}
		return nil, &validator.StructuralError{Messages: msgs}
	}

	best.Candidates = len(res.Valid)
	best.Rejected = rejected
	return best, nil
}
