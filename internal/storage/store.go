package storage

import (
	"context"
	"errors"
	"time"

	"behave/internal/ir"
)

// ErrNotFound is returned when no stored model matches a lookup.
var ErrNotFound = errors.New("behavioral model not found")

// Store persists behavioral models.
type Store interface {
	ModelStore
	Close() error
}

// ModelStore defines operations for persisting behavioral models.
type ModelStore interface {
	// SaveModel upserts a model keyed by its ID.
	SaveModel(ctx context.Context, m *ir.BehavioralModel) error

	// SaveModels upserts a batch of models in one transaction.
	SaveModels(ctx context.Context, models []*ir.BehavioralModel) error

	// GetModel retrieves a model by its ID.
	GetModel(ctx context.Context, id string) (*ir.BehavioralModel, error)

	// FindByHash returns the most recent model built from identical raw text.
	FindByHash(ctx context.Context, contentHash string) (*ir.BehavioralModel, error)

	// ListModels returns summaries of every stored model, newest first.
	ListModels(ctx context.Context) ([]ModelSummary, error)

	// DeleteModel removes a model by its ID.
	DeleteModel(ctx context.Context, id string) error
}

// ModelSummary is the indexed columns of a stored model, without its document.
type ModelSummary struct {
	ID          string    `json:"id"`
	SourceRef   string    `json:"source_file"`
	ContentHash string    `json:"content_hash"`
	Score       float64   `json:"semantic_score"`
	Rating      string    `json:"quality_rating"`
	CreatedAt   time.Time `json:"created_at"`
}
