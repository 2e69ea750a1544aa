package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"behave/internal/crawler"
	"behave/internal/ir"
	"behave/internal/pipeline"
	"behave/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Indexer runs the pipeline over every answer file under a directory and
// persists the accepted models.
type Indexer struct {
	crawler  *crawler.Crawler
	pipeline *pipeline.Pipeline
	store    storage.ModelStore
	logger   *slog.Logger
	workers  int
}

// NewIndexer creates an indexer. store may be nil, in which case models are
// built and reported but neither cached nor saved.
func NewIndexer(c *crawler.Crawler, p *pipeline.Pipeline, store storage.ModelStore, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		crawler:  c,
		pipeline: p,
		store:    store,
		logger:   logger,
		workers:  runtime.GOMAXPROCS(0),
	}
}

// SetWorkers bounds the number of files processed at once.
func (i *Indexer) SetWorkers(n int) {
	if n > 0 {
		i.workers = n
	}
}

// Report is the outcome of one IndexDir run, in scan order.
type Report struct {
	Stored   []Entry     `json:"stored"`
	Cached   []Entry     `json:"cached"`
	Rejected []Rejection `json:"rejected"`
}

// Entry names a file and the model built (or found) for it.
type Entry struct {
	Path    string  `json:"path"`
	ModelID string  `json:"model_id"`
	Score   float64 `json:"semantic_score"`
}

// Rejection names a file the pipeline refused and why.
type Rejection struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type outcome struct {
	path   string
	model  *ir.BehavioralModel
	cached bool
	err    error
}

// IndexDir scans root, builds a model per file and saves the new ones in a
// single batch. Per-file failures are reported, not returned.
func (i *Indexer) IndexDir(ctx context.Context, root string) (*Report, error) {
	var files []crawler.File
	if err := i.crawler.Scan(root, func(f crawler.File) error {
		files = append(files, f)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	i.logger.Info("scan_completed", slog.String("root", root), slog.Int("files", len(files)))

	outcomes := make([]outcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for n, f := range files {
		g.Go(func() error {
			outcomes[n] = i.indexFile(gctx, f)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Stored: []Entry{}, Cached: []Entry{}, Rejected: []Rejection{}}
	var fresh []*ir.BehavioralModel
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			report.Rejected = append(report.Rejected, Rejection{Path: o.path, Reason: o.err.Error()})
		case o.cached:
			report.Cached = append(report.Cached, entryFor(o))
		default:
			fresh = append(fresh, o.model)
			report.Stored = append(report.Stored, entryFor(o))
		}
	}

	if i.store != nil && len(fresh) > 0 {
		if err := i.store.SaveModels(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to save models: %w", err)
		}
	}
	i.logger.Info("index_completed",
		slog.Int("stored", len(report.Stored)),
		slog.Int("cached", len(report.Cached)),
		slog.Int("rejected", len(report.Rejected)),
	)
	return report, nil
}

func (i *Indexer) indexFile(ctx context.Context, f crawler.File) outcome {
	if i.store != nil {
		m, err := i.store.FindByHash(ctx, pipeline.ContentHash(f.Content))
		switch {
		case err == nil:
			i.logger.Debug("model_cached", slog.String("path", f.Path), slog.String("id", m.ID))
			return outcome{path: f.Path, model: m, cached: true}
		case !errors.Is(err, storage.ErrNotFound):
			return outcome{path: f.Path, err: fmt.Errorf("cache lookup failed: %w", err)}
		}
	}

	m, err := i.pipeline.Run(ctx, pipeline.Input{Raw: f.Content, SourceRef: f.Path})
	if err != nil {
		i.logger.Warn("file_rejected", slog.String("path", f.Path), slog.String("error", err.Error()))
		return outcome{path: f.Path, err: err}
	}
	return outcome{path: f.Path, model: m}
}

func entryFor(o outcome) Entry {
	return Entry{Path: o.path, ModelID: o.model.ID, Score: o.model.QualityScore}
}

// SaveModel writes the model document to a JSON file.
func SaveModel(m *ir.BehavioralModel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModel reads a model document written by SaveModel.
func LoadModel(path string) (*ir.BehavioralModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}

	var m ir.BehavioralModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &m, nil
}
