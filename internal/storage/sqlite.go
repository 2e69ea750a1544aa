package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"behave/internal/ir"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			source_ref TEXT,
			content_hash TEXT,
			score REAL,
			rating TEXT,
			document JSON,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_models_hash ON models(content_hash);`,
		`CREATE INDEX IF NOT EXISTS idx_models_source ON models(source_ref);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const upsertModel = `
	INSERT INTO models (id, source_ref, content_hash, score, rating, document, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		source_ref=excluded.source_ref,
		content_hash=excluded.content_hash,
		score=excluded.score,
		rating=excluded.rating,
		document=excluded.document,
		created_at=excluded.created_at
`

// modelRow flattens a model into the column values of upsertModel.
func modelRow(m *ir.BehavioralModel) ([]any, error) {
	if m == nil || m.ID == "" {
		return nil, fmt.Errorf("model id is required")
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model %s: %w", m.ID, err)
	}
	return []any{
		m.ID,
		m.SourceRef,
		m.ContentHash,
		m.QualityScore,
		m.Rating(),
		doc,
		m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func (s *SQLiteStore) SaveModel(ctx context.Context, m *ir.BehavioralModel) error {
	row, err := modelRow(m)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertModel, row...)
	return err
}

func (s *SQLiteStore) SaveModels(ctx context.Context, models []*ir.BehavioralModel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertModel)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range models {
		row, err := modelRow(m)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetModel(ctx context.Context, id string) (*ir.BehavioralModel, error) {
	row := s.db.QueryRowContext(ctx, "SELECT document FROM models WHERE id = ?", id)
	return scanModel(row)
}

func (s *SQLiteStore) FindByHash(ctx context.Context, contentHash string) (*ir.BehavioralModel, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT document FROM models WHERE content_hash = ? ORDER BY created_at DESC, id LIMIT 1", contentHash)
	return scanModel(row)
}

func scanModel(row *sql.Row) (*ir.BehavioralModel, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var m ir.BehavioralModel
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) ListModels(ctx context.Context) ([]ModelSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source_ref, content_hash, score, rating, created_at FROM models ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var out []ModelSummary
	for rows.Next() {
		var ms ModelSummary
		var created string
		if err := rows.Scan(&ms.ID, &ms.SourceRef, &ms.ContentHash, &ms.Score, &ms.Rating, &created); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			ms.CreatedAt = t
		}
		out = append(out, ms)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteModel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM models WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
