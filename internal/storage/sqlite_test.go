package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/graph"
	"behave/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	m := testModel("m-1", "fork.json", "hash-a", 0.54, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, store.SaveModel(ctx, m))

	got, err := store.GetModel(ctx, "m-1")
	require.NoError(t, err)

	assert.Equal(t, "fork.json", got.SourceRef)
	assert.Equal(t, "hash-a", got.ContentHash)
	assert.Equal(t, 0.54, got.QualityScore)
	assert.Equal(t, m.Annotations, got.Annotations)
	assert.Equal(t, m.Linearized, got.Linearized)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.AST)
	assert.Equal(t, m.AST.Size(), got.AST.Size())
	require.NotNil(t, got.CFG)
	assert.Len(t, got.CFG.Nodes, len(m.CFG.Nodes))
	assert.Equal(t, []any{int64(1)}, got.DataFlow.Constants)
}

func TestSQLiteStore_Upsert(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveModel(ctx, testModel("m-1", "a.json", "h1", 0.4, at)))
	require.NoError(t, store.SaveModel(ctx, testModel("m-1", "a.json", "h2", 0.7, at)))

	list, err := store.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "h2", list[0].ContentHash)
	assert.Equal(t, 0.7, list[0].Score)
	assert.Equal(t, "good", list[0].Rating)
}

func TestSQLiteStore_FindByHash(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	older := testModel("old", "a.json", "same", 0.4, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testModel("new", "b.json", "same", 0.5, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveModels(ctx, []*ir.BehavioralModel{older, newer}))

	got, err := store.FindByHash(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)

	_, err = store.FindByHash(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListAndDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveModels(ctx, []*ir.BehavioralModel{
		testModel("a", "a.json", "ha", 0.3, base),
		testModel("b", "b.json", "hb", 0.9, base.Add(time.Hour)),
	}))

	list, err := store.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "newest first")
	assert.Equal(t, "excellent", list[0].Rating)
	assert.True(t, base.Equal(list[1].CreatedAt))

	require.NoError(t, store.DeleteModel(ctx, "a"))
	assert.ErrorIs(t, store.DeleteModel(ctx, "a"), ErrNotFound)

	_, err = store.GetModel(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SaveModelsIsAtomic(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.SaveModels(ctx, []*ir.BehavioralModel{
		testModel("ok", "a.json", "h", 0.5, time.Now()),
		{},
	})
	require.Error(t, err)

	list, err := store.ListModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testModel(id, source, hash string, score float64, at time.Time) *ir.BehavioralModel {
	root := &ast.Node{Kind: ast.KindModule, Children: []*ast.Node{
		{Kind: ast.KindImport, Name: "os"},
		{Kind: ast.KindAssignment, Name: "LIMIT", Value: int64(1)},
	}}
	return &ir.BehavioralModel{
		ID:           id,
		SourceRef:    source,
		AST:          root,
		Linearized:   "(module (import os )import (assignment LIMIT =1 )assignment )module",
		CFG:          graph.NewBuilder().Build(root),
		DataFlow:     dataflow.NewAnalyzer().Analyze(root),
		Annotations:  ir.Annotations{Precondition: "os is importable", Postcondition: "LIMIT is set", Invariant: "LIMIT == 1"},
		QualityScore: score,
		ContentHash:  hash,
		CreatedAt:    at,
	}
}
