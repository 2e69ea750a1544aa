package ir

import (
	"encoding/json"
	"testing"
	"time"

	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/graph"
	"behave/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *BehavioralModel {
	root := &ast.Node{Kind: ast.KindModule, Children: []*ast.Node{
		{Kind: ast.KindAssignment, Name: "X", Value: int64(1), Metadata: map[string]any{}},
	}, Metadata: map[string]any{}}

	return &BehavioralModel{
		ID:           "5f0c1d3e-0000-4000-8000-000000000001",
		SourceRef:    "fork.py",
		AST:          root,
		Linearized:   "(module (assignment [X] =1 )assignment )module",
		CFG:          graph.NewBuilder().Build(root),
		DataFlow:     dataflow.NewAnalyzer().Analyze(root),
		Annotations:  Annotations{Precondition: "Constant X must be defined"},
		QualityScore: 0.42,
		MinScore:     0.3,
		Warnings:     []string{"no import statements found"},
		ContentHash:  "abc123",
		CreatedAt:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestBehavioralModel_Valid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *BehavioralModel)
		want   bool
	}{
		{"complete", func(*BehavioralModel) {}, true},
		{"at floor", func(m *BehavioralModel) { m.QualityScore = 0.3 }, true},
		{"below floor", func(m *BehavioralModel) { m.QualityScore = 0.29 }, false},
		{"lowered floor", func(m *BehavioralModel) { m.MinScore, m.QualityScore = 0.2, 0.25 }, true},
		{"no children", func(m *BehavioralModel) { m.AST = &ast.Node{Kind: ast.KindModule} }, false},
		{"no annotations", func(m *BehavioralModel) { m.Annotations = Annotations{Invariant: "  "} }, false},
		{"only invariant", func(m *BehavioralModel) { m.Annotations = Annotations{Invariant: "balance >= 0"} }, true},
		{"no tree", func(m *BehavioralModel) { m.AST = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleModel()
			tt.mutate(m)
			assert.Equal(t, tt.want, m.Valid())
		})
	}
}

func TestBehavioralModel_DocumentKeys(t *testing.T) {
	data, err := json.Marshal(sampleModel())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"id", "source_file", "ast", "sbt", "cfg", "data_flow", "behavioral_model", "semantic_score", "quality_rating", "warnings", "created_at"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "acceptable", raw["quality_rating"])
	assert.Equal(t, 0.3, raw["min_score"])
	assert.NotContains(t, raw, "raw_source")

	annotations := raw["behavioral_model"].(map[string]any)
	assert.Equal(t, "Constant X must be defined", annotations["precondition"])
	assert.Equal(t, "", annotations["postcondition"])

	flow := raw["data_flow"].(map[string]any)
	assert.Equal(t, []any{"X"}, flow["state_writes"])
}

func TestBehavioralModel_RoundTrip(t *testing.T) {
	orig := sampleModel()
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var restored BehavioralModel
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, orig.ID, restored.ID)
	assert.Equal(t, orig.SourceRef, restored.SourceRef)
	assert.Equal(t, orig.Linearized, restored.Linearized)
	assert.Equal(t, orig.Annotations, restored.Annotations)
	assert.Equal(t, orig.QualityScore, restored.QualityScore)
	assert.Equal(t, orig.MinScore, restored.MinScore)
	assert.True(t, orig.CreatedAt.Equal(restored.CreatedAt))
	assert.Equal(t, []any{int64(1)}, restored.DataFlow.Constants)
	assert.Equal(t, int64(1), restored.AST.Children[0].Value)
	require.NotNil(t, restored.CFG)
	assert.NoError(t, restored.CFG.Validate())
	assert.Len(t, restored.CFG.Nodes, 3)
}

func TestBehavioralModel_DocumentDefaults(t *testing.T) {
	m := &BehavioralModel{AST: &ast.Node{Kind: ast.KindModule}}
	d := m.Document()
	assert.NotNil(t, d.Warnings)
	assert.NotNil(t, d.DataFlow)
	assert.Equal(t, "poor", d.QualityRating)
}

func TestFromDocument_FloorDefaultsWhenAbsent(t *testing.T) {
	var m BehavioralModel
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","semantic_score":0.31,"ast":{"type":"module","children":[{"type":"assignment","name":"x"}]},"behavioral_model":{"invariant":"x"}}`), &m))
	assert.Equal(t, validator.DefaultMinScore, m.MinScore)
	assert.True(t, m.Valid())
}
