package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/graph"
	"behave/internal/validator"
)

// Annotations are the behavioral statements supplied by an annotator.
type Annotations struct {
	Precondition  string `json:"precondition"`
	Postcondition string `json:"postcondition"`
	Invariant     string `json:"invariant"`
}

// Empty reports whether no annotation is set.
func (a Annotations) Empty() bool {
	return strings.TrimSpace(a.Precondition) == "" &&
		strings.TrimSpace(a.Postcondition) == "" &&
		strings.TrimSpace(a.Invariant) == ""
}

// BehavioralModel is the aggregate produced by one pipeline run. It is built
// once and not modified afterwards.
type BehavioralModel struct {
	ID           string
	SourceRef    string
	AST          *ast.Node
	Linearized   string
	CFG          *graph.ControlFlowGraph
	DataFlow     *dataflow.Summary
	Annotations  Annotations
	QualityScore float64
	MinScore     float64
	Breakdown    validator.Breakdown
	Warnings     []string
	RawSource    string
	ContentHash  string
	CreatedAt    time.Time
}

// Valid reports whether the model is usable downstream. The score must reach
// MinScore, the floor the model was built against. The tree needs children
// and at least one annotation must be present.
func (m *BehavioralModel) Valid() bool {
	if m == nil || m.AST == nil {
		return false
	}
	return m.QualityScore >= m.MinScore &&
		len(m.AST.Children) > 0 &&
		!m.Annotations.Empty()
}

// Rating is the human-readable band of the quality score.
func (m *BehavioralModel) Rating() string {
	return validator.QualityRating(m.QualityScore)
}

// Document is the serialized form of a BehavioralModel.
type Document struct {
	ID              string                  `json:"id"`
	SourceFile      string                  `json:"source_file"`
	AST             *ast.Node               `json:"ast"`
	SBT             string                  `json:"sbt"`
	CFG             *graph.ControlFlowGraph `json:"cfg"`
	DataFlow        *dataflow.Summary       `json:"data_flow"`
	BehavioralModel Annotations             `json:"behavioral_model"`
	SemanticScore   float64                 `json:"semantic_score"`
	QualityRating   string                  `json:"quality_rating"`
	MinScore        *float64                `json:"min_score,omitempty"`
	ScoreBreakdown  validator.Breakdown     `json:"score_breakdown"`
	Warnings        []string                `json:"warnings"`
	ContentHash     string                  `json:"content_hash,omitempty"`
	RawSource       string                  `json:"raw_source,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

func (m *BehavioralModel) Document() Document {
	warnings := m.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	flow := m.DataFlow
	if flow == nil {
		flow = dataflow.Empty()
	}
	return Document{
		ID:              m.ID,
		SourceFile:      m.SourceRef,
		AST:             m.AST,
		SBT:             m.Linearized,
		CFG:             m.CFG,
		DataFlow:        flow,
		BehavioralModel: m.Annotations,
		SemanticScore:   m.QualityScore,
		QualityRating:   m.Rating(),
		MinScore:        &m.MinScore,
		ScoreBreakdown:  m.Breakdown,
		Warnings:        warnings,
		ContentHash:     m.ContentHash,
		RawSource:       m.RawSource,
		CreatedAt:       m.CreatedAt,
	}
}

// FromDocument rebuilds a model from its serialized form.
func FromDocument(d Document) *BehavioralModel {
	flow := d.DataFlow
	if flow != nil {
		for i, c := range flow.Constants {
			flow.Constants[i] = ast.Normalize(c)
		}
	}
	floor := validator.DefaultMinScore
	if d.MinScore != nil {
		floor = *d.MinScore
	}
	return &BehavioralModel{
		ID:           d.ID,
		SourceRef:    d.SourceFile,
		AST:          d.AST,
		Linearized:   d.SBT,
		CFG:          d.CFG,
		DataFlow:     flow,
		Annotations:  d.BehavioralModel,
		QualityScore: d.SemanticScore,
		MinScore:     floor,
		Breakdown:    d.ScoreBreakdown,
		Warnings:     d.Warnings,
		RawSource:    d.RawSource,
		ContentHash:  d.ContentHash,
		CreatedAt:    d.CreatedAt,
	}
}

func (m *BehavioralModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}

func (m *BehavioralModel) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return fmt.Errorf("failed to decode behavioral model: %w", err)
	}
	*m = *FromDocument(d)
	return nil
}
