package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentScore_Curve(t *testing.T) {
	tests := []struct {
		name  string
		count int
		th    threshold
		want  float64
	}{
		{"zero", 0, functionThreshold, 0},
		{"at min", 1, functionThreshold, 0.3},
		{"ramp", 2, functionThreshold, 0.55},
		{"at good", 3, functionThreshold, 0.9},
		{"saturated", 6, functionThreshold, 1.0},
		{"far past good", 100, functionThreshold, 1.0},
		{"zero min ramp", 1, typeThreshold, 0.55},
		{"zero min good", 2, typeThreshold, 0.9},
		{"assignments ramp", 3, assignmentThreshold, 0.55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, componentScore(tt.count, tt.th), 1e-9)
		})
	}

	// Below min only occurs for thresholds with min > 1.
	assert.InDelta(t, 0.3, componentScore(1, threshold{min: 2, good: 4}), 1e-9)
}

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightImports+WeightAssignments+WeightTypes+WeightFunctions+WeightControlFlow, 1e-9)
}

func TestScore_ForkModule(t *testing.T) {
	s := NewScorer()
	b := s.Breakdown(decode(t, forkModule))

	assert.Equal(t, 0.0, b.Imports)
	assert.InDelta(t, 0.9, b.Assignments, 1e-9)
	assert.Equal(t, 0.0, b.Types)
	assert.InDelta(t, 0.55, b.Functions, 1e-9)
	assert.InDelta(t, 0.9, b.ControlFlow, 1e-9)
	assert.InDelta(t, 0.5425, b.Total, 1e-9)

	assert.InDelta(t, b.Total, s.Score(decode(t, forkModule)), 1e-12)
	assert.True(t, IsAcceptable(b.Total, DefaultMinScore))
	assert.Equal(t, "acceptable", QualityRating(b.Total))
}

func TestScore_EmptyTree(t *testing.T) {
	score := NewScorer().Score(decode(t, `{"type":"module"}`))
	assert.Equal(t, 0.0, score)
	assert.False(t, IsAcceptable(score, DefaultMinScore))
}

func TestScore_TypeAnnotations(t *testing.T) {
	src := `{"type":"module","children":[
		{"type":"function","name":"f","metadata":{"return_type":"int"}},
		{"type":"assignment","name":"x","metadata":{"type_annotation":""}}
	]}`
	c := Collect(decode(t, src))
	assert.Equal(t, 1, c.Types, "empty annotations do not count")
	assert.Equal(t, 1, c.Functions)
	assert.Equal(t, 1, c.Assignments)
	assert.Equal(t, 0, c.Constants)
}

func TestScore_FunctionMonotonic(t *testing.T) {
	prev := -1.0
	for n := 0; n <= 12; n++ {
		got := BreakdownFor(Counts{Functions: n}).Functions
		assert.GreaterOrEqual(t, got, prev, "functions=%d", n)
		prev = got
	}
}

func TestScore_Bounded(t *testing.T) {
	b := BreakdownFor(Counts{Imports: 50, Assignments: 50, Constants: 50, Types: 50, Functions: 50, Classes: 50, ControlFlow: 50})
	assert.LessOrEqual(t, b.Total, 1.0)
	assert.InDelta(t, 1.0, b.Total, 1e-9)
}

func TestQualityRating(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "excellent"},
		{0.8, "excellent"},
		{0.6, "good"},
		{0.45, "acceptable"},
		{0.3, "marginal"},
		{0.29, "poor"},
		{0, "poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QualityRating(tt.score), "score %.2f", tt.score)
	}
}
