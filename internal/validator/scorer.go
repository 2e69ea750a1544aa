package validator

import "behave/internal/ast"

// Component weights; they sum to 1.0.
const (
	WeightImports     = 0.15
	WeightAssignments = 0.25
	WeightTypes       = 0.15
	WeightFunctions   = 0.25
	WeightControlFlow = 0.20
)

// Default acceptance thresholds applied by callers of the scorer.
const (
	DefaultMinScore  = 0.3
	DefaultWarnScore = 0.5
)

type threshold struct {
	min  int
	good int
}

var (
	importThreshold      = threshold{min: 1, good: 3}
	assignmentThreshold  = threshold{min: 1, good: 5}
	typeThreshold        = threshold{min: 0, good: 2}
	functionThreshold    = threshold{min: 1, good: 3}
	controlFlowThreshold = threshold{min: 0, good: 2}
)

// Breakdown holds the per-category component scores and their weighted total.
type Breakdown struct {
	Imports     float64 `json:"import_score"`
	Assignments float64 `json:"assignment_score"`
	Types       float64 `json:"type_score"`
	Functions   float64 `json:"function_score"`
	ControlFlow float64 `json:"control_flow_score"`
	Total       float64 `json:"total_score"`
}

// Counts are the raw bucket sizes a breakdown is computed from.
type Counts struct {
	Imports     int
	Assignments int
	Constants   int
	Types       int
	Functions   int
	Classes     int
	ControlFlow int
}

// Scorer computes the weighted semantic quality score of a candidate tree.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the weighted total in [0, 1].
func (s *Scorer) Score(obj map[string]any) float64 {
	return s.Breakdown(obj).Total
}

func (s *Scorer) Breakdown(obj map[string]any) Breakdown {
	return BreakdownFor(Collect(obj))
}

// Collect buckets every node of the tree. An upper-case assignment counts as
// both an assignment and a constant.
func Collect(obj map[string]any) Counts {
	var c Counts
	walkJSON(obj, func(node map[string]any, _ int) {
		switch k := ast.ParseKind(ast.KindField(node)); {
		case k == ast.KindImport:
			c.Imports++
		case k == ast.KindAssignment:
			c.Assignments++
			if isConstantName(node) {
				c.Constants++
			}
		case k == ast.KindConstant:
			c.Constants++
		case k == ast.KindFunction:
			c.Functions++
		case k == ast.KindClass:
			c.Classes++
		case k.IsControlFlow():
			c.ControlFlow++
		}
		if hasTypeAnnotation(node) {
			c.Types++
		}
	})
	return c
}

// BreakdownFor maps bucket counts through the threshold curve and weights them.
func BreakdownFor(c Counts) Breakdown {
	b := Breakdown{
		Imports:     componentScore(c.Imports, importThreshold),
		Assignments: componentScore(c.Assignments+c.Constants, assignmentThreshold),
		Types:       componentScore(c.Types, typeThreshold),
		Functions:   componentScore(c.Functions+c.Classes, functionThreshold),
		ControlFlow: componentScore(c.ControlFlow, controlFlowThreshold),
	}
	b.Total = clamp(
		b.Imports*WeightImports+
			b.Assignments*WeightAssignments+
			b.Types*WeightTypes+
			b.Functions*WeightFunctions+
			b.ControlFlow*WeightControlFlow,
		0, 1)
	return b
}

func componentScore(count int, t threshold) float64 {
	switch {
	case count == 0:
		return 0
	case count < t.min:
		return 0.3
	case count < t.good:
		progress := float64(count-t.min) / float64(t.good-t.min)
		return 0.3 + 0.5*progress
	default:
		return min(1.0, 0.8+0.2*(float64(count)/float64(t.good*2)))
	}
}

// IsAcceptable reports whether score reaches floor.
func IsAcceptable(score, floor float64) bool {
	return score >= floor
}

// QualityRating turns a score into a human-readable band.
func QualityRating(score float64) string {
	switch {
	case score >= 0.8:
		return "excellent"
	case score >= 0.6:
		return "good"
	case score >= 0.4:
		return "acceptable"
	case score >= 0.3:
		return "marginal"
	default:
		return "poor"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
