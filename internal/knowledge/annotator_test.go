package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() AnnotationInput {
	root := &ast.Node{Kind: ast.KindModule, Children: []*ast.Node{
		{Kind: ast.KindAssignment, Name: "X", Value: int64(1)},
		{Kind: ast.KindName, Name: "LIMIT"},
	}}
	return AnnotationInput{
		AST:      root,
		CFG:      graph.NewBuilder().Build(root),
		DataFlow: dataflow.NewAnalyzer().Analyze(root),
	}
}

func TestRuleAnnotator(t *testing.T) {
	got, err := NewRuleAnnotator().Annotate(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "Constant LIMIT must be defined", got.Precondition)
	assert.Equal(t, "Variable X is assigned", got.Postcondition)
	assert.Equal(t, "Value 1 remains constant", got.Invariant)

	got, err = NewRuleAnnotator().Annotate(context.Background(), AnnotationInput{})
	require.NoError(t, err)
	assert.Equal(t, "Module loaded successfully", got.Precondition)
	assert.Equal(t, "Execution completes", got.Postcondition)
	assert.Equal(t, "No state invariants", got.Invariant)
}

func TestLLMAnnotator_JSONAnswer(t *testing.T) {
	var seenPrompt string
	var seenTemp float64
	gen := GeneratorFunc(func(_ context.Context, prompt string, opts GenerateOptions) (string, error) {
		seenPrompt, seenTemp = prompt, opts.Temperature
		return "Sure:\n```json\n{\"precondition\": \"X is set\", \"postcondition\": \"state updated\", \"invariant\": \"LIMIT is fixed\"}\n```", nil
	})

	got, err := NewLLMAnnotator(gen, nil).Annotate(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "X is set", got.Precondition)
	assert.Equal(t, "state updated", got.Postcondition)
	assert.Equal(t, "LIMIT is fixed", got.Invariant)
	assert.Equal(t, annotationTemperature, seenTemp)
	assert.Contains(t, seenPrompt, "Root type: module; Structure: 1 assignment(s), 1 name(s)")
	assert.Contains(t, seenPrompt, "- State Writes: X")
	assert.Contains(t, seenPrompt, "- Constants: 1")
}

func TestLLMAnnotator_TextFallback(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, string, GenerateOptions) (string, error) {
		return "Precondition: Block Is Valid\nPostcondition\nState Is Updated\nno invariant here", nil
	})

	got, err := NewLLMAnnotator(gen, nil).Annotate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "block is valid", got.Precondition)
	assert.Equal(t, "state is updated", got.Postcondition)
	assert.Equal(t, "", got.Invariant, "a label line without colon takes the next line, none here")
}

func TestLLMAnnotator_GeneratorFailure(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, string, GenerateOptions) (string, error) {
		return "", &GenerationError{Provider: "fake", Model: "m", StatusCode: 500, Err: errors.New("boom")}
	})

	in := sampleInput()
	got, err := NewLLMAnnotator(gen, nil).Annotate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, DefaultAnnotations(in.DataFlow), got)
}

func TestLLMAnnotator_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := GeneratorFunc(func(ctx context.Context, _ string, _ GenerateOptions) (string, error) {
		return "", ctx.Err()
	})

	_, err := NewLLMAnnotator(gen, nil).Annotate(ctx, sampleInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultAnnotations(t *testing.T) {
	flow := &dataflow.Summary{
		Imports:   []string{"a", "b", "c", "d", "e", "f"},
		Reads:     []string{"x"},
		Writes:    []string{"y"},
		Constants: []any{int64(1), "two", 3.5, true},
	}
	got := DefaultAnnotations(flow)
	assert.Equal(t, "Modules available: a, b, c, d, e; Variables defined: x", got.Precondition)
	assert.Equal(t, "State modified: y", got.Postcondition)
	assert.Equal(t, "Constants: 1, two, 3.5", got.Invariant)

	got = DefaultAnnotations(nil)
	assert.Equal(t, "No specific preconditions identified", got.Precondition)
	assert.Equal(t, "No state modifications identified", got.Postcondition)
	assert.Equal(t, "No invariants identified", got.Invariant)
}

func TestAnnotationsFromText_NextLine(t *testing.T) {
	got := AnnotationsFromText("INVARIANT\n  total supply never changes  \n")
	assert.Equal(t, "total supply never changes", got.Invariant)
	assert.True(t, strings.HasPrefix(got.Invariant, "total"))
}
