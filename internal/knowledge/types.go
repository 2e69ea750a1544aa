package knowledge

import (
	"context"

	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/graph"
	"behave/internal/ir"
)

// GenerateOptions tunes one completion request.
type GenerateOptions struct {
	Temperature float64
}

// Generator produces raw completion text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// AnnotationInput is the analyzed material an Annotator reasons over.
type AnnotationInput struct {
	AST      *ast.Node
	CFG      *graph.ControlFlowGraph
	DataFlow *dataflow.Summary
}

// Annotator derives precondition, postcondition and invariant statements.
type Annotator interface {
	Annotate(ctx context.Context, in AnnotationInput) (ir.Annotations, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return f(ctx, prompt, opts)
}
