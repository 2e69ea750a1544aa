package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"behave/internal/analysis"
	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/extractor"
	"behave/internal/ir"
)

const annotationTemperature = 0.2

// RuleAnnotator derives annotations from the data-flow summary alone.
type RuleAnnotator struct{}

func NewRuleAnnotator() *RuleAnnotator {
	return &RuleAnnotator{}
}

func (r *RuleAnnotator) Annotate(_ context.Context, in AnnotationInput) (ir.Annotations, error) {
	flow := in.DataFlow
	if flow == nil {
		flow = dataflow.Empty()
	}

	var pre, post, inv []string
	for _, name := range flow.Reads {
		if ast.IsUpper(name) {
			pre = append(pre, fmt.Sprintf("Constant %s must be defined", name))
		}
	}
	for _, name := range flow.Writes {
		post = append(post, fmt.Sprintf("Variable %s is assigned", name))
	}
	for _, v := range flow.Constants {
		inv = append(inv, fmt.Sprintf("Value %v remains constant", v))
	}

	return ir.Annotations{
		Precondition:  joinOr(pre, "Module loaded successfully"),
		Postcondition: joinOr(post, "Execution completes"),
		Invariant:     joinOr(inv, "No state invariants"),
	}, nil
}

// LLMAnnotator asks a Generator for the annotations. A failed call degrades
// to DefaultAnnotations instead of failing the run.
type LLMAnnotator struct {
	gen       Generator
	prompts   *PromptBuilder
	extractor *extractor.Extractor
	logger    *slog.Logger
}

func NewLLMAnnotator(gen Generator, logger *slog.Logger) *LLMAnnotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMAnnotator{
		gen:       gen,
		prompts:   &PromptBuilder{},
		extractor: extractor.NewExtractor(extractor.Options{StringAware: true}),
		logger:    logger,
	}
}

func (a *LLMAnnotator) Annotate(ctx context.Context, in AnnotationInput) (ir.Annotations, error) {
	flow := in.DataFlow
	if flow == nil {
		flow = dataflow.Empty()
	}

	a.logger.Info("extracting_behavioral_model")
	prompt := a.prompts.BuildBehaviorPrompt(analysis.SummarizeAST(in.AST), analysis.SummarizeCFG(in.CFG), flow)

	resp, err := a.gen.Generate(ctx, prompt, GenerateOptions{Temperature: annotationTemperature})
	if err != nil {
		if ctx.Err() != nil {
			return ir.Annotations{}, ctx.Err()
		}
		a.logger.Error("behavioral_extraction_failed", slog.String("error", err.Error()))
		return DefaultAnnotations(flow), nil
	}

	res, _ := a.extractor.Extract(resp, false)
	if len(res.Valid) > 0 {
		obj := res.Valid[0]
		out := ir.Annotations{
			Precondition:  stringField(obj, "precondition"),
			Postcondition: stringField(obj, "postcondition"),
			Invariant:     stringField(obj, "invariant"),
		}
		a.logger.Info("behavioral_model_extracted",
			slog.Bool("has_precondition", out.Precondition != ""),
			slog.Bool("has_postcondition", out.Postcondition != ""),
			slog.Bool("has_invariant", out.Invariant != ""),
		)
		return out, nil
	}
	return AnnotationsFromText(resp), nil
}

// AnnotationsFromText scrapes "precondition: ..." style lines out of a prose
// answer. A label line without a colon takes the following line. The text is
// lower-cased first.
func AnnotationsFromText(text string) ir.Annotations {
	var out ir.Annotations
	lines := strings.Split(strings.ToLower(text), "\n")
	for i, line := range lines {
		var target *string
		switch {
		case strings.Contains(line, "precondition"):
			target = &out.Precondition
		case strings.Contains(line, "postcondition"):
			target = &out.Postcondition
		case strings.Contains(line, "invariant"):
			target = &out.Invariant
		default:
			continue
		}
		if _, after, ok := strings.Cut(line, ":"); ok {
			*target = strings.TrimSpace(after)
		} else if i+1 < len(lines) {
			*target = strings.TrimSpace(lines[i+1])
		}
	}
	return out
}

// DefaultAnnotations summarizes the data flow when no model answer is usable.
func DefaultAnnotations(flow *dataflow.Summary) ir.Annotations {
	if flow == nil {
		flow = dataflow.Empty()
	}

	var pre []string
	if len(flow.Imports) > 0 {
		pre = append(pre, "Modules available: "+strings.Join(head(flow.Imports, 5), ", "))
	}
	if len(flow.Reads) > 0 {
		pre = append(pre, "Variables defined: "+strings.Join(head(flow.Reads, 5), ", "))
	}

	var post []string
	if len(flow.Writes) > 0 {
		post = append(post, "State modified: "+strings.Join(head(flow.Writes, 5), ", "))
	}

	var inv []string
	if len(flow.Constants) > 0 {
		consts := flow.Constants
		if len(consts) > 3 {
			consts = consts[:3]
		}
		inv = append(inv, "Constants: "+strings.Join(formatValues(consts), ", "))
	}

	return ir.Annotations{
		Precondition:  joinOr(pre, "No specific preconditions identified"),
		Postcondition: joinOr(post, "No state modifications identified"),
		Invariant:     joinOr(inv, "No invariants identified"),
	}
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(ast.Normalize(v))
	}
}

func joinOr(parts []string, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "; ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
