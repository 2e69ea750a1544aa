package knowledge

import (
	"fmt"
	"strings"

	"behave/internal/dataflow"
)

// PromptBuilder constructs the prompts sent to a Generator.
type PromptBuilder struct{}

var astNodeKinds = []struct{ kind, desc string }{
	{"module", "Root node for the entire file"},
	{"import", "Import statements"},
	{"function", "Function definitions"},
	{"class", "Class definitions"},
	{"assignment", "Variable assignments"},
	{"if", "If statements"},
	{"for", "For loops"},
	{"while", "While loops"},
	{"return", "Return statements"},
	{"call", "Function calls"},
	{"constant", "Literal values"},
	{"name", "Variable references"},
	{"attribute", "Attribute access"},
	{"binary_op", "Binary operations"},
	{"compare", "Comparisons"},
	{"subscript", "Subscript/index access"},
	{"list", "List literals"},
	{"dict", "Dictionary literals"},
	{"try", "Try/except blocks"},
	{"raise", "Raise statements"},
	{"assert", "Assert statements"},
	{"with", "Context managers"},
}

// BuildASTPrompt asks for a JSON AST of source.
func (pb *PromptBuilder) BuildASTPrompt(source string, lang Language) string {
	var sb strings.Builder
	sb.WriteString("Role: Code Analyzer. Task: Produce an Abstract Syntax Tree (AST) of the source code below as JSON.\n")

	sb.WriteString("\n**INSTRUCTIONS**:\n")
	sb.WriteString("1. Output ONLY one JSON object. No prose, no markdown fences.\n")
	sb.WriteString("2. Cover imports, functions, classes, assignments and control flow.\n")
	sb.WriteString("3. Keep type annotations in metadata (`type_annotation`, `return_type`, `parameters`).\n")
	sb.WriteString("4. Keep constant values and line numbers of key nodes.\n")

	sb.WriteString("\n**NODE SCHEMA**:\n")
	sb.WriteString(`{"type": "<node_type>", "name": "<optional>", "value": <optional scalar>, "children": [<nodes>], "line": <int>, "metadata": {<extra>}}`)
	sb.WriteString("\n\n**NODE TYPES**:\n")
	for _, k := range astNodeKinds {
		fmt.Fprintf(&sb, "- %s: %s\n", k.kind, k.desc)
	}

	sb.WriteString("\n**SOURCE**:\n")
	sb.WriteString(source)
	sb.WriteString("\n\nAST JSON:")

	if lang != "" && lang != LangPython {
		fmt.Fprintf(&sb, "\n\nNote: The source code is in %s. Map its constructs onto the node types above.\n", lang)
	}
	return sb.String()
}

// BuildBehaviorPrompt asks for precondition, postcondition and invariant
// statements given the analysis summaries.
func (pb *PromptBuilder) BuildBehaviorPrompt(astSummary, cfgSummary string, flow *dataflow.Summary) string {
	if flow == nil {
		flow = dataflow.Empty()
	}

	var sb strings.Builder
	sb.WriteString("Role: Formal Methods Engineer. Task: Extract the behavioral specification of the analyzed code.\n")

	sb.WriteString("\n**INSTRUCTIONS**:\n")
	sb.WriteString("1. Preconditions: what must hold before execution.\n")
	sb.WriteString("2. Postconditions: what holds after execution.\n")
	sb.WriteString("3. Invariants: what stays constant.\n")
	sb.WriteString("4. Be specific. Refer to the state, calls and control flow listed below.\n")

	sb.WriteString("\n**AST SUMMARY**:\n")
	sb.WriteString(astSummary)
	sb.WriteString("\n\n**CONTROL FLOW**:\n")
	sb.WriteString(cfgSummary)

	sb.WriteString("\n\n**DATA FLOW**:\n")
	fmt.Fprintf(&sb, "- State Reads: %s\n", joinOrNone(flow.Reads))
	fmt.Fprintf(&sb, "- State Writes: %s\n", joinOrNone(flow.Writes))
	fmt.Fprintf(&sb, "- Constants: %s\n", joinOrNone(formatValues(flow.Constants)))
	fmt.Fprintf(&sb, "- Function Calls: %s\n", joinOrNone(flow.Calls))

	sb.WriteString("\n**OUTPUT**: Respond with ONLY a JSON object:\n")
	sb.WriteString(`{"precondition": "...", "postcondition": "...", "invariant": "..."}`)
	sb.WriteString("\n")
	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func formatValues(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
