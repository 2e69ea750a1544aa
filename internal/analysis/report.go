package analysis

import (
	"fmt"
	"strings"

	"behave/internal/ast"
	"behave/internal/graph"
)

// Report summarizes the shape of one behavioral model's graphs.
type Report struct {
	Nodes          int `json:"nodes"`
	Edges          int `json:"edges"`
	Complexity     int `json:"cyclomatic_complexity"`
	Loops          int `json:"loops"`
	Branches       int `json:"branches"`
	Handlers       int `json:"exception_handlers"`
	Returns        int `json:"returns"`
	BackEdges      int `json:"back_edges"`
	ExceptionEdges int `json:"exception_edges"`
	ASTNodes       int `json:"ast_nodes"`
	// Unreachable lists, in id order, nodes the entry cannot reach over
	// normal control flow. Except nodes are always here; anything else
	// points at a defect.
	Unreachable []string `json:"unreachable"`
	ASTSummary  string   `json:"ast_summary"`
	CFGSummary  string   `json:"cfg_summary"`
}

// Analyze derives a Report from a tree and the graph built from it.
func Analyze(root *ast.Node, cfg *graph.ControlFlowGraph) Report {
	r := Report{
		Unreachable: []string{},
		ASTNodes:    root.Size(),
		ASTSummary:  SummarizeAST(root),
		CFGSummary:  SummarizeCFG(cfg),
	}
	if cfg == nil {
		return r
	}

	counts := cfg.KindCounts()
	r.Nodes = len(cfg.Nodes)
	r.Edges = len(cfg.Edges)
	r.Complexity = Complexity(cfg)
	r.Loops = counts[graph.NodeLoopHeader]
	r.Branches = counts[graph.NodeCondition]
	r.Handlers = counts[graph.NodeExcept]
	r.Returns = counts[graph.NodeReturn]

	edges := cfg.EdgeKindCounts()
	r.BackEdges = edges[graph.EdgeBack]
	r.ExceptionEdges = edges[graph.EdgeException]

	reached := cfg.Reachable(graph.NotException)
	for _, id := range cfg.IDs() {
		if !reached[id] {
			r.Unreachable = append(r.Unreachable, id)
		}
	}
	return r
}

// Complexity is the cyclomatic number E - N + 2 of a connected graph.
func Complexity(cfg *graph.ControlFlowGraph) int {
	if cfg == nil || len(cfg.Nodes) == 0 {
		return 0
	}
	return len(cfg.Edges) - len(cfg.Nodes) + 2
}

// SummarizeAST describes the root kind and counts its direct children by
// kind, in first-seen order.
func SummarizeAST(root *ast.Node) string {
	if root == nil {
		return "Module with mixed content"
	}

	parts := []string{"Root type: " + string(root.Kind)}

	var order []ast.Kind
	counts := make(map[ast.Kind]int)
	for _, c := range root.Children {
		if counts[c.Kind] == 0 {
			order = append(order, c.Kind)
		}
		counts[c.Kind]++
	}
	if len(order) > 0 {
		structure := make([]string, 0, len(order))
		for _, k := range order {
			structure = append(structure, fmt.Sprintf("%d %s(s)", counts[k], k))
		}
		parts = append(parts, "Structure: "+strings.Join(structure, ", "))
	}
	return strings.Join(parts, "; ")
}

// SummarizeCFG gives node and edge counts plus the kinds of control
// structure present.
func SummarizeCFG(cfg *graph.ControlFlowGraph) string {
	if cfg == nil {
		return "0 nodes, 0 edges"
	}
	counts := cfg.KindCounts()

	parts := []string{fmt.Sprintf("%d nodes, %d edges", len(cfg.Nodes), len(cfg.Edges))}
	if counts[graph.NodeLoopHeader]+counts[graph.NodeLoopBody] > 0 {
		parts = append(parts, "contains loops")
	}
	if counts[graph.NodeCondition] > 0 {
		parts = append(parts, "contains conditionals")
	}
	if counts[graph.NodeTry]+counts[graph.NodeExcept] > 0 {
		parts = append(parts, "has exception handling")
	}
	return strings.Join(parts, "; ")
}
