package analysis

import (
	"testing"

	"behave/internal/ast"
	"behave/internal/graph"

	"github.com/stretchr/testify/assert"
)

func node(kind ast.Kind, name string, children ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: kind, Name: name, Children: children}
}

func TestAnalyze_StraightLine(t *testing.T) {
	root := node(ast.KindModule, "", node(ast.KindAssignment, "X"))
	cfg := graph.NewBuilder().Build(root)

	r := Analyze(root, cfg)

	assert.Equal(t, 3, r.Nodes)
	assert.Equal(t, 2, r.Edges)
	assert.Equal(t, 1, r.Complexity)
	assert.Zero(t, r.Loops)
	assert.Zero(t, r.BackEdges)
	assert.Equal(t, 2, r.ASTNodes)
	assert.Empty(t, r.Unreachable)
	assert.Equal(t, "Root type: module; Structure: 1 assignment(s)", r.ASTSummary)
	assert.Equal(t, "3 nodes, 2 edges", r.CFGSummary)
}

func TestAnalyze_ControlStructures(t *testing.T) {
	root := node(ast.KindModule, "",
		node(ast.KindImport, "os"),
		node(ast.KindFunction, "f",
			node(ast.KindIf, "", node(ast.KindCompare, ""), node(ast.KindAssignment, "a")),
			node(ast.KindWhile, "", node(ast.KindCall, "tick")),
			node(ast.KindTry, "", node(ast.KindCall, "risky")),
			node(ast.KindReturn, ""),
		),
		node(ast.KindImport, "sys"),
	)
	cfg := graph.NewBuilder().Build(root)

	r := Analyze(root, cfg)

	assert.Equal(t, 1, r.Loops)
	assert.Equal(t, 1, r.Branches)
	assert.Equal(t, 1, r.Handlers)
	assert.Equal(t, 1, r.Returns)
	assert.Equal(t, 1, r.BackEdges)
	assert.Equal(t, 1, r.ExceptionEdges)
	assert.Equal(t, 12, r.ASTNodes)
	assert.Equal(t, len(cfg.Edges)-len(cfg.Nodes)+2, r.Complexity)
	assert.Greater(t, r.Complexity, 1)

	assert.Len(t, r.Unreachable, 1)
	assert.Equal(t, graph.NodeExcept, cfg.Node(r.Unreachable[0]).Kind)

	assert.Equal(t, "Root type: module; Structure: 2 import(s), 1 function(s)", r.ASTSummary)
	assert.Contains(t, r.CFGSummary, "contains loops; contains conditionals; has exception handling")
}

func TestSummaries_Empty(t *testing.T) {
	assert.Equal(t, "Module with mixed content", SummarizeAST(nil))
	assert.Equal(t, "Root type: module", SummarizeAST(node(ast.KindModule, "")))
	assert.Equal(t, "0 nodes, 0 edges", SummarizeCFG(nil))
	assert.Equal(t, 0, Complexity(nil))

	r := Analyze(nil, nil)
	assert.Empty(t, r.Unreachable)
	assert.Zero(t, r.ASTNodes)
}
