package sbt

import (
	"testing"

	"behave/internal/ast"

	"github.com/stretchr/testify/assert"
)

func sample() *ast.Node {
	return &ast.Node{Kind: ast.KindModule, Children: []*ast.Node{
		{Kind: ast.KindAssignment, Name: "X", Value: int64(1)},
		{Kind: ast.KindFunction, Name: "apply", Children: []*ast.Node{
			{Kind: ast.KindCall, Name: "emit", Children: []*ast.Node{
				{Kind: ast.KindConstant, Value: "a fairly long string literal"},
			}},
			{Kind: ast.KindReturn},
		}},
	}}
}

func TestLinearize_Standard(t *testing.T) {
	got := NewLinearizer(DefaultOptions()).Linearize(sample())

	want := `(module (assignment [X] =1 )assignment (function [apply] (call [emit] (constant ="a fairly long str..." )constant )call (return )return )function )module`
	assert.Equal(t, want, got)
}

func TestLinearize_Compact(t *testing.T) {
	got := NewCompactLinearizer(DefaultCompactDepth).Linearize(sample())

	want := `(M (A [X] )A (F [apply] (X (K )K )X (R )R )F )M`
	assert.Equal(t, want, got)
}

func TestLinearize_CompactUnmappedKinds(t *testing.T) {
	root := &ast.Node{Kind: ast.KindTry, Children: []*ast.Node{{Kind: ast.KindRaise, Name: "E"}}}
	assert.Equal(t, []string{"(U", "(U", ")U", ")U"}, NewCompactLinearizer(Unlimited).Tokens(root))
}

func TestLinearize_MaxDepth(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 1

	got := NewLinearizer(opts).Linearize(sample())
	assert.Equal(t, `(module (assignment [X] =1 )assignment (function [apply] )function )module`, got)

	opts.MaxDepth = 0
	assert.Equal(t, []string{"(module", ")module"}, NewLinearizer(opts).Tokens(sample()))
}

func TestLinearize_TogglesNamesAndValues(t *testing.T) {
	opts := Options{MaxDepth: Unlimited}
	root := &ast.Node{Kind: ast.KindAssignment, Name: "x", Value: true}
	assert.Equal(t, "(assignment )assignment", NewLinearizer(opts).Linearize(root))
}

func TestLinearize_Deterministic(t *testing.T) {
	l := NewLinearizer(DefaultOptions())
	assert.Equal(t, l.Linearize(sample()), l.Linearize(sample()))
	assert.Empty(t, l.Tokens(nil))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{2.0, "2.0"},
		{"short", `"short"`},
		{"exactly twenty chars", `"exactly twenty chars"`},
		{"twenty-one characters", `"twenty-one charac..."`},
		{[]any{1}, "list"},
		{map[string]any{}, "dict"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
