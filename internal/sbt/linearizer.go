// Package sbt renders a tree as a structure-based traversal: a flat,
// bracketed token sequence that keeps the tree shape recoverable.
package sbt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"behave/internal/ast"
)

// Unlimited disables the depth limit.
const Unlimited = -1

// DefaultCompactDepth is the depth limit of the compact form.
const DefaultCompactDepth = 10

type Options struct {
	IncludeValues bool
	IncludeNames  bool
	// MaxDepth stops descent below this depth (root = 0). Unlimited or any
	// negative value disables the limit.
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{IncludeValues: true, IncludeNames: true, MaxDepth: Unlimited}
}

var abbreviations = map[ast.Kind]string{
	ast.KindModule:     "M",
	ast.KindFunction:   "F",
	ast.KindClass:      "C",
	ast.KindAssignment: "A",
	ast.KindIf:         "I",
	ast.KindFor:        "L",
	ast.KindWhile:      "W",
	ast.KindReturn:     "R",
	ast.KindCall:       "X",
	ast.KindImport:     "P",
	ast.KindConstant:   "K",
	ast.KindName:       "N",
	ast.KindAttribute:  "T",
	ast.KindBinaryOp:   "B",
	ast.KindCompare:    "Q",
	ast.KindExpression: "E",
	ast.KindUnknown:    "U",
}

// Linearizer is stateless and safe for concurrent use.
type Linearizer struct {
	opts    Options
	compact bool
}

func NewLinearizer(opts Options) *Linearizer {
	return &Linearizer{opts: opts}
}

// NewCompactLinearizer abbreviates kinds to one letter, drops values and
// keeps names only on definitions, assignments and name references.
func NewCompactLinearizer(maxDepth int) *Linearizer {
	return &Linearizer{
		opts:    Options{IncludeNames: true, MaxDepth: maxDepth},
		compact: true,
	}
}

// Linearize joins the tokens with single spaces.
func (l *Linearizer) Linearize(root *ast.Node) string {
	return strings.Join(l.Tokens(root), " ")
}

func (l *Linearizer) Tokens(root *ast.Node) []string {
	tokens := []string{}
	l.traverse(root, 0, &tokens)
	return tokens
}

func (l *Linearizer) traverse(n *ast.Node, depth int, tokens *[]string) {
	if n == nil {
		return
	}
	if l.opts.MaxDepth >= 0 && depth > l.opts.MaxDepth {
		return
	}

	label := l.label(n.Kind)
	*tokens = append(*tokens, "("+label)

	if l.opts.IncludeNames && n.Name != "" && l.showsName(n.Kind) {
		*tokens = append(*tokens, "["+n.Name+"]")
	}
	if l.opts.IncludeValues && n.Value != nil {
		*tokens = append(*tokens, "="+FormatValue(n.Value))
	}

	for _, c := range n.Children {
		l.traverse(c, depth+1, tokens)
	}
	*tokens = append(*tokens, ")"+label)
}

func (l *Linearizer) label(k ast.Kind) string {
	if !l.compact {
		return string(k)
	}
	if a, ok := abbreviations[k]; ok {
		return a
	}
	return "U"
}

func (l *Linearizer) showsName(k ast.Kind) bool {
	if !l.compact {
		return true
	}
	switch k {
	case ast.KindFunction, ast.KindClass, ast.KindAssignment, ast.KindName:
		return true
	}
	return false
}

// FormatValue renders a scalar for a value token. Strings longer than 20
// characters are cut to 17 plus an ellipsis.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		if utf8.RuneCountInString(t) > 20 {
			return `"` + string([]rune(t)[:17]) + `..."`
		}
		return `"` + t + `"`
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) && math.Abs(t) < 1e16 {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}
