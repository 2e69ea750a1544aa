package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Node is one vertex of the canonical behavioral AST.
// A materialized tree is never mutated; concurrent readers need no locking.
type Node struct {
	Kind     Kind
	Name     string
	Value    any
	Children []*Node
	Metadata map[string]any
	Line     *int
	Column   *int
}

// Int returns a pointer to v, for filling Line and Column.
func Int(v int) *int {
	return &v
}

// FromJSON materializes a decoded JSON object into a Node tree.
// It never fails: unknown kinds map to KindUnknown and non-object children are skipped.
func FromJSON(obj map[string]any) *Node {
	if obj == nil {
		return &Node{Kind: KindUnknown, Metadata: map[string]any{}}
	}

	n := &Node{
		Kind:     ParseKind(KindField(obj)),
		Metadata: map[string]any{},
	}

	if raw, ok := obj["name"]; ok && raw != nil {
		if s, ok := raw.(string); ok {
			n.Name = s
		} else {
			n.Name = fmt.Sprint(Normalize(raw))
		}
	}
	if raw, ok := obj["value"]; ok && raw != nil {
		n.Value = Normalize(raw)
	}
	if meta, ok := obj["metadata"].(map[string]any); ok {
		for k, v := range meta {
			n.Metadata[k] = Normalize(v)
		}
	}
	n.Line = intField(obj["line"])
	n.Column = intField(obj["col"])
	if n.Column == nil {
		n.Column = intField(obj["column"])
	}

	if children, ok := obj["children"].([]any); ok {
		n.Children = make([]*Node, 0, len(children))
		for _, c := range children {
			if child, ok := c.(map[string]any); ok {
				n.Children = append(n.Children, FromJSON(child))
			}
		}
	}
	return n
}

// KindField returns the serialized kind of a JSON node, accepting both
// "type" and "kind" keys. It returns "" when neither is a string.
func KindField(obj map[string]any) string {
	if s, ok := obj["type"].(string); ok {
		return s
	}
	if s, ok := obj["kind"].(string); ok {
		return s
	}
	return ""
}

// Normalize converts json.Number values produced by a UseNumber decoder into
// int64 or float64, recursing through lists and objects.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Normalize(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

func intField(v any) *int {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(int(i))
		}
	case float64:
		if t == math.Trunc(t) {
			return Int(int(t))
		}
	case int:
		return Int(t)
	case int64:
		return Int(int(t))
	}
	return nil
}

type wireNode struct {
	Type     string         `json:"type"`
	Name     string         `json:"name,omitempty"`
	Value    any            `json:"value,omitempty"`
	Children []*Node        `json:"children,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Line     *int           `json:"line,omitempty"`
	Col      *int           `json:"col,omitempty"`
}

// MarshalJSON renders the node as {type, name?, value?, children?, metadata?, line?, col?}.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		Type:     string(n.Kind),
		Name:     n.Name,
		Value:    n.Value,
		Children: n.Children,
		Metadata: n.Metadata,
		Line:     n.Line,
		Col:      n.Column,
	})
}

// UnmarshalJSON materializes a serialized node through FromJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("failed to decode ast node: %w", err)
	}
	*n = *FromJSON(obj)
	return nil
}

// Preorder returns every node of the tree in depth-first, source order.
func Preorder(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node, _ int) {
		out = append(out, n)
	})
	return out
}

// Index maps each node of the tree to its preorder position.
func Index(root *Node) map[*Node]int {
	idx := make(map[*Node]int)
	for i, n := range Preorder(root) {
		idx[n] = i
	}
	return idx
}

// Walk visits every node depth-first with its depth (root = 0).
func Walk(root *Node, fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if n == nil {
			return
		}
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
}

// Size counts the nodes of the tree.
func (n *Node) Size() int {
	count := 0
	Walk(n, func(*Node, int) { count++ })
	return count
}
