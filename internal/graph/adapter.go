package graph

import (
	"encoding/json"
	"fmt"

	"behave/internal/ast"
)

// SourceNode resolves the AST node a CFG node was derived from. root must be
// the tree the graph was built from.
func (g *ControlFlowGraph) SourceNode(root *ast.Node, id string) *ast.Node {
	n := g.Node(id)
	if n == nil || n.SourceIndex < 0 {
		return nil
	}
	order := ast.Preorder(root)
	if n.SourceIndex >= len(order) {
		return nil
	}
	return order[n.SourceIndex]
}

type wireEdge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Condition *string  `json:"condition"`
	Kind      EdgeKind `json:"type"`
}

// MarshalJSON renders the edge with a null condition when none is set.
func (e Edge) MarshalJSON() ([]byte, error) {
	w := wireEdge{Source: e.Source, Target: e.Target, Kind: e.Kind}
	if w.Kind == "" {
		w.Kind = EdgeNormal
	}
	if e.Condition != "" {
		cond := e.Condition
		w.Condition = &cond
	}
	return json.Marshal(w)
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	var w wireEdge
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode cfg edge: %w", err)
	}
	*e = Edge{Source: w.Source, Target: w.Target, Kind: w.Kind}
	if w.Condition != nil {
		e.Condition = *w.Condition
	}
	return nil
}

type wireGraph struct {
	Nodes []*Node  `json:"nodes"`
	Edges []Edge   `json:"edges"`
	Entry string   `json:"entry"`
	Exits []string `json:"exits"`
}

// MarshalJSON renders {nodes, edges, entry, exits}.
func (g *ControlFlowGraph) MarshalJSON() ([]byte, error) {
	w := wireGraph{Nodes: g.Nodes, Edges: g.Edges, Entry: g.Entry, Exits: g.Exits}
	if w.Nodes == nil {
		w.Nodes = []*Node{}
	}
	if w.Edges == nil {
		w.Edges = []Edge{}
	}
	if w.Exits == nil {
		w.Exits = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a stored graph. Source indexes are not serialized
// and come back as -1.
func (g *ControlFlowGraph) UnmarshalJSON(data []byte) error {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode cfg: %w", err)
	}
	nodes := make([]*Node, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if n == nil {
			continue
		}
		n.SourceIndex = -1
		nodes = append(nodes, n)
	}
	*g = *newControlFlowGraph(nodes, w.Edges, w.Entry, w.Exits)
	return nil
}
