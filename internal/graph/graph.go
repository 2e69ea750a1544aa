package graph

import "sort"

// ControlFlowGraph is the immutable result of one Build.
type ControlFlowGraph struct {
	Nodes []*Node
	Edges []Edge
	Entry string
	Exits []string

	// id -> position in Nodes
	index map[string]int
}

func newControlFlowGraph(nodes []*Node, edges []Edge, entry string, exits []string) *ControlFlowGraph {
	g := &ControlFlowGraph{
		Nodes: nodes,
		Edges: edges,
		Entry: entry,
		Exits: exits,
		index: make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := g.index[n.ID]; !dup {
			g.index[n.ID] = i
		}
	}
	return g
}

// Node returns the node with the given id, or nil.
func (g *ControlFlowGraph) Node(id string) *Node {
	if g == nil {
		return nil
	}
	if i, ok := g.index[id]; ok {
		return g.Nodes[i]
	}
	return nil
}

// Successors returns the targets of all edges leaving id, in edge order.
func (g *ControlFlowGraph) Successors(id string) []*Node {
	var out []*Node
	for _, e := range g.Edges {
		if e.Source == id {
			if n := g.Node(e.Target); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// Predecessors returns the sources of all edges entering id, in edge order.
func (g *ControlFlowGraph) Predecessors(id string) []*Node {
	var out []*Node
	for _, e := range g.Edges {
		if e.Target == id {
			if n := g.Node(e.Source); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// OutEdges returns the edges leaving id.
func (g *ControlFlowGraph) OutEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Reachable returns the set of node ids reachable from the entry. Edges for
// which follow returns false are not traversed; a nil follow traverses all.
func (g *ControlFlowGraph) Reachable(follow func(Edge) bool) map[string]bool {
	seen := make(map[string]bool, len(g.Nodes))
	if g.Node(g.Entry) == nil {
		return seen
	}

	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if follow == nil || follow(e) {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}

	stack := []string{g.Entry}
	seen[g.Entry] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[id] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

// IDs returns every node id in sorted order.
func (g *ControlFlowGraph) IDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

// NotException filters out exception edges in Reachable.
func NotException(e Edge) bool {
	return e.Kind != EdgeException
}
