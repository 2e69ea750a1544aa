package graph

func (g *ControlFlowGraph) KindCounts() map[NodeKind]int {
	counts := make(map[NodeKind]int)
	if g == nil {
		return counts
	}
	for _, n := range g.Nodes {
		counts[n.Kind]++
	}
	return counts
}

func (g *ControlFlowGraph) EdgeKindCounts() map[EdgeKind]int {
	counts := make(map[EdgeKind]int)
	if g == nil {
		return counts
	}
	for _, e := range g.Edges {
		kind := e.Kind
		if kind == "" {
			kind = EdgeNormal
		}
		counts[kind]++
	}
	return counts
}
