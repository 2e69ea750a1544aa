package graph

import (
	"errors"
	"fmt"
)

// Validate checks graph well-formedness: ids are unique, exactly one entry
// node exists, at least one exit exists with no outgoing normal-flow edges,
// every edge endpoint is a known node and every node is reachable from the
// entry.
func (g *ControlFlowGraph) Validate() error {
	if g == nil {
		return errors.New("graph is nil")
	}

	var errs []error

	ids := make(map[string]bool, len(g.Nodes))
	entries := 0
	for _, n := range g.Nodes {
		if ids[n.ID] {
			errs = append(errs, fmt.Errorf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = true
		if n.IsEntry {
			entries++
		}
	}

	if entries != 1 {
		errs = append(errs, fmt.Errorf("expected exactly one entry node, found %d", entries))
	}
	if n := g.Node(g.Entry); n == nil || !n.IsEntry {
		errs = append(errs, fmt.Errorf("entry %q is not an entry node", g.Entry))
	}

	for _, e := range g.Edges {
		if !ids[e.Source] {
			errs = append(errs, fmt.Errorf("edge %s->%s: unknown source", e.Source, e.Target))
		}
		if !ids[e.Target] {
			errs = append(errs, fmt.Errorf("edge %s->%s: unknown target", e.Source, e.Target))
		}
	}

	if len(g.Exits) == 0 {
		errs = append(errs, errors.New("graph has no exit node"))
	}
	for _, id := range g.Exits {
		if !ids[id] {
			errs = append(errs, fmt.Errorf("exit %q is not a node", id))
			continue
		}
		for _, e := range g.OutEdges(id) {
			if e.Kind != EdgeException {
				errs = append(errs, fmt.Errorf("exit %q has outgoing %s edge to %s", id, e.Kind, e.Target))
			}
		}
	}

	reached := g.Reachable(nil)
	for _, n := range g.Nodes {
		if !reached[n.ID] {
			errs = append(errs, fmt.Errorf("node %s (%s) is unreachable from entry", n.ID, n.Kind))
		}
	}

	return errors.Join(errs...)
}
