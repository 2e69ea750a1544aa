package dataflow

import "sort"

// Summary is the data-flow view of one tree. Every set is sorted; Constants
// keeps first-seen order.
type Summary struct {
	Reads      []string `json:"state_reads"`
	Writes     []string `json:"state_writes"`
	Constants  []any    `json:"constants"`
	Imports    []string `json:"imports"`
	Calls      []string `json:"function_calls"`
	Types      []string `json:"type_definitions"`
	GlobalRefs []string `json:"global_refs"`
}

// Empty returns a summary with every collection allocated.
func Empty() *Summary {
	return &Summary{
		Reads:      []string{},
		Writes:     []string{},
		Constants:  []any{},
		Imports:    []string{},
		Calls:      []string{},
		Types:      []string{},
		GlobalRefs: []string{},
	}
}

// ReadWrite returns the names that are both read and written, sorted.
func (s *Summary) ReadWrite() []string {
	writes := make(map[string]bool, len(s.Writes))
	for _, w := range s.Writes {
		writes[w] = true
	}
	out := []string{}
	for _, r := range s.Reads {
		if writes[r] {
			out = append(out, r)
		}
	}
	return out
}

type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
