package dataflow

import (
	"fmt"

	"behave/internal/ast"
)

// builtins are identifiers never reported as state reads.
var builtins = map[string]struct{}{
	"True": {}, "False": {}, "None": {},
	"print": {}, "len": {}, "range": {},
	"str": {}, "int": {}, "float": {},
	"list": {}, "dict": {}, "set": {}, "tuple": {}, "type": {},
	"isinstance": {}, "hasattr": {}, "getattr": {}, "setattr": {},
}

// Analyzer extracts reads, writes, constants, imports, calls, type references
// and global references from a canonical tree. It keeps no state between
// calls and is safe for concurrent use.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(root *ast.Node) *Summary {
	st := &state{
		reads:      stringSet{},
		writes:     stringSet{},
		constants:  []any{},
		imports:    stringSet{},
		calls:      stringSet{},
		types:      stringSet{},
		globalRefs: stringSet{},
	}
	st.visit(root)

	return &Summary{
		Reads:      st.reads.sorted(),
		Writes:     st.writes.sorted(),
		Constants:  st.constants,
		Imports:    st.imports.sorted(),
		Calls:      st.calls.sorted(),
		Types:      st.types.sorted(),
		GlobalRefs: st.globalRefs.sorted(),
	}
}

type state struct {
	reads      stringSet
	writes     stringSet
	constants  []any
	imports    stringSet
	calls      stringSet
	types      stringSet
	globalRefs stringSet

	inAssignment bool
	target       string
}

// visit applies the kind-specific rule, then descends into every child.
// Assignments descend themselves so the children see the assignment context.
func (s *state) visit(n *ast.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case ast.KindImport:
		s.visitImport(n)
	case ast.KindAssignment:
		s.visitAssignment(n)
		return
	case ast.KindName:
		s.visitName(n)
	case ast.KindCall:
		s.visitCall(n)
	case ast.KindFunction:
		s.visitFunction(n)
	case ast.KindClass:
		s.types.add(n.Name)
	case ast.KindAttribute:
		s.visitAttribute(n)
	}

	for _, c := range n.Children {
		s.visit(c)
	}
}

func (s *state) visitImport(n *ast.Node) {
	s.imports.add(n.Name)
	if mod, ok := n.Metadata["module"]; ok && mod != nil {
		s.imports.add(text(mod))
	}
	switch names := n.Metadata["names"].(type) {
	case []any:
		for _, name := range names {
			if name != nil {
				s.imports.add(text(name))
			}
		}
	case string:
		s.imports.add(names)
	}
}

func (s *state) visitAssignment(n *ast.Node) {
	target := n.Name
	if target != "" {
		s.writes.add(target)
		if ast.IsUpper(target) {
			if v, ok := constantValue(n); ok {
				s.constants = append(s.constants, v)
			}
			s.globalRefs.add(target)
		}
	}
	if ann := n.Metadata["type_annotation"]; truthy(ann) {
		s.types.add(text(ann))
	}

	prevIn, prevTarget := s.inAssignment, s.target
	s.inAssignment, s.target = true, target
	for _, c := range n.Children {
		s.visit(c)
	}
	s.inAssignment, s.target = prevIn, prevTarget
}

// constantValue picks the assigned value: the node's own value, else the
// value of its first constant child.
func constantValue(n *ast.Node) (any, bool) {
	if n.Value != nil {
		return n.Value, true
	}
	for _, c := range n.Children {
		if c.Kind == ast.KindConstant {
			return c.Value, true
		}
	}
	return nil, false
}

func (s *state) visitName(n *ast.Node) {
	name := n.Name
	if name == "" && n.Value != nil {
		name = fmt.Sprint(n.Value)
	}
	if name == "" {
		return
	}
	if _, ok := builtins[name]; ok {
		return
	}

	if !s.inAssignment || name != s.target {
		s.reads.add(name)
	}
	if ast.IsUpper(name) {
		s.globalRefs.add(name)
	}
}

func (s *state) visitCall(n *ast.Node) {
	if n.Name != "" {
		s.calls.add(n.Name)
	} else if fn := n.Metadata["function"]; truthy(fn) {
		s.calls.add(text(fn))
	}
	for _, c := range n.Children {
		if c.Kind == ast.KindAttribute {
			s.calls.add(c.Name)
		}
	}
}

func (s *state) visitFunction(n *ast.Node) {
	if rt := n.Metadata["return_type"]; truthy(rt) {
		s.types.add(text(rt))
	}
	params, _ := n.Metadata["parameters"].([]any)
	for _, p := range params {
		param, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if typ := param["type"]; truthy(typ) {
			s.types.add(text(typ))
		}
	}
}

// visitAttribute records obj.attr accesses, as writes inside an assignment.
func (s *state) visitAttribute(n *ast.Node) {
	if n.Name == "" {
		return
	}
	obj := n.Metadata["object"]
	if !truthy(obj) {
		return
	}
	full := text(obj) + "." + n.Name
	if s.inAssignment {
		s.writes.add(full)
	} else {
		s.reads.add(full)
	}
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
