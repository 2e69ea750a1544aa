package validator

import (
	"fmt"

	"behave/internal/ast"
)

// Validator checks candidate trees decoded from model output.
// It holds no mutable state and is safe for concurrent use.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports whether obj is a structurally well-formed tree. Every node
// needs a string "type" (or "kind") field, and "children", when present, must
// be an array of objects. Shapes of the optional fields are only checked by
// ValidateCompleteness.
func (v *Validator) Validate(obj map[string]any) (bool, []string) {
	if obj == nil {
		return false, []string{"$: tree is empty"}
	}

	var errs []string
	var check func(node map[string]any, path string)
	check = func(node map[string]any, path string) {
		if ast.KindField(node) == "" {
			if _, ok := node["type"]; ok {
				errs = append(errs, fmt.Sprintf("%s: field 'type' must be a string", path))
			} else {
				errs = append(errs, fmt.Sprintf("%s: missing required field 'type'", path))
			}
		}

		raw, ok := node["children"]
		if !ok || raw == nil {
			return
		}
		children, ok := raw.([]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: field 'children' must be a list, got %s", path, jsonTypeName(raw)))
			return
		}
		for i, c := range children {
			childPath := fmt.Sprintf("%s.children[%d]", path, i)
			child, ok := c.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: child must be an object, got %s", childPath, jsonTypeName(c)))
				continue
			}
			check(child, childPath)
		}
	}
	check(obj, "$")
	return len(errs) == 0, errs
}

// Check is Validate in error form, returning a *StructuralError on failure.
func (v *Validator) Check(obj map[string]any) error {
	if ok, errs := v.Validate(obj); !ok {
		return &StructuralError{Messages: errs}
	}
	return nil
}

// ValidateCompleteness returns advisory warnings for trees that are missing
// whole categories of elements or whose optional fields do not match the
// embedded node schema. Warnings never make a tree invalid.
func (v *Validator) ValidateCompleteness(obj map[string]any) (bool, []string) {
	var warnings []string

	children, _ := obj["children"].([]any)
	if len(children) == 0 {
		warnings = append(warnings, "AST has no children")
	}

	stats := v.ExtractStatistics(obj)
	if stats["imports"] == 0 {
		warnings = append(warnings, "no import statements found")
	}
	if stats["assignments"] == 0 {
		warnings = append(warnings, "no assignments found")
	}
	if stats["functions"]+stats["classes"] == 0 {
		warnings = append(warnings, "no function or class definitions found")
	}
	if stats["control_flow"] == 0 {
		warnings = append(warnings, "no control flow structures found")
	}
	for _, msg := range schemaMessages(obj) {
		warnings = append(warnings, "malformed field "+msg)
	}
	return len(warnings) == 0, warnings
}

// ExtractStatistics counts nodes per category.
func (v *Validator) ExtractStatistics(obj map[string]any) map[string]int {
	c := Collect(obj)
	stats := map[string]int{
		"total_nodes":      0,
		"max_depth":        0,
		"imports":          c.Imports,
		"assignments":      c.Assignments,
		"constants":        c.Constants,
		"functions":        c.Functions,
		"classes":          c.Classes,
		"control_flow":     c.ControlFlow,
		"calls":            0,
		"type_annotations": c.Types,
		"unknown_kinds":    0,
	}

	walkJSON(obj, func(node map[string]any, depth int) {
		stats["total_nodes"]++
		if depth > stats["max_depth"] {
			stats["max_depth"] = depth
		}
		kind := ast.KindField(node)
		if !ast.Known(kind) {
			stats["unknown_kinds"]++
		}
		if ast.ParseKind(kind) == ast.KindCall {
			stats["calls"]++
		}
	})
	return stats
}

// walkJSON visits every object node depth-first, skipping non-object children.
func walkJSON(obj map[string]any, fn func(node map[string]any, depth int)) {
	var visit func(node map[string]any, depth int)
	visit = func(node map[string]any, depth int) {
		fn(node, depth)
		children, _ := node["children"].([]any)
		for _, c := range children {
			if child, ok := c.(map[string]any); ok {
				visit(child, depth+1)
			}
		}
	}
	if obj != nil {
		visit(obj, 0)
	}
}

func isConstantName(node map[string]any) bool {
	name, _ := node["name"].(string)
	return ast.IsUpper(name)
}

func hasTypeAnnotation(node map[string]any) bool {
	meta, _ := node["metadata"].(map[string]any)
	return truthy(meta["type_annotation"]) || truthy(meta["return_type"])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case float64:
		return t != 0
	case int64:
		return t != 0
	case int:
		return t != 0
	default:
		if n, ok := v.(interface{ String() string }); ok {
			return n.String() != "0"
		}
		return true
	}
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "number"
	}
}
