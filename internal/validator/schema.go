package validator

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const astSchemaURL = "https://behave.local/schemas/ast.schema.json"

//go:embed ast.schema.json
var astSchemaSource string

var (
	astSchemaOnce sync.Once
	astSchema     *jsonschema.Schema
	astSchemaErr  error
)

func loadASTSchema() (*jsonschema.Schema, error) {
	astSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(astSchemaURL, strings.NewReader(astSchemaSource)); err != nil {
			astSchemaErr = fmt.Errorf("failed to add ast schema: %w", err)
			return
		}
		compiled, err := compiler.Compile(astSchemaURL)
		if err != nil {
			astSchemaErr = fmt.Errorf("failed to compile ast schema: %w", err)
			return
		}
		astSchema = compiled
	})
	return astSchema, astSchemaErr
}

// schemaMessages validates obj against the embedded schema and flattens the
// leaf causes into one message per violation.
func schemaMessages(obj map[string]any) []string {
	schema, err := loadASTSchema()
	if err != nil {
		return []string{err.Error()}
	}

	err = schema.Validate(obj)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	seen := make(map[string]bool)
	var out []string
	var collect func(e *jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msg := fmt.Sprintf("%s: %s", loc, e.Message)
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
			return
		}
		for _, c := range e.Causes {
			collect(c)
		}
	}
	collect(ve)
	sort.Strings(out)
	return out
}
