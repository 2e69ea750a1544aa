package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Options tunes candidate scanning.
type Options struct {
	// StringAware makes the brace scanner skip braces inside double-quoted
	// string literals. Off by default, so every brace counts.
	StringAware bool
}

// Extractor recovers JSON objects embedded in free-form model output.
type Extractor struct {
	opts Options
}

// NewExtractor creates an extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// InvalidCandidate is a brace-delimited span that could not be used as a tree.
type InvalidCandidate struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Result partitions the candidates found in one input.
type Result struct {
	Valid   []map[string]any   `json:"valid"`
	Invalid []InvalidCandidate `json:"invalid"`
}

// Extract runs an extractor with default options.
func Extract(raw string, strict bool) (*Result, error) {
	return NewExtractor(Options{}).Extract(raw, strict)
}

// Extract scans raw for top-level {...} blocks, parses each with one bounded
// repair attempt and partitions them into valid objects and invalid spans.
// In strict mode an input without any valid object yields an *ExtractionError.
func (e *Extractor) Extract(raw string, strict bool) (*Result, error) {
	result := &Result{
		Valid:   []map[string]any{},
		Invalid: []InvalidCandidate{},
	}

	text := normalizeText(raw)
	for _, c := range scanBlocks(text, e.opts.StringAware) {
		block := text[c.start:c.end]

		parsed, err := parseWithRecovery(block)
		if err != nil {
			result.Invalid = append(result.Invalid, InvalidCandidate{Text: block, Error: err.Error()})
			continue
		}

		obj, ok := parsed.(map[string]any)
		if !ok {
			result.Invalid = append(result.Invalid, InvalidCandidate{Text: block, Error: "top-level JSON is not an object"})
			continue
		}
		result.Valid = append(result.Valid, obj)
	}

	if strict && len(result.Valid) == 0 {
		return result, &ExtractionError{Invalid: result.Invalid}
	}
	return result, nil
}

// parseWithRecovery parses block directly and, on failure, once more after repair.
func parseWithRecovery(block string) (any, error) {
	v, err := decodeStrict(block)
	if err == nil {
		return v, nil
	}
	repaired := attemptRepair(block)
	if repaired == block {
		return nil, err
	}
	return decodeStrict(repaired)
}

// decodeStrict decodes exactly one JSON value, keeping numbers as json.Number.
func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid character after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}
