package extractor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SingleObject(t *testing.T) {
	raw := `{"type":"module","children":[{"type":"assignment","name":"X","value":1}]}`

	res, err := Extract(raw, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Empty(t, res.Invalid)

	obj := res.Valid[0]
	assert.Equal(t, "module", obj["type"])
	children, ok := obj["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 1)
	assert.Equal(t, json.Number("1"), children[0].(map[string]any)["value"])
}

func TestExtract_RepairsTrailingComma(t *testing.T) {
	res, err := Extract(`{"type":"A",}`, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, map[string]any{"type": "A"}, res.Valid[0])

	res, err = Extract(`{"type":"module","children":[{"type":"name"},],}`, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Len(t, res.Valid[0]["children"], 1)
}

func TestExtract_StrictFailure(t *testing.T) {
	res, err := Extract(`{invalid json}`, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParsingFailed))
	assert.True(t, IsParsingFailed(err))

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	require.Len(t, extErr.Invalid, 1)
	assert.Equal(t, "{invalid json}", extErr.Invalid[0].Text)
	assert.NotEmpty(t, extErr.Invalid[0].Error)

	require.NotNil(t, res)
	assert.Empty(t, res.Valid)
}

func TestExtract_NonStrictPartitions(t *testing.T) {
	raw := `first {"type":"module"} then {broken} and {"type":"name","name":"x"}`

	res, err := Extract(raw, false)
	require.NoError(t, err)
	require.Len(t, res.Valid, 2)
	assert.Equal(t, "module", res.Valid[0]["type"])
	assert.Equal(t, "x", res.Valid[1]["name"])
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, "{broken}", res.Invalid[0].Text)
}

func TestExtract_NoCandidates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"top-level array", `[1,2,3]`},
		{"plain prose", "the model refused to answer"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.raw, true)
			assert.ErrorIs(t, err, ErrParsingFailed)

			res, err := Extract(tt.raw, false)
			require.NoError(t, err)
			assert.Empty(t, res.Valid)
			assert.Empty(t, res.Invalid)
		})
	}
}

func TestExtract_NestedObjectIsOneCandidate(t *testing.T) {
	raw := `{"type":"module","children":[{"type":"function","children":[{"type":"return"}]}]}`

	res, err := Extract(raw, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
}

func TestExtract_StripsCodeFences(t *testing.T) {
	raw := "Here is the AST:\n```JSON\n{\"type\":\"module\"}\n```\nDone."

	res, err := Extract(raw, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "module", res.Valid[0]["type"])
}

func TestExtract_SingleQuotes(t *testing.T) {
	res, err := Extract(`{'type': 'module', 'name': 'm'}`, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "m", res.Valid[0]["name"])

	// Mixed quoting is not swapped.
	_, err = Extract(`{'type': "module"}`, true)
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestExtract_IgnoresStrayClosingBrace(t *testing.T) {
	res, err := Extract(`} } {"type":"module"}`, true)
	require.NoError(t, err)
	assert.Len(t, res.Valid, 1)
}

func TestExtract_StringAware(t *testing.T) {
	raw := `{"type":"name","name":"}"}`

	res, err := Extract(raw, false)
	require.NoError(t, err)
	assert.Empty(t, res.Valid, "brace inside a literal closes the block early")
	assert.Len(t, res.Invalid, 1)

	res, err = NewExtractor(Options{StringAware: true}).Extract(raw, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "}", res.Valid[0]["name"])

	res, err = NewExtractor(Options{StringAware: true}).Extract(`{"type":"name","name":"a\"{b"}`, true)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, `a"{b`, res.Valid[0]["name"])
}

func TestAttemptRepair(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1,}`, `{"a":1}`},
		{`{"a":[1,2, ]}`, `{"a":[1,2]}`},
		{`{'a':'b'}`, `{"a":"b"}`},
		{`{"a":'b'}`, `{"a":'b'}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, attemptRepair(tt.in))
	}
}
