package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, ""},
		{"abc", "abc"},
		{"", ""},
		{42.0, "42"},
		{7.5, "7.5"},
		{-3, "-3"},
		{int64(9), "9"},
		{json.Number("12.50"), "12.50"},
		{true, "true"},
		{[]any{"a", 1.0}, `["a",1]`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), "Normalize(%#v)", tt.input)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		input    string
		expected Scalar
	}{
		{"", Empty()},
		{"   ", Empty()},
		{"42", Number(42)},
		{"  7.5  ", Number(7.5)},
		{"-100", Number(-100)},
		{"-0.25", Number(-0.25)},
		{"abc", Text("abc")},
		{"  abc ", Text("  abc ")},
		{"1.", Text("1.")},
		{".5", Text(".5")},
		{"1e3", Text("1e3")},
		{"+4", Text("+4")},
		{"1,000", Text("1,000")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Coerce(tt.input), "Coerce(%q)", tt.input)
	}
}

func TestCoerceNormalizeRoundTrip(t *testing.T) {
	n, ok := Coerce(Normalize(42)).Float()
	require.True(t, ok)
	assert.Equal(t, 42.0, n)

	assert.Equal(t, Text("abc"), Coerce(Normalize("abc")))
	assert.Equal(t, KindEmpty, Coerce(Normalize(nil)).Kind())
}

func TestScalarJSON(t *testing.T) {
	row := []Scalar{Empty(), Number(42), Number(7.5), Text("abc")}
	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `["", 42, 7.5, "abc"]`, string(b))

	var back []Scalar
	require.NoError(t, json.Unmarshal([]byte(`["", 42, 7.5, "abc", null]`), &back))
	assert.Equal(t, append(row, Empty()), back)
}

func TestCoerceRow(t *testing.T) {
	got := CoerceRow([]string{"1", "x", ""})
	assert.Equal(t, []Scalar{Number(1), Text("x"), Empty()}, got)
}
