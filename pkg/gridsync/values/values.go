// Package values converts between the display strings held by the grid and the typed
// scalars sent to the backend.
package values

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericPattern matches an optional leading minus, digits, and an optional decimal part.
var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Kind discriminates the variants of a Scalar.
type Kind int

const (
	// KindEmpty is a blank cell.
	KindEmpty Kind = iota
	// KindNumber is an integer or decimal value.
	KindNumber
	// KindText is free-form text.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Scalar is a typed cell value: Empty, Number or Text.
type Scalar struct {
	kind Kind
	num  float64
	text string
}

// Empty returns the blank scalar.
func Empty() Scalar { return Scalar{} }

// Number returns a numeric scalar.
func Number(f float64) Scalar { return Scalar{kind: KindNumber, num: f} }

// Text returns a text scalar. An empty string yields Empty.
func Text(s string) Scalar {
	if s == "" {
		return Scalar{}
	}
	return Scalar{kind: KindText, text: s}
}

// Kind reports which variant s holds.
func (s Scalar) Kind() Kind { return s.kind }

// Float returns the numeric value and whether s is a Number.
func (s Scalar) Float() (float64, bool) { return s.num, s.kind == KindNumber }

// String returns the display form of s.
func (s Scalar) String() string {
	switch s.kind {
	case KindNumber:
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	case KindText:
		return s.text
	}
	return ""
}

// Interface returns s as a plain Go value: "" for Empty, float64 for Number, string for Text.
func (s Scalar) Interface() any {
	if s.kind == KindNumber {
		return s.num
	}
	return s.String()
}

// MarshalJSON encodes Empty as "", Number as a JSON number and Text as a JSON string.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.kind == KindNumber {
		return []byte(strconv.FormatFloat(s.num, 'f', -1, 64)), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a JSON number, string or null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = Empty()
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return err
		}
		*s = Number(f)
	case string:
		*s = Text(t)
	default:
		return fmt.Errorf("values: cannot decode %s into a scalar", string(data))
	}
	return nil
}

// Normalize maps an inbound value to its display string. Nil becomes "".
func Normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case Scalar:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// Coerce re-interprets a display string for transmission. Whitespace is trimmed only for
// the numeric test; non-numeric text is kept exactly as typed.
func Coerce(s string) Scalar {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	if numericPattern.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Number(f)
		}
	}
	return Text(s)
}

// CoerceRow applies Coerce to every cell of row.
func CoerceRow(row []string) []Scalar {
	out := make([]Scalar, len(row))
	for i, cell := range row {
		out[i] = Coerce(cell)
	}
	return out
}
