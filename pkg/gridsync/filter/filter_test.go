package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"Item", "Qty", "Status Message"}

var rows = [][]string{
	{"apples", "3", "ok"},
	{"pears", "12", "low stock"},
	{"plums", "", "ok"},
}

func TestSelect(t *testing.T) {
	tests := []struct {
		expression string
		expected   []int
	}{
		{`Item == "pears"`, []int{1}},
		{`Qty != nil && Qty > 5`, []int{1}},
		{`Item != "plums" && Qty >= 3 && Qty < 12.5`, []int{0, 1}},
		{`Item != "plums" && Qty * 2 > 10`, []int{1}},
		{`col("Status Message") == "ok"`, []int{0, 2}},
		{`row >= 2`, []int{1, 2}},
		{`Qty == nil`, []int{2}},
		{`Item startsWith "p"`, []int{1, 2}},
		{`false`, []int{}},
	}

	for _, tt := range tests {
		f, err := Compile(tt.expression, columns)
		require.NoError(t, err, tt.expression)
		keep, err := f.Select(rows)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.expected, keep, tt.expression)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(`Item ==`, columns)
	assert.Error(t, err)

	_, err = Compile(`"not a bool"`, columns)
	assert.Error(t, err)
}
