package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFields_Unique(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    []string
	}{
		{"simple arithmetic", "A+B*C", []string{"A", "B", "C"}},
		{"duplicates collapse", "A+A*B", []string{"A", "B"}},
		{"numeric literals dropped", "A*0.5+100-B", []string{"A", "B"}},
		{"quoted strings dropped", `A=="某行业"`, []string{"A"}},
		{"reserved words dropped", "sum+A+abs+true", []string{"A"}},
		{"shift suffix folds to origin", "A^1+A", []string{"A"}},
		{"forward shift protected", "A^-1+B~-2", []string{"A", "B"}},
		{"year end shift", "A°0+A°1", []string{"A"}},
		{"executable suffix folds to origin", "A.isna()|B", []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, ExtractFields(tt.formula, true))
		})
	}
}

func TestExtractFields_Ordered(t *testing.T) {
	// Without unique, retained tokens keep original order and duplicates.
	got := ExtractFields("A+B+A^1", false)
	assert.Equal(t, []string{"A", "B", "A^1"}, got)
}

func TestExtractFields_ExecutableSuffixMarked(t *testing.T) {
	// A dotted token not already ending in ")" gets a call suffix.
	got := ExtractFields("A.isin+B", false)
	assert.Equal(t, []string{"A.isin()", "B"}, got)
}

func TestFields_UsesSynthesizedFormula(t *testing.T) {
	// Stats formulas rebuild the field-bearing string from stats field,
	// group keys and condition.
	got, err := Fields("sum,amount;tyear,crmcode;amount>0", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"amount", "tyear", "crmcode"}, got)

	// Free-param judgements rebuild target+dim1*dim2.
	got, err = Fields("target,上限;dim1,dim2", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"target", "dim1", "dim2"}, got)
}

func TestFields_CleansFirst(t *testing.T) {
	got, err := Fields("Ａ＋Ｂ×Ｃ", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, got)
}

func TestFields_PropagatesParseError(t *testing.T) {
	_, err := Fields("A<>B", true)
	assert.ErrorIs(t, err, ErrComparisonForm)
}

func TestIsNumericToken(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"123", true},
		{"1.5", true},
		{"-2", true},
		{"1,000", false},
		{"A1", false},
		{"", false},
		{".", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isNumericToken(tt.tok), "token %q", tt.tok)
	}
}
