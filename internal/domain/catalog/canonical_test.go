package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"red", "Red"},
		{"  RED  ", "Red"},
		{"dEEP blue", "Deep blue"},
		{"30ML", "30ml"},
		{"", ""},
		{"   ", ""},
		{"éclat", "Éclat"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), "input %q", tt.in)
	}
}

func TestValidateNewValuesCanonicalizes(t *testing.T) {
	clean, errs := ValidateNewValues(nil, []string{" red ", "BLUE"})

	require.Nil(t, errs)
	assert.Equal(t, []string{"Red", "Blue"}, clean)
}

func TestValidateNewValuesRejectsEmptyBatch(t *testing.T) {
	clean, errs := ValidateNewValues(nil, nil)

	assert.Nil(t, clean)
	require.Contains(t, errs, "values")
}

func TestValidateNewValuesFlagsPerEntry(t *testing.T) {
	existing := []AttributeValue{{ID: 1, Name: "Red"}}

	clean, errs := ValidateNewValues(existing, []string{"  ", "red", "Blue", "blue "})

	assert.Nil(t, clean)
	require.Len(t, errs, 3)
	assert.Contains(t, errs["values[0]"], "empty")
	assert.Contains(t, errs["values[1]"], "already exists")
	assert.Contains(t, errs["values[3]"], "more than once")
	assert.NotContains(t, errs, "values[2]")
}
