package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1, 3.5, 0}
	parsed, err := ParseVector(EncodeVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, parsed)
}

func TestEncodeVectorFormat(t *testing.T) {
	assert.Equal(t, "[1,2.5,-3]", EncodeVector([]float32{1, 2.5, -3}))
	assert.Equal(t, "[]", EncodeVector(nil))
}

func TestParseVectorMalformed(t *testing.T) {
	for _, raw := range []string{"", "  ", "not-an-array", `{"a":1}`, `"text"`, "[]", `[1,"x"]`} {
		_, err := ParseVector(raw)
		assert.Error(t, err, "raw %q must not parse", raw)
	}
}

func TestParseVectorWithWhitespace(t *testing.T) {
	parsed, err := ParseVector("  [0.1, 0.2, 0.3]\n")
	require.NoError(t, err)
	assert.Len(t, parsed, 3)
}

func TestGenerateUUID(t *testing.T) {
	a, err := GenerateUUID()
	require.NoError(t, err)
	b, err := GenerateUUID()
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
