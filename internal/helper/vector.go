package helper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EncodeVector renders an embedding in the pgvector literal form "[x,y,...]".
func EncodeVector(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVector parses a stored vector literal back into an embedding.
// Anything that is not a non-empty numeric array is an error; callers
// treat that as a malformed stored embedding, not a fatal condition.
func ParseVector(raw string) ([]float32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty embedding")
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, fmt.Errorf("malformed embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return vec, nil
}
