package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredAnswer_MarkdownFence(t *testing.T) {
	raw := "```json\n{\n\t\"answer\": \"Nepal is a federal republic.\",\n\t\"confidence\": \"0.9\"\n}\n```"

	parsed, err := ParseStructuredAnswer(raw)

	require.NoError(t, err)
	assert.Equal(t, "Nepal is a federal republic.", parsed.Answer)
	assert.Equal(t, 0.9, parsed.Confidence)
}

func TestParseStructuredAnswer_NumericConfidence(t *testing.T) {
	parsed, err := ParseStructuredAnswer(`{"answer": "Seven provinces.", "confidence": 0.85}`)

	require.NoError(t, err)
	assert.Equal(t, "Seven provinces.", parsed.Answer)
	assert.Equal(t, 0.85, parsed.Confidence)
}

func TestParseStructuredAnswer_SurroundingProse(t *testing.T) {
	raw := "Sure, here is the result:\n{\"answer\": \"Article 4 defines the state.\", \"confidence\": \"1\"}\nLet me know if you need more."

	parsed, err := ParseStructuredAnswer(raw)

	require.NoError(t, err)
	assert.Equal(t, "Article 4 defines the state.", parsed.Answer)
	assert.Equal(t, 1.0, parsed.Confidence)
}

func TestParseStructuredAnswer_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json at all", "I cannot answer that."},
		{"missing answer", `{"confidence": "0.9"}`},
		{"missing confidence", `{"answer": "something"}`},
		{"confidence not a float", `{"answer": "x", "confidence": "high"}`},
		{"confidence above one", `{"answer": "x", "confidence": "1.5"}`},
		{"confidence negative", `{"answer": "x", "confidence": -0.2}`},
		{"broken json", `{"answer": "x", "confidence":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStructuredAnswer(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}
