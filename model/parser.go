package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rag/types"
)

// ErrParse marks a model reply that could not be decoded into a
// StructuredAnswer. Callers must treat it as "not answered", not as a
// system fault.
var ErrParse = errors.New("malformed structured answer")

// FormatInstructions tells the model the exact output shape the parser
// accepts. Appended to every human message.
const FormatInstructions = "The output should be a markdown code snippet formatted in the following schema, " +
	"including the leading and trailing \"```json\" and \"```\":\n\n" +
	"```json\n{\n\t\"answer\": string  // The answer to the user's question based on the provided context.\n" +
	"\t\"confidence\": string  // A confidence score from 0 to 1 indicating how certain the AI is about the answer.\n}\n```"

type rawAnswer struct {
	Answer     string          `json:"answer"`
	Confidence json.RawMessage `json:"confidence"`
}

// ParseStructuredAnswer extracts the answer and confidence fields from a
// model reply. The reply may wrap the JSON object in markdown fences or
// surrounding prose; everything outside the outermost braces is ignored.
func ParseStructuredAnswer(raw string) (types.StructuredAnswer, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return types.StructuredAnswer{}, fmt.Errorf("%w: %s", ErrParse, err)
	}

	var parsed rawAnswer
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return types.StructuredAnswer{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if parsed.Answer == "" {
		return types.StructuredAnswer{}, fmt.Errorf("%w: missing answer field", ErrParse)
	}
	if len(parsed.Confidence) == 0 {
		return types.StructuredAnswer{}, fmt.Errorf("%w: missing confidence field", ErrParse)
	}

	confidence, err := parseConfidence(parsed.Confidence)
	if err != nil {
		return types.StructuredAnswer{}, fmt.Errorf("%w: %s", ErrParse, err)
	}

	return types.StructuredAnswer{
		Answer:     parsed.Answer,
		Confidence: confidence,
	}, nil
}

// parseConfidence accepts both a JSON number and a numeric string, since
// models are inconsistent about quoting the score.
func parseConfidence(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)

	confidence, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("confidence %q is not a float", s)
	}
	if confidence < 0 || confidence > 1 {
		return 0, fmt.Errorf("confidence %v out of range [0,1]", confidence)
	}
	return confidence, nil
}

func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start == -1 || end == -1 || end <= start {
		return s, errors.New("no valid json found")
	}

	return s[start : end+1], nil
}
