package inference

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// extractJSON strips markdown code fences the model tends to wrap payloads in
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// parseValidation decodes a {"valid": bool, "message": string} payload
func parseValidation(raw string) (*ValidationResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse validation response: %w", err)
	}

	return &ValidationResult{
		Valid:   coerceBool(data["valid"]),
		Message: coerceString(data["message"]),
	}, nil
}

// parseQuestions decodes a JSON array of question strings, dropping blanks
func parseQuestions(raw string) ([]string, error) {
	cleaned := extractJSON(raw)

	var items []string
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse questions response: %w", err)
	}

	questions := make([]string, 0, len(items))
	for _, q := range items {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// parseScore extracts a single integer from the model output. The prompt asks
// for a bare number but models occasionally add prose, so the first integer
// token wins.
func parseScore(raw string) (int, error) {
	cleaned := extractJSON(raw)

	if score, err := strconv.Atoi(cleaned); err == nil {
		return score, nil
	}

	for _, field := range strings.Fields(cleaned) {
		field = strings.Trim(field, ".,:;")
		if score, err := strconv.Atoi(field); err == nil {
			return score, nil
		}
	}

	return 0, fmt.Errorf("no integer score in response %q", truncate(cleaned, 80))
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
