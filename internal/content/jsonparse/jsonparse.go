// Package jsonparse extracts a JSON object from model output that may be
// wrapped in markdown fences or surrounded by prose.
package jsonparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSyntax is returned (wrapped) when no stage yields valid JSON.
var ErrSyntax = errors.New("jsonparse: no valid JSON object found")

var fenceRE = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```")

// StripFences returns the body of the first fenced block, or s unchanged
// when there is no fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	if m := fenceRE.FindStringSubmatch(s); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	// Unterminated fence: drop the opening marker line.
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(s)
}

// Embedded returns the substring from the first '{' to the last '}'.
func Embedded(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// Parse decodes raw into v: fences are stripped, a direct decode is tried,
// then the embedded-object substring. Failure wraps ErrSyntax.
func Parse(raw string, v any) error {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return fmt.Errorf("%w: empty input", ErrSyntax)
	}
	directErr := json.Unmarshal([]byte(cleaned), v)
	if directErr == nil {
		return nil
	}
	if sub, ok := Embedded(cleaned); ok && sub != cleaned {
		if err := json.Unmarshal([]byte(sub), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrSyntax, directErr)
}

// Object is Parse into a generic map.
func Object(raw string) (map[string]any, error) {
	var out map[string]any
	if err := Parse(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: not an object", ErrSyntax)
	}
	return out, nil
}
