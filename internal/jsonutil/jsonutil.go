// Package jsonutil extracts JSON payloads from LLM response text.
//
// Even with a response schema and an application/json MIME constraint, model
// replies occasionally arrive wrapped in ```json fences or with stray prose
// around the object. Extraction here is purely positional; it never repairs
// or re-shapes the JSON itself.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a ```json ... ``` (or bare ``` ... ```) wrapper from
// text. Text without a leading fence is returned unchanged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line (which may carry a language tag).
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		return text
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// Extract returns the JSON object or array embedded in text, stripping
// markdown fences and any surrounding prose first. It locates the first
// opening delimiter and the last matching closing delimiter; anything in
// between is returned verbatim.
func Extract(text string) (string, error) {
	text = StripFences(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON object or array in text")
	}

	start, closer := objIdx, "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("unterminated JSON: no closing %q", closer)
	}
	return text[:end+1], nil
}

// Decode extracts the JSON payload from raw response text and unmarshals it
// into T.
func Decode[T any](raw string) (T, error) {
	var out T

	payload, err := Extract(raw)
	if err != nil {
		return out, fmt.Errorf("%w (response length %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		preview := payload
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return out, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return out, nil
}
