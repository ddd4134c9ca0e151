// Package ai provides parsing utilities for handling noisy LLM responses.
package ai

import (
	"encoding/json"
	"strings"
)

// ResponseParser extracts a JSON object from an LLM completion that may be
// wrapped in markdown fences or prose. It never returns an error: callers
// get either a populated result or an empty one, and decide how far to
// degrade from there.
type ResponseParser struct{}

// NewResponseParser creates a new response parser.
func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

// ExtractCandidate applies the ordered fallback chain and returns the
// substring most likely to be a JSON object:
//
//  1. content of the first ```json fence pair
//  2. content of the first generic ``` fence pair
//  3. the full text
//
// then sliced from the first '{' to the last '}' inclusive. Returns "" when
// no brace pair exists in the candidate.
func (rp *ResponseParser) ExtractCandidate(raw string) string {
	candidate := raw
	if _, after, found := strings.Cut(raw, "```json"); found {
		if inner, _, closed := strings.Cut(after, "```"); closed {
			candidate = inner
		}
	} else if _, after, found := strings.Cut(raw, "```"); found {
		if inner, _, closed := strings.Cut(after, "```"); closed {
			candidate = inner
		}
	}
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return candidate[start : end+1]
}

// ParseObject returns the decoded JSON object, or an empty map when the text
// holds no decodable object. Diagnostics are the caller's concern; this
// function is silent and total.
func (rp *ResponseParser) ParseObject(raw string) map[string]any {
	out := map[string]any{}
	candidate := rp.ExtractCandidate(raw)
	if candidate == "" {
		return out
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return out
	}
	return decoded
}

// Decode unmarshals the extracted candidate into out and reports success.
// On failure out may be partially filled and must be discarded by the caller.
func (rp *ResponseParser) Decode(raw string, out any) bool {
	candidate := rp.ExtractCandidate(raw)
	if candidate == "" {
		return false
	}
	return json.Unmarshal([]byte(candidate), out) == nil
}
