package core

import (
	"encoding/json"
	"strings"
)

// ExtractedContent is a parsed model response. WasStructured reports
// whether the structured JSON payload was found; when it is false,
// Content carries the raw response verbatim.
type ExtractedContent struct {
	Content       string
	WasStructured bool
}

type filePayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Extract parses a free-form model response into usable file content.
// It looks for a JSON object between the first '{' and the last '}' with
// a non-empty "content" field. Models routinely ignore formatting
// instructions, so every parse failure degrades to the raw text rather
// than an error: a prose reply still produces a usable file.
func Extract(raw string) ExtractedContent {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var payload filePayload
		if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err == nil && payload.Content != "" {
			return ExtractedContent{Content: payload.Content, WasStructured: true}
		}
	}
	return ExtractedContent{Content: raw}
}
