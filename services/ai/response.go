package ai

import "strings"

const (
	fenceJSON = "```json"
	fence     = "```"
)

// ExtractJSONPayload strips a fenced code block from model output, so that
// JSON wrapped in prose or markdown still parses. It takes the text after
// the first ```json opener (or the whole input when absent) up to the first
// following ``` marker. Best-effort: it assumes at most one fenced block.
func ExtractJSONPayload(content string) string {
	cleaned := strings.TrimSpace(content)

	if idx := strings.Index(cleaned, fenceJSON); idx >= 0 {
		cleaned = cleaned[idx+len(fenceJSON):]
	}
	if idx := strings.Index(cleaned, fence); idx >= 0 {
		cleaned = cleaned[:idx]
	}

	return strings.TrimSpace(cleaned)
}
