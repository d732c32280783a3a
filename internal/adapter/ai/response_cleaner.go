// Package ai holds the provider-independent pieces of the structured
// extraction pipeline: response cleaning, schema validation and input guards.
package ai

import (
	"strings"
)

// CleanJSONResponse strips markdown fences and surrounding prose from a model
// reply and returns the outermost JSON object it contains. Content without an
// object is returned trimmed and unchanged, so the caller's decoder reports it.
func CleanJSONResponse(response string) string {
	response = removeMarkdownBlocks(response)
	return extractJSON(response)
}

func removeMarkdownBlocks(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```JSON")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractJSON returns the first balanced {...} span, skipping braces that
// appear inside string literals.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return response[start:]
}
