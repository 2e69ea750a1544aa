package extractor

import (
	"regexp"
	"strings"
)

var (
	jsonFencePattern     = regexp.MustCompile("(?i)```json")
	fencePattern         = regexp.MustCompile("```")
	trailingBracePattern = regexp.MustCompile(`,\s*}`)
	trailingBrackPattern = regexp.MustCompile(`,\s*]`)
)

// span is a candidate block recorded by its byte offsets, end exclusive.
type span struct {
	start int
	end   int
}

// normalizeText strips markdown code fences.
func normalizeText(text string) string {
	text = jsonFencePattern.ReplaceAllString(text, "")
	text = fencePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// scanBlocks returns every top-level {...} span, found by depth counting.
// Unbalanced closing braces at depth 0 are ignored. With stringAware set,
// braces inside double-quoted literals (honoring backslash escapes) do not count.
func scanBlocks(text string, stringAware bool) []span {
	var blocks []span
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if stringAware {
			if escaped {
				escaped = false
				continue
			}
			if inString {
				switch ch {
				case '\\':
					escaped = true
				case '"':
					inString = false
				}
				continue
			}
			if ch == '"' && depth > 0 {
				inString = true
				continue
			}
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				blocks = append(blocks, span{start: start, end: i + 1})
				start = -1
			}
		}
	}
	return blocks
}

// attemptRepair fixes trailing commas and single-quoted JSON.
func attemptRepair(s string) string {
	s = trailingBracePattern.ReplaceAllString(s, "}")
	s = trailingBrackPattern.ReplaceAllString(s, "]")

	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}
