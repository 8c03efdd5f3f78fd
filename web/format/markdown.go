package format

import (
	"regexp"
	"strings"
)

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s+`)
	bulletItem   = regexp.MustCompile(`^[-*+•]\s`)
)

// PreprocessText normalizes answer text before markdown conversion.
func PreprocessText(text string) string {
	if text == "" {
		return text
	}

	text = strings.NewReplacer(
		"“", "\"",
		"”", "\"",
		"‘", "'",
		"’", "'",
	).Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "• "); ok {
			lines[i] = "- " + rest
		}
	}
	return normalizeMarkdownLists(strings.Join(lines, "\n"))
}

func isListItem(line string) bool {
	return bulletItem.MatchString(line) || numberedItem.MatchString(line)
}

// normalizeMarkdownLists inserts the blank line markdown requires before a
// list that directly follows a paragraph.
func normalizeMarkdownLists(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i > 0 && isListItem(trimmed) {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && !isListItem(prev) {
				result = append(result, "")
			}
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
