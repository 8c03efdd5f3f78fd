package format

import (
	"strconv"
	"strings"

	"techsupport-agent/types"
)

// Section is a titled list appended below an answer's content.
type Section struct {
	Name    string // Internal name
	Heading string // Markdown heading text
	Ordered bool   // Render as a numbered list
}

// Predefined sections used when rendering answers
var (
	AdviceSection = Section{
		Name:    "rule_advice",
		Heading: "Recommended actions",
	}

	StepsSection = Section{
		Name:    "troubleshooting_steps",
		Heading: "Troubleshooting steps",
		Ordered: true,
	}
)

// Items returns the answer's list for the section.
func (s Section) Items(a types.Answer) []string {
	switch s.Name {
	case AdviceSection.Name:
		return a.RuleAdvice
	case StepsSection.Name:
		return a.TroubleshootingSteps
	}
	return nil
}

// AnswerMarkdown renders content, advice and steps as one markdown document.
func AnswerMarkdown(a types.Answer) string {
	var b strings.Builder
	b.WriteString(PreprocessText(a.Content))

	for _, section := range []Section{AdviceSection, StepsSection} {
		items := section.Items(a)
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n\n**")
		b.WriteString(section.Heading)
		b.WriteString("**\n\n")
		for i, item := range items {
			b.WriteString(listItem(item, i, section.Ordered))
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// listItem strips the item's own marker and applies the section's one.
func listItem(item string, i int, ordered bool) string {
	text := strings.TrimSpace(item)
	text = strings.TrimPrefix(text, "• ")
	if loc := numberedItem.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if ordered {
		return strconv.Itoa(i+1) + ". " + text
	}
	return "- " + text
}
