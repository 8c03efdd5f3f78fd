package format

import (
	"techsupport-agent/types"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToHTML converts markdown to HTML. Raw HTML in the source is dropped, since
// knowledge-base text is not trusted markup.
func ToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

// AnswerHTML renders an answer with its advice and steps.
func AnswerHTML(a types.Answer) string {
	return ToHTML(AnswerMarkdown(a))
}
