// Package views holds the HTML fragments returned by the form endpoint.
package views

import (
	"context"
	"io"
	"strings"

	"techsupport-agent/types"
	"techsupport-agent/web/format"

	"github.com/a-h/templ"
)

// AnswerCard renders one answer as an article element.
func AnswerCard(a types.Answer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<article class="answer answer-`)
		b.WriteString(templ.EscapeString(string(a.Type)))
		b.WriteString(` priority-`)
		b.WriteString(templ.EscapeString(strings.ToLower(string(a.Priority))))
		b.WriteString(`">`)

		b.WriteString(`<header><span class="badge">`)
		b.WriteString(templ.EscapeString(string(a.Priority)))
		b.WriteString(`</span>`)
		if a.Category != "" {
			b.WriteString(`<span class="category">`)
			b.WriteString(templ.EscapeString(a.Category))
			b.WriteString(`</span>`)
		}
		b.WriteString(`<span class="confidence">`)
		b.WriteString(templ.EscapeString(string(a.Confidence)))
		b.WriteString(`</span></header>`)

		b.WriteString(`<div class="content">`)
		b.WriteString(format.AnswerHTML(a))
		b.WriteString(`</div></article>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AnswerList renders the answers for question in rank order.
func AnswerList(question string, answers []types.Answer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="answers"><h2>`+templ.EscapeString(question)+`</h2>`); err != nil {
			return err
		}
		for _, a := range answers {
			if err := AnswerCard(a).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

// ErrorMessage renders a user-facing error fragment.
func ErrorMessage(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="error" role="alert">`+templ.EscapeString(message)+`</div>`)
		return err
	})
}
