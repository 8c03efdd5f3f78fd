// Package knowledge holds the read-only knowledge base of question/answer
// pairs and the keyword rules that derive advice from a single entry.
package knowledge

import "strings"

const defaultCategory = "General"

// Entry is a single question/answer pair.
type Entry struct {
	Category string `json:"category" yaml:"category"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Category groups entries under one label, in source order.
type Category struct {
	Label   string  `json:"category" yaml:"category"`
	Entries []Entry `json:"questions" yaml:"questions"`
}

// Base is an immutable, ordered collection of categories. Build one with
// NewBase or a loader and share it freely between goroutines.
type Base struct {
	categories []Category
	size       int
}

// NewBase copies the given categories into a new Base. Entries inherit their
// category label; an empty label becomes "General".
func NewBase(categories []Category) *Base {
	b := &Base{categories: make([]Category, 0, len(categories))}
	for _, c := range categories {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			label = defaultCategory
		}
		entries := make([]Entry, 0, len(c.Entries))
		for _, e := range c.Entries {
			e.Category = label
			entries = append(entries, e)
		}
		b.categories = append(b.categories, Category{Label: label, Entries: entries})
		b.size += len(entries)
	}
	return b
}

// Len returns the total number of entries.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}

// Categories returns a copy of the category list.
func (b *Base) Categories() []Category {
	if b == nil {
		return nil
	}
	out := make([]Category, len(b.categories))
	for i, c := range b.categories {
		out[i] = Category{Label: c.Label, Entries: append([]Entry(nil), c.Entries...)}
	}
	return out
}

// Entries flattens the base into KB order.
func (b *Base) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, 0, b.size)
	for _, c := range b.categories {
		out = append(out, c.Entries...)
	}
	return out
}

// EntriesIn returns entries whose category label contains label
// (case-insensitive), in KB order.
func (b *Base) EntriesIn(label string) []Entry {
	if b == nil {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return b.Entries()
	}
	var out []Entry
	for _, c := range b.categories {
		if strings.Contains(strings.ToLower(c.Label), needle) {
			out = append(out, c.Entries...)
		}
	}
	return out
}

// Stats summarises the base for status endpoints.
type Stats struct {
	Categories int      `json:"categories"`
	Questions  int      `json:"questions"`
	Labels     []string `json:"labels"`
}

// Stats reports category and question counts.
func (b *Base) Stats() Stats {
	if b == nil {
		return Stats{Labels: []string{}}
	}
	labels := make([]string, 0, len(b.categories))
	seen := make(map[string]bool, len(b.categories))
	for _, c := range b.categories {
		if !seen[c.Label] {
			seen[c.Label] = true
			labels = append(labels, c.Label)
		}
	}
	return Stats{Categories: len(labels), Questions: b.size, Labels: labels}
}
