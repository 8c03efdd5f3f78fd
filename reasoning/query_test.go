package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQuery(t *testing.T) {
	q := NewQuery("  Why is my PC Slow?!  ")

	assert.Equal(t, "why is my pc slow?!", q.Normalized)
	assert.Equal(t, "why is my pc slow", q.Stripped)
	assert.Contains(t, q.Words, "slow?!")
	assert.NotContains(t, q.Words, "slow")
	assert.False(t, q.Empty())
	assert.True(t, NewQuery("   ").Empty())
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "pc is slow", b: "pc is slow", want: 1},
		{name: "disjoint", a: "pc is slow", b: "wifi drops", want: 0},
		{name: "half_overlap", a: "pc slow", b: "pc fast", want: 1.0 / 3.0},
		{name: "empty_side", a: "", b: "pc", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, got, Similarity(tt.b, tt.a), "similarity is symmetric")
		})
	}
}

func TestKeywordMatch(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		question string
		want     float64
	}{
		{name: "no_keywords", query: "is it on", question: "is it on", want: 0},
		{name: "all_found", query: "computer is slow", question: "why is my computer slow?", want: 1},
		{name: "half_found", query: "headphones broken", question: "fix headphones", want: 0.5},
		{name: "punctuation_ignored", query: "headphones not working", question: "how to fix no sound in headphones?", want: 1.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordMatch(tt.query, tt.question)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestMainKeywords(t *testing.T) {
	assert.Equal(t, []string{"turn", "completely", "dead"}, mainKeywords("my laptop wont turn on, completely dead"))
	assert.Empty(t, mainKeywords("why is my pc"))
}

func TestTopicCoverage(t *testing.T) {
	assert.InDelta(t, 0.25, topicCoverage([]string{"slow"}, "Laptop slow after water spill?"), 1e-9)
	assert.InDelta(t, 1.0, topicCoverage([]string{"water", "spill"}, "Water spill?"), 1e-9)
	assert.Zero(t, topicCoverage([]string{"slow"}, "why is it"))
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.3333, round4(1.0/3.0))
	assert.Equal(t, 1.0, round4(1))
}
