package reasoning

import (
	"math"
	"strings"
	"unicode/utf8"
)

// matchStopWords are ignored when computing keyword overlap between a query
// and a knowledge-base question.
var matchStopWords = wordSet(
	"the", "a", "an", "to", "my", "me", "it", "is", "on", "in", "with", "and",
	"for", "i", "of", "or", "at", "this", "that", "from",
)

// relevanceStopWords extends matchStopWords with question words and device
// nouns that appear in nearly every support question.
var relevanceStopWords = wordSet(
	"the", "a", "an", "to", "my", "me", "it", "is", "on", "in", "with", "and",
	"for", "i", "of", "or", "at", "this", "that", "from", "what", "why", "how",
	"when", "where", "can", "could", "would", "should", "please", "help",
	"computer", "laptop", "pc", "desktop", "won't", "wont",
)

const (
	edgePunctuation  = "?.!"
	tokenPunctuation = "?.!,;:\"'()"
)

// Query is a single question in the forms the pipeline compares against.
type Query struct {
	Raw        string
	Normalized string
	Stripped   string
	Words      map[string]struct{}
}

// NewQuery lower-cases and trims raw and derives the word set.
func NewQuery(raw string) Query {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	return Query{
		Raw:        raw,
		Normalized: normalized,
		Stripped:   stripEdges(normalized),
		Words:      tokenSet(normalized),
	}
}

// Empty reports whether the query has no content after normalization.
func (q Query) Empty() bool {
	return q.Normalized == ""
}

func stripEdges(s string) string {
	return strings.TrimSpace(strings.Trim(s, edgePunctuation))
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func tokenSet(s string) map[string]struct{} {
	return wordSet(strings.Fields(s)...)
}

// keywords lists punctuation-trimmed tokens longer than two characters that
// are not stop words, in order and with duplicates.
func keywords(s string, stop map[string]struct{}) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		w = strings.Trim(w, tokenPunctuation)
		if _, skip := stop[w]; skip {
			continue
		}
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func keywordSet(s string, stop map[string]struct{}) map[string]struct{} {
	return wordSet(keywords(s, stop)...)
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// Similarity is the Jaccard index of the whitespace word sets of a and b.
// It is 0 when either side is empty.
func Similarity(a, b string) float64 {
	wa, wb := tokenSet(a), tokenSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := intersectionSize(wa, wb)
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// KeywordMatch is the fraction of query keywords that also appear among the
// keywords of question. It is 0 when the query has no keywords.
func KeywordMatch(query, question string) float64 {
	qw := keywordSet(query, matchStopWords)
	if len(qw) == 0 {
		return 0
	}
	fw := keywordSet(question, matchStopWords)
	return math.Min(float64(intersectionSize(qw, fw))/float64(len(qw)), 1.0)
}

// mainKeywords lists query keywords for relevance checks.
func mainKeywords(normalized string) []string {
	return keywords(normalized, relevanceStopWords)
}

// keywordRelevance is the share of keywords found as substrings of text.
func keywordRelevance(keywords []string, text string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// topicCoverage is the share of the candidate question's keywords that the
// query also uses. It measures how much of a candidate's topic the query is
// actually about.
func topicCoverage(queryKeywords []string, question string) float64 {
	topic := keywordSet(strings.ToLower(question), relevanceStopWords)
	if len(topic) == 0 {
		return 0
	}
	return float64(intersectionSize(topic, wordSet(queryKeywords...))) / float64(len(topic))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
