package reasoning

import (
	"regexp"
	"strings"

	"techsupport-agent/knowledge"
	"techsupport-agent/types"

	"golang.org/x/sync/errgroup"
)

const noAnswerContent = "No detailed answer available."

// hazardContentPhrases mark an entry whose question or answer describes a
// physical-safety response. Multi-word phrases are matched as substrings.
var hazardContentPhrases = []string{
	"immediate safety hazard",
	"critical safety",
	"shut down immediately",
	"immediately shut down",
	"remove battery",
	"remove the battery",
	"dry thoroughly",
	"liquid damage",
	"water damage",
	"electrical hazard",
}

// hazardContentWords are matched on word boundaries so "firewall", "Firefox"
// and "Spark" stay ordinary IT topics.
var hazardContentWords = regexp.MustCompile(`(?i)\b(fire|smoke|smoking|spark(s|ed|ing)?|burn(ing|ed|t)?|spill(s|ed|ing)?|unplug(ged|ging)?)\b`)

// AdviceProvider derives priority, advice and steps for a knowledge entry
// and preventive tips for a question. Implementations must be pure.
type AdviceProvider interface {
	Evaluate(entry knowledge.Entry, metrics *types.SystemMetrics) knowledge.RuleResult
	Preventive(question string) []string
}

// MatchCandidate is a knowledge entry that passed the inclusion rule.
type MatchCandidate struct {
	Entry            knowledge.Entry
	Content          string
	Similarity       float64
	KeywordMatch     float64
	Exact            bool
	Confidence       types.Confidence
	MatchScore       float64
	Priority         types.Priority
	RuleAdvice       []string
	Steps            []string
	Hazard           bool
	RelevanceScore   float64
	KeywordRelevance float64
}

// Answer converts the candidate into a kb_match answer.
func (c MatchCandidate) Answer() types.Answer {
	return types.Answer{
		Type:                 types.AnswerKBMatch,
		Content:              c.Content,
		Category:             c.Entry.Category,
		Confidence:           c.Confidence,
		Priority:             c.Priority,
		MatchScore:           types.Float(c.MatchScore),
		RelevanceScore:       types.Float(c.RelevanceScore),
		RuleAdvice:           append([]string(nil), c.RuleAdvice...),
		TroubleshootingSteps: append([]string(nil), c.Steps...),
		SourceQuestion:       c.Entry.Question,
	}
}

// Matcher scores knowledge entries against a query.
type Matcher struct {
	advisor   AdviceProvider
	threshold int
	workers   int
}

// NewMatcher returns a matcher that scans in parallel once the entry count
// exceeds threshold. A threshold <= 0 disables parallel scanning.
func NewMatcher(advisor AdviceProvider, threshold, workers int) *Matcher {
	if workers < 1 {
		workers = 1
	}
	return &Matcher{advisor: advisor, threshold: threshold, workers: workers}
}

// Match returns candidates in entry order.
func (m *Matcher) Match(q Query, entries []knowledge.Entry, metrics *types.SystemMetrics) []MatchCandidate {
	slots := make([]*MatchCandidate, len(entries))

	if m.threshold > 0 && len(entries) > m.threshold && m.workers > 1 {
		m.scanParallel(q, entries, metrics, slots)
	} else {
		for i, e := range entries {
			slots[i] = m.score(q, e, metrics)
		}
	}

	out := make([]MatchCandidate, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// scanParallel splits entries into contiguous chunks. Each slot is written by
// exactly one goroutine.
func (m *Matcher) scanParallel(q Query, entries []knowledge.Entry, metrics *types.SystemMetrics, slots []*MatchCandidate) {
	var g errgroup.Group
	g.SetLimit(m.workers)

	chunk := (len(entries) + m.workers - 1) / m.workers
	for start := 0; start < len(entries); start += chunk {
		end := min(start+chunk, len(entries))
		g.Go(func() error {
			for i := start; i < end; i++ {
				slots[i] = m.score(q, entries[i], metrics)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Matcher) score(q Query, entry knowledge.Entry, metrics *types.SystemMetrics) *MatchCandidate {
	fq := strings.ToLower(entry.Question)

	similarity := Similarity(q.Normalized, fq)
	keywordMatch := KeywordMatch(q.Normalized, fq)
	exact := exactOrQuoted(q, entry.Question)
	shared := intersectionSize(q.Words, tokenSet(fq))

	combined := max(similarity, keywordMatch)
	if exact {
		combined = 1.0
	}
	if !(combined > 0.2 || keywordMatch > 0.3 || shared >= 2 || exact) {
		return nil
	}

	confidence := types.ConfidenceMedium
	switch {
	case exact:
		confidence = types.ConfidencePerfect
	case combined > 0.5:
		confidence = types.ConfidenceHigh
	}

	content := entry.Answer
	if content == "" {
		content = noAnswerContent
	}

	rules := m.advisor.Evaluate(entry, metrics)
	priority := rules.Priority
	if priority.Rank() == 0 {
		priority = types.PriorityMedium
	}

	return &MatchCandidate{
		Entry:        entry,
		Content:      content,
		Similarity:   similarity,
		KeywordMatch: keywordMatch,
		Exact:        exact,
		Confidence:   confidence,
		MatchScore:   round4(combined),
		Priority:     priority,
		RuleAdvice:   rules.Advice,
		Steps:        rules.Steps,
		Hazard:       hasHazardContent(entry),
	}
}

// exactOrQuoted holds when either stripped form contains the other, or the
// raw query quotes the entry question verbatim.
func exactOrQuoted(q Query, question string) bool {
	fq := stripEdges(strings.ToLower(question))
	if fq != "" && q.Stripped != "" {
		if strings.Contains(q.Stripped, fq) || strings.Contains(fq, q.Stripped) {
			return true
		}
	}
	if question == "" {
		return false
	}
	return strings.Contains(q.Raw, `"`+question+`"`) || strings.Contains(q.Raw, "'"+question+"'")
}

func hasHazardContent(entry knowledge.Entry) bool {
	text := strings.ToLower(entry.Answer + " " + entry.Question)
	for _, p := range hazardContentPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return hazardContentWords.MatchString(text)
}
