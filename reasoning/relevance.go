package reasoning

import (
	"regexp"
	"sort"
	"strings"

	"techsupport-agent/types"
)

const (
	maxKBAnswers        = 2
	powerBoost          = 0.3
	hazardPenalty       = 0.4
	minHazardCoverage   = 0.7
	minKeywordRelevance = 0.3
	minAcceptScore      = 0.6
	highQualityScore    = 0.7
	minLowTierScore     = 0.4
	minCompanionScore   = 0.3
	directAnswerPrefix  = "📚 Direct answer:\n"
	relatedAnswerPrefix = "💡 Related answer:\n"
)

var hazardQuery = regexp.MustCompile(`\b(smok(e|ing)|fire|flames?|sparks?|sparked|sparking|burn(ing|ed|t)?|electrical|hazard|water|liquid|spill(ed)?|wet)\b`)

var powerPhrases = []string{
	"won't turn on",
	"wont turn on",
	"no power",
	"completely dead",
	"not powering on",
	"dead",
	"not turning on",
}

var (
	waterWords = wordSet("water", "liquid", "spill", "spilled", "wet", "coffee", "drink", "moisture")
	fireWords  = wordSet("fire", "smoke", "smoking", "flame", "spark", "sparking", "burning", "burnt", "burned", "electrical")
)

// hazardKind records which hazard vocabularies a text uses.
type hazardKind struct {
	water bool
	fire  bool
}

func hazardKindOf(text string) hazardKind {
	var k hazardKind
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, tokenPunctuation)
		if _, ok := waterWords[w]; ok {
			k.water = true
		}
		if _, ok := fireWords[w]; ok {
			k.fire = true
		}
	}
	return k
}

// conflicts reports a water-only query meeting fire-only content, or the
// reverse.
func (k hazardKind) conflicts(other hazardKind) bool {
	if k.water && !k.fire {
		return other.fire && !other.water
	}
	if k.fire && !k.water {
		return other.water && !other.fire
	}
	return false
}

func hasPowerPhrase(text string) bool {
	for _, p := range powerPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// IsHazardQuery reports whether the normalized query uses hazard vocabulary.
func IsHazardQuery(normalized string) bool {
	return hazardQuery.MatchString(normalized)
}

// relevanceContext holds the query-side facts the filter reuses per candidate.
type relevanceContext struct {
	hazard   bool
	power    bool
	kind     hazardKind
	keywords []string
}

func newRelevanceContext(q Query) relevanceContext {
	return relevanceContext{
		hazard:   IsHazardQuery(q.Normalized),
		power:    hasPowerPhrase(q.Normalized),
		kind:     hazardKindOf(q.Normalized),
		keywords: mainKeywords(q.Normalized),
	}
}

func (rc relevanceContext) score(c *MatchCandidate) {
	text := strings.ToLower(c.Content + " " + c.Entry.Question)

	rel := c.MatchScore
	if rc.power && hasPowerPhrase(text) {
		rel += powerBoost
	}
	if c.Hazard && !rc.hazard {
		rel = max(rel-hazardPenalty, 0)
	}
	c.RelevanceScore = round4(rel)
	c.KeywordRelevance = keywordRelevance(rc.keywords, text)
}

// hazardAppropriate is false for hazard content the query is not about, and
// for content of the opposite hazard type.
func (rc relevanceContext) hazardAppropriate(c MatchCandidate) bool {
	if c.Hazard && !rc.hazard && topicCoverage(rc.keywords, c.Entry.Question) < minHazardCoverage {
		return false
	}
	return !rc.kind.conflicts(hazardKindOf(strings.ToLower(c.Content + " " + c.Entry.Question)))
}

// FilterRelevant orders candidates for q, drops the irrelevant ones and keeps
// at most two, with their content prefixed by a match marker. The input slice
// is not modified.
func FilterRelevant(q Query, candidates []MatchCandidate) []MatchCandidate {
	if len(candidates) == 0 {
		return nil
	}
	rc := newRelevanceContext(q)

	ordered := make([]MatchCandidate, len(candidates))
	copy(ordered, candidates)
	for i := range ordered {
		rc.score(&ordered[i])
	}
	sortCandidates(ordered, rc.hazard)

	var accepted []MatchCandidate
	categories := make(map[string]bool)
	highQuality := 0
	for _, c := range ordered {
		if c.Confidence == types.ConfidenceLow && c.MatchScore < minLowTierScore {
			continue
		}
		if !rc.hazardAppropriate(c) {
			continue
		}
		if !(c.KeywordRelevance > minKeywordRelevance || c.Confidence.Strong() || c.MatchScore > minAcceptScore) {
			continue
		}
		if categories[c.Entry.Category] && !c.Confidence.Strong() {
			continue
		}
		categories[c.Entry.Category] = true
		accepted = append(accepted, c)
		if c.MatchScore > highQualityScore {
			highQuality++
		}
		if highQuality >= 2 {
			break
		}
	}

	if len(accepted) >= 2 {
		kept := accepted[:0]
		for _, c := range accepted {
			if c.MatchScore > minCompanionScore || c.Confidence.Strong() {
				kept = append(kept, c)
			}
		}
		accepted = kept
	}

	if len(accepted) == 0 {
		accepted = []MatchCandidate{fallbackCandidate(rc, ordered)}
	}
	if len(accepted) > maxKBAnswers {
		accepted = accepted[:maxKBAnswers]
	}

	for i := range accepted {
		if accepted[i].Confidence == types.ConfidencePerfect {
			accepted[i].Content = directAnswerPrefix + accepted[i].Content
		} else {
			accepted[i].Content = relatedAnswerPrefix + accepted[i].Content
		}
	}
	return accepted
}

func fallbackCandidate(rc relevanceContext, ordered []MatchCandidate) MatchCandidate {
	for _, c := range ordered {
		if rc.hazardAppropriate(c) {
			return c
		}
	}
	return ordered[0]
}

// sortCandidates applies the single ordering rule: relevance, confidence,
// match score, then the hazard partition matching the query's flavor.
func sortCandidates(cs []MatchCandidate, hazardFirst bool) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if ra, rb := a.Confidence.Rank(), b.Confidence.Rank(); ra != rb {
			return ra > rb
		}
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.Hazard != b.Hazard {
			return a.Hazard == hazardFirst
		}
		return false
	})
}
