package reasoning

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"techsupport-agent/types"
)

const (
	// DefaultMaxAnswers bounds the result when the caller sets no cap.
	DefaultMaxAnswers = 4
	dedupPrefixRunes  = 150
)

// NeedMoreInfo is the answer returned when nothing qualifies.
func NeedMoreInfo() types.Answer {
	return types.Answer{
		Type: types.AnswerNeedMoreInfo,
		Content: "I can definitely help you! To give the best advice, please tell me:\n" +
			"• Exact error message (if any)\n" +
			"• When did it start happening?\n" +
			"• Laptop or desktop? Brand & model?\n" +
			"• What changed recently (updates, new software, drop, spill)?",
		Category:   "Clarification Needed",
		Confidence: types.ConfidenceHigh,
		Priority:   types.PriorityMedium,
	}
}

// SortAnswers orders answers by priority, relevance, confidence and match
// score, all descending. Equal answers keep their input order.
func SortAnswers(answers []types.Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		a, b := answers[i], answers[j]
		if pa, pb := a.Priority.Rank(), b.Priority.Rank(); pa != pb {
			return pa > pb
		}
		if ra, rb := a.Relevance(), b.Relevance(); ra != rb {
			return ra > rb
		}
		if ca, cb := a.Confidence.Rank(), b.Confidence.Rank(); ca != cb {
			return ca > cb
		}
		return a.Score() > b.Score()
	})
}

// Rank sorts, deduplicates and truncates answers to limit. A limit <= 0
// means DefaultMaxAnswers. An empty input yields NeedMoreInfo.
func Rank(answers []types.Answer, limit int) []types.Answer {
	if limit <= 0 {
		limit = DefaultMaxAnswers
	}

	sorted := make([]types.Answer, len(answers))
	copy(sorted, answers)
	SortAnswers(sorted)

	seen := make(map[string]bool, len(sorted))
	unique := make([]types.Answer, 0, len(sorted))
	for _, a := range sorted {
		key := dedupKey(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, a)
	}

	if len(unique) == 0 {
		return []types.Answer{NeedMoreInfo()}
	}
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func dedupKey(a types.Answer) string {
	return string(a.Type) + ":" + hashContent(contentPreview(a.Content))
}

func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) > dedupPrefixRunes {
		runes = runes[:dedupPrefixRunes]
	}
	return strings.ToLower(string(runes))
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
