package reasoning

import (
	"sort"

	"techsupport-agent/types"
)

const traceTopCandidates = 3

// Analysis summarises a result list.
type Analysis struct {
	Question          string                   `json:"original_question"`
	Total             int                      `json:"total_answers"`
	ByType            map[types.AnswerType]int `json:"answers_by_type"`
	ByConfidence      map[types.Confidence]int `json:"answers_by_confidence"`
	ByCategory        map[string]int           `json:"answers_by_category"`
	AverageMatchScore float64                  `json:"average_match_score"`
}

// Analyze counts answers by type, confidence and category. The average only
// covers answers that carry a match score.
func Analyze(question string, answers []types.Answer) Analysis {
	a := Analysis{
		Question:     question,
		Total:        len(answers),
		ByType:       make(map[types.AnswerType]int),
		ByConfidence: make(map[types.Confidence]int),
		ByCategory:   make(map[string]int),
	}
	scored, sum := 0, 0.0
	for _, ans := range answers {
		a.ByType[ans.Type]++
		a.ByConfidence[ans.Confidence]++
		if ans.Category != "" {
			a.ByCategory[ans.Category]++
		}
		if ans.MatchScore != nil {
			scored++
			sum += *ans.MatchScore
		}
	}
	if scored > 0 {
		a.AverageMatchScore = round4(sum / float64(scored))
	}
	return a
}

// TraceCandidate is one scored knowledge entry in a Trace.
type TraceCandidate struct {
	Question   string           `json:"question"`
	Category   string           `json:"category"`
	MatchScore float64          `json:"match_score"`
	Confidence types.Confidence `json:"confidence"`
	Hazard     bool             `json:"hazard"`
}

// Trace records intermediate pipeline state for debug requests.
type Trace struct {
	Query          string           `json:"query"`
	Emergency      bool             `json:"emergency"`
	HazardQuery    bool             `json:"hazard_query"`
	ActiveSymptoms []string         `json:"active_symptoms"`
	SalientSymptom string           `json:"salient_symptom,omitempty"`
	Scanned        int              `json:"scanned"`
	Candidates     []TraceCandidate `json:"candidates"`
	Accepted       []string         `json:"accepted"`
	Fused          int              `json:"fused"`
}

func (t *Trace) fill(symptoms Symptoms, scanned int, candidates, accepted []MatchCandidate, fused int) {
	t.ActiveSymptoms = symptoms.Active()
	t.SalientSymptom = symptoms.Salient()
	t.Scanned = scanned
	t.Fused = fused

	top := make([]MatchCandidate, len(candidates))
	copy(top, candidates)
	sort.SliceStable(top, func(i, j int) bool { return top[i].MatchScore > top[j].MatchScore })
	if len(top) > traceTopCandidates {
		top = top[:traceTopCandidates]
	}
	t.Candidates = make([]TraceCandidate, len(top))
	for i, c := range top {
		t.Candidates[i] = TraceCandidate{
			Question:   c.Entry.Question,
			Category:   c.Entry.Category,
			MatchScore: c.MatchScore,
			Confidence: c.Confidence,
			Hazard:     c.Hazard,
		}
	}

	t.Accepted = make([]string, len(accepted))
	for i, c := range accepted {
		t.Accepted[i] = c.Entry.Question
	}
}
