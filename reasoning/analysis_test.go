package reasoning

import (
	"testing"

	"techsupport-agent/types"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	answers := []types.Answer{
		{Type: types.AnswerKBMatch, Category: "Audio", Confidence: types.ConfidenceHigh, MatchScore: types.Float(0.5)},
		{Type: types.AnswerKBMatch, Category: "Audio", Confidence: types.ConfidencePerfect, MatchScore: types.Float(1)},
		{Type: types.AnswerPreventive, Category: "Maintenance", Confidence: types.ConfidenceMedium},
		{Type: types.AnswerExpertDiagnosis, Confidence: types.ConfidenceHigh},
	}

	got := Analyze("no sound", answers)

	assert.Equal(t, "no sound", got.Question)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, map[types.AnswerType]int{
		types.AnswerKBMatch:         2,
		types.AnswerPreventive:      1,
		types.AnswerExpertDiagnosis: 1,
	}, got.ByType)
	assert.Equal(t, 2, got.ByConfidence[types.ConfidenceHigh])
	assert.Equal(t, map[string]int{"Audio": 2, "Maintenance": 1}, got.ByCategory)
	assert.InDelta(t, 0.75, got.AverageMatchScore, 1e-9)
}

func TestAnalyzeEmpty(t *testing.T) {
	got := Analyze("", nil)
	assert.Zero(t, got.Total)
	assert.Zero(t, got.AverageMatchScore)
	assert.Empty(t, got.ByType)
}
