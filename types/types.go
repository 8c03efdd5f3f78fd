package types

import "strings"

// AnswerType tags every answer produced by the reasoning pipeline.
type AnswerType string

const (
	AnswerEmergency       AnswerType = "emergency"
	AnswerKBMatch         AnswerType = "kb_match"
	AnswerExpertDiagnosis AnswerType = "expert_diagnosis"
	AnswerMetricAlert     AnswerType = "metric_alert"
	AnswerPreventive      AnswerType = "preventive"
	AnswerNeedMoreInfo    AnswerType = "need_more_info"
)

// Valid reports whether t is one of the known answer types.
func (t AnswerType) Valid() bool {
	switch t {
	case AnswerEmergency, AnswerKBMatch, AnswerExpertDiagnosis, AnswerMetricAlert, AnswerPreventive, AnswerNeedMoreInfo:
		return true
	}
	return false
}

// Priority is the urgency tier used as the primary sort key.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
)

// Rank orders priorities from NORMAL (1) to CRITICAL (5). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 5
	case PriorityHigh:
		return 4
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 2
	case PriorityNormal:
		return 1
	}
	return 0
}

// Confidence expresses how certain a match or diagnosis is.
type Confidence string

const (
	ConfidencePerfect Confidence = "perfect"
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
)

// Rank orders confidence tiers from low (1) to perfect (4). Unknown values rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidencePerfect:
		return 4
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Strong reports whether the tier is perfect or high.
func (c Confidence) Strong() bool {
	return c == ConfidencePerfect || c == ConfidenceHigh
}

// Answer is the externally visible unit returned for a question.
// MatchScore and RelevanceScore are only set for knowledge-base matches.
type Answer struct {
	Type                 AnswerType `json:"type" yaml:"type"`
	Content              string     `json:"content" yaml:"content"`
	Category             string     `json:"category,omitempty" yaml:"category"`
	Confidence           Confidence `json:"confidence" yaml:"confidence"`
	Priority             Priority   `json:"priority" yaml:"priority"`
	MatchScore           *float64   `json:"match_score,omitempty" yaml:"-"`
	RelevanceScore       *float64   `json:"relevance_score,omitempty" yaml:"-"`
	RuleAdvice           []string   `json:"rule_advice,omitempty" yaml:"rule_advice"`
	TroubleshootingSteps []string   `json:"troubleshooting_steps,omitempty" yaml:"troubleshooting_steps"`
	SourceQuestion       string     `json:"source_question,omitempty" yaml:"-"`
}

// Score returns the match score, or 0 when the answer has none.
func (a Answer) Score() float64 {
	if a.MatchScore == nil {
		return 0
	}
	return *a.MatchScore
}

// Relevance returns the relevance score, or 0 when the answer has none.
func (a Answer) Relevance() float64 {
	if a.RelevanceScore == nil {
		return 0
	}
	return *a.RelevanceScore
}

// Clone returns a deep copy so callers can modify the result without
// touching shared templates.
func (a Answer) Clone() Answer {
	out := a
	if a.MatchScore != nil {
		v := *a.MatchScore
		out.MatchScore = &v
	}
	if a.RelevanceScore != nil {
		v := *a.RelevanceScore
		out.RelevanceScore = &v
	}
	if a.RuleAdvice != nil {
		out.RuleAdvice = append([]string(nil), a.RuleAdvice...)
	}
	if a.TroubleshootingSteps != nil {
		out.TroubleshootingSteps = append([]string(nil), a.TroubleshootingSteps...)
	}
	return out
}

// Float returns a pointer to v, for the optional score fields.
func Float(v float64) *float64 {
	return &v
}

// SearchDepth is the UI-origin hint controlling how many answers are returned.
type SearchDepth string

const (
	SearchBasic         SearchDepth = "Basic"
	SearchStandard      SearchDepth = "Standard"
	SearchComprehensive SearchDepth = "Comprehensive"
)

// MaxAnswers maps the depth to a result cap. Unknown or empty depths return 0,
// meaning "use the default".
func (d SearchDepth) MaxAnswers() int {
	switch strings.ToLower(strings.TrimSpace(string(d))) {
	case "basic":
		return 3
	case "standard":
		return 4
	case "comprehensive":
		return 6
	}
	return 0
}

// SystemMetrics carries optional sensor readings and UI hints. Zero values
// mean "not supplied".
type SystemMetrics struct {
	CPUTemp              float64     `json:"cpu_temp,omitempty"`
	GPUTemp              float64     `json:"gpu_temp,omitempty"`
	MemoryUsage          float64     `json:"memory_usage,omitempty"`
	SearchDepth          SearchDepth `json:"search_depth,omitempty"`
	DebugMode            bool        `json:"debug_mode,omitempty"`
	UserSelectedCategory string      `json:"user_selected_category,omitempty"`
}
