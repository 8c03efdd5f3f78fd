package types

import (
	"techsupport-agent/reasoning"
	"techsupport-agent/types"
)

// AskRequest is the body of POST /api/ask and the form of POST /ask.
type AskRequest struct {
	Question             string               `json:"question" form:"question"`
	Metrics              *types.SystemMetrics `json:"metrics,omitempty"`
	SearchDepth          types.SearchDepth    `json:"search_depth,omitempty" form:"search_depth"`
	DebugMode            bool                 `json:"debug_mode,omitempty" form:"debug_mode"`
	UserSelectedCategory string               `json:"user_selected_category,omitempty" form:"user_selected_category"`
	Format               string               `json:"format,omitempty" form:"format"`

	// RequestID is assigned by the server, never read from the body.
	RequestID string `json:"-" form:"-"`
}

// SystemMetrics merges the flat request hints into the nested metrics.
// Nested values win over flat ones. Returns nil when nothing was supplied.
func (r AskRequest) SystemMetrics() *types.SystemMetrics {
	var m types.SystemMetrics
	if r.Metrics != nil {
		m = *r.Metrics
	}
	if m.SearchDepth == "" {
		m.SearchDepth = r.SearchDepth
	}
	if m.UserSelectedCategory == "" {
		m.UserSelectedCategory = r.UserSelectedCategory
	}
	m.DebugMode = m.DebugMode || r.DebugMode

	if m == (types.SystemMetrics{}) {
		return nil
	}
	return &m
}

// AnswerView is an answer with optional rendered HTML.
type AnswerView struct {
	types.Answer
	ContentHTML string `json:"content_html,omitempty"`
}

// AskResponse is returned by POST /api/ask.
type AskResponse struct {
	RequestID string             `json:"request_id"`
	Answers   []AnswerView       `json:"answers"`
	Symptoms  []string           `json:"symptoms"`
	Emergency bool               `json:"emergency"`
	Analysis  reasoning.Analysis `json:"analysis"`
	Trace     *reasoning.Trace   `json:"trace,omitempty"`
}
