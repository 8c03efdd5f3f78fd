package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techsupport-agent/reasoning"
	"techsupport-agent/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderObserve(t *testing.T) {
	r := NewRecorder(nil)

	r.Observe(reasoning.Observation{
		Outcome:    types.AnswerKBMatch,
		Symptoms:   []string{"slow", "overheating"},
		Candidates: 3,
		Accepted:   1,
		Duration:   2 * time.Millisecond,
	})
	r.Observe(reasoning.Observation{Outcome: types.AnswerEmergency})
	r.Observe(reasoning.Observation{Outcome: types.AnswerKBMatch, Symptoms: []string{"slow"}})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.queries.WithLabelValues("kb_match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queries.WithLabelValues("emergency")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.symptoms.WithLabelValues("slow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.symptoms.WithLabelValues("overheating")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "techsupport_reasoning_kb_candidates_count 2")
	assert.Contains(t, rec.Body.String(), "techsupport_reasoning_pipeline_duration_seconds_count 3")
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder(nil)
	r.RateLimited()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "techsupport_http_rate_limited_total 1")
}

func TestRecordersDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorder(nil)
		NewRecorder(nil)
	})
}
