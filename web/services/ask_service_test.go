package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"techsupport-agent/database"
	apperrors "techsupport-agent/errors"
	"techsupport-agent/knowledge"
	"techsupport-agent/reasoning"
	"techsupport-agent/types"
	webtypes "techsupport-agent/web/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *reasoning.Engine {
	t.Helper()
	kb := knowledge.NewBase([]knowledge.Category{
		{Label: "Audio", Entries: []knowledge.Entry{
			{Question: "How to fix no sound in headphones?", Answer: "Check the audio output device and the volume mixer."},
		}},
		{Label: "Networking", Entries: []knowledge.Entry{
			{Question: "WiFi keeps disconnecting", Answer: "Update the wireless driver and disable power saving on the adapter."},
		}},
	})
	engine, err := reasoning.NewEngine(kb, nil, nil, zap.NewNop(), reasoning.Options{})
	require.NoError(t, err)
	return engine
}

type stubRecorder struct {
	mu      sync.Mutex
	records []database.HistoryRecord
	err     error
}

func (s *stubRecorder) RecordQuestion(_ context.Context, rec database.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

func (s *stubRecorder) RecentQuestions(_ context.Context, limit int) ([]database.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []database.HistoryRecord{}
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func TestAskServiceAsk(t *testing.T) {
	history, err := NewHistory(10)
	require.NoError(t, err)
	recorder := &stubRecorder{}
	svc := NewAskService(newTestEngine(t), history, recorder, zap.NewNop(), 200)

	resp, err := svc.Ask(context.Background(), webtypes.AskRequest{
		Question: "  wifi   keeps disconnecting ",
		Format:   FormatHTML,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(resp.RequestID)
	assert.NoError(t, err)
	require.NotEmpty(t, resp.Answers)
	assert.Equal(t, "Networking", resp.Answers[0].Category)
	assert.Contains(t, resp.Answers[0].ContentHTML, "<p>")
	assert.Equal(t, "wifi keeps disconnecting", resp.Analysis.Question)
	assert.Equal(t, len(resp.Answers), resp.Analysis.Total)
	assert.Nil(t, resp.Trace)
	assert.NotNil(t, resp.Symptoms)

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, resp.RequestID, rec.ID.String())
	assert.Equal(t, "Networking", rec.TopCategory)
	assert.Equal(t, string(types.AnswerKBMatch), rec.AnswerTypes[0])
	assert.Equal(t, []database.HistoryRecord{rec}, svc.History(context.Background(), 0))
}

func TestAskServiceRejectsInvalidInput(t *testing.T) {
	svc := NewAskService(newTestEngine(t), nil, nil, nil, 10)

	_, err := svc.Ask(context.Background(), webtypes.AskRequest{Question: "   "})
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = svc.Ask(context.Background(), webtypes.AskRequest{Question: "this question is far too long"})
	assert.True(t, apperrors.IsInvalidInput(err))

	assert.Empty(t, svc.History(context.Background(), 5))
}

func TestAskServiceEmergencyAndDebug(t *testing.T) {
	svc := NewAskService(newTestEngine(t), nil, nil, zap.NewNop(), 0)

	resp, err := svc.Ask(context.Background(), webtypes.AskRequest{Question: "my laptop caught fire"})
	require.NoError(t, err)
	assert.True(t, resp.Emergency)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, types.AnswerEmergency, resp.Answers[0].Type)
	assert.Empty(t, resp.Answers[0].ContentHTML)

	resp, err = svc.Ask(context.Background(), webtypes.AskRequest{Question: "no sound in headphones", DebugMode: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Trace)
	assert.Contains(t, resp.Trace.ActiveSymptoms, "no_sound")
}

func TestAskServiceSearchDepth(t *testing.T) {
	svc := NewAskService(newTestEngine(t), nil, nil, zap.NewNop(), 0)
	question := "pc is slow and crashing with blue screen, screen flickering, wifi not working, clicking noise"

	resp, err := svc.Ask(context.Background(), webtypes.AskRequest{Question: question, SearchDepth: types.SearchBasic})
	require.NoError(t, err)
	assert.Len(t, resp.Answers, 3)
}

func TestAskServiceHistoryFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	stored := []database.HistoryRecord{
		{ID: uuid.New(), Question: "older question"},
		{ID: uuid.New(), Question: "old question"},
	}

	t.Run("cold_cache_reads_store", func(t *testing.T) {
		history, err := NewHistory(10)
		require.NoError(t, err)
		recorder := &stubRecorder{records: append([]database.HistoryRecord(nil), stored...)}
		svc := NewAskService(newTestEngine(t), history, recorder, zap.NewNop(), 0)

		got := svc.History(ctx, 5)
		require.Len(t, got, 2)
		assert.Equal(t, "old question", got[0].Question)
		assert.Equal(t, "older question", got[1].Question)
	})

	t.Run("warm_cache_skips_store", func(t *testing.T) {
		history, err := NewHistory(10)
		require.NoError(t, err)
		history.Add(database.HistoryRecord{ID: uuid.New(), Question: "cached question"})
		recorder := &stubRecorder{records: append([]database.HistoryRecord(nil), stored...)}
		svc := NewAskService(newTestEngine(t), history, recorder, zap.NewNop(), 0)

		got := svc.History(ctx, 1)
		require.Len(t, got, 1)
		assert.Equal(t, "cached question", got[0].Question)
	})

	t.Run("store_error_keeps_cache", func(t *testing.T) {
		history, err := NewHistory(10)
		require.NoError(t, err)
		history.Add(database.HistoryRecord{ID: uuid.New(), Question: "cached question"})
		recorder := &stubRecorder{err: errors.New("connection refused")}
		svc := NewAskService(newTestEngine(t), history, recorder, zap.NewNop(), 0)

		got := svc.History(ctx, 5)
		require.Len(t, got, 1)
		assert.Equal(t, "cached question", got[0].Question)
	})
}

func TestAskServiceRecorderFailureIsNotFatal(t *testing.T) {
	recorder := &stubRecorder{err: errors.New("connection refused")}
	svc := NewAskService(newTestEngine(t), nil, recorder, zap.NewNop(), 0)

	_, err := svc.Ask(context.Background(), webtypes.AskRequest{Question: "wifi keeps disconnecting"})
	assert.NoError(t, err)
	assert.Len(t, recorder.records, 1)
}

func TestHistoryRecent(t *testing.T) {
	history, err := NewHistory(3)
	require.NoError(t, err)

	for i := range 5 {
		history.Add(database.HistoryRecord{ID: uuid.New(), Question: fmt.Sprintf("q%d", i)})
	}

	questions := func(recs []database.HistoryRecord) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.Question
		}
		return out
	}

	assert.Equal(t, 3, history.Len())
	assert.Equal(t, []string{"q4", "q3", "q2"}, questions(history.Recent(0)))
	assert.Equal(t, []string{"q4"}, questions(history.Recent(1)))
	assert.Equal(t, []string{"q4", "q3", "q2"}, questions(history.Recent(10)))
}

func TestAskRequestSystemMetrics(t *testing.T) {
	assert.Nil(t, webtypes.AskRequest{Question: "x"}.SystemMetrics())

	m := webtypes.AskRequest{
		Metrics:              &types.SystemMetrics{CPUTemp: 80, SearchDepth: types.SearchComprehensive},
		SearchDepth:          types.SearchBasic,
		UserSelectedCategory: "audio",
		DebugMode:            true,
	}.SystemMetrics()
	require.NotNil(t, m)
	assert.Equal(t, types.SearchComprehensive, m.SearchDepth)
	assert.Equal(t, "audio", m.UserSelectedCategory)
	assert.True(t, m.DebugMode)
	assert.Equal(t, 80.0, m.CPUTemp)
}
