package database

import (
	"context"
	"os"
	"testing"
	"time"

	apperrors "techsupport-agent/errors"
	"techsupport-agent/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPostgresStoreRejectsEmptyURL(t *testing.T) {
	_, err := NewPostgresStore("", zap.NewNop())
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}

// newIntegrationStore connects to TEST_DATABASE_URL or skips.
func newIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := NewPostgresStore(url, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func TestKnowledgeBaseRoundTrip(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	base := knowledge.NewBase([]knowledge.Category{
		{Label: "Audio", Entries: []knowledge.Entry{
			{Question: "No sound?", Answer: "Check the mute switch."},
			{Question: "Crackling speakers?", Answer: ""},
		}},
		{Label: "Empty"},
		{Label: "Networking", Entries: []knowledge.Entry{{Question: "WiFi drops?", Answer: "Update the driver."}}},
	})

	written, err := store.ImportKnowledgeBase(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	loaded, err := store.LoadKnowledgeBase(ctx)
	require.NoError(t, err)
	assert.Equal(t, base.Entries(), loaded.Entries())
	assert.Equal(t, []string{"Audio", "Empty", "Networking"}, loaded.Stats().Labels)

	_, err = store.ImportKnowledgeBase(ctx, knowledge.NewBase(nil))
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestQuestionHistory(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	old := HistoryRecord{Question: "old question", CreatedAt: time.Now().Add(-48 * time.Hour)}
	recent := HistoryRecord{
		Question:    "computer is slow",
		AnswerTypes: []string{"kb_match", "preventive"},
		TopCategory: "Performance",
		Symptoms:    []string{"slow"},
	}
	require.NoError(t, store.RecordQuestion(ctx, old))
	require.NoError(t, store.RecordQuestion(ctx, recent))

	records, err := store.RecentQuestions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "computer is slow", records[0].Question)
	assert.Equal(t, []string{"kb_match", "preventive"}, records[0].AnswerTypes)

	deleted, err := store.DeleteHistoryOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))
}
