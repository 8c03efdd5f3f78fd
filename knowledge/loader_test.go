package knowledge

import (
	"path/filepath"
	"strings"
	"testing"

	apperrors "techsupport-agent/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadFileSkipsMalformedRecords(t *testing.T) {
	base, err := LoadFile(filepath.Join("testdata", "facts.json"), zap.NewNop())
	require.NoError(t, err)

	stats := base.Stats()
	assert.Equal(t, []string{"Audio", "General", "Networking"}, stats.Labels)
	assert.Equal(t, 3, stats.Questions)

	entries := base.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Audio", entries[0].Category)
	assert.Equal(t, "How to fix no sound in headphones?", entries[0].Question)
	assert.Equal(t, "General", entries[1].Category)
	assert.Equal(t, "", entries[2].Answer, "missing answer decodes as empty")
}

func TestLoadFileYAML(t *testing.T) {
	base, err := LoadFile(filepath.Join("testdata", "facts.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "How do I free up disk space?", base.Entries()[0].Question)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.json"), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKnowledgeBase(err))

	_, err = Decode(strings.NewReader(`{"category": "not an array"}`), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKnowledgeBase(err))
}

func TestEntriesIn(t *testing.T) {
	base := NewBase([]Category{
		{Label: "Hardware", Entries: []Entry{{Question: "a"}}},
		{Label: "Audio Hardware", Entries: []Entry{{Question: "b"}}},
		{Label: "Networking", Entries: []Entry{{Question: "c"}}},
	})

	got := base.EntriesIn("hardware")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Question)
	assert.Equal(t, "Audio Hardware", got[1].Category)

	assert.Empty(t, base.EntriesIn("printing"))
	assert.Len(t, base.EntriesIn(""), 3)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	base := NewBase([]Category{{Label: "Audio", Entries: []Entry{{Question: "q", Answer: "a"}}}})

	cats := base.Categories()
	cats[0].Entries[0].Answer = "mutated"

	assert.Equal(t, "a", base.Entries()[0].Answer)
}

func TestNilBase(t *testing.T) {
	var base *Base
	assert.Zero(t, base.Len())
	assert.Nil(t, base.Entries())
	assert.Equal(t, Stats{Labels: []string{}}, base.Stats())
}
