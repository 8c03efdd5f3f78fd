package services

import (
	"sync"

	"techsupport-agent/database"

	lru "github.com/hashicorp/golang-lru"
)

// History keeps the most recent questions in memory, bounded by size.
type History struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewHistory creates a history holding up to size records.
func NewHistory(size int) (*History, error) {
	if size <= 0 {
		size = 50
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &History{cache: cache}, nil
}

// Add stores rec, evicting the oldest record when full.
func (h *History) Add(rec database.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.Add(rec.ID, rec)
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (h *History) Recent(limit int) []database.HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	keys := h.cache.Keys()
	if limit <= 0 || limit > len(keys) {
		limit = len(keys)
	}
	out := make([]database.HistoryRecord, 0, limit)
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		if v, ok := h.cache.Peek(keys[i]); ok {
			out = append(out, v.(database.HistoryRecord))
		}
	}
	return out
}

// Len returns the number of stored records.
func (h *History) Len() int {
	return h.cache.Len()
}
