package explore

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity is how many recent explorations are retained.
const DefaultHistoryCapacity = 50

// HistoryEntry is one retained exploration.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Result    *Result   `json:"result,omitempty"`
}

// HistoryStats aggregates the retained entries for analytics.
type HistoryStats struct {
	Explorations       int     `json:"explorations"`
	AvgElapsedMs       float64 `json:"avgElapsedMs"`
	AvgPathsFound      float64 `json:"avgPathsFound"`
	AvgConfidence      float64 `json:"avgConfidence"`
	AvgNodesExplored   float64 `json:"avgNodesExplored"`
	TotalExternalCalls int     `json:"totalExternalCalls"`
}

// History is a fixed-capacity ring buffer of recent explorations, the only
// state that outlives a single Explore call. Oldest entries are evicted on
// overflow. Safe for concurrent use; one engine instance may serve several
// callers.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []HistoryEntry
}

// NewHistory creates a History with the given capacity; non-positive
// capacities fall back to the default.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Add appends an entry, evicting the oldest when over capacity.
func (h *History) Add(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Entries returns the retained entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Stats aggregates performance counters across retained entries.
func (h *History) Stats() HistoryStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := HistoryStats{Explorations: len(h.entries)}
	if len(h.entries) == 0 {
		return stats
	}

	for _, e := range h.entries {
		if e.Result == nil {
			continue
		}
		stats.AvgElapsedMs += float64(e.Result.Metrics.ElapsedMs)
		stats.AvgPathsFound += float64(e.Result.Metrics.PathsFound)
		stats.AvgConfidence += e.Result.Metrics.AverageConfidence
		stats.AvgNodesExplored += float64(e.Result.Metrics.NodesExplored)
		stats.TotalExternalCalls += e.Result.Metrics.ExternalCallsMade
	}

	n := float64(len(h.entries))
	stats.AvgElapsedMs /= n
	stats.AvgPathsFound /= n
	stats.AvgConfidence /= n
	stats.AvgNodesExplored /= n
	return stats
}
