package engine

import (
	"sync"

	"github.com/nadim/script-playground/internal/sandbox"
)

// History is a fixed-capacity ring buffer of past execution results.
// Appending beyond capacity evicts the oldest entry. Entries are never
// mutated after append; reads return copies, newest first.
type History struct {
	mu      sync.Mutex
	entries []sandbox.HistoryEntry
	head    int // index of the oldest entry
	size    int
}

// NewHistory creates a History with the given capacity.
// A capacity <= 0 falls back to sandbox.HistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = sandbox.HistoryCapacity
	}
	return &History{entries: make([]sandbox.HistoryEntry, capacity)}
}

// Append records a completed execution, evicting the oldest entry when the
// ring is full.
func (h *History) Append(entry sandbox.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	capacity := len(h.entries)
	if h.size < capacity {
		h.entries[(h.head+h.size)%capacity] = entry
		h.size++
		return
	}
	h.entries[h.head] = entry
	h.head = (h.head + 1) % capacity
}

// Entries returns the recorded entries, newest first.
func (h *History) Entries() []sandbox.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	capacity := len(h.entries)
	out := make([]sandbox.HistoryEntry, 0, h.size)
	for i := h.size - 1; i >= 0; i-- {
		out = append(out, h.entries[(h.head+i)%capacity])
	}
	return out
}

// Len reports the number of recorded entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Clear discards all recorded entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.head = 0
	h.size = 0
	for i := range h.entries {
		h.entries[i] = sandbox.HistoryEntry{}
	}
}
