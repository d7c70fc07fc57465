// Package dedup suppresses log lines emitted twice for the same event.
package dedup

import "sync"

// Window remembers the most recent timestamp seen for each message key.
// Entries are only ever upserted; a Window lives for one analysis run.
type Window struct {
	mu   sync.Mutex
	seen map[string]string
}

// NewWindow returns an empty window.
func NewWindow() *Window {
	return &Window{seen: make(map[string]string)}
}

// ShouldAccept reports whether a message should be counted. It rejects only
// a key whose most recent recorded timestamp equals timestamp; otherwise it
// records timestamp for key and accepts. The check and the update are atomic.
func (w *Window) ShouldAccept(key, timestamp string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.seen[key]; ok && last == timestamp {
		return false
	}
	w.seen[key] = timestamp
	return true
}

// Len returns the number of distinct keys seen.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
