// Package oplog holds the console's rolling diagnostic log and the
// single-slot ephemeral notification. Both are purely observational:
// nothing in the client reads them back to drive behavior.
package oplog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity matches the number of entries the log panel can show.
const DefaultCapacity = 16

// Entry is a single diagnostic record. Entries produced locally get a
// generated ID; entries imported from the audit history keep the
// server-assigned one.
type Entry struct {
	ID     string
	Time   time.Time
	Action string
	Detail string
}

// Buffer is a bounded, most-recent-first-out diagnostic log. Appending
// beyond capacity discards the oldest entries. The session refresher
// and teardown write from command goroutines while the update loop
// reads and replaces, so every access takes the mutex.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
	now      func() time.Time
}

// NewBuffer creates a buffer retaining at most capacity entries.
// A capacity below 1 falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		now:      time.Now,
	}
}

// Append records a new entry, evicting the oldest if the buffer is full.
func (b *Buffer) Append(action, detail string) Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := Entry{
		ID:     uuid.NewString(),
		Time:   b.now().UTC(),
		Action: action,
		Detail: detail,
	}
	if len(b.entries) >= b.capacity {
		b.entries = b.entries[len(b.entries)-b.capacity+1:]
	}
	b.entries = append(b.entries, entry)
	return entry
}

// Replace swaps the buffer contents wholesale, keeping at most the
// first capacity entries. The admin poller uses this to mirror the
// server-side audit history into the panel.
func (b *Buffer) Replace(entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(entries) > b.capacity {
		entries = entries[:b.capacity]
	}
	b.entries = append(b.entries[:0], entries...)
}

// Entries returns the retained entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries)
}
