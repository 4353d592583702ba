package addressbook

import (
	"context"
	"sync"
	"time"
)

// MemoryBook keeps entries in process memory.
type MemoryBook struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

var _ Book = (*MemoryBook)(nil)

// NewMemoryBook creates an empty in-memory book.
func NewMemoryBook() *MemoryBook {
	return &MemoryBook{now: time.Now}
}

// AddAddress appends a copy of entry, stamping CreatedAt if unset.
func (b *MemoryBook) AddAddress(ctx context.Context, entry Entry) error {
	entry = entry.clone()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = b.now()
	}

	b.mu.Lock()
	b.entries = append(b.entries, entry)
	b.mu.Unlock()
	return nil
}

// Entries returns copies of the stored entries.
func (b *MemoryBook) Entries(ctx context.Context) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.clone()
	}
	return out, nil
}

// Len returns the number of stored entries.
func (b *MemoryBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
