package addressbook

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/addressbook/internal/events"
)

// NotifyingBook publishes an entry.added event after each successful append.
// A failed publish is logged; the entry stays appended.
type NotifyingBook struct {
	Book
	publisher events.Publisher
	logger    *slog.Logger
}

// NewNotifyingBook wraps book so appends are announced on publisher.
func NewNotifyingBook(book Book, publisher events.Publisher, logger *slog.Logger) *NotifyingBook {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyingBook{Book: book, publisher: publisher, logger: logger}
}

// AddAddress appends via the wrapped book, then publishes.
func (b *NotifyingBook) AddAddress(ctx context.Context, entry Entry) error {
	if err := b.Book.AddAddress(ctx, entry); err != nil {
		return err
	}

	event := events.Event{
		Type:       events.TypeEntryAdded,
		OccurredAt: time.Now().UTC(),
		Data:       entry,
	}
	if err := b.publisher.Publish(ctx, event); err != nil {
		b.logger.Warn("failed to publish entry event", "error", err, "entry_id", entry.ID)
	}
	return nil
}
