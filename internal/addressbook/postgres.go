package addressbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/addressbook/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by PostgresBook.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresBook persists entries in the address_book_entries table.
type PostgresBook struct {
	db DBTX
}

// Compile-time check to ensure PostgresBook implements Book.
var _ Book = (*PostgresBook)(nil)

// NewPostgresBook creates a book backed by db (normally a *pgxpool.Pool).
func NewPostgresBook(db DBTX) *PostgresBook {
	return &PostgresBook{db: db}
}

const insertEntrySQL = `
INSERT INTO address_book_entries
    (candidate_id, postcode, street, house_number, extra, first_name, last_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const listEntriesSQL = `
SELECT candidate_id, postcode, street, house_number, extra, first_name, last_name, created_at
FROM address_book_entries
ORDER BY id`

// AddAddress inserts the entry. CreatedAt defaults to now.
func (b *PostgresBook) AddAddress(ctx context.Context, entry Entry) error {
	const op = "addressbook.add"

	extra, err := marshalExtra(entry.Address.Extra)
	if err != nil {
		return domain.Internal(err, op, "failed to encode address fields")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = b.db.Exec(ctx, insertEntrySQL,
		entry.ID,
		entry.Address.Postcode,
		entry.Address.Street,
		entry.Address.HouseNumber,
		extra,
		entry.FirstName,
		entry.LastName,
		createdAt,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to save address book entry")
	}
	return nil
}

// Entries lists every stored entry oldest first.
func (b *PostgresBook) Entries(ctx context.Context) ([]Entry, error) {
	const op = "addressbook.list"

	rows, err := b.db.Query(ctx, listEntriesSQL)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list address book entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			extra []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.Address.Postcode,
			&e.Address.Street,
			&e.Address.HouseNumber,
			&extra,
			&e.FirstName,
			&e.LastName,
			&e.CreatedAt,
		); err != nil {
			return nil, domain.Internal(err, op, "failed to scan address book entry")
		}
		if e.Address.Extra, err = unmarshalExtra(extra); err != nil {
			return nil, domain.Internal(err, op, "failed to decode address fields")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to list address book entries")
	}

	return entries, nil
}

func marshalExtra(extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("marshal extra: %w", err)
	}
	return b, nil
}

func unmarshalExtra(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
