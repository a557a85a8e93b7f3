package stores

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Journal is an append-only log of event envelopes kept in the SQLite store.
type Journal struct {
	store  *SQLiteStore
	codec  *events.Codec
	logger *telemetry.Logger
}

// JournalEntry is one recorded event.
type JournalEntry struct {
	Seq      int64
	Envelope events.Envelope
	Event    events.Event
}

// JournalFilter selects journal entries.
type JournalFilter struct {
	// Kind limits entries to one event kind when set.
	Kind events.Kind

	// After skips entries with a sequence number at or below it.
	After int64

	// Limit caps the number of entries returned. Zero means no limit.
	Limit int
}

// NewJournal returns a journal writing envelopes encoded by codec.
func NewJournal(store *SQLiteStore, codec *events.Codec) *Journal {
	return &Journal{
		store:  store,
		codec:  codec,
		logger: store.logger.NewComponentLogger("journal"),
	}
}

// Append seals event and writes its envelope to the log.
func (j *Journal) Append(ctx context.Context, event events.Event) (events.Envelope, error) {
	env, err := j.codec.Seal(event)
	if err != nil {
		return events.Envelope{}, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return events.Envelope{}, fmt.Errorf("failed to encode event envelope: %w", err)
	}

	_, err = j.store.db.ExecContext(ctx,
		`INSERT INTO event_log (id, kind, timestamp, envelope) VALUES (?, ?, ?, ?)`,
		env.ID.String(), string(env.Kind), env.Timestamp, string(data),
	)
	if err != nil {
		return events.Envelope{}, fmt.Errorf("failed to append event: %w", err)
	}
	return env, nil
}

// List returns recorded events in append order.
func (j *Journal) List(ctx context.Context, filter JournalFilter) ([]JournalEntry, error) {
	query := `SELECT seq, envelope FROM event_log WHERE seq > ?`
	args := []any{filter.After}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY seq`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := j.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []JournalEntry
	for rows.Next() {
		var seq int64
		var data string
		if err := rows.Scan(&seq, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		env, event, err := j.codec.Unmarshal([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", seq, err)
		}
		entries = append(entries, JournalEntry{Seq: seq, Envelope: env, Event: event})
	}
	return entries, rows.Err()
}

// Len returns the number of recorded events.
func (j *Journal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Record subscribes j to every event of type T on r. Append failures are
// logged and dropped.
func Record[T events.Event](r events.Registrar, j *Journal) (*events.Subscription, error) {
	return events.Subscribe(r, func(e T) {
		if _, err := j.Append(context.Background(), e); err != nil {
			j.logger.WithEventKind(string(e.Kind())).WithError(err).Warn("failed to journal event")
		}
	})
}
