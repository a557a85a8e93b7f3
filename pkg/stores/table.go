package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/mapper"
	"github.com/polocloud/polocloud/pkg/provider"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Table is the persistent store of one entity kind. Rows hold the CBOR wire
// snapshot of each entity, so a table reads back exactly what the wire
// mapper would deliver to a remote node.
type Table[K comparable, E any] struct {
	store *SQLiteStore
	codec *mapper.Codec[E]
	kind    string
	key     func(K) string
	metrics *telemetry.Metrics
}

var _ provider.Store[string, any] = (*Table[string, any])(nil)

// NewTable binds the entity kind of codec to store. key renders a provider
// key as the row key.
func NewTable[K comparable, E any](store *SQLiteStore, codec *mapper.Codec[E], key func(K) string) *Table[K, E] {
	return &Table[K, E]{
		store: store,
		codec: codec,
		kind:  string(codec.Kind()),
		key:   key,
	}
}

// WithMetrics counts rows that fail to encode or decode in m.
func (t *Table[K, E]) WithMetrics(m *telemetry.Metrics) *Table[K, E] {
	t.metrics = m
	return t
}

func (t *Table[K, E]) notFound(key K) error {
	return fault.NotFound(fmt.Sprintf("%s %q not found", t.kind, t.key(key))).WithEntity(t.kind)
}

func (t *Table[K, E]) decode(body []byte) (E, error) {
	e, err := t.codec.Unmarshal(body)
	if err != nil {
		t.metrics.RecordCodecError(t.kind, "decode")
		var none E
		return none, fmt.Errorf("failed to decode %s row: %w", t.kind, err)
	}
	return e, nil
}

func (t *Table[K, E]) encode(e E) ([]byte, error) {
	body, err := t.codec.Marshal(e)
	if err != nil {
		t.metrics.RecordCodecError(t.kind, "encode")
		return nil, fmt.Errorf("failed to encode %s: %w", t.kind, err)
	}
	return body, nil
}

// Get returns the entity under key.
func (t *Table[K, E]) Get(ctx context.Context, key K) (E, error) {
	var none E
	var body []byte
	err := t.store.db.QueryRowContext(ctx,
		`SELECT body FROM entities WHERE kind = ? AND key = ?`,
		t.kind, t.key(key),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return none, t.notFound(key)
	}
	if err != nil {
		return none, fmt.Errorf("failed to get %s: %w", t.kind, err)
	}
	return t.decode(body)
}

// List returns every entity of the table in insertion order.
func (t *Table[K, E]) List(ctx context.Context) ([]E, error) {
	rows, err := t.store.db.QueryContext(ctx,
		`SELECT body FROM entities WHERE kind = ? ORDER BY rowid`, t.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.kind, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []E
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.kind, err)
		}
		e, err := t.decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Insert stores e under a key that must not exist.
func (t *Table[K, E]) Insert(ctx context.Context, key K, e E) error {
	body, err := t.encode(e)
	if err != nil {
		return err
	}
	now := t.store.now().UnixMilli()
	res, err := t.store.db.ExecContext(ctx,
		`INSERT INTO entities (kind, key, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, key) DO NOTHING`,
		t.kind, t.key(key), body, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", t.kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", t.kind, err)
	}
	if n == 0 {
		return fault.Conflict(fmt.Sprintf("%s %q already exists", t.kind, t.key(key))).WithEntity(t.kind)
	}
	return nil
}

// Replace stores e under a key that must exist.
func (t *Table[K, E]) Replace(ctx context.Context, key K, e E) error {
	body, err := t.encode(e)
	if err != nil {
		return err
	}
	res, err := t.store.db.ExecContext(ctx,
		`UPDATE entities SET body = ?, updated_at = ? WHERE kind = ? AND key = ?`,
		body, t.store.now().UnixMilli(), t.kind, t.key(key),
	)
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", t.kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", t.kind, err)
	}
	if n == 0 {
		return t.notFound(key)
	}
	return nil
}

// Remove deletes and returns the entity under key.
func (t *Table[K, E]) Remove(ctx context.Context, key K) (E, error) {
	var none E
	var body []byte
	err := t.store.db.QueryRowContext(ctx,
		`DELETE FROM entities WHERE kind = ? AND key = ? RETURNING body`,
		t.kind, t.key(key),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return none, t.notFound(key)
	}
	if err != nil {
		return none, fmt.Errorf("failed to remove %s: %w", t.kind, err)
	}
	return t.decode(body)
}

// Len returns the number of rows in the table.
func (t *Table[K, E]) Len(ctx context.Context) (int, error) {
	var n int
	if err := t.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entities WHERE kind = ?`, t.kind,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.kind, err)
	}
	return n, nil
}
