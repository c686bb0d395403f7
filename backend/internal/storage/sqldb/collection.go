package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ptchurch/site/backend/internal/service"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/middleware/metrics"
	"github.com/ptchurch/site/shared/storage/pg"
)

type Collection[T domain.Record] struct {
	s    *Storage
	name string
}

var _ service.Collection[domain.RSVP] = (*Collection[domain.RSVP])(nil)

func NewCollection[T domain.Record](s *Storage, name string) *Collection[T] {
	return &Collection[T]{s: s, name: name}
}

func (c *Collection[T]) q(query string) string {
	return c.s.dialect.rebind(query)
}

func (c *Collection[T]) List(ctx context.Context, filter func(T) bool) ([]T, error) {
	rows, err := c.s.db.QueryContext(ctx,
		c.q(`SELECT body FROM records WHERE collection = ? ORDER BY seq`), c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c.name, err)
		}
		var rec T
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", c.name, err)
		}
		if filter == nil || filter(rec) {
			out = append(out, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.get(ctx, c.s.db, id, "")
}

func (c *Collection[T]) get(ctx context.Context, q pg.Querier, id, suffix string) (T, error) {
	var rec T
	var body []byte
	err := q.QueryRowContext(ctx,
		c.q(`SELECT body FROM records WHERE collection = ? AND id = ?`+suffix), c.name, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, service.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("failed to read %s record: %w", c.name, err)
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s record: %w", c.name, err)
	}
	return rec, nil
}

func (c *Collection[T]) Add(ctx context.Context, rec T) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", c.name, err)
	}
	_, err = c.s.db.ExecContext(ctx,
		c.q(`INSERT INTO records (collection, id, created_at, body) VALUES (?, ?, ?, ?)`),
		c.name, rec.GetId(), rec.GetCreatedAt().UnixNano(), string(body))
	if err != nil {
		return fmt.Errorf("failed to insert %s record: %w", c.name, err)
	}
	metrics.StoreWrite(c.name, "add")
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch func(*T) error) (T, error) {
	var updated T
	err := pg.WithTx(ctx, c.s.db, func(tx *sql.Tx) error {
		rec, err := c.get(ctx, tx, id, c.s.dialect.lockSuffix)
		if err != nil {
			return err
		}
		if err := patch(&rec); err != nil {
			return err
		}
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", c.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			c.q(`UPDATE records SET body = ? WHERE collection = ? AND id = ?`),
			string(body), c.name, id); err != nil {
			return fmt.Errorf("failed to update %s record: %w", c.name, err)
		}
		updated = rec
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	metrics.StoreWrite(c.name, "update")
	return updated, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.s.db.ExecContext(ctx,
		c.q(`DELETE FROM records WHERE collection = ? AND id = ?`), c.name, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", c.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", c.name, err)
	}
	if n == 0 {
		return service.ErrNotFound
	}
	metrics.StoreWrite(c.name, "delete")
	return nil
}
