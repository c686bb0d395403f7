package service

import (
	"context"
	"errors"

	"github.com/ptchurch/site/shared/domain"
)

// ErrNotFound is returned by Collection.Get, Update and Delete for an
// unknown id.
var ErrNotFound = errors.New("record not found")

// Collection is the record store a service works against. Implementations
// live in storage/fs (JSON files) and storage/sqldb (SQLite, Postgres).
type Collection[T domain.Record] interface {
	// List returns records in insertion order. A nil filter keeps all.
	List(ctx context.Context, filter func(T) bool) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Add(ctx context.Context, rec T) error
	// Update applies patch to the stored record and persists the result.
	// An error from patch aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, patch func(*T) error) (T, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports whether the backing store is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}
