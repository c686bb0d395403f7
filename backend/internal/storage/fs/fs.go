// Package fs stores record collections as JSON documents on the local disk,
// one file per collection, shaped {"version":1,"items":[...]}.
//
// Every write replaces the whole document through a temporary sibling and a
// rename, so a reader sees either the old or the new file. Writers in one
// process are serialised per file. Separate processes sharing a data
// directory still race: the last rename wins and the other update is lost.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ptchurch/site/backend/internal/service"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
)

const envelopeVersion = 1

type Storage struct {
	rootPath string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ service.Pinger = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", p, err)
	}
	return &Storage{rootPath: p, locks: make(map[string]*sync.Mutex)}, nil
}

// Ping checks that the data directory still exists and is writable.
func (s *Storage) Ping(ctx context.Context) error {
	f, err := os.CreateTemp(s.rootPath, ".ping-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func (s *Storage) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

// Collection is one JSON document holding records of type T.
type Collection[T domain.Record] struct {
	name string
	path string
	mu   *sync.Mutex
}

var _ service.Collection[domain.PrayerPost] = (*Collection[domain.PrayerPost])(nil)

// NewCollection returns the collection stored in <rootPath>/<name>.json.
// Collections opened twice under the same name share one lock.
func NewCollection[T domain.Record](s *Storage, name string) *Collection[T] {
	path := filepath.Join(s.rootPath, name+".json")
	return &Collection[T]{name: name, path: path, mu: s.lockFor(path)}
}

type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
	// Records is read for documents written under the older key name.
	Records []T `json:"records,omitempty"`
}

// load never fails: a missing, unreadable or foreign document is an empty
// collection.
func (c *Collection[T]) load() []T {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Warn("failed to read collection, treating as empty",
				"component", "fs_store", "collection", c.name, "error", err)
		}
		return nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Log.Warn("malformed collection file, treating as empty",
			"component", "fs_store", "collection", c.name, "error", err)
		return nil
	}
	if env.Version != envelopeVersion {
		logger.Log.Warn("unsupported collection version, treating as empty",
			"component", "fs_store", "collection", c.name, "version", env.Version)
		return nil
	}
	if env.Items == nil {
		return env.Records
	}
	return env.Items
}

func (c *Collection[T]) save(items []T, op string) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(envelope[T]{Version: envelopeVersion, Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", c.name, err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, "."+c.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection file: %w", err)
	}

	metrics.StoreWrite(c.name, op)
	return nil
}

func (c *Collection[T]) List(ctx context.Context, filter func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	items := c.load()
	c.mu.Unlock()

	out := make([]T, 0, len(items))
	for _, item := range items {
		if filter == nil || filter(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.Lock()
	items := c.load()
	c.mu.Unlock()

	for _, item := range items {
		if item.GetId() == id {
			return item, nil
		}
	}
	return zero, service.ErrNotFound
}

func (c *Collection[T]) Add(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items := append(c.load(), rec)
	return c.save(items, "add")
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch func(*T) error) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.load()
	for i := range items {
		if items[i].GetId() != id {
			continue
		}
		updated := items[i]
		if err := patch(&updated); err != nil {
			return zero, err
		}
		items[i] = updated
		if err := c.save(items, "update"); err != nil {
			return zero, err
		}
		return updated, nil
	}
	return zero, service.ErrNotFound
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.load()
	for i := range items {
		if items[i].GetId() == id {
			items = append(items[:i], items[i+1:]...)
			return c.save(items, "delete")
		}
	}
	return service.ErrNotFound
}
