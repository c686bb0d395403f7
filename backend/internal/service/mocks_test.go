package service

import (
	"context"
	"sync"
	"time"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/backend/internal/utils/email"
	"github.com/ptchurch/site/shared/domain"
)

// memCollection is an in-memory Collection used by the service tests.
type memCollection[T domain.Record] struct {
	mu      sync.Mutex
	items   []T
	addErr  error
	updates int
}

func (m *memCollection[T]) List(ctx context.Context, filter func(T) bool) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.items))
	for _, it := range m.items {
		if filter == nil || filter(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCollection[T]) Get(ctx context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.GetId() == id {
			return it, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (m *memCollection[T]) Add(ctx context.Context, rec T) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, rec)
	return nil
}

func (m *memCollection[T]) Update(ctx context.Context, id string, patch func(*T) error) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	for i := range m.items {
		if m.items[i].GetId() != id {
			continue
		}
		rec := m.items[i]
		if err := patch(&rec); err != nil {
			return zero, err
		}
		m.items[i] = rec
		m.updates++
		return rec, nil
	}
	return zero, ErrNotFound
}

func (m *memCollection[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].GetId() == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// MockMailer records sent messages; sendFunc overrides the result.
type MockMailer struct {
	mu       sync.Mutex
	sent     []email.Message
	sendFunc func(msg email.Message) error
}

func (m *MockMailer) Send(msg email.Message) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MockMailer) Sent() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

type fakeCatalog struct {
	services []content.Service
	events   []content.Event
	sermons  []content.Sermon
	posts    []content.BlogPost
}

func (f *fakeCatalog) Services() []content.Service { return f.services }

func (f *fakeCatalog) Service(slug string) (content.Service, bool) {
	for _, s := range f.services {
		if s.Slug == slug {
			return s, true
		}
	}
	return content.Service{}, false
}

func (f *fakeCatalog) Events() []content.Event { return f.events }

func (f *fakeCatalog) Event(slug string) (content.Event, bool) {
	for _, e := range f.events {
		if e.Slug == slug {
			return e, true
		}
	}
	return content.Event{}, false
}

func (f *fakeCatalog) Sermons(series, speaker string) []content.Sermon { return f.sermons }

func (f *fakeCatalog) BlogPosts(tag string) []content.BlogPost { return f.posts }

func (f *fakeCatalog) BlogPost(slug string) (content.BlogPost, bool) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return content.BlogPost{}, false
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var ist = time.FixedZone("IST", 5*3600+1800)
