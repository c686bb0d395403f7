package service

import (
	"context"
	"time"
)

type HealthService interface {
	// Ready reports whether the record store answers within the deadline.
	Ready(ctx context.Context) error
}

type Health struct {
	store   Pinger
	timeout time.Duration
}

func NewHealth(store Pinger, timeout time.Duration) HealthService {
	return &Health{store: store, timeout: timeout}
}

func (h *Health) Ready(ctx context.Context) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return h.store.Ping(ctx)
}
