package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type MockPinger struct {
	pingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func TestHealthReady(t *testing.T) {
	assert.NoError(t, NewHealth(&MockPinger{}, time.Second).Ready(context.Background()))

	failing := &MockPinger{pingFunc: func(context.Context) error { return errors.New("down") }}
	assert.Error(t, NewHealth(failing, time.Second).Ready(context.Background()))

	var hadDeadline bool
	p := &MockPinger{pingFunc: func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}}
	assert.NoError(t, NewHealth(p, time.Second).Ready(context.Background()))
	assert.True(t, hadDeadline)
}
