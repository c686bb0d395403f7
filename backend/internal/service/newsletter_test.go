package service

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unsubscribeLink = regexp.MustCompile(`https://example\.org/newsletter/unsubscribe\?token=(\S+)`)

func TestNewsletterSubscribe(t *testing.T) {
	ctx := context.Background()
	store := &memCollection[domain.Subscriber]{}
	mailer := &MockMailer{}
	svc := NewNewsletter(store, mailer, jwt.New("test-key"), "https://example.org", fixedClock(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, svc.Subscribe(ctx, api.SubscribeRequest{Email: "Mary@Example.org", Name: "Mary", Lang: "ta"}))
	require.Len(t, store.items, 1)
	assert.Equal(t, "mary@example.org", store.items[0].Email)
	assert.Equal(t, domain.LangTamil, store.items[0].Lang)
	require.Len(t, mailer.Sent(), 1)

	t.Run("duplicate is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Subscribe(ctx, api.SubscribeRequest{Email: "mary@example.org"}))
		assert.Len(t, store.items, 1)
		assert.Len(t, mailer.Sent(), 1)
	})

	t.Run("unsubscribe then resubscribe", func(t *testing.T) {
		m := unsubscribeLink.FindStringSubmatch(mailer.Sent()[0].Body)
		require.Len(t, m, 2)

		require.NoError(t, svc.Unsubscribe(ctx, m[1]))
		assert.False(t, store.items[0].Active())

		require.NoError(t, svc.Unsubscribe(ctx, m[1]), "unsubscribing twice succeeds")

		require.NoError(t, svc.Subscribe(ctx, api.SubscribeRequest{Email: "mary@example.org"}))
		assert.Len(t, store.items, 1)
		assert.True(t, store.items[0].Active())
		assert.Len(t, mailer.Sent(), 2)
	})

	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, statusOf(t, svc.Unsubscribe(ctx, "nope")))
	})

	t.Run("token for unknown subscriber", func(t *testing.T) {
		token, err := jwt.New("test-key").NewToken(jwt.PurposeUnsubscribe, "missing", 0)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, statusOf(t, svc.Unsubscribe(ctx, token)))
	})
}
