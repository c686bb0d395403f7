package service

import (
	"context"
	"fmt"

	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/jwt"
	"github.com/ptchurch/site/shared/logger"
	shared_utils "github.com/ptchurch/site/shared/utils"
)

type NewsletterService interface {
	// Subscribe is a no-op for an address that is already subscribed and
	// reactivates one that unsubscribed earlier.
	Subscribe(ctx context.Context, req api.SubscribeRequest) error
	Unsubscribe(ctx context.Context, token string) error
}

type Newsletter struct {
	store      Collection[domain.Subscriber]
	mailer     Mailer
	jwt        Jwt
	siteOrigin string
	clock      Clock
}

func NewNewsletter(store Collection[domain.Subscriber], mailer Mailer, jwt Jwt, siteOrigin string, clock Clock) NewsletterService {
	return &Newsletter{store: store, mailer: mailer, jwt: jwt, siteOrigin: siteOrigin, clock: clock}
}

func (n *Newsletter) Subscribe(ctx context.Context, req api.SubscribeRequest) error {
	addr := utils.NormalizeEmail(req.Email)
	existing, err := n.store.List(ctx, func(s domain.Subscriber) bool { return s.Email == addr })
	if err != nil {
		return err
	}

	var sub domain.Subscriber
	switch {
	case len(existing) > 0 && existing[0].Active():
		return nil
	case len(existing) > 0:
		sub, err = n.store.Update(ctx, existing[0].Id, func(s *domain.Subscriber) error {
			s.UnsubscribedAt = nil
			if req.Lang != "" {
				s.Lang = domain.NormalizeLang(req.Lang)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to resubscribe: %w", err)
		}
		logger.Log.Info("subscriber reactivated", "component", "newsletter", "id", sub.Id)
	default:
		sub = domain.Subscriber{
			RecordMeta: domain.RecordMeta{
				Id:        shared_utils.NewID(),
				CreatedAt: n.clock.now().UTC(),
				Approved:  true,
			},
			Email: addr,
			Name:  utils.CleanText(req.Name),
			Lang:  domain.NormalizeLang(req.Lang),
		}
		if err := n.store.Add(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscriber: %w", err)
		}
		logger.Log.Info("subscriber added", "component", "newsletter", "id", sub.Id)
	}

	token, err := n.jwt.NewToken(jwt.PurposeUnsubscribe, sub.Id, 0)
	if err != nil {
		return err
	}
	sendBestEffort(n.mailer, newsletterWelcome(sub, tokenURL(n.siteOrigin, "/newsletter/unsubscribe", token)), "newsletter")
	return nil
}

func (n *Newsletter) Unsubscribe(ctx context.Context, token string) error {
	id, err := n.jwt.DecodeToken(token, jwt.PurposeUnsubscribe)
	if err != nil {
		return err
	}
	now := n.clock.now().UTC()
	if _, err := n.store.Update(ctx, id, func(s *domain.Subscriber) error {
		if s.UnsubscribedAt == nil {
			s.UnsubscribedAt = &now
		}
		return nil
	}); err != nil {
		return notFound(err, "Subscriber not found")
	}
	logger.Log.Info("subscriber unsubscribed", "component", "newsletter", "id", id)
	return nil
}
