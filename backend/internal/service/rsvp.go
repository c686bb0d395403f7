package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/jwt"
	"github.com/ptchurch/site/shared/logger"
	shared_utils "github.com/ptchurch/site/shared/utils"
)

type RSVPService interface {
	// Create returns the stored RSVP and the link that cancels it.
	Create(ctx context.Context, eventSlug string, req api.CreateRSVPRequest) (domain.RSVP, string, error)
	Cancel(ctx context.Context, token string) (domain.RSVP, error)
	// List returns active RSVPs for an event and the total head count.
	List(ctx context.Context, eventSlug string) ([]domain.RSVP, int, error)
	// SendReminders mails every active RSVP whose event starts within the
	// lead time and has not been reminded yet. It returns the number sent.
	SendReminders(ctx context.Context) (int, error)
}

// EventLookup resolves event slugs; *content.Catalog implements it.
type EventLookup interface {
	Event(slug string) (content.Event, bool)
}

type RSVPConfig struct {
	SiteOrigin      string
	DefaultDuration time.Duration
	LeadTime        time.Duration
	Location        *time.Location
}

type RSVP struct {
	store  Collection[domain.RSVP]
	events EventLookup
	mailer Mailer
	jwt    Jwt
	cfg    RSVPConfig
	clock  Clock
}

func NewRSVP(store Collection[domain.RSVP], events EventLookup, mailer Mailer, jwt Jwt, cfg RSVPConfig, clock Clock) RSVPService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &RSVP{store: store, events: events, mailer: mailer, jwt: jwt, cfg: cfg, clock: clock}
}

func (s *RSVP) Create(ctx context.Context, eventSlug string, req api.CreateRSVPRequest) (domain.RSVP, string, error) {
	ev, ok := s.events.Event(eventSlug)
	if !ok || !ev.RSVP {
		return domain.RSVP{}, "", errors.NotFound("Event not found")
	}
	now := s.clock.now().In(s.cfg.Location)
	start, _, ok := ev.Occurrence(now, s.cfg.DefaultDuration)
	if !ok {
		return domain.RSVP{}, "", errors.BadRequest(errors.CodeValidationFailed, "Event is over")
	}

	name := utils.CleanText(req.Name)
	if name == "" {
		return domain.RSVP{}, "", invalidField("name", "Name is empty")
	}
	guests := req.Guests
	if guests == 0 {
		guests = 1
	}

	rsvp := domain.RSVP{
		RecordMeta: domain.RecordMeta{
			Id:        shared_utils.NewID(),
			CreatedAt: now.UTC(),
			Approved:  true,
		},
		EventSlug: eventSlug,
		Name:      name,
		Email:     utils.NormalizeEmail(req.Email),
		Guests:    guests,
		Lang:      domain.NormalizeLang(req.Lang),
	}
	cancelURL, err := s.cancelURL(rsvp.Id)
	if err != nil {
		return domain.RSVP{}, "", err
	}
	if err := s.store.Add(ctx, rsvp); err != nil {
		return domain.RSVP{}, "", fmt.Errorf("failed to save rsvp: %w", err)
	}
	logger.Log.Info("rsvp created", "component", "rsvp", "id", rsvp.Id, "event", eventSlug, "guests", guests)

	sendBestEffort(s.mailer, rsvpConfirmation(rsvp, ev, start, cancelURL), "rsvp")
	return rsvp, cancelURL, nil
}

func (s *RSVP) cancelURL(id string) (string, error) {
	token, err := s.jwt.NewToken(jwt.PurposeRSVPCancel, id, 0)
	if err != nil {
		return "", err
	}
	return tokenURL(s.cfg.SiteOrigin, "/rsvp/cancel", token), nil
}

// Cancel is idempotent: cancelling twice keeps the first timestamp.
func (s *RSVP) Cancel(ctx context.Context, token string) (domain.RSVP, error) {
	id, err := s.jwt.DecodeToken(token, jwt.PurposeRSVPCancel)
	if err != nil {
		return domain.RSVP{}, err
	}
	now := s.clock.now().UTC()
	rsvp, err := s.store.Update(ctx, id, func(r *domain.RSVP) error {
		if r.CancelledAt == nil {
			r.CancelledAt = &now
		}
		return nil
	})
	if err != nil {
		return domain.RSVP{}, notFound(err, "RSVP not found")
	}
	logger.Log.Info("rsvp cancelled", "component", "rsvp", "id", id, "event", rsvp.EventSlug)
	return rsvp, nil
}

func (s *RSVP) List(ctx context.Context, eventSlug string) ([]domain.RSVP, int, error) {
	if _, ok := s.events.Event(eventSlug); !ok {
		return nil, 0, errors.NotFound("Event not found")
	}
	rsvps, err := s.store.List(ctx, func(r domain.RSVP) bool {
		return r.EventSlug == eventSlug && r.Active()
	})
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, r := range rsvps {
		total += r.Guests
	}
	return rsvps, total, nil
}

func (s *RSVP) SendReminders(ctx context.Context) (int, error) {
	now := s.clock.now().In(s.cfg.Location)
	pending, err := s.store.List(ctx, func(r domain.RSVP) bool {
		return r.Active() && r.ReminderSentAt == nil
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		ev, ok := s.events.Event(r.EventSlug)
		if !ok {
			continue
		}
		start, _, ok := ev.Occurrence(now, s.cfg.DefaultDuration)
		if !ok || !start.After(now) || start.Sub(now) > s.cfg.LeadTime {
			continue
		}
		cancelURL, err := s.cancelURL(r.Id)
		if err != nil {
			return sent, err
		}
		if !sendBestEffort(s.mailer, rsvpReminder(r, ev, start, cancelURL), "rsvp") {
			continue
		}
		stamp := now.UTC()
		if _, err := s.store.Update(ctx, r.Id, func(rec *domain.RSVP) error {
			rec.ReminderSentAt = &stamp
			return nil
		}); err != nil {
			logger.Log.Error("failed to mark reminder sent", "component", "rsvp", "id", r.Id, "error", err)
			continue
		}
		sent++
	}
	logger.Log.Info("rsvp reminders processed", "component", "rsvp", "pending", len(pending), "sent", sent)
	return sent, nil
}
