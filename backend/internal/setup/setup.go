package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/backend/internal/handler"
	"github.com/ptchurch/site/backend/internal/service"
	"github.com/ptchurch/site/backend/internal/storage/fs"
	"github.com/ptchurch/site/backend/internal/storage/sqldb"
	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/backend/internal/utils/email"
	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/jwt"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/ratelimiter"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config    *config.Config
	Handler   *handler.Handler
	Limiter   ratelimiter.Limiter
	Jwt       jwt.JwtService
	Scheduler *service.Scheduler // nil unless reminders.cron is set

	closers []func() error
}

// Stores is the set of record collections the services write to.
type Stores struct {
	Prayers     service.Collection[domain.PrayerPost]
	Comments    service.Collection[domain.Comment]
	RSVPs       service.Collection[domain.RSVP]
	Subscribers service.Collection[domain.Subscriber]
	Pinger      service.Pinger
}

// OpenStores opens the backend named by store.driver. The returned close
// function releases the database handle, if any.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, func() error, error) {
	switch cfg.Public.Store.Driver {
	case "fs":
		s, err := fs.New(cfg.Public.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return &Stores{
			Prayers:     fs.NewCollection[domain.PrayerPost](s, domain.CollectionPrayers),
			Comments:    fs.NewCollection[domain.Comment](s, domain.CollectionComments),
			RSVPs:       fs.NewCollection[domain.RSVP](s, domain.CollectionRSVPs),
			Subscribers: fs.NewCollection[domain.Subscriber](s, domain.CollectionSubscribers),
			Pinger:      s,
		}, func() error { return nil }, nil
	case "sqlite", "postgres":
		var (
			s   *sqldb.Storage
			err error
		)
		if cfg.Public.Store.Driver == "sqlite" {
			s, err = sqldb.OpenSQLite(ctx, cfg.Public.Store.DataDir)
		} else {
			s, err = sqldb.OpenPostgres(ctx, cfg.Private.Database.URL)
		}
		if err != nil {
			return nil, nil, err
		}
		return &Stores{
			Prayers:     sqldb.NewCollection[domain.PrayerPost](s, domain.CollectionPrayers),
			Comments:    sqldb.NewCollection[domain.Comment](s, domain.CollectionComments),
			RSVPs:       sqldb.NewCollection[domain.RSVP](s, domain.CollectionRSVPs),
			Subscribers: sqldb.NewCollection[domain.Subscriber](s, domain.CollectionSubscribers),
			Pinger:      s,
		}, s.Cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Public.Store.Driver)
	}
}

// NewLimiter returns the rate-limit store named by security.rate_limiter.
func NewLimiter(ctx context.Context, cfg *config.Config) (ratelimiter.Limiter, func() error, error) {
	if cfg.Public.Security.RateLimiter == "redis" {
		rl, err := ratelimiter.NewRedisFromURL(ctx, cfg.Private.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return rl, rl.Close, nil
	}
	return ratelimiter.NewMemory(), func() error { return nil }, nil
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}

	stores, closeStores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	deps.closers = append(deps.closers, closeStores)

	limiter, closeLimiter, err := NewLimiter(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	deps.Limiter = limiter
	deps.closers = append(deps.closers, closeLimiter)

	loc := cfg.Location()
	catalog, err := content.Load(cfg.Public.Content.Dir, loc, content.NewRenderer())
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	mailer := email.New(&cfg.Private.Email, utils.Host(cfg.Public.SiteOrigin))
	deps.Jwt = jwt.New(cfg.Private.TokenKey)

	services := NewServices(cfg, stores, catalog, mailer, deps.Jwt, nil)
	deps.Handler = handler.New(services, cfg)

	if spec := cfg.Public.Reminders.Cron; spec != "" {
		deps.Scheduler = service.NewScheduler(loc)
		if _, err := deps.Scheduler.ScheduleReminders(spec, services.RSVP, 5*time.Minute); err != nil {
			deps.Close()
			return nil, fmt.Errorf("invalid reminders.cron %q: %w", spec, err)
		}
		logger.Log.Info("reminder schedule enabled", "component", "setup", "cron", spec)
	}

	logger.Log.Info("dependencies ready",
		"component", "setup",
		"store", cfg.Public.Store.Driver,
		"rate_limiter", cfg.Public.Security.RateLimiter)
	return deps, nil
}

// NewServices wires the service layer. clock may be nil for wall time.
func NewServices(cfg *config.Config, stores *Stores, catalog service.Catalog, mailer service.Mailer, tokens service.Jwt, clock service.Clock) handler.Services {
	loc := cfg.Location()
	site := service.SiteConfig{
		SiteOrigin:      cfg.Public.SiteOrigin,
		Location:        loc,
		DefaultDuration: cfg.Public.Calendar.DefaultDuration,
		UpcomingLimit:   cfg.Public.Calendar.UpcomingLimit,
	}
	rsvpCfg := service.RSVPConfig{
		SiteOrigin:      cfg.Public.SiteOrigin,
		DefaultDuration: cfg.Public.Calendar.DefaultDuration,
		LeadTime:        cfg.Public.Reminders.LeadTime,
		Location:        loc,
	}
	calendarCfg := service.CalendarConfig{
		SiteConfig: site,
		Name:       cfg.Public.Calendar.Name,
		ProdID:     cfg.Public.Calendar.ProdID,
		TimeZone:   cfg.Public.Timezone,
	}
	return handler.Services{
		Prayer:     service.NewPrayer(stores.Prayers, cfg.Public.Prayer, clock),
		Comment:    service.NewComment(stores.Comments, catalog, cfg.Public.Comments, clock),
		RSVP:       service.NewRSVP(stores.RSVPs, catalog, mailer, tokens, rsvpCfg, clock),
		Newsletter: service.NewNewsletter(stores.Subscribers, mailer, tokens, cfg.Public.SiteOrigin, clock),
		Contact:    service.NewContact(mailer, cfg.Public.Contact.Recipient),
		Content:    service.NewContent(catalog, site, clock),
		Calendar:   service.NewCalendar(catalog, calendarCfg, clock),
		Bible:      service.NewBible(cfg.Public.Bible),
		Health:     service.NewHealth(stores.Pinger, 2*time.Second),
	}
}

// Close releases stores and clients in reverse order of creation.
func (d *Dependencies) Close() {
	if d.Scheduler != nil {
		d.Scheduler.Stop()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Log.Error("failed to close dependency", "component", "setup", "error", err)
		}
	}
	d.closers = nil
}
