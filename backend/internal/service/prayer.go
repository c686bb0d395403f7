package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/logger"
	shared_utils "github.com/ptchurch/site/shared/utils"
)

type PrayerService interface {
	Create(ctx context.Context, req api.CreatePrayerRequest) (domain.PrayerPost, error)
	// List returns approved posts newest first, anonymous names hidden.
	List(ctx context.Context) ([]domain.PrayerPost, error)
	Pray(ctx context.Context, id string) (domain.PrayerPost, error)

	// Moderation
	ListAll(ctx context.Context) ([]domain.PrayerPost, error)
	Approve(ctx context.Context, id string) (domain.PrayerPost, error)
	Delete(ctx context.Context, id string) error
}

type Prayer struct {
	store Collection[domain.PrayerPost]
	cfg   config.Prayer
	clock Clock
}

func NewPrayer(store Collection[domain.PrayerPost], cfg config.Prayer, clock Clock) PrayerService {
	return &Prayer{store: store, cfg: cfg, clock: clock}
}

func (p *Prayer) Create(ctx context.Context, req api.CreatePrayerRequest) (domain.PrayerPost, error) {
	name := utils.CleanText(req.Name)
	if name == "" {
		return domain.PrayerPost{}, invalidField("name", "Name is empty")
	}
	text := utils.CleanText(req.Request)
	if text == "" {
		return domain.PrayerPost{}, invalidField("request", "Request is empty")
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.PrayerKindRequest
	}

	post := domain.PrayerPost{
		RecordMeta: domain.RecordMeta{
			Id:        shared_utils.NewID(),
			CreatedAt: p.clock.now().UTC(),
			Approved:  !p.cfg.RequireApproval,
		},
		Name:      name,
		Request:   text,
		Kind:      kind,
		Anonymous: req.Anonymous,
	}
	if err := p.store.Add(ctx, post); err != nil {
		return domain.PrayerPost{}, fmt.Errorf("failed to save prayer post: %w", err)
	}
	logger.Log.Info("prayer post created", "component", "prayer", "id", post.Id, "kind", kind, "approved", post.Approved)
	return post.Public(), nil
}

func (p *Prayer) List(ctx context.Context) ([]domain.PrayerPost, error) {
	posts, err := p.store.List(ctx, func(post domain.PrayerPost) bool { return post.Approved })
	if err != nil {
		return nil, err
	}
	newestFirst(posts)
	if p.cfg.PageSize > 0 && len(posts) > p.cfg.PageSize {
		posts = posts[:p.cfg.PageSize]
	}
	for i := range posts {
		posts[i] = posts[i].Public()
	}
	return posts, nil
}

// Pray increments the counter of an approved post. Unapproved posts are
// invisible to visitors and report not found.
func (p *Prayer) Pray(ctx context.Context, id string) (domain.PrayerPost, error) {
	post, err := p.store.Update(ctx, id, func(post *domain.PrayerPost) error {
		if !post.Approved {
			return ErrNotFound
		}
		post.PrayedCount++
		return nil
	})
	if err != nil {
		return domain.PrayerPost{}, notFound(err, "Prayer post not found")
	}
	return post.Public(), nil
}

func (p *Prayer) ListAll(ctx context.Context) ([]domain.PrayerPost, error) {
	posts, err := p.store.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	newestFirst(posts)
	return posts, nil
}

func (p *Prayer) Approve(ctx context.Context, id string) (domain.PrayerPost, error) {
	post, err := p.store.Update(ctx, id, func(post *domain.PrayerPost) error {
		post.Approved = true
		return nil
	})
	if err != nil {
		return domain.PrayerPost{}, notFound(err, "Prayer post not found")
	}
	logger.Log.Info("prayer post approved", "component", "prayer", "id", id)
	return post, nil
}

func (p *Prayer) Delete(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, id); err != nil {
		return notFound(err, "Prayer post not found")
	}
	logger.Log.Info("prayer post deleted", "component", "prayer", "id", id)
	return nil
}

func newestFirst[T domain.Record](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].GetCreatedAt().After(items[j].GetCreatedAt())
	})
}
