package service

import (
	"context"
	"fmt"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/backend/internal/utils"
	"github.com/ptchurch/site/shared/api"
	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	shared_utils "github.com/ptchurch/site/shared/utils"
)

type CommentService interface {
	// List returns approved comments on a post, oldest first.
	List(ctx context.Context, postSlug string) ([]domain.Comment, error)
	Create(ctx context.Context, postSlug string, req api.CreateCommentRequest) (domain.Comment, error)

	// Moderation
	ListPending(ctx context.Context) ([]domain.Comment, error)
	Approve(ctx context.Context, id string) (domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

// BlogLookup resolves blog slugs; *content.Catalog implements it.
type BlogLookup interface {
	BlogPost(slug string) (content.BlogPost, bool)
}

type Comment struct {
	store Collection[domain.Comment]
	posts BlogLookup
	cfg   config.Comments
	clock Clock
}

func NewComment(store Collection[domain.Comment], posts BlogLookup, cfg config.Comments, clock Clock) CommentService {
	return &Comment{store: store, posts: posts, cfg: cfg, clock: clock}
}

func (c *Comment) checkPost(slug string) error {
	if _, ok := c.posts.BlogPost(slug); !ok {
		return errors.NotFound("Blog post not found")
	}
	return nil
}

func (c *Comment) List(ctx context.Context, postSlug string) ([]domain.Comment, error) {
	if err := c.checkPost(postSlug); err != nil {
		return nil, err
	}
	comments, err := c.store.List(ctx, func(cm domain.Comment) bool {
		return cm.Approved && cm.PostSlug == postSlug
	})
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i] = comments[i].Public()
	}
	return comments, nil
}

func (c *Comment) Create(ctx context.Context, postSlug string, req api.CreateCommentRequest) (domain.Comment, error) {
	if err := c.checkPost(postSlug); err != nil {
		return domain.Comment{}, err
	}
	name := utils.CleanText(req.Name)
	if name == "" {
		return domain.Comment{}, invalidField("name", "Name is empty")
	}
	body := utils.CleanText(req.Body)
	if body == "" {
		return domain.Comment{}, invalidField("body", "Comment is empty")
	}

	comment := domain.Comment{
		RecordMeta: domain.RecordMeta{
			Id:        shared_utils.NewID(),
			CreatedAt: c.clock.now().UTC(),
			Approved:  c.cfg.AutoApprove,
		},
		PostSlug: postSlug,
		Name:     name,
		Email:    utils.NormalizeEmail(req.Email),
		Body:     body,
	}
	if err := c.store.Add(ctx, comment); err != nil {
		return domain.Comment{}, fmt.Errorf("failed to save comment: %w", err)
	}
	logger.Log.Info("comment created", "component", "comment", "id", comment.Id, "post", postSlug, "approved", comment.Approved)
	return comment.Public(), nil
}

func (c *Comment) ListPending(ctx context.Context) ([]domain.Comment, error) {
	comments, err := c.store.List(ctx, func(cm domain.Comment) bool { return !cm.Approved })
	if err != nil {
		return nil, err
	}
	newestFirst(comments)
	return comments, nil
}

func (c *Comment) Approve(ctx context.Context, id string) (domain.Comment, error) {
	comment, err := c.store.Update(ctx, id, func(cm *domain.Comment) error {
		cm.Approved = true
		return nil
	})
	if err != nil {
		return domain.Comment{}, notFound(err, "Comment not found")
	}
	logger.Log.Info("comment approved", "component", "comment", "id", id)
	return comment, nil
}

func (c *Comment) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return notFound(err, "Comment not found")
	}
	logger.Log.Info("comment deleted", "component", "comment", "id", id)
	return nil
}
