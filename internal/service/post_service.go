package service

import (
	"context"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/events"
	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"
	"github.com/ChakCage/Borlas/internal/repository"
	"github.com/ChakCage/Borlas/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo  repository.PostRepository
	machine   *lifecycle.Machine
	publisher events.Publisher
	now       func() time.Time
}

type CreatePostInput struct {
	Actor   *auth.Identity
	Title   string
	Content string
}

// UpdatePostInput carries a content update. Blank Content deletes the post;
// Title, when set, is only applied to edits.
type UpdatePostInput struct {
	Actor   *auth.Identity
	PostID  uint
	Title   *string
	Content string
}

func NewPostService(
	postRepo repository.PostRepository,
	machine *lifecycle.Machine,
	publisher events.Publisher,
	now func() time.Time,
) *PostService {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PostService{postRepo: postRepo, machine: machine, publisher: publisher, now: now}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateNewContent(in.Content); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		UserID:    in.Actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.New(events.ResourcePost, events.ActionCreated, post.ID, post.UserID, now))

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns an active post; deleted posts are not found.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost edits the post, or soft-deletes it when the content is blank.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (_ *models.Post, outcome lifecycle.Outcome, err error) {
	ctx, span := observability.StartSpan(ctx, "post.Update", attribute.Int64("post.id", int64(in.PostID)))
	defer func() {
		recordTransition(ctx, events.ResourcePost, in.PostID, outcome, err)
		observability.EndSpan(span, err)
	}()

	if err := validation.ValidateContentLength(in.Content); err != nil {
		return nil, "", err
	}
	if in.Title != nil && !lifecycle.IsBlank(in.Content) {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, "", err
		}
	}

	post, err := s.postRepo.GetAnyByID(ctx, in.PostID)
	if err != nil {
		return nil, "", err
	}

	outcome, err = s.machine.Update(in.Actor, post, in.Content)
	if err != nil {
		return nil, "", err
	}
	if outcome == lifecycle.Edited && in.Title != nil {
		post.Title = *in.Title
	}
	if err := s.persist(ctx, post, outcome); err != nil {
		return nil, "", err
	}
	return post, outcome, nil
}

// DeletePost soft-deletes the post. Deleting a deleted post changes nothing.
func (s *PostService) DeletePost(ctx context.Context, actor *auth.Identity, id uint) (_ *models.Post, outcome lifecycle.Outcome, err error) {
	ctx, span := observability.StartSpan(ctx, "post.Delete", attribute.Int64("post.id", int64(id)))
	defer func() {
		recordTransition(ctx, events.ResourcePost, id, outcome, err)
		observability.EndSpan(span, err)
	}()

	post, err := s.postRepo.GetAnyByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	outcome, err = s.machine.Delete(actor, post)
	if err != nil {
		return nil, "", err
	}
	if err := s.persist(ctx, post, outcome); err != nil {
		return nil, "", err
	}
	return post, outcome, nil
}

func (s *PostService) persist(ctx context.Context, post *models.Post, outcome lifecycle.Outcome) error {
	if !outcome.Changed() {
		return nil
	}
	post.UpdatedAt = s.now()
	if err := s.postRepo.Save(ctx, post); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.ResourcePost, eventAction(outcome), post.ID, post.UserID, post.UpdatedAt))
	return nil
}

// ListActive lists posts whose deletedAt is null.
func (s *PostService) ListActive(ctx context.Context, q lifecycle.Query) ([]*models.Post, error) {
	q.View = lifecycle.Active
	return s.postRepo.List(ctx, q)
}

// ListDeleted lists posts whose deletedAt is set, subject to the deleted
// listing policy.
func (s *PostService) ListDeleted(ctx context.Context, actor *auth.Identity, q lifecycle.Query) ([]*models.Post, error) {
	if err := authorizeDeletedListing(actor, q.Scope); err != nil {
		return nil, err
	}
	q.View = lifecycle.Deleted
	return s.postRepo.List(ctx, q)
}
