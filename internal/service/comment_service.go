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

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	machine     *lifecycle.Machine
	publisher   events.Publisher
	now         func() time.Time
}

type CreateCommentInput struct {
	Actor    *auth.Identity
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	Actor     *auth.Identity
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	machine *lifecycle.Machine,
	publisher events.Publisher,
	now func() time.Time,
) *CommentService {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		machine:     machine,
		publisher:   publisher,
		now:         now,
	}
}

// CreateComment adds a comment to an active post. A parent, when given, must
// already exist on the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := requireActor(in.Actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateNewContent(in.Content); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.commentRepo.GetAnyByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("parent comment belongs to a different post")
		}
	}

	now := s.now()
	comment := &models.Comment{
		Content:   in.Content,
		UserID:    in.Actor.ID,
		PostID:    in.PostID,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.emit(ctx, comment, events.ActionCreated, now)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetComment returns an active comment.
func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// UpdateComment edits the comment, or soft-deletes it when the content is
// blank.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (_ *models.Comment, outcome lifecycle.Outcome, err error) {
	ctx, span := observability.StartSpan(ctx, "comment.Update", attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() {
		recordTransition(ctx, events.ResourceComment, in.CommentID, outcome, err)
		observability.EndSpan(span, err)
	}()

	if err := validation.ValidateContentLength(in.Content); err != nil {
		return nil, "", err
	}

	comment, err := s.commentRepo.GetAnyByID(ctx, in.CommentID)
	if err != nil {
		return nil, "", err
	}
	outcome, err = s.machine.Update(in.Actor, comment, in.Content)
	if err != nil {
		return nil, "", err
	}
	if err := s.persist(ctx, comment, outcome); err != nil {
		return nil, "", err
	}
	return comment, outcome, nil
}

// DeleteComment soft-deletes the comment. Replies are left as they are.
func (s *CommentService) DeleteComment(ctx context.Context, actor *auth.Identity, id uint) (_ *models.Comment, outcome lifecycle.Outcome, err error) {
	ctx, span := observability.StartSpan(ctx, "comment.Delete", attribute.Int64("comment.id", int64(id)))
	defer func() {
		recordTransition(ctx, events.ResourceComment, id, outcome, err)
		observability.EndSpan(span, err)
	}()

	comment, err := s.commentRepo.GetAnyByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	outcome, err = s.machine.Delete(actor, comment)
	if err != nil {
		return nil, "", err
	}
	if err := s.persist(ctx, comment, outcome); err != nil {
		return nil, "", err
	}
	return comment, outcome, nil
}

func (s *CommentService) persist(ctx context.Context, comment *models.Comment, outcome lifecycle.Outcome) error {
	if !outcome.Changed() {
		return nil
	}
	comment.UpdatedAt = s.now()
	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return err
	}
	s.emit(ctx, comment, eventAction(outcome), comment.UpdatedAt)
	return nil
}

func (s *CommentService) emit(ctx context.Context, c *models.Comment, action string, at time.Time) {
	e := events.New(events.ResourceComment, action, c.ID, c.UserID, at)
	e.PostID = c.PostID
	events.Emit(ctx, s.publisher, e)
}

// ListByPost lists the active comments of an active post, oldest first
// unless q says otherwise.
func (s *CommentService) ListByPost(ctx context.Context, postID uint, q lifecycle.Query) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if q.Order == "" {
		q.Order = lifecycle.OldestFirst
	}
	q.View = lifecycle.Active
	q.Scope = lifecycle.AllOwners()
	return s.commentRepo.ListByPost(ctx, postID, q)
}

// ListActive lists comments whose deletedAt is null.
func (s *CommentService) ListActive(ctx context.Context, q lifecycle.Query) ([]*models.Comment, error) {
	q.View = lifecycle.Active
	return s.commentRepo.List(ctx, q)
}

// ListDeleted lists comments whose deletedAt is set, subject to the deleted
// listing policy.
func (s *CommentService) ListDeleted(ctx context.Context, actor *auth.Identity, q lifecycle.Query) ([]*models.Comment, error) {
	if err := authorizeDeletedListing(actor, q.Scope); err != nil {
		return nil, err
	}
	q.View = lifecycle.Deleted
	return s.commentRepo.List(ctx, q)
}
