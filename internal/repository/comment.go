package repository

import (
	"context"

	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID returns an active comment.
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// GetAnyByID returns a comment in either lifecycle state.
	GetAnyByID(ctx context.Context, id uint) (*models.Comment, error)
	// ExistsAny reports whether a comment with id was ever created.
	ExistsAny(ctx context.Context, id uint) (bool, error)
	Save(ctx context.Context, comment *models.Comment) error
	List(ctx context.Context, q lifecycle.Query) ([]*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, q lifecycle.Query) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) GetAnyByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Unscoped().Preload("User").First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ExistsAny(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Unscoped().Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *commentRepository) Save(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Unscoped().Omit(clause.Associations).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) List(ctx context.Context, q lifecycle.Query) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := applyView(r.db.WithContext(ctx).Preload("User"), "comments", q).Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, q lifecycle.Query) ([]*models.Comment, error) {
	var comments []*models.Comment
	base := r.db.WithContext(ctx).Preload("User").Where("comments.post_id = ?", postID)
	if err := applyView(base, "comments", q).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
