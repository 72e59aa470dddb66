package repository

import (
	"context"

	"github.com/ChakCage/Borlas/internal/cache"
	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID returns an active post.
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetAnyByID returns a post in either lifecycle state.
	GetAnyByID(ctx context.Context, id uint) (*models.Post, error)
	// Save persists every column of post, including deleted_at.
	Save(ctx context.Context, post *models.Post) error
	List(ctx context.Context, q lifecycle.Query) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, store *cache.Store) PostRepository {
	return &postRepository{db: db, cache: store}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
			return lookupError(err, "Post", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetAnyByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Unscoped().Preload("User").First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Unscoped().Omit(clause.Associations).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) List(ctx context.Context, q lifecycle.Query) ([]*models.Post, error) {
	var posts []*models.Post
	err := applyView(r.db.WithContext(ctx).Preload("User"), "posts", q).Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
