// Package seed fills a database with demo users, posts and comments for
// development and manual testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configures a seeding run.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// DeletedRatio is the share of posts and comments seeded as soft-deleted.
	DeletedRatio float64
	// Seed makes the generated content reproducible.
	Seed int64
	// MaxDays bounds how far back creation times are spread.
	MaxDays int
}

// DefaultOptions is a small demo data set.
func DefaultOptions() Options {
	return Options{
		Users:           10,
		PostsPerUser:    5,
		CommentsPerPost: 3,
		DeletedRatio:    0.1,
		Seed:            time.Now().UnixNano(),
		MaxDays:         60,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users           int
	Posts           int
	Comments        int
	DeletedPosts    int
	DeletedComments int
}

// Factory builds and persists demo entities.
type Factory struct {
	db     *gorm.DB
	hasher auth.PasswordHasher
	faker  *gofakeit.Faker
	opts   Options
	now    time.Time

	passwordHash string
}

// NewFactory creates a Factory bound to db. Passwords are hashed with hasher.
func NewFactory(db *gorm.DB, hasher auth.PasswordHasher, opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 60
	}
	return &Factory{
		db:     db,
		hasher: hasher,
		faker:  gofakeit.New(opts.Seed),
		opts:   opts,
		now:    time.Now().UTC(),
	}
}

// CreateUser persists a user with a valid, unique username. n disambiguates
// generated names.
func (f *Factory) CreateUser(ctx context.Context, n int, overrides ...func(*models.User)) (*models.User, error) {
	if f.passwordHash == "" {
		hash, err := f.hasher.Hash(DefaultPassword)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		f.passwordHash = hash
	}

	birth := f.faker.DateRange(f.now.AddDate(-70, 0, 0), f.now.AddDate(-16, 0, 0))
	user := &models.User{
		Username:  f.username(n),
		Email:     fmt.Sprintf("seed%d.%s", n, strings.ToLower(f.faker.Email())),
		Password:  f.passwordHash,
		Role:      models.RoleUser,
		Bio:       f.faker.Sentence(10),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		BirthDate: &birth,
		Gender:    strings.ToUpper(f.faker.Gender()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// CreatePost persists a post by user created at a random point in the past.
func (f *Factory) CreatePost(ctx context.Context, user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	created := f.pastTime(f.now)
	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 12, "\n"),
		UserID:    user.ID,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment persists a comment on post, optionally replying to parent.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	after := post.CreatedAt
	if parent != nil {
		after = parent.CreatedAt
	}
	created := f.timeAfter(after)
	comment := &models.Comment{
		Content:   f.faker.Sentence(f.faker.Number(4, 16)),
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := f.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// maybeDelete soft-deletes r with probability DeletedRatio and returns
// whether it did.
func (f *Factory) maybeDelete(ctx context.Context, model interface{}, r interface {
	MarkDeleted(time.Time)
	DeletedTime() *time.Time
}, created time.Time) (bool, error) {
	if f.opts.DeletedRatio <= 0 || f.faker.Float64Range(0, 1) >= f.opts.DeletedRatio {
		return false, nil
	}
	r.MarkDeleted(f.timeAfter(created))
	if err := f.db.WithContext(ctx).Unscoped().Model(model).Update("deleted_at", r.DeletedTime()).Error; err != nil {
		return false, fmt.Errorf("soft-delete: %w", err)
	}
	return true, nil
}

func (f *Factory) username(n int) string {
	base := strings.ToLower(f.faker.Username())
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, base)
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s_%d", base, n)
}

func (f *Factory) pastTime(before time.Time) time.Time {
	back := time.Duration(f.faker.Number(1, f.opts.MaxDays*24*60)) * time.Minute
	return before.Add(-back).Truncate(time.Second)
}

// timeAfter returns a time between t and now.
func (f *Factory) timeAfter(t time.Time) time.Time {
	span := f.now.Sub(t)
	if span < 2*time.Second {
		return t.Add(time.Second)
	}
	offset := time.Duration(f.faker.Number(1, int(span/time.Second)-1)) * time.Second
	return t.Add(offset).Truncate(time.Second)
}

// Seeder runs a full seeding pass.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder.
func NewSeeder(db *gorm.DB, hasher auth.PasswordHasher, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, hasher, opts), opts: opts}
}

// ClearAll removes every comment, post and user, including soft-deleted rows.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx).Unscoped().Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{&models.Comment{}, &models.Post{}, &models.User{}} {
		if err := db.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	observability.Logger.InfoContext(ctx, "seed data cleared")
	return nil
}

// Run creates users, their posts and comment threads. Commenters are
// picked from the seeded users; replies go to earlier comments on the
// same post.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	f := s.factory

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u, err := f.CreateUser(ctx, i+1)
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for _, author := range users {
		for p := 0; p < s.opts.PostsPerUser; p++ {
			post, err := f.CreatePost(ctx, author)
			if err != nil {
				return sum, err
			}
			sum.Posts++

			var thread []*models.Comment
			for c := 0; c < s.opts.CommentsPerPost; c++ {
				commenter := users[f.faker.Number(0, len(users)-1)]
				var parent *models.Comment
				if len(thread) > 0 && f.faker.Bool() {
					parent = thread[f.faker.Number(0, len(thread)-1)]
				}
				comment, err := f.CreateComment(ctx, commenter, post, parent)
				if err != nil {
					return sum, err
				}
				thread = append(thread, comment)
				sum.Comments++

				deleted, err := f.maybeDelete(ctx, comment, comment, comment.CreatedAt)
				if err != nil {
					return sum, err
				}
				if deleted {
					sum.DeletedComments++
				}
			}

			deleted, err := f.maybeDelete(ctx, post, post, post.CreatedAt)
			if err != nil {
				return sum, err
			}
			if deleted {
				sum.DeletedPosts++
			}
		}
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("deleted_posts", sum.DeletedPosts),
		slog.Int("deleted_comments", sum.DeletedComments),
	)
	return sum, nil
}
