package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/events"
	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &auth.Identity{ID: 1, Username: "alice", Roles: []string{models.RoleUser}}
	bob   = &auth.Identity{ID: 2, Username: "bob", Roles: []string{models.RoleUser}}
	admin = &auth.Identity{ID: 3, Username: "root", Roles: []string{models.RoleAdmin}}
)

type testClock struct{ now time.Time }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { c.now = c.now.Add(time.Second); return c.now }

func newMachine(clock *testClock) *lifecycle.Machine {
	return lifecycle.NewMachine(auth.NewOwnershipGuard(), clock.Now)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	findByLoginFn      func(context.Context, string) (*models.User, error)
	findByUsernameFn   func(context.Context, string) (*models.User, error)
	existsByUsernameFn func(context.Context, string) (bool, error)
	existsByEmailFn    func(context.Context, string) (bool, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	listFn             func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.findByLoginFn(ctx, login)
}
func (s *userRepoStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.existsByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.existsByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:          func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		findByLoginFn:      func(_ context.Context, _ string) (*models.User, error) { return nil, models.ErrNotFound },
		findByUsernameFn:   func(_ context.Context, _ string) (*models.User, error) { return nil, models.ErrNotFound },
		existsByUsernameFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		existsByEmailFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		createFn:           func(_ context.Context, _ *models.User) error { return nil },
		updateFn:           func(_ context.Context, _ *models.User) error { return nil },
		listFn:             func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// memPostRepo is an in-memory repository.PostRepository.
type memPostRepo struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]models.Post
	saves  int
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[uint]models.Post{}}
}

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	r.posts[post.ID] = *post
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	p, err := r.GetAnyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DeletedTime() != nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return p, nil
}

func (r *memPostRepo) GetAnyByID(_ context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &p, nil
}

func (r *memPostRepo) Save(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.posts[post.ID] = *post
	return nil
}

func (r *memPostRepo) List(_ context.Context, q lifecycle.Query) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for id := uint(1); id <= r.nextID; id++ {
		p, ok := r.posts[id]
		if ok && q.Matches(&p) {
			out = append(out, &p)
		}
	}
	return out, nil
}

// memCommentRepo is an in-memory repository.CommentRepository.
type memCommentRepo struct {
	mu       sync.Mutex
	nextID   uint
	comments map[uint]models.Comment
	saves    int
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: map[uint]models.Comment{}}
}

func (r *memCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.comments[c.ID] = *c
	return nil
}

func (r *memCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	c, err := r.GetAnyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.DeletedTime() != nil {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return c, nil
}

func (r *memCommentRepo) GetAnyByID(_ context.Context, id uint) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return &c, nil
}

func (r *memCommentRepo) ExistsAny(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.comments[id]
	return ok, nil
}

func (r *memCommentRepo) Save(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.comments[c.ID] = *c
	return nil
}

func (r *memCommentRepo) List(ctx context.Context, q lifecycle.Query) ([]*models.Comment, error) {
	return r.list(q, func(*models.Comment) bool { return true })
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID uint, q lifecycle.Query) ([]*models.Comment, error) {
	return r.list(q, func(c *models.Comment) bool { return c.PostID == postID })
}

func (r *memCommentRepo) list(q lifecycle.Query, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for id := uint(1); id <= r.nextID; id++ {
		c, ok := r.comments[id]
		if ok && keep(&c) && q.Matches(&c) {
			out = append(out, &c)
		}
	}
	return out, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.CodeOf(err), err.Error())
}
