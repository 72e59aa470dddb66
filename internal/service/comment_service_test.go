package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentFixture struct {
	svc       *CommentService
	posts     *PostService
	comments  *memCommentRepo
	publisher *recordingPublisher
	post      *models.Post
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	clock := newTestClock()
	postRepo := newMemPostRepo()
	commentRepo := newMemCommentRepo()
	pub := &recordingPublisher{}
	machine := newMachine(clock)

	posts := NewPostService(postRepo, machine, nil, clock.Now)
	post, err := posts.CreatePost(context.Background(), CreatePostInput{Actor: alice, Title: "Hello", Content: "body"})
	require.NoError(t, err)

	return &commentFixture{
		svc:       NewCommentService(commentRepo, postRepo, machine, pub, clock.Now),
		posts:     posts,
		comments:  commentRepo,
		publisher: pub,
		post:      post,
	}
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()
	fx := newCommentFixture(t)
	ctx := context.Background()

	c, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, c.UserID)
	assert.Nil(t, c.ParentID)

	reply, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: fx.post.ID, ParentID: &c.ID, Content: "thanks"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, c.ID, *reply.ParentID)

	require.Len(t, fx.publisher.events, 2)
	assert.Equal(t, "comment.created", fx.publisher.events[0].Type)
	assert.Equal(t, fx.post.ID, fx.publisher.events[0].PostID)
}

func TestCommentService_CreateComment_Rejections(t *testing.T) {
	t.Parallel()
	fx := newCommentFixture(t)
	ctx := context.Background()

	other, err := fx.posts.CreatePost(ctx, CreatePostInput{Actor: bob, Title: "Other", Content: "body"})
	require.NoError(t, err)
	onOther, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: other.ID, Content: "hi"})
	require.NoError(t, err)

	missing := uint(999)
	cases := []struct {
		name string
		in   CreateCommentInput
		code string
	}{
		{"anonymous", CreateCommentInput{PostID: fx.post.ID, Content: "hi"}, models.CodeUnauthenticated},
		{"blank", CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: "  "}, models.CodeValidation},
		{"too long", CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: strings.Repeat("x", 10001)}, models.CodeValidation},
		{"unknown post", CreateCommentInput{Actor: bob, PostID: 404, Content: "hi"}, models.CodeNotFound},
		{"unknown parent", CreateCommentInput{Actor: bob, PostID: fx.post.ID, ParentID: &missing, Content: "hi"}, models.CodeNotFound},
		{"parent on another post", CreateCommentInput{Actor: bob, PostID: fx.post.ID, ParentID: &onOther.ID, Content: "hi"}, models.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.CreateComment(ctx, tc.in)
			assertCode(t, err, tc.code)
		})
	}

	_, _, err = fx.posts.DeletePost(ctx, alice, fx.post.ID)
	require.NoError(t, err)
	_, err = fx.svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: "late"})
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_ReplyToDeletedParent(t *testing.T) {
	t.Parallel()
	fx := newCommentFixture(t)
	ctx := context.Background()

	parent, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: "first"})
	require.NoError(t, err)
	_, _, err = fx.svc.DeleteComment(ctx, bob, parent.ID)
	require.NoError(t, err)

	reply, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: alice, PostID: fx.post.ID, ParentID: &parent.ID, Content: "still replying"})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

func TestCommentService_Lifecycle(t *testing.T) {
	t.Parallel()
	fx := newCommentFixture(t)
	ctx := context.Background()

	c, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: "nice"})
	require.NoError(t, err)

	_, _, err = fx.svc.UpdateComment(ctx, UpdateCommentInput{Actor: alice, CommentID: c.ID, Content: "edited by post owner"})
	assertCode(t, err, models.CodeForbidden)

	edited, outcome, err := fx.svc.UpdateComment(ctx, UpdateCommentInput{Actor: bob, CommentID: c.ID, Content: "nicer"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Edited, outcome)
	require.NotNil(t, edited.EditedAt)

	deleted, outcome, err := fx.svc.UpdateComment(ctx, UpdateCommentInput{Actor: bob, CommentID: c.ID, Content: ""})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.SoftDeleted, outcome)
	assert.Equal(t, "nicer", deleted.Content)

	_, outcome, err = fx.svc.DeleteComment(ctx, bob, c.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.AlreadyDeleted, outcome)
	assert.Equal(t, 2, fx.comments.saves)

	_, err = fx.svc.GetComment(ctx, c.ID)
	assertCode(t, err, models.CodeNotFound)

	assert.Equal(t, []string{"comment.created", "comment.edited", "comment.deleted"}, fx.publisher.types())
}

func TestCommentService_Listings(t *testing.T) {
	t.Parallel()
	fx := newCommentFixture(t)
	ctx := context.Background()

	var ids []uint
	for _, content := range []string{"a", "b", "c"} {
		c, err := fx.svc.CreateComment(ctx, CreateCommentInput{Actor: bob, PostID: fx.post.ID, Content: content})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, _, err := fx.svc.DeleteComment(ctx, bob, ids[1])
	require.NoError(t, err)

	thread, err := fx.svc.ListByPost(ctx, fx.post.ID, lifecycle.Query{})
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, ids[0], thread[0].ID)
	assert.Equal(t, ids[2], thread[1].ID)

	deleted, err := fx.svc.ListDeleted(ctx, bob, lifecycle.Query{Scope: lifecycle.OwnedBy(bob.ID)})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, ids[1], deleted[0].ID)

	_, err = fx.svc.ListDeleted(ctx, alice, lifecycle.Query{Scope: lifecycle.OwnedBy(bob.ID)})
	assertCode(t, err, models.CodeForbidden)

	active, err := fx.svc.ListActive(ctx, lifecycle.Query{Scope: lifecycle.OwnedBy(bob.ID)})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = fx.svc.ListByPost(ctx, 404, lifecycle.Query{})
	assertCode(t, err, models.CodeNotFound)
}
