package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ChakCage/Borlas/internal/config"
	"github.com/ChakCage/Borlas/internal/events"
	"github.com/ChakCage/Borlas/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stepClock advances one second on every read so creation times are distinct.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-key-12345678901234567890123456789012",
		JWTIssuer:       "borlas-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
		Port:            "8080",
		Env:             "test",
	}
}

type testEnv struct {
	app    *fiber.App
	server *Server
	events *recordedEvents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rec := &recordedEvents{}
	clock := &stepClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	s, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), nil,
		WithClock(clock.Now), WithPublisher(rec))
	require.NoError(t, err)
	return &testEnv{app: s.NewApp(), server: s, events: rec}
}

// do sends a JSON request and decodes the response body into out when set.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

// signupAndLogin registers a user and returns its access token.
func (e *testEnv) signupAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()
	status := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username, "email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var pair tokenPairBody
	status = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"login": username, "password": password,
	}, &pair)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, pair.AccessToken)
	return pair.AccessToken
}

type tokenPairBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type postBody struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UserID    uint       `json:"user_id"`
	EditedAt  *time.Time `json:"edited_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type postMutationBody struct {
	Outcome string   `json:"outcome"`
	Post    postBody `json:"post"`
}

type commentBody struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	PostID    uint       `json:"post_id"`
	ParentID  *uint      `json:"parent_id"`
	EditedAt  *time.Time `json:"edited_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type commentMutationBody struct {
	Outcome string      `json:"outcome"`
	Comment commentBody `json:"comment"`
}

func postIDs(posts []postBody) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
