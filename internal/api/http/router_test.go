package http

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/clubhouse/internal/api/http/handlers"
	"github.com/spec-kit/clubhouse/internal/auth"
	"github.com/spec-kit/clubhouse/internal/config"
	"github.com/spec-kit/clubhouse/internal/domain"
	"github.com/spec-kit/clubhouse/internal/observability"
	"github.com/spec-kit/clubhouse/internal/persistence"
	"github.com/spec-kit/clubhouse/internal/service"
)

type memUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	clone := *user
	// Copy request-derived strings: fiber reuses the underlying request
	// buffers between requests, unlike a real database which stores copies.
	clone.FirstName = strings.Clone(user.FirstName)
	clone.LastName = strings.Clone(user.LastName)
	clone.Username = strings.Clone(user.Username)
	clone.PasswordHash = strings.Clone(user.PasswordHash)
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) SetMemberStatus(_ context.Context, id string, status domain.MemberStatus) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.MemberStatus = status
	return nil
}

type memMessageRepo struct {
	messages map[string]*domain.Message
	nextID   int
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.nextID++
	msg.ID = fmt.Sprintf("msg-%d", r.nextID)
	clone := *msg
	clone.Body = strings.Clone(msg.Body)
	clone.AuthorID = strings.Clone(msg.AuthorID)
	r.messages[msg.ID] = &clone
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id string) (*domain.Message, error) {
	msg, ok := r.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *msg
	return &clone, nil
}

func (r *memMessageRepo) List(_ context.Context) ([]domain.FeedEntry, error) {
	entries := make([]domain.FeedEntry, 0, len(r.messages))
	for _, msg := range r.messages {
		entries = append(entries, domain.FeedEntry{Message: *msg, AuthorName: msg.AuthorID})
	}
	return entries, nil
}

func (r *memMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.messages[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.messages, id)
	return nil
}

type memSessions struct {
	store  map[string]string
	nextID int
}

func (s *memSessions) Create(_ context.Context, userID string) (string, error) {
	s.nextID++
	sessionID := fmt.Sprintf("sess-%d", s.nextID)
	s.store[sessionID] = userID
	return sessionID, nil
}

func (s *memSessions) Resolve(_ context.Context, sessionID string) (string, error) {
	userID, ok := s.store[sessionID]
	if !ok {
		return "", auth.ErrSessionNotFound
	}
	return userID, nil
}

func (s *memSessions) Destroy(_ context.Context, sessionID string) error {
	delete(s.store, sessionID)
	return nil
}

type testEnv struct {
	app      *fiber.App
	users    *memUserRepo
	messages *memMessageRepo
	sessions *memSessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &memUserRepo{users: map[string]*domain.User{}}
	messages := &memMessageRepo{messages: map[string]*domain.Message{}}
	sessions := &memSessions{store: map[string]string{}}

	logger := zap.NewNop()
	codec := auth.NewCookieCodec("test-secret", time.Hour)

	authService := service.NewAuthService(config.AuthConfig{
		BcryptCost: bcrypt.MinCost,
		MemberCode: "Fidelio",
	}, service.AuthDependencies{
		UserRepo: users,
		Sessions: sessions,
		Codec:    codec,
	})
	feedService := service.NewFeedService(messages, nil, logger)

	engine := html.New("../../../web/views", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("clubhouse-test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService, time.Hour),
		Feed:           handlers.NewFeedHandler(feedService),
		AuthMiddleware: auth.NewMiddleware(codec, sessions, users),
	})

	return &testEnv{app: app, users: users, messages: messages, sessions: sessions}
}

func (e *testEnv) postForm(t *testing.T, path string, vals url.Values, cookie string) *nethttp.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path, cookie string) *nethttp.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) signUp(t *testing.T, username string) {
	t.Helper()
	resp := e.postForm(t, "/sign-up", url.Values{
		"firstname":    {"Ada"},
		"lastname":     {"Lovelace"},
		"username":     {username},
		"password":     {"hunter22"},
		"confpassword": {"hunter22"},
	}, "")
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
}

func (e *testEnv) logIn(t *testing.T, username string) string {
	t.Helper()
	resp := e.postForm(t, "/log-in", url.Values{
		"username": {username},
		"password": {"hunter22"},
	}, "")
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.SessionCookieName {
			return cookie.Name + "=" + cookie.Value
		}
	}
	t.Fatal("session cookie not set")
	return ""
}

func body(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestSignUpValidationFailureRendersFormOnce(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/sign-up", url.Values{
		"firstname":    {"Ada"},
		"lastname":     {"Lovelace"},
		"username":     {"adalovelace"},
		"password":     {"12345"},
		"confpassword": {"12345"},
	}, "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Password must be at least 6 characters")
	assert.Empty(t, env.users.users)
}

func TestSignUpAndLogIn(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")

	require.Len(t, env.users.users, 1)
	for _, user := range env.users.users {
		assert.NotEqual(t, "hunter22", user.PasswordHash)
		assert.Equal(t, domain.MemberStatusNonMember, user.MemberStatus)
	}

	cookie := env.logIn(t, "adalovelace")
	resp := env.get(t, "/", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Signed in as Ada Lovelace")
}

func TestLogInFailureRedirectsWithFlag(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")

	resp := env.postForm(t, "/log-in", url.Values{
		"username": {"adalovelace"},
		"password": {"wrong-password"},
	}, "")

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?login_error=incorrect+password", resp.Header.Get(fiber.HeaderLocation))
	assert.Empty(t, env.sessions.store)

	resp = env.postForm(t, "/log-in", url.Values{
		"username": {"nobody"},
		"password": {"hunter22"},
	}, "")
	assert.Equal(t, "/?login_error=incorrect+username", resp.Header.Get(fiber.HeaderLocation))
}

func TestPostMessageRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/message", url.Values{"message": {"hello"}}, "")

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))
	assert.Empty(t, env.messages.messages)
}

func TestPostMessageUsesSessionIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")
	cookie := env.logIn(t, "adalovelace")

	resp := env.postForm(t, "/message", url.Values{"message": {"hello feed"}}, cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	require.Len(t, env.messages.messages, 1)
	for _, msg := range env.messages.messages {
		assert.Equal(t, "hello feed", msg.Body)
		assert.Equal(t, "user-1", msg.AuthorID)
	}
}

func TestDeleteByStrangerIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")
	env.signUp(t, "gracehopper")

	ownerCookie := env.logIn(t, "adalovelace")
	resp := env.postForm(t, "/message", url.Values{"message": {"mine"}}, ownerCookie)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	strangerCookie := env.logIn(t, "gracehopper")
	resp = env.postForm(t, "/delete", url.Values{"messageid": {"msg-1"}}, strangerCookie)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Len(t, env.messages.messages, 1)
}

func TestDeleteByOwner(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")
	cookie := env.logIn(t, "adalovelace")

	resp := env.postForm(t, "/message", url.Values{"message": {"mine"}}, cookie)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp = env.postForm(t, "/delete", url.Values{"messageid": {"msg-1"}}, cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.messages.messages)
}

func TestMemberUpgradeGate(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")
	cookie := env.logIn(t, "adalovelace")

	resp := env.postForm(t, "/member-up", url.Values{"memberstat": {"Sesame"}}, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body(t, resp), "That is not the code")
	assert.Equal(t, domain.MemberStatusNonMember, env.users.users["user-1"].MemberStatus)

	resp = env.postForm(t, "/member-up", url.Values{"memberstat": {"Fidelio"}}, cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, domain.MemberStatusMember, env.users.users["user-1"].MemberStatus)
}

func TestLogOutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "adalovelace")
	cookie := env.logIn(t, "adalovelace")
	require.Len(t, env.sessions.store, 1)

	resp := env.get(t, "/log-out", cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.sessions.store)

	// the old cookie no longer authenticates
	resp = env.postForm(t, "/message", url.Values{"message": {"ghost"}}, cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.messages.messages)
}

func TestReadinessFailsWithoutDependencies(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/health/ready", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp = env.get(t, "/health/live", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
