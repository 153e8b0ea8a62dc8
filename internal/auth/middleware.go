package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clubhouse/internal/domain"
	"github.com/spec-kit/clubhouse/internal/repository"
)

const (
	principalKey = "auth_principal"
	sessionIDKey = "auth_session_id"
)

// Middleware resolves the session cookie into an authenticated principal.
type Middleware struct {
	codec    *CookieCodec
	sessions SessionManager
	users    repository.UserRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(codec *CookieCodec, sessions SessionManager, users repository.UserRepository) *Middleware {
	return &Middleware{codec: codec, sessions: sessions, users: users}
}

// LoadPrincipal runs on every route. A missing, tampered or expired cookie
// leaves the request anonymous; it never fails the request on its own.
func (m *Middleware) LoadPrincipal(c *fiber.Ctx) error {
	cookie := c.Cookies(SessionCookieName)
	if cookie == "" {
		return c.Next()
	}

	sessionID, err := m.codec.Decode(cookie)
	if err != nil {
		return c.Next()
	}

	userID, err := m.sessions.Resolve(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return c.Next()
		}
		return err
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Next()
		}
		return err
	}

	c.Locals(principalKey, user)
	c.Locals(sessionIDKey, sessionID)
	return c.Next()
}

// RequireAuth redirects anonymous requests back to the feed.
func RequireAuth(c *fiber.Ctx) error {
	if _, ok := PrincipalFromContext(c); !ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user, if any.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(principalKey).(*domain.User)
	return user, ok
}

// SessionIDFromContext retrieves the resolved session id, if any.
func SessionIDFromContext(c *fiber.Ctx) (string, bool) {
	sessionID, ok := c.Locals(sessionIDKey).(string)
	return sessionID, ok
}
