package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clubhouse/internal/api/dto"
	"github.com/spec-kit/clubhouse/internal/auth"
	"github.com/spec-kit/clubhouse/internal/service"
	"github.com/spec-kit/clubhouse/pkg/util"
)

// AuthHandler exposes the sign-up, log-in, log-out and member-up flows.
type AuthHandler struct {
	auth      *service.AuthService
	cookieTTL time.Duration
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: authService, cookieTTL: cookieTTL}
}

// SignUpForm handles GET /sign-up.
func (h *AuthHandler) SignUpForm(c *fiber.Ctx) error {
	return c.Render("sign-up", fiber.Map{
		"CurrentUser": currentUser(c),
	})
}

// SignUp handles POST /sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var form dto.SignUpForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	_, err := h.auth.Register(c.Context(), service.RegisterInput{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Username:        form.Username,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Admin:           form.Admin,
	})
	if err != nil {
		var verr util.ValidationErrors
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).Render("sign-up", fiber.Map{
				"CurrentUser": currentUser(c),
				"Errors":      []string(verr),
				"Form":        form,
			})
		}
		return err
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// Login handles POST /log-in. Both failure reasons redirect back to the feed
// carrying the reason as a flag; success sets the signed session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	_, cookie, err := h.auth.Login(c.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrIncorrectUsername) || errors.Is(err, service.ErrIncorrectPassword) {
			return c.Redirect("/?login_error="+url.QueryEscape(err.Error()), fiber.StatusSeeOther)
		}
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    cookie,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout handles GET /log-out.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sessionID, ok := auth.SessionIDFromContext(c); ok {
		if err := h.auth.Logout(c.Context(), sessionID); err != nil {
			return err
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.Redirect("/", fiber.StatusSeeOther)
}

// MemberUpForm handles GET /member-up.
func (h *AuthHandler) MemberUpForm(c *fiber.Ctx) error {
	return c.Render("member-up", fiber.Map{
		"CurrentUser": currentUser(c),
	})
}

// MemberUp handles POST /member-up. The upgrade target is always the session
// principal.
func (h *AuthHandler) MemberUp(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("log in to become a member")
	}

	var form dto.MemberUpForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	if err := h.auth.UpgradeMember(c.Context(), user, form.Code); err != nil {
		var verr util.ValidationErrors
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).Render("member-up", fiber.Map{
				"CurrentUser": user,
				"Errors":      []string(verr),
			})
		}
		return err
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}
