package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clubhouse/internal/api/dto"
	"github.com/spec-kit/clubhouse/internal/auth"
	"github.com/spec-kit/clubhouse/internal/domain"
	"github.com/spec-kit/clubhouse/internal/service"
	"github.com/spec-kit/clubhouse/pkg/util"
)

// FeedHandler renders the feed and accepts post/delete submissions.
type FeedHandler struct {
	feed *service.FeedService
}

// NewFeedHandler constructs handler.
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feedService}
}

// Index handles GET /.
func (h *FeedHandler) Index(c *fiber.Ctx) error {
	entries, err := h.feed.List(c.Context())
	if err != nil {
		return err
	}

	return c.Render("index", fiber.Map{
		"CurrentUser": currentUser(c),
		"Feed":        entries,
		"LoginError":  c.Query("login_error"),
	})
}

// MessageForm handles GET /message.
func (h *FeedHandler) MessageForm(c *fiber.Ctx) error {
	return c.Render("message", fiber.Map{
		"CurrentUser": currentUser(c),
	})
}

// PostMessage handles POST /message. Authorship comes from the session
// principal.
func (h *FeedHandler) PostMessage(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("log in to post a message")
	}

	var form dto.MessageForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	if _, err := h.feed.Post(c.Context(), user, form.Body); err != nil {
		var verr util.ValidationErrors
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).Render("message", fiber.Map{
				"CurrentUser": user,
				"Errors":      []string(verr),
				"Body":        form.Body,
			})
		}
		return err
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// Delete handles POST /delete.
func (h *FeedHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("log in to delete a message")
	}

	var form dto.DeleteForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	if err := h.feed.Delete(c.Context(), user, form.MessageID); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func currentUser(c *fiber.Ctx) *domain.User {
	user, _ := auth.PrincipalFromContext(c)
	return user
}
