package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/clubhouse/internal/domain"
	"github.com/spec-kit/clubhouse/internal/events"
	"github.com/spec-kit/clubhouse/internal/repository"
	"github.com/spec-kit/clubhouse/pkg/util"
)

// FeedService owns the shared message feed.
type FeedService struct {
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewFeedService builds the service.
func NewFeedService(messages repository.MessageRepository, dispatcher events.Dispatcher, logger *zap.Logger) *FeedService {
	return &FeedService{messages: messages, dispatcher: dispatcher, logger: logger}
}

// List returns every message in the feed's declared order.
func (s *FeedService) List(ctx context.Context) ([]domain.FeedEntry, error) {
	return s.messages.List(ctx)
}

// Post validates and stores a new message authored by the session principal.
func (s *FeedService) Post(ctx context.Context, author *domain.User, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) < 2 {
		return nil, util.ValidationErrors{"Message must be at least 2 characters"}
	}

	msg := &domain.Message{
		Body:      body,
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventMessagePosted, author.ID, events.MessagePayload{
		MessageID:   msg.ID,
		BodyPreview: preview(msg.Body),
	})
	return msg, nil
}

// Delete removes a message if the actor owns it or is an administrator.
// Unknown ids and repository failures are logged and swallowed so the caller
// always lands back on the feed.
func (s *FeedService) Delete(ctx context.Context, actor *domain.User, messageID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("delete of unknown message ignored", zap.String("message_id", messageID))
			return nil
		}
		s.logger.Error("error deleting message", zap.String("message_id", messageID), zap.Error(err))
		return nil
	}

	if msg.AuthorID != actor.ID && !actor.Admin {
		return util.NewForbidden("only the author or an administrator may delete a message")
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		s.logger.Error("error deleting message", zap.String("message_id", messageID), zap.Error(err))
		return nil
	}

	s.publish(ctx, events.EventMessageDeleted, actor.ID, events.MessagePayload{MessageID: messageID})
	return nil
}

func (s *FeedService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func preview(body string) string {
	const max = 40
	if len(body) <= max {
		return body
	}
	return body[:max]
}
