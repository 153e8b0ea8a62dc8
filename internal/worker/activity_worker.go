package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/clubhouse/internal/events"
)

// StartActivityLogger subscribes a logging handler to every domain event so
// sign-ups, upgrades and feed activity show up in the structured log stream.
func StartActivityLogger(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	handler := func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event", string(event.Type)),
			zap.String("user_id", event.UserID),
		}
		if payload, ok := event.Payload.(events.MessagePayload); ok {
			fields = append(fields, zap.String("message_id", payload.MessageID))
		}
		logger.Info("activity", fields...)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventMemberUpgraded,
		events.EventMessagePosted,
		events.EventMessageDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
