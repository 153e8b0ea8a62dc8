package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventMemberUpgraded EventType = "member_upgraded"
	EventMessagePosted  EventType = "message_posted"
	EventMessageDeleted EventType = "message_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// MessagePayload accompanies message_posted and message_deleted events.
type MessagePayload struct {
	MessageID   string `json:"message_id"`
	BodyPreview string `json:"body_preview,omitempty"`
}
