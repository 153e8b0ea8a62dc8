package domain

import "time"

// Message is a feed entry. AuthorID is stored as a raw identifier rather
// than a relational reference; the feed joins it back to users at read time.
type Message struct {
	ID        string
	Body      string
	AuthorID  string
	CreatedAt time.Time
}

// FeedEntry is a message decorated with author details for rendering.
type FeedEntry struct {
	Message
	AuthorName string
}
