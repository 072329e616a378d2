package model

import (
	"errors"
	"time"
)

// MaxMessageLength is the longest warble we accept.
const MaxMessageLength = 140

// FeedLimit caps the homepage feed and profile message lists.
const FeedLimit = 100

// Message is a short post owned by a single user.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	UserID    int64     `db:"user_id" json:"user_id"`
}

// MessageWithAuthor is a message joined with the author fields needed to render it.
type MessageWithAuthor struct {
	Message
	Username string `db:"username" json:"username"`
	ImageURL string `db:"image_url" json:"image_url"`
}

// Feed is the authenticated homepage: recent messages and the viewer's likes.
type Feed struct {
	Messages []MessageWithAuthor
	LikedIDs map[int64]bool
}

var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotMessageOwner      = errors.New("not the owner of this message")
	ErrMessageEmpty         = errors.New("message text is required")
	ErrMessageTooLong       = errors.New("message text too long")
	ErrCannotLikeOwnMessage = errors.New("cannot like your own message")
)
