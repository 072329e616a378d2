package session

import (
	"context"
	"errors"
)

// Flash categories used by the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// ErrNotFound is returned by a Store when the session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Data is the server-side payload of a session.
type Data struct {
	UserID  int64   `json:"user_id,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Session is a loaded session plus bookkeeping for Manager.Save.
type Session struct {
	ID   string
	Data Data

	stored   bool
	modified bool
	staleID  string
	detached bool
}

// Detached returns an empty session that Manager.Save never writes. It stands
// in when the store could not be read, so the client's cookie is left alone.
func Detached() *Session {
	return &Session{detached: true}
}

// UserID returns the logged-in user id, if any.
func (s *Session) UserID() (int64, bool) {
	return s.Data.UserID, s.Data.UserID != 0
}

// SetUserID binds the session to a user.
func (s *Session) SetUserID(id int64) {
	s.Data.UserID = id
	s.modified = true
}

// ClearUser forgets the logged-in user but keeps pending flashes.
func (s *Session) ClearUser() {
	if s.Data.UserID == 0 {
		return
	}
	s.Data.UserID = 0
	s.modified = true
}

func (s *Session) AddFlash(category, message string) {
	s.Data.Flashes = append(s.Data.Flashes, Flash{Category: category, Message: message})
	s.modified = true
}

// PopFlashes returns the pending flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	if len(s.Data.Flashes) == 0 {
		return nil
	}
	flashes := s.Data.Flashes
	s.Data.Flashes = nil
	s.modified = true
	return flashes
}

func (s *Session) empty() bool {
	return s.Data.UserID == 0 && len(s.Data.Flashes) == 0
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by the session middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
