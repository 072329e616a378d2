package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "warbler_session"

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager binds Store entries to signed cookies. The cookie only carries the
// session id; everything else lives in the store.
type Manager struct {
	store  Store
	secret []byte
	maxAge time.Duration
	secure bool
}

func NewManager(store Store, secret string, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
	}
}

// Load returns the session referenced by the request cookie. A missing,
// tampered or expired cookie yields a fresh empty session; only store
// failures are returned as errors.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}, nil
	}

	id, err := m.parseToken(cookie.Value)
	if err != nil {
		return &Session{}, nil
	}

	data, err := m.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Session{}, nil
		}
		return nil, err
	}

	return &Session{ID: id, Data: *data, stored: true}, nil
}

// Save writes a modified session back and refreshes the cookie. An emptied
// session is removed from the store together with its cookie. Detached
// sessions are dropped.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.detached {
		return nil
	}
	if s.staleID != "" {
		if err := m.store.Delete(ctx, s.staleID); err != nil {
			return err
		}
		s.staleID = ""
	}

	if !s.modified {
		return nil
	}

	if s.empty() {
		if s.stored {
			if err := m.store.Delete(ctx, s.ID); err != nil {
				return err
			}
			m.clearCookie(w)
		}
		s.ID, s.stored, s.modified = "", false, false
		return nil
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := m.store.Save(ctx, s.ID, &s.Data, m.maxAge); err != nil {
		return err
	}

	token, err := m.signToken(s.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.stored, s.modified = true, false
	return nil
}

// Renew gives the session a new id on the next Save, dropping the old entry.
// Called on login so a pre-login session id is never promoted.
func (m *Manager) Renew(s *Session) {
	if s.stored {
		s.staleID = s.ID
	}
	s.ID = ""
	s.stored = false
	s.modified = true
}

// Destroy removes the session entirely, flashes included.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.stored {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	m.clearCookie(w)
	*s = Session{}
	return nil
}

func (m *Manager) signToken(id string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parseToken(value string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(value, &c, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if c.SessionID == "" {
		return "", errors.New("session token without id")
	}
	return c.SessionID, nil
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
