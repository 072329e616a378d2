package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"warbler/internal/model"
	"warbler/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// CurrentUserKey is the context key for the logged-in user
	CurrentUserKey contextKey = "current_user"
)

// UserLoader resolves the user a session points at.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// LoadCurrentUser loads the session once per request and, if it names a
// user, resolves that user into the request context. A session pointing at a
// deleted user is treated as anonymous. A failing session store degrades to
// an anonymous request rather than an error page, and nothing written to that
// request's session is saved.
func LoadCurrentUser(sessions *session.Manager, users UserLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r)
			if err != nil {
				logger.Error("load session", zap.Error(err), zap.String("request_id", RequestID(r.Context())))
				sess = session.Detached()
			}

			ctx := session.NewContext(r.Context(), sess)

			if userID, ok := sess.UserID(); ok {
				user, err := users.GetByID(ctx, userID)
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, CurrentUserKey, user)
				case errors.Is(err, model.ErrUserNotFound):
					sess.ClearUser()
					if err := sessions.Save(ctx, w, sess); err != nil {
						logger.Warn("clear stale session", zap.Error(err))
					}
				default:
					logger.Error("load current user", zap.Int64("user_id", userID), zap.Error(err))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(CurrentUserKey).(*model.User)
	return user
}
