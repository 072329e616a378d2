package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"warbler/internal/handler"
	"warbler/internal/httputil"
	"warbler/internal/metrics"
	"warbler/internal/session"
	appmw "warbler/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	Responder      *handler.Responder
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	FollowHandler  *handler.FollowHandler
	LikeHandler    *handler.LikeHandler
	MessageHandler *handler.MessageHandler
	FeedHandler    *handler.FeedHandler
	Sessions       *session.Manager
	Users          appmw.UserLoader
	Logger         *zap.Logger
	// StaticDir is served under /static/ when set.
	StaticDir string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(appmw.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(appmw.NoCache)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	if cfg.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.Handle("/static/*", fs)
	}

	// Pages: every request gets its session and current user loaded.
	pages := chi.Chain(appmw.LoadCurrentUser(cfg.Sessions, cfg.Users, cfg.Logger))

	r.NotFound(pages.HandlerFunc(cfg.Responder.NotFound).ServeHTTP)
	r.MethodNotAllowed(pages.HandlerFunc(cfg.Responder.MethodNotAllowed).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(pages...)

		r.Get("/", cfg.FeedHandler.Home)

		r.Get("/signup", cfg.AuthHandler.ShowSignup)
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Get("/login", cfg.AuthHandler.ShowLogin)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Get("/logout", cfg.AuthHandler.Logout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.List)
			r.Get("/profile", cfg.UserHandler.ShowEditProfile)
			r.Post("/profile", cfg.UserHandler.EditProfile)
			r.Post("/delete", cfg.UserHandler.Delete)

			r.Post("/follow/{id}", cfg.FollowHandler.Follow)
			r.Post("/stop-following/{id}", cfg.FollowHandler.StopFollowing)
			r.Post("/add_like/{message_id}", cfg.LikeHandler.AddLike)

			r.Get("/{id}", cfg.UserHandler.Show)
			r.Get("/{id}/following", cfg.FollowHandler.Following)
			r.Get("/{id}/followers", cfg.FollowHandler.Followers)
			r.Get("/{id}/likes", cfg.LikeHandler.Likes)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/new", cfg.MessageHandler.ShowNew)
			r.Post("/new", cfg.MessageHandler.Create)
			r.Get("/{id}", cfg.MessageHandler.Show)
			r.Post("/{id}/delete", cfg.MessageHandler.Delete)
		})
	})

	return r
}
