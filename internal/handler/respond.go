package handler

import (
	"net/http"

	"go.uber.org/zap"

	"warbler/internal/httputil"
	"warbler/internal/model"
	"warbler/internal/session"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/view"
)

const msgUnauthorized = "Access unauthorized."

// Responder renders pages and redirects, writing the session back first so
// flashes and login state reach the browser.
type Responder struct {
	views    *view.Renderer
	sessions *session.Manager
	logger   *zap.Logger
}

func NewResponder(views *view.Renderer, sessions *session.Manager, logger *zap.Logger) *Responder {
	return &Responder{views: views, sessions: sessions, logger: logger}
}

// Render shows page with the pending flashes.
func (p *Responder) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	out := view.Page{
		Title:       title,
		CurrentUser: middleware.CurrentUser(r.Context()),
		Data:        data,
	}
	if sess := session.FromContext(r.Context()); sess != nil {
		out.Flashes = sess.PopFlashes()
	}
	p.saveSession(w, r)

	if err := p.views.Render(w, status, page, out); err != nil {
		p.logger.Error("render page",
			zap.String("page", page),
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(r.Context())),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p *Responder) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	p.saveSession(w, r)
	httputil.Redirect(w, r, url)
}

// Flash queues a message for the next rendered page.
func (p *Responder) Flash(r *http.Request, category, message string) {
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.AddFlash(category, message)
	}
}

// Unauthorized flashes "Access unauthorized." and sends the user home.
func (p *Responder) Unauthorized(w http.ResponseWriter, r *http.Request) {
	p.Flash(r, session.FlashDanger, msgUnauthorized)
	p.Redirect(w, r, "/")
}

func (p *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusNotFound, view.PageError, "Not Found", view.ErrorData{
		Status:  http.StatusNotFound,
		Message: "The page you are looking for does not exist.",
	})
}

func (p *Responder) BadRequest(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusBadRequest, view.PageError, "Bad Request", view.ErrorData{
		Status:  http.StatusBadRequest,
		Message: "The form could not be read.",
	})
}

func (p *Responder) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusMethodNotAllowed, view.PageError, "Method Not Allowed", view.ErrorData{
		Status:  http.StatusMethodNotAllowed,
		Message: "That action is not allowed here.",
	})
}

// ServerError logs err and shows a generic 500 page.
func (p *Responder) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
		zap.String("request_id", middleware.RequestID(r.Context())),
	)
	p.Render(w, r, http.StatusInternalServerError, view.PageError, "Error", view.ErrorData{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong. Please try again.",
	})
}

// requireUser returns the logged-in user, or answers with the unauthorized
// flash and redirect and reports false.
func (p *Responder) requireUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		p.Unauthorized(w, r)
		return nil, false
	}
	return user, true
}

// viewer returns the logged-in user or nil.
func (p *Responder) viewer(r *http.Request) *model.User {
	return middleware.CurrentUser(r.Context())
}

// logIn binds the session to user under a fresh session id.
func (p *Responder) logIn(r *http.Request, user *model.User) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return
	}
	p.sessions.Renew(sess)
	sess.SetUserID(user.ID)
}

// logOut removes the session and its cookie.
func (p *Responder) logOut(w http.ResponseWriter, r *http.Request) error {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil
	}
	return p.sessions.Destroy(r.Context(), w, sess)
}

func (p *Responder) saveSession(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return
	}
	if err := p.sessions.Save(r.Context(), w, sess); err != nil {
		p.logger.Error("save session", zap.Error(err), zap.String("request_id", middleware.RequestID(r.Context())))
	}
}
