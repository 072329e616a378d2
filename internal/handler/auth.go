package handler

import (
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/auth"
	"warbler/internal/form"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/session"
	"warbler/internal/view"
)

// AuthHandler groups signup, login and logout.
type AuthHandler struct {
	*Responder
	users    UserService
	uploader ImageUploader
}

// NewAuthHandler wires dependencies for authentication endpoints. uploader may be nil.
func NewAuthHandler(p *Responder, users UserService, uploader ImageUploader) *AuthHandler {
	return &AuthHandler{Responder: p, users: users, uploader: uploader}
}

// ShowSignup renders the signup form.
// GET /signup
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	h.renderSignup(w, r, form.SignupForm{}, nil)
}

// Signup creates the account, logs it in and sends the user home. Invalid
// input and taken usernames re-render the form.
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		errs, err := uploadErrors(err, "image_url")
		if err != nil {
			h.BadRequest(w, r)
			return
		}
		h.renderSignup(w, r, form.ParseSignup(r), errs)
		return
	}

	f := form.ParseSignup(r)
	errs := form.Validate(f)
	if errs == nil {
		errs = foreignImageErrors(h.uploader, imageField{name: "image_url", typed: f.ImageURL})
	}
	if errs != nil {
		h.renderSignup(w, r, f, errs)
		return
	}

	uploaded, err := uploadFormImage(r.Context(), h.uploader, r, "image_file", model.ImageKindAvatar)
	if err != nil {
		errs, err := uploadErrors(err, "image_url")
		if err != nil {
			h.ServerError(w, r, err)
			return
		}
		h.renderSignup(w, r, f, errs)
		return
	}
	imageURL := f.ImageURL
	if uploaded != "" {
		imageURL = uploaded
	}

	user, err := h.users.Signup(r.Context(), model.SignupInput{
		Username: f.Username,
		Password: f.Password,
		Email:    f.Email,
		ImageURL: imageURL,
	})
	if err != nil {
		h.discardImages(r.Context(), h.uploader, uploaded)

		switch {
		case errors.Is(err, model.ErrUsernameTaken):
			h.Flash(r, session.FlashDanger, "Username already taken")
		case errors.Is(err, model.ErrEmailTaken):
			h.Flash(r, session.FlashDanger, "Email already taken")
		case errors.Is(err, auth.ErrPasswordTooLong):
			errs = form.Errors{"password": fmt.Sprintf("Field cannot be longer than %d bytes.", auth.MaxPasswordBytes)}
		default:
			h.ServerError(w, r, err)
			return
		}
		h.renderSignup(w, r, f, errs)
		return
	}

	h.logIn(r, user)
	h.Redirect(w, r, "/")
}

func (h *AuthHandler) renderSignup(w http.ResponseWriter, r *http.Request, f form.SignupForm, errs form.Errors) {
	f.Password = ""
	h.Render(w, r, http.StatusOK, view.PageSignup, "Sign up", view.SignupData{
		Form:         f,
		Errors:       errs,
		MediaEnabled: h.uploader != nil,
	})
}

// ShowLogin renders the login form.
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, view.PageLogin, "Log in", view.LoginData{})
}

// Login authenticates and greets the user. Unknown usernames and wrong
// passwords get the same "Invalid credentials." flash.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.BadRequest(w, r)
		return
	}

	f := form.ParseLogin(r)
	if errs := form.Validate(f); errs != nil {
		h.renderLogin(w, r, f, errs)
		return
	}

	user, ok, err := h.users.Authenticate(r.Context(), f.Username, f.Password)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	metrics.RecordAuth("login", ok)

	if !ok {
		h.Flash(r, session.FlashDanger, "Invalid credentials.")
		h.renderLogin(w, r, f, nil)
		return
	}

	h.logIn(r, user)
	h.Flash(r, session.FlashSuccess, fmt.Sprintf("Hello, %s!", user.Username))
	h.Redirect(w, r, "/")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, f form.LoginForm, errs form.Errors) {
	f.Password = ""
	h.Render(w, r, http.StatusOK, view.PageLogin, "Log in", view.LoginData{Form: f, Errors: errs})
}

// Logout forgets the session.
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.logOut(w, r); err != nil {
		h.ServerError(w, r, err)
		return
	}
	h.Redirect(w, r, "/")
}
