package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"warbler/internal/form"
	"warbler/internal/httputil"
	"warbler/internal/model"
	"warbler/internal/session"
	"warbler/internal/view"
)

// UserHandler serves the user directory, profiles and account management.
type UserHandler struct {
	*Responder
	users    UserService
	follows  FollowService
	likes    LikeService
	messages MessageService
	uploader ImageUploader
}

func NewUserHandler(p *Responder, users UserService, follows FollowService, likes LikeService, messages MessageService, uploader ImageUploader) *UserHandler {
	return &UserHandler{
		Responder: p,
		users:     users,
		follows:   follows,
		likes:     likes,
		messages:  messages,
		uploader:  uploader,
	}
}

// List shows all users, or those whose username contains ?q=.
// GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	users, err := h.users.List(r.Context(), query)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	data := view.UsersData{Users: users, Query: query}
	if viewer := h.viewer(r); viewer != nil {
		data.Following, err = h.follows.FollowingSet(r.Context(), viewer.ID, users)
		if err != nil {
			h.ServerError(w, r, err)
			return
		}
	}

	h.Render(w, r, http.StatusOK, view.PageUsers, "Users", data)
}

// Show renders a profile with the user's newest messages.
// GET /users/{id}
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	profile, ok := loadProfile(h.Responder, h.users, w, r)
	if !ok {
		return
	}

	messages, err := h.messages.ListByUser(r.Context(), profile.User.ID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	data := view.ProfileData{Profile: profile, Messages: messages}
	if viewer := h.viewer(r); viewer != nil {
		if data.IsFollowing, err = h.follows.IsFollowing(r.Context(), viewer.ID, profile.User.ID); err != nil {
			h.ServerError(w, r, err)
			return
		}
		if data.Liked, err = h.likes.LikedIDs(r.Context(), viewer.ID); err != nil {
			h.ServerError(w, r, err)
			return
		}
	}

	h.Render(w, r, http.StatusOK, view.PageUserShow, "@"+profile.User.Username, data)
}

// ShowEditProfile renders the profile form prefilled with the current values.
// GET /users/profile
func (h *UserHandler) ShowEditProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	h.renderEdit(w, r, form.ProfileForm{
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            deref(user.Bio),
		Location:       deref(user.Location),
	}, nil)
}

// EditProfile applies the form after checking the current password.
// POST /users/profile
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := parseForm(w, r); err != nil {
		errs, err := uploadErrors(err, "image_url")
		if err != nil {
			h.BadRequest(w, r)
			return
		}
		h.renderEdit(w, r, form.ParseProfile(r), errs)
		return
	}

	f := form.ParseProfile(r)
	errs := form.Validate(f)
	if errs == nil {
		errs = foreignImageErrors(h.uploader,
			imageField{name: "image_url", typed: f.ImageURL, current: user.ImageURL},
			imageField{name: "header_image_url", typed: f.HeaderImageURL, current: user.HeaderImageURL},
		)
	}
	if errs != nil {
		h.renderEdit(w, r, f, errs)
		return
	}

	in := model.ProfileUpdate{
		Username:        f.Username,
		Email:           f.Email,
		ImageURL:        f.ImageURL,
		HeaderImageURL:  f.HeaderImageURL,
		Bio:             f.Bio,
		Location:        f.Location,
		CurrentPassword: f.Password,
	}

	// Uploads that end up unused are removed again before re-rendering.
	var uploaded []string
	for _, upload := range []struct {
		field    string
		urlField string
		kind     model.ImageKind
		target   *string
	}{
		{"image_file", "image_url", model.ImageKindAvatar, &in.ImageURL},
		{"header_image_file", "header_image_url", model.ImageKindHeader, &in.HeaderImageURL},
	} {
		url, err := uploadFormImage(r.Context(), h.uploader, r, upload.field, upload.kind)
		if err != nil {
			h.discardImages(r.Context(), h.uploader, uploaded...)
			errs, err := uploadErrors(err, upload.urlField)
			if err != nil {
				h.ServerError(w, r, err)
				return
			}
			h.renderEdit(w, r, f, errs)
			return
		}
		if url != "" {
			*upload.target = url
			uploaded = append(uploaded, url)
		}
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, in)
	if err != nil {
		h.discardImages(r.Context(), h.uploader, uploaded...)
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			h.Flash(r, session.FlashDanger, "Invalid credentials.")
		case errors.Is(err, model.ErrUsernameTaken):
			h.Flash(r, session.FlashDanger, "Username already taken")
		case errors.Is(err, model.ErrEmailTaken):
			h.Flash(r, session.FlashDanger, "Email already taken")
		default:
			h.ServerError(w, r, err)
			return
		}
		h.renderEdit(w, r, f, nil)
		return
	}

	var replaced []string
	if updated.ImageURL != user.ImageURL {
		replaced = append(replaced, user.ImageURL)
	}
	if updated.HeaderImageURL != user.HeaderImageURL {
		replaced = append(replaced, user.HeaderImageURL)
	}
	h.discardImages(r.Context(), h.uploader, replaced...)

	h.Flash(r, session.FlashSuccess, fmt.Sprintf("%s, your changes were made successfully", updated.Username))
	h.Redirect(w, r, fmt.Sprintf("/users/%d", updated.ID))
}

func (h *UserHandler) renderEdit(w http.ResponseWriter, r *http.Request, f form.ProfileForm, errs form.Errors) {
	f.Password = ""
	h.Render(w, r, http.StatusOK, view.PageEditProfile, "Edit Profile", view.EditProfileData{
		Form:         f,
		Errors:       errs,
		MediaEnabled: h.uploader != nil,
	})
}

// Delete logs the user out, then removes the account and everything it owns.
// POST /users/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.logOut(w, r); err != nil {
		h.ServerError(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		h.ServerError(w, r, err)
		return
	}
	h.discardImages(r.Context(), h.uploader, user.ImageURL, user.HeaderImageURL)

	h.Redirect(w, r, "/signup")
}

// loadProfile resolves the {id} user or answers 404.
func loadProfile(p *Responder, users UserService, w http.ResponseWriter, r *http.Request) (*model.Profile, bool) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		p.NotFound(w, r)
		return nil, false
	}

	profile, err := users.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			p.NotFound(w, r)
		} else {
			p.ServerError(w, r, err)
		}
		return nil, false
	}
	return profile, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
