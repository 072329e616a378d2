package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/httputil"
	"warbler/internal/model"
	"warbler/internal/session"
	"warbler/internal/view"
)

type FollowHandler struct {
	*Responder
	users   UserService
	follows FollowService
}

func NewFollowHandler(p *Responder, users UserService, follows FollowService) *FollowHandler {
	return &FollowHandler{Responder: p, users: users, follows: follows}
}

// Following lists the users {id} follows.
// GET /users/{id}/following
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, view.PageFollowing, "Following", h.follows.GetFollowing)
}

// Followers lists the users following {id}.
// GET /users/{id}/followers
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, view.PageFollowers, "Followers", h.follows.GetFollowers)
}

func (h *FollowHandler) listPage(w http.ResponseWriter, r *http.Request, page, title string,
	list func(ctx context.Context, userID int64) ([]model.UserSummary, error)) {
	viewer, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	profile, ok := loadProfile(h.Responder, h.users, w, r)
	if !ok {
		return
	}

	users, err := list(r.Context(), profile.User.ID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	following, err := h.follows.FollowingSet(r.Context(), viewer.ID, users)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	isFollowing, err := h.follows.IsFollowing(r.Context(), viewer.ID, profile.User.ID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, page, title, view.ProfileData{
		Profile:     profile,
		IsFollowing: isFollowing,
		Users:       users,
		Following:   following,
	})
}

// Follow makes the current user follow {id}.
// POST /users/follow/{id}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.follows.Follow)
}

// StopFollowing removes the follow edge to {id}.
// POST /users/stop-following/{id}
func (h *FollowHandler) StopFollowing(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.follows.Unfollow)
}

func (h *FollowHandler) change(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, followerID, followedID int64) error) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	targetID, ok := httputil.IDParam(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := apply(r.Context(), user.ID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			h.NotFound(w, r)
		case errors.Is(err, model.ErrCannotFollowSelf):
			h.Flash(r, session.FlashWarning, "You can't follow yourself.")
			h.Redirect(w, r, "/")
		default:
			h.ServerError(w, r, err)
		}
		return
	}

	h.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID))
}
