package handler

import (
	"errors"
	"net/http"

	"warbler/internal/httputil"
	"warbler/internal/model"
	"warbler/internal/session"
	"warbler/internal/view"
)

type LikeHandler struct {
	*Responder
	users UserService
	likes LikeService
}

func NewLikeHandler(p *Responder, users UserService, likes LikeService) *LikeHandler {
	return &LikeHandler{Responder: p, users: users, likes: likes}
}

// AddLike toggles the current user's like on a message.
// POST /users/add_like/{message_id}
func (h *LikeHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	messageID, ok := httputil.IDParam(r, "message_id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	if _, err := h.likes.Toggle(r.Context(), user.ID, messageID); err != nil {
		switch {
		case errors.Is(err, model.ErrMessageNotFound):
			h.NotFound(w, r)
		case errors.Is(err, model.ErrCannotLikeOwnMessage):
			h.Flash(r, session.FlashDanger, "You can't like your own messages.")
			h.Redirect(w, r, "/")
		default:
			h.ServerError(w, r, err)
		}
		return
	}

	h.Redirect(w, r, "/")
}

// Likes lists the messages {id} has liked.
// GET /users/{id}/likes
func (h *LikeHandler) Likes(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	profile, ok := loadProfile(h.Responder, h.users, w, r)
	if !ok {
		return
	}

	messages, err := h.likes.LikedMessages(r.Context(), profile.User.ID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	liked, err := h.likes.LikedIDs(r.Context(), viewer.ID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, view.PageLikes, "Likes", view.ProfileData{
		Profile:  profile,
		Messages: messages,
		Liked:    liked,
	})
}
