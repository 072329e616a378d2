package handler

import (
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/form"
	"warbler/internal/httputil"
	"warbler/internal/model"
	"warbler/internal/view"
)

type MessageHandler struct {
	*Responder
	messages MessageService
	likes    LikeService
}

func NewMessageHandler(p *Responder, messages MessageService, likes LikeService) *MessageHandler {
	return &MessageHandler{Responder: p, messages: messages, likes: likes}
}

// ShowNew renders the compose form.
// GET /messages/new
func (h *MessageHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}
	h.renderNew(w, r, form.MessageForm{}, nil)
}

// Create posts a message and goes to the author's profile.
// POST /messages/new
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := parseForm(w, r); err != nil {
		h.BadRequest(w, r)
		return
	}

	f := form.ParseMessage(r)
	if errs := form.Validate(f); errs != nil {
		h.renderNew(w, r, f, errs)
		return
	}

	if _, err := h.messages.Create(r.Context(), user.ID, f.Text); err != nil {
		switch {
		case errors.Is(err, model.ErrMessageEmpty), errors.Is(err, model.ErrMessageTooLong):
			h.renderNew(w, r, f, form.Errors{"text": "Message must be between 1 and 140 characters."})
		default:
			h.ServerError(w, r, err)
		}
		return
	}

	h.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID))
}

func (h *MessageHandler) renderNew(w http.ResponseWriter, r *http.Request, f form.MessageForm, errs form.Errors) {
	h.Render(w, r, http.StatusOK, view.PageNewMessage, "New Message", view.NewMessageData{Form: f, Errors: errs})
}

// Show renders a single message.
// GET /messages/{id}
func (h *MessageHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	msg, err := h.messages.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrMessageNotFound) {
			h.NotFound(w, r)
		} else {
			h.ServerError(w, r, err)
		}
		return
	}

	data := view.MessageData{Message: msg}
	if viewer := h.viewer(r); viewer != nil {
		liked, err := h.likes.LikedIDs(r.Context(), viewer.ID)
		if err != nil {
			h.ServerError(w, r, err)
			return
		}
		data.Liked = liked[msg.ID]
	}

	h.Render(w, r, http.StatusOK, view.PageMessage, "Message", data)
}

// Delete removes a message owned by the current user.
// POST /messages/{id}/delete
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, ok := httputil.IDParam(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}

	if err := h.messages.Delete(r.Context(), id, user.ID); err != nil {
		switch {
		case errors.Is(err, model.ErrMessageNotFound):
			h.NotFound(w, r)
		case errors.Is(err, model.ErrNotMessageOwner):
			h.Unauthorized(w, r)
		default:
			h.ServerError(w, r, err)
		}
		return
	}

	h.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID))
}
