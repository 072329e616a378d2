package handler

import (
	"net/http"

	"warbler/internal/view"
)

type FeedHandler struct {
	*Responder
	feed FeedService
}

func NewFeedHandler(p *Responder, feed FeedService) *FeedHandler {
	return &FeedHandler{Responder: p, feed: feed}
}

// Home shows the signup call to action to visitors and the feed of followed
// users (plus the viewer's own messages) to logged-in users.
// GET /
func (h *FeedHandler) Home(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewer(r)
	if viewer == nil {
		h.Render(w, r, http.StatusOK, view.PageHomeAnon, "Warbler", nil)
		return
	}

	feed, err := h.feed.Home(r.Context(), viewer.ID)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, view.PageHome, "Home", view.HomeData{
		Messages: feed.Messages,
		Liked:    feed.LikedIDs,
	})
}
