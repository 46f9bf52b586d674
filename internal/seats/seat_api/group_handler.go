package seat_api

import (
	"fmt"
	"net/http"
	"net/url"

	"ms-seating/internal/utils"

	"github.com/go-chi/chi/v5"
)

func groupParam(r *http.Request) string {
	raw := chi.URLParam(r, "group")
	if label, err := url.PathUnescape(raw); err == nil {
		return label
	}
	return raw
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("groups", h.SeatService.GroupList()))
}

type resizeRequest struct {
	Count int `json:"count"`
}

// ResizeGroup leaves the count check to the group manager so that a zero
// count is reported as invalid_count
func (h *Handler) ResizeGroup(w http.ResponseWriter, r *http.Request) {
	label := groupParam(r)
	var req resizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	changes, err := h.SeatService.ResizeGroup(label, req.Count)
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("group %s resized to %d", label, req.Count), changes))
}

type renameRequest struct {
	Name string `json:"name" validate:"max=64"`
}

func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	label := groupParam(r)
	var req renameRequest
	if !h.decode(w, r, &req) {
		return
	}

	changes, err := h.SeatService.RenameGroup(label, req.Name)
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d seats relabeled", len(changes)), changes))
}

func (h *Handler) ClearGroup(w http.ResponseWriter, r *http.Request) {
	label := groupParam(r)
	changes, err := h.SeatService.ClearGroup(label)
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("group %s cleared", label), changes))
}
