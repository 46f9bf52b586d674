package seat_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ms-seating/internal/catalog"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/seats/service"
	"ms-seating/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	SeatService *service.SeatService
	Catalog     *catalog.Catalog
	Logger      *logger.Logger
	validate    *validator.Validate
}

func NewHandler(seatService *service.SeatService, c *catalog.Catalog, log *logger.Logger) *Handler {
	return &Handler{
		SeatService: seatService,
		Catalog:     c,
		Logger:      log,
		validate:    validator.New(),
	}
}

// RegisterRoutes mounts the seating API under /seating
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/seating", func(r chi.Router) {
		r.Get("/sectors", h.ListSectors)
		r.Get("/sectors/{sectorId}", h.GetSector)

		r.Get("/seats", h.GetSeatMap)
		r.Delete("/seats", h.ResetAll)
		r.Get("/seats/{seatId}", h.GetSeat)
		r.Put("/seats/{seatId}", h.SetStatus)
		r.Post("/seats/{seatId}/toggle", h.Toggle)
		r.Post("/paint", h.Paint)

		r.Post("/reservations", h.Reserve)

		r.Get("/groups", h.ListGroups)
		r.Put("/groups/{group}/size", h.ResizeGroup)
		r.Put("/groups/{group}/name", h.RenameGroup)
		r.Delete("/groups/{group}", h.ClearGroup)

		r.Get("/stats", h.Stats)
	})
}

func (h *Handler) ListSectors(w http.ResponseWriter, r *http.Request) {
	class := models.SeatClass(r.URL.Query().Get("class"))
	if class == "" {
		sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("sectors", h.Catalog.Sectors()))
		return
	}
	if !class.Valid() {
		sendJSONResponse(w, http.StatusBadRequest, utils.ErrorResponse("Invalid class", fmt.Sprintf("unknown seat class %q", class)))
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("sectors", h.Catalog.SectorsByClass(class)))
}

func (h *Handler) GetSector(w http.ResponseWriter, r *http.Request) {
	sectorID := chi.URLParam(r, "sectorId")
	sector, ok := h.Catalog.Sector(sectorID)
	if !ok {
		h.sendFailure(w, &models.Failure{Kind: models.FailureSectorNotFound, SectorID: sectorID})
		return
	}

	snapshot := h.SeatService.Snapshot().Filter(sectorID)
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("sector", map[string]interface{}{
		"sector":   sector,
		"statuses": snapshot.Statuses,
		"groups":   snapshot.Groups,
	}))
}

// GetSeatMap returns the non-free seats of the venue, or of one sector
// with ?sector=
func (h *Handler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	snapshot := h.SeatService.Snapshot()
	if sectorID := r.URL.Query().Get("sector"); sectorID != "" {
		if _, ok := h.Catalog.Sector(sectorID); !ok {
			h.sendFailure(w, &models.Failure{Kind: models.FailureSectorNotFound, SectorID: sectorID})
			return
		}
		snapshot = snapshot.Filter(sectorID)
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("seat map", snapshot))
}

func (h *Handler) GetSeat(w http.ResponseWriter, r *http.Request) {
	view, err := h.SeatService.Seat(chi.URLParam(r, "seatId"))
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("seat", view))
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=free reserved occupied"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	seatID := chi.URLParam(r, "seatId")
	var req setStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	change, err := h.SeatService.SetStatus(seatID, models.SeatStatus(req.Status))
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("seat updated", change))
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	change, err := h.SeatService.Toggle(chi.URLParam(r, "seatId"))
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("seat toggled", change))
}

type paintRequest struct {
	Start string   `json:"start" validate:"required"`
	Path  []string `json:"path" validate:"dive,required"`
}

func (h *Handler) Paint(w http.ResponseWriter, r *http.Request) {
	var req paintRequest
	if !h.decode(w, r, &req) {
		return
	}

	changes, err := h.SeatService.Paint(req.Start, req.Path)
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d seats painted", len(changes)), changes))
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req models.ReservationRequest
	if !h.decode(w, r, &req) {
		return
	}

	seats, err := h.SeatService.Reserve(req)
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	sendJSONResponse(w, http.StatusCreated, utils.SuccessResponse(fmt.Sprintf("%d seats reserved", len(seats)), map[string]interface{}{
		"group": strings.TrimSpace(req.Group),
		"seats": seats,
	}))
}

func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.SeatService.ResetAll()
	h.Logger.Warn("API", "ResetAll: every seat freed")
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("all seats freed", nil))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	sendJSONResponse(w, http.StatusOK, utils.SuccessResponse("stats", h.SeatService.Stats()))
}

// decode reads and validates a JSON body; it writes the 400 itself. A
// count of the wrong JSON type is reported as invalid_count.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "count" {
			h.sendFailure(w, &models.Failure{Kind: models.FailureInvalidCount})
			return false
		}
		sendJSONResponse(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		sendJSONResponse(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return false
	}
	return true
}

// sendFailure maps allocation and group failures onto HTTP statuses
func (h *Handler) sendFailure(w http.ResponseWriter, err error) {
	var failure *models.Failure
	if !errors.As(err, &failure) {
		h.Logger.Error("API", err.Error())
		sendJSONResponse(w, http.StatusBadRequest, utils.ErrorResponse("Request failed", err.Error()))
		return
	}

	status := http.StatusConflict
	switch failure.Kind {
	case models.FailureRowNotFound, models.FailureSectorNotFound, models.FailureSeatNotFound, models.FailureEmptyGroup:
		status = http.StatusNotFound
	case models.FailureInvalidStart, models.FailureInvalidCount, models.FailureRowOverflow:
		status = http.StatusBadRequest
	}
	h.Logger.Warn("API", fmt.Sprintf("%s: %v", failure.Kind, failure))
	sendJSONResponse(w, status, utils.FailureResponse("Operation refused", string(failure.Kind), failure.Error()))
}

func sendJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
