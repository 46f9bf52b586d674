package seat_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-seating/internal/catalog"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/sse"
)

// SSEHandler streams seat map snapshots to browsers
type SSEHandler struct {
	Logger       *logger.Logger
	EventEmitter *sse.SeatEventEmitter
	Catalog      *catalog.Catalog
	Snapshot     func() models.SeatMapSnapshot
}

func NewSSEHandler(log *logger.Logger, emitter *sse.SeatEventEmitter, c *catalog.Catalog, snapshot func() models.SeatMapSnapshot) *SSEHandler {
	return &SSEHandler{Logger: log, EventEmitter: emitter, Catalog: c, Snapshot: snapshot}
}

// HandleStream sends the current snapshot, then one frame per change.
// ?sector= restricts the stream to one sector.
func (h *SSEHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sectorID := r.URL.Query().Get("sector")
	if sectorID != "" {
		if _, ok := h.Catalog.Sector(sectorID); !ok {
			http.Error(w, fmt.Sprintf("Unknown sector %s", sectorID), http.StatusNotFound)
			return
		}
	}

	// the server write timeout would cut long-lived streams
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h.setupSSEHeaders(w)
	ctx := r.Context()

	var eventChan <-chan sse.SeatMapEvent
	if sectorID == "" {
		eventChan = h.EventEmitter.SubscribeAll(ctx)
	} else {
		eventChan = h.EventEmitter.SubscribeToSector(ctx, sectorID)
	}

	initial := h.Snapshot()
	if sectorID != "" {
		initial = initial.Filter(sectorID)
	}
	h.write(w, "snapshot", sse.SeatMapEvent{Type: "snapshot", Reason: "connected", Snapshot: initial})
	flusher.Flush()
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to seat stream (sector %q)", sectorID))

	h.stream(ctx, w, flusher, eventChan)
}

func (h *SSEHandler) stream(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, eventChan <-chan sse.SeatMapEvent) {
	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			h.write(w, event.Type, event)
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", "Client disconnected from seat stream")
			return
		}
	}
}

func (h *SSEHandler) write(w http.ResponseWriter, name string, event sse.SeatMapEvent) {
	jsonData, err := json.Marshal(event)
	if err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize seat event: %v", err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, jsonData)
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
