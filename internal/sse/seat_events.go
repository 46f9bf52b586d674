package sse

import (
	"context"
	"sync"

	"ms-seating/internal/models"
)

// SeatMapEvent is one frame pushed to a stream client
type SeatMapEvent struct {
	Type     string                 `json:"type"`
	Reason   string                 `json:"reason,omitempty"`
	Snapshot models.SeatMapSnapshot `json:"snapshot"`
}

const allSectors = ""

// SeatEventEmitter fans seat map snapshots out to stream clients, either
// for the whole venue or for a single sector
type SeatEventEmitter struct {
	clients     map[string][]chan SeatMapEvent
	clientMutex sync.RWMutex
}

func NewSeatEventEmitter() *SeatEventEmitter {
	return &SeatEventEmitter{
		clients: make(map[string][]chan SeatMapEvent),
	}
}

// SubscribeAll registers a client for every seat change
func (e *SeatEventEmitter) SubscribeAll(ctx context.Context) <-chan SeatMapEvent {
	return e.subscribe(ctx, allSectors)
}

// SubscribeToSector registers a client for changes of one sector only
func (e *SeatEventEmitter) SubscribeToSector(ctx context.Context, sectorID string) <-chan SeatMapEvent {
	return e.subscribe(ctx, sectorID)
}

func (e *SeatEventEmitter) subscribe(ctx context.Context, key string) <-chan SeatMapEvent {
	clientChan := make(chan SeatMapEvent, 10)

	e.clientMutex.Lock()
	e.clients[key] = append(e.clients[key], clientChan)
	e.clientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeClient(key, clientChan)
	}()

	return clientChan
}

// Emit pushes a snapshot to every subscriber. Sector subscribers only get
// their sector's part of it.
func (e *SeatEventEmitter) Emit(reason string, snapshot models.SeatMapSnapshot) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for key, clients := range e.clients {
		event := SeatMapEvent{Type: "snapshot", Reason: reason, Snapshot: snapshot}
		if key != allSectors {
			event.Snapshot = snapshot.Filter(key)
		}
		for _, clientChan := range clients {
			// Non-blocking send so a slow client never stalls a mutation
			select {
			case clientChan <- event:
			default:
			}
		}
	}
}

func (e *SeatEventEmitter) removeClient(key string, clientChan chan SeatMapEvent) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[key]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[key] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[key]) == 0 {
		delete(e.clients, key)
	}
}

// ClientCount returns the number of clients on a sector, or on the whole
// venue when sectorID is empty
func (e *SeatEventEmitter) ClientCount(sectorID string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[sectorID])
}
