// Package seatsync connects the in-memory seat state to the backing store:
// it persists optimistic changes in the background and turns remote change
// notifications into full reloads.
package seatsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

// Storage is the seat_reservations table
type Storage interface {
	LoadAll(ctx context.Context) ([]models.SeatChange, error)
	Upsert(ctx context.Context, change models.SeatChange) error
	Remove(ctx context.Context, seatID string) error
	RemoveAll(ctx context.Context) error
}

// Publisher streams every persisted seat change
type Publisher interface {
	PublishSeatChange(ctx context.Context, event models.SeatStatusChangeEventDto) error
}

// Announcer tells other instances the table changed when the store itself
// cannot (no database trigger)
type Announcer interface {
	Announce(ctx context.Context, op string) error
}

// Notifier delivers payload-less change notifications until ctx is done
type Notifier interface {
	Listen(ctx context.Context, onChange func()) error
}

type Adapter struct {
	Storage   Storage
	Publisher Publisher
	Announcer Announcer
	Logger    *logger.Logger
	// Source identifies this instance in published events
	Source  string
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewAdapter(storage Storage, log *logger.Logger, source string, timeout time.Duration) *Adapter {
	return &Adapter{
		Storage: storage,
		Logger:  log,
		Source:  source,
		Timeout: timeout,
	}
}

// LoadAll fetches the full persisted state
func (a *Adapter) LoadAll(ctx context.Context) ([]models.SeatChange, error) {
	changes, err := a.Storage.LoadAll(ctx)
	if err != nil {
		a.Logger.Error("SYNC", fmt.Sprintf("load failed: %v", err))
		return nil, err
	}
	a.Logger.LogSync("LOAD", fmt.Sprintf("%d persisted seats", len(changes)))
	return changes, nil
}

// Persist writes each change on its own goroutine and returns immediately.
// Free seats are deleted, everything else is upserted. Failures are logged
// and never retried.
func (a *Adapter) Persist(changes []models.SeatChange) {
	for _, change := range changes {
		a.wg.Add(1)
		go func(change models.SeatChange) {
			defer a.wg.Done()
			a.persistOne(change)
		}(change)
	}
}

func (a *Adapter) persistOne(change models.SeatChange) {
	ctx, cancel := a.context()
	defer cancel()

	var err error
	op := "UPSERT"
	if change.Status == models.SeatStatusFree {
		op = "DELETE"
		err = a.Storage.Remove(ctx, change.SeatID)
	} else {
		err = a.Storage.Upsert(ctx, change)
	}
	if err != nil {
		a.Logger.Error("SYNC", fmt.Sprintf("%s %s failed: %v", op, change.SeatID, err))
		return
	}

	if a.Publisher != nil {
		event := models.NewSeatStatusChangeEventDto(a.Source, change)
		if err := a.Publisher.PublishSeatChange(ctx, event); err != nil {
			a.Logger.Warn("SYNC", fmt.Sprintf("publish %s failed: %v", change.SeatID, err))
		}
	}
	a.announce(ctx, op)
}

// PersistReset empties the table in the background
func (a *Adapter) PersistReset() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := a.context()
		defer cancel()

		if err := a.Storage.RemoveAll(ctx); err != nil {
			a.Logger.Error("SYNC", fmt.Sprintf("RESET failed: %v", err))
			return
		}
		a.Logger.LogSync("RESET", "all persisted seats removed")
		a.announce(ctx, "RESET")
	}()
}

func (a *Adapter) announce(ctx context.Context, op string) {
	if a.Announcer == nil {
		return
	}
	if err := a.Announcer.Announce(ctx, op); err != nil {
		a.Logger.Warn("SYNC", fmt.Sprintf("announce %s failed: %v", op, err))
	}
}

// Wait blocks until every background write has finished
func (a *Adapter) Wait() {
	a.wg.Wait()
}

// OnChange runs reload once per burst of notifications from every notifier
// until ctx is done. Notifications arriving while a reload runs collapse
// into a single follow-up reload.
func (a *Adapter) OnChange(ctx context.Context, reload func(ctx context.Context), notifiers ...Notifier) {
	pending := make(chan struct{}, 1)
	signal := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	for _, n := range notifiers {
		a.wg.Add(1)
		go func(n Notifier) {
			defer a.wg.Done()
			if err := n.Listen(ctx, signal); err != nil {
				a.Logger.Error("SYNC", fmt.Sprintf("change notifier stopped: %v", err))
			}
		}(n)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				reload(ctx)
			}
		}
	}()
}

func (a *Adapter) context() (context.Context, context.CancelFunc) {
	if a.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), a.Timeout)
}
