package db

import (
	"context"
	"fmt"
	"time"

	"ms-seating/internal/logger"

	"github.com/lib/pq"
)

// ChangeChannel is the NOTIFY channel raised by the seat_reservations trigger
const ChangeChannel = "seat_reservations"

// Listener turns Postgres NOTIFY events on seat_reservations into reload
// requests
type Listener struct {
	DSN    string
	Logger *logger.Logger
}

func NewListener(dsn string, log *logger.Logger) *Listener {
	return &Listener{DSN: dsn, Logger: log}
}

// Listen blocks until ctx is done. A reconnect also triggers onChange since
// notifications may have been lost while the connection was down.
func (l *Listener) Listen(ctx context.Context, onChange func()) error {
	listener := pq.NewListener(l.DSN, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.Logger.Warn("DATABASE", fmt.Sprintf("listener event %d: %v", ev, err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(ChangeChannel); err != nil {
		return fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}
	l.Logger.LogDatabase("LISTEN", ChangeChannel, "waiting for change notifications")

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				l.Logger.LogDatabase("LISTEN", ChangeChannel, "connection re-established")
			} else {
				l.Logger.Debug("DATABASE", fmt.Sprintf("notification %s: %s", n.Channel, n.Extra))
			}
			onChange()
		case <-ping.C:
			go listener.Ping()
		}
	}
}
