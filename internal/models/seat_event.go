package models

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatusChangeEventDto is published to Kafka for every persisted seat
// change. Consumers only need to know that the table changed; the payload is
// kept for downstream analytics.
type SeatStatusChangeEventDto struct {
	EventID    uuid.UUID  `json:"event_id"`
	Source     string     `json:"source"`
	SeatID     string     `json:"seat_id"`
	Status     SeatStatus `json:"status"`
	Group      string     `json:"group,omitempty"`
	Removed    bool       `json:"removed"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewSeatStatusChangeEventDto builds an event for a single seat write
func NewSeatStatusChangeEventDto(source string, change SeatChange) SeatStatusChangeEventDto {
	return SeatStatusChangeEventDto{
		EventID:    uuid.New(),
		Source:     source,
		SeatID:     change.SeatID,
		Status:     change.Status,
		Group:      change.Group,
		Removed:    change.Status == SeatStatusFree,
		OccurredAt: time.Now().UTC(),
	}
}
