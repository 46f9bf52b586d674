package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type SeatStatus string

const (
	SeatStatusFree     SeatStatus = "free"
	SeatStatusReserved SeatStatus = "reserved"
	SeatStatusOccupied SeatStatus = "occupied"
)

// Next returns the status a single click moves the seat to.
// free -> reserved -> occupied -> free
func (s SeatStatus) Next() SeatStatus {
	switch s {
	case SeatStatusFree:
		return SeatStatusReserved
	case SeatStatusReserved:
		return SeatStatusOccupied
	default:
		return SeatStatusFree
	}
}

func (s SeatStatus) Valid() bool {
	return s == SeatStatusFree || s == SeatStatusReserved || s == SeatStatusOccupied
}

// ParseSeatStatus accepts the lower-case wire form of a status
func ParseSeatStatus(value string) (SeatStatus, error) {
	status := SeatStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown seat status %q", value)
	}
	return status, nil
}

// SeatID is the composite key of a physical seat. Its string form is
// "<sector>-<row>-<seat>"; sector ids may contain dashes themselves.
type SeatID struct {
	SectorID string
	Row      int
	Seat     int
}

func NewSeatID(sectorID string, row, seat int) SeatID {
	return SeatID{SectorID: sectorID, Row: row, Seat: seat}
}

func (id SeatID) String() string {
	return fmt.Sprintf("%s-%d-%d", id.SectorID, id.Row, id.Seat)
}

// ParseSeatID splits the row and seat numbers off the right of the key
func ParseSeatID(value string) (SeatID, error) {
	seatSep := strings.LastIndex(value, "-")
	if seatSep <= 0 {
		return SeatID{}, fmt.Errorf("malformed seat id %q", value)
	}
	rowSep := strings.LastIndex(value[:seatSep], "-")
	if rowSep <= 0 {
		return SeatID{}, fmt.Errorf("malformed seat id %q", value)
	}

	row, err := strconv.Atoi(value[rowSep+1 : seatSep])
	if err != nil || row < 1 {
		return SeatID{}, fmt.Errorf("malformed row in seat id %q", value)
	}
	seat, err := strconv.Atoi(value[seatSep+1:])
	if err != nil || seat < 1 {
		return SeatID{}, fmt.Errorf("malformed seat number in seat id %q", value)
	}

	return SeatID{SectorID: value[:rowSep], Row: row, Seat: seat}, nil
}

// SeatChange is one element of a batch applied to the state store and then
// persisted. An empty Group means the seat carries no group label.
type SeatChange struct {
	SeatID string     `json:"seat_id"`
	Status SeatStatus `json:"status"`
	Group  string     `json:"group,omitempty"`
}

// SeatReservation is the persisted row of a non-free seat
type SeatReservation struct {
	bun.BaseModel `bun:"table:seat_reservations"`

	SeatID    string    `bun:"seat_id,pk" json:"seat_id"`
	Status    string    `bun:"status,notnull" json:"status"`
	GroupName string    `bun:"group_name,nullzero" json:"group_name,omitempty"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// ToChange converts a persisted row back into a store entry
func (r SeatReservation) ToChange() (SeatChange, error) {
	status, err := ParseSeatStatus(r.Status)
	if err != nil {
		return SeatChange{}, err
	}
	return SeatChange{SeatID: r.SeatID, Status: status, Group: r.GroupName}, nil
}

// SeatMapSnapshot is the full seat state as seen by one instance
type SeatMapSnapshot struct {
	Statuses  map[string]SeatStatus `json:"statuses"`
	Groups    map[string]string     `json:"groups"`
	Timestamp time.Time             `json:"timestamp"`
}

// Filter restricts the snapshot to seats of one sector
func (s SeatMapSnapshot) Filter(sectorID string) SeatMapSnapshot {
	out := SeatMapSnapshot{
		Statuses:  make(map[string]SeatStatus),
		Groups:    make(map[string]string),
		Timestamp: s.Timestamp,
	}
	prefix := sectorID + "-"
	for id, status := range s.Statuses {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if parsed, err := ParseSeatID(id); err != nil || parsed.SectorID != sectorID {
			continue
		}
		out.Statuses[id] = status
		if group, ok := s.Groups[id]; ok {
			out.Groups[id] = group
		}
	}
	return out
}

// SeatStats mirrors the counters shown above the seat map
type SeatStats struct {
	Total    int               `json:"total"`
	Free     int               `json:"free"`
	Reserved int               `json:"reserved"`
	Occupied int               `json:"occupied"`
	ByClass  map[SeatClass]int `json:"by_class"`
}
