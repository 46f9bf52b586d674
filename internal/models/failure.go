package models

import "fmt"

type FailureKind string

const (
	FailureRowNotFound          FailureKind = "row_not_found"
	FailureInvalidStart         FailureKind = "invalid_start"
	FailureRowOverflow          FailureKind = "row_overflow"
	FailureSeatsNotFree         FailureKind = "seats_not_free"
	FailureNoContiguousBlock    FailureKind = "no_contiguous_block"
	FailureInsufficientCapacity FailureKind = "insufficient_capacity"
	FailureEmptyGroup           FailureKind = "empty_group"
	FailureInvalidCount         FailureKind = "invalid_count"
	FailureSectorNotFound       FailureKind = "sector_not_found"
	FailureSeatNotFound         FailureKind = "seat_not_found"
)

// Failure is the result of an allocation or group operation that could not
// be carried out. State is never modified when a Failure is returned.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	SectorID  string      `json:"sector_id,omitempty"`
	SeatID    string      `json:"seat_id,omitempty"`
	Row       int         `json:"row,omitempty"`
	Start     int         `json:"start,omitempty"`
	Requested int         `json:"requested,omitempty"`
	Free      int         `json:"free"`
	Group     string      `json:"group,omitempty"`
}

// Sentinels for errors.Is matching; only Kind is compared
var (
	ErrRowNotFound          = &Failure{Kind: FailureRowNotFound}
	ErrInvalidStart         = &Failure{Kind: FailureInvalidStart}
	ErrRowOverflow          = &Failure{Kind: FailureRowOverflow}
	ErrSeatsNotFree         = &Failure{Kind: FailureSeatsNotFree}
	ErrNoContiguousBlock    = &Failure{Kind: FailureNoContiguousBlock}
	ErrInsufficientCapacity = &Failure{Kind: FailureInsufficientCapacity}
	ErrEmptyGroup           = &Failure{Kind: FailureEmptyGroup}
	ErrInvalidCount         = &Failure{Kind: FailureInvalidCount}
	ErrSectorNotFound       = &Failure{Kind: FailureSectorNotFound}
	ErrSeatNotFound         = &Failure{Kind: FailureSeatNotFound}
)

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureRowNotFound:
		return fmt.Sprintf("row %d does not exist in sector %s", f.Row, f.SectorID)
	case FailureInvalidStart:
		return fmt.Sprintf("invalid start seat %d in row %d", f.Start, f.Row)
	case FailureRowOverflow:
		return fmt.Sprintf("not enough seats in row %d from seat %d for %d people", f.Row, f.Start, f.Requested)
	case FailureSeatsNotFree:
		return fmt.Sprintf("seats %d to %d of row %d are not all free", f.Start, f.Start+f.Requested-1, f.Row)
	case FailureNoContiguousBlock:
		return fmt.Sprintf("no block of %d consecutive free seats in row %d", f.Requested, f.Row)
	case FailureInsufficientCapacity:
		if f.Group != "" {
			return fmt.Sprintf("not enough free seats in sector %s to grow group %q to %d seats (free seats: %d)", f.SectorID, f.Group, f.Requested, f.Free)
		}
		return fmt.Sprintf("not enough free seats in sector %s for %d people (free seats: %d)", f.SectorID, f.Requested, f.Free)
	case FailureEmptyGroup:
		return fmt.Sprintf("group %q has no seats", f.Group)
	case FailureInvalidCount:
		return fmt.Sprintf("invalid seat count %d, must be at least 1", f.Requested)
	case FailureSectorNotFound:
		return fmt.Sprintf("sector %q does not exist", f.SectorID)
	case FailureSeatNotFound:
		return fmt.Sprintf("seat %q does not exist", f.SeatID)
	default:
		return string(f.Kind)
	}
}

// Is makes errors.Is(err, ErrRowOverflow) match any Failure of that kind
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return f.Kind == t.Kind
}
