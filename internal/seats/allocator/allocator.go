package allocator

import (
	"ms-seating/internal/catalog"
	"ms-seating/internal/models"
)

// StatusReader is the read side of the state store the allocator needs
type StatusReader interface {
	Status(seatID string) models.SeatStatus
}

// Allocate picks the seats for a reservation request without modifying any
// state. Requests that fit in the target row get a contiguous block of that
// row; larger requests spill over the following rows.
func Allocate(state StatusReader, sector models.Sector, req models.ReservationRequest) ([]string, error) {
	if req.Count < 1 {
		return nil, &models.Failure{Kind: models.FailureInvalidCount, SectorID: sector.ID, Requested: req.Count}
	}

	rows := catalog.SortedRows(sector)
	target := -1
	for i, r := range rows {
		if r.Number == req.Row {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, &models.Failure{Kind: models.FailureRowNotFound, SectorID: sector.ID, Row: req.Row}
	}

	row := rows[target]
	if req.Count <= row.SeatCount {
		if req.StartSeat != nil {
			return explicitBlock(state, sector.ID, row, *req.StartSeat, req.Count)
		}
		return firstFit(state, sector.ID, row, req.Count)
	}
	return spanRows(state, sector.ID, rows[target:], req.Count)
}

func explicitBlock(state StatusReader, sectorID string, row models.Row, start, count int) ([]string, error) {
	if start < 1 {
		return nil, &models.Failure{Kind: models.FailureInvalidStart, SectorID: sectorID, Row: row.Number, Start: start, Requested: count}
	}
	if start+count-1 > row.SeatCount {
		return nil, &models.Failure{Kind: models.FailureRowOverflow, SectorID: sectorID, Row: row.Number, Start: start, Requested: count}
	}
	if !blockFree(state, sectorID, row.Number, start, count) {
		return nil, &models.Failure{Kind: models.FailureSeatsNotFree, SectorID: sectorID, Row: row.Number, Start: start, Requested: count}
	}
	return block(sectorID, row.Number, start, count), nil
}

func firstFit(state StatusReader, sectorID string, row models.Row, count int) ([]string, error) {
	for start := 1; start <= row.SeatCount-count+1; start++ {
		if blockFree(state, sectorID, row.Number, start, count) {
			return block(sectorID, row.Number, start, count), nil
		}
	}
	return nil, &models.Failure{Kind: models.FailureNoContiguousBlock, SectorID: sectorID, Row: row.Number, Requested: count}
}

// spanRows never wraps back to rows before the first one it is given and
// ignores any requested start seat.
func spanRows(state StatusReader, sectorID string, rows []models.Row, count int) ([]string, error) {
	free := make([][]string, len(rows))
	totalFree := 0
	for i, r := range rows {
		for seat := 1; seat <= r.SeatCount; seat++ {
			id := models.NewSeatID(sectorID, r.Number, seat).String()
			if state.Status(id) == models.SeatStatusFree {
				free[i] = append(free[i], id)
			}
		}
		totalFree += len(free[i])
	}
	if totalFree < count {
		return nil, &models.Failure{
			Kind:      models.FailureInsufficientCapacity,
			SectorID:  sectorID,
			Row:       rows[0].Number,
			Requested: count,
			Free:      totalFree,
		}
	}

	seats := make([]string, 0, count)
	for _, ids := range free {
		for _, id := range ids {
			seats = append(seats, id)
			if len(seats) == count {
				return seats, nil
			}
		}
	}
	return seats, nil
}

func blockFree(state StatusReader, sectorID string, row, start, count int) bool {
	for seat := start; seat < start+count; seat++ {
		if state.Status(models.NewSeatID(sectorID, row, seat).String()) != models.SeatStatusFree {
			return false
		}
	}
	return true
}

func block(sectorID string, row, start, count int) []string {
	ids := make([]string, 0, count)
	for seat := start; seat < start+count; seat++ {
		ids = append(ids, models.NewSeatID(sectorID, row, seat).String())
	}
	return ids
}
