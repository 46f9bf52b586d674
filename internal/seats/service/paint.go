package service

import (
	"ms-seating/internal/models"
)

// paintGesture is the state of one drag across the map. The target status
// is fixed when the gesture starts and only seats of the starting sector
// and row are painted.
type paintGesture struct {
	active   bool
	target   models.SeatStatus
	sectorID string
	row      int
}

// BeginPaint toggles the first seat of a drag and captures its new status as
// the paint target
func (s *SeatService) BeginPaint(seatID string) (models.SeatChange, error) {
	id, err := s.lookupSeat(seatID)
	if err != nil {
		return models.SeatChange{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	change := s.beginPaintLocked(id)
	s.commit("paint", []models.SeatChange{change})
	return change, nil
}

func (s *SeatService) beginPaintLocked(id models.SeatID) models.SeatChange {
	seatID := id.String()
	change := s.statusChange(seatID, s.Store.Status(seatID).Next())
	s.Store.SetMany([]models.SeatChange{change})
	s.paint = paintGesture{active: true, target: change.Status, sectorID: id.SectorID, row: id.Row}
	return change
}

// Enter paints a seat the drag moved over. Seats outside the gesture's
// sector and row, or already at the target status, are left alone and
// reported as unchanged.
func (s *SeatService) Enter(seatID string) (models.SeatChange, bool, error) {
	id, err := s.lookupSeat(seatID)
	if err != nil {
		return models.SeatChange{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	change, changed := s.enterLocked(id)
	if changed {
		s.commit("paint", []models.SeatChange{change})
	}
	return change, changed, nil
}

func (s *SeatService) enterLocked(id models.SeatID) (models.SeatChange, bool) {
	if !s.paint.active || id.SectorID != s.paint.sectorID || id.Row != s.paint.row {
		return models.SeatChange{}, false
	}
	return s.setStatusLocked(id.String(), s.paint.target)
}

// EndPaint closes the current gesture
func (s *SeatService) EndPaint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paint = paintGesture{}
}

// Paint replays a whole gesture: start is toggled, then every seat of path
// is entered in order. All changes are persisted as one batch.
func (s *SeatService) Paint(start string, path []string) ([]models.SeatChange, error) {
	first, err := s.lookupSeat(start)
	if err != nil {
		return nil, err
	}
	ids := make([]models.SeatID, 0, len(path))
	for _, seatID := range path {
		id, err := s.lookupSeat(seatID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changes := []models.SeatChange{s.beginPaintLocked(first)}
	for _, id := range ids {
		if change, changed := s.enterLocked(id); changed {
			changes = append(changes, change)
		}
	}
	s.paint = paintGesture{}

	s.Logger.LogSeat("PAINT", start, string(changes[0].Status))
	s.commit("paint", changes)
	return changes, nil
}
