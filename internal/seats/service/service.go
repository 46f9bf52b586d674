package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ms-seating/internal/catalog"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/seats/allocator"
	"ms-seating/internal/seats/groups"
	"ms-seating/internal/seats/store"
)

// SyncAdapter is the persistence side of the seat service
type SyncAdapter interface {
	LoadAll(ctx context.Context) ([]models.SeatChange, error)
	Persist(changes []models.SeatChange)
	PersistReset()
}

// Listener is called with a fresh snapshot after every applied mutation or
// reload. It runs under the service lock and must not block.
type Listener func(reason string, snapshot models.SeatMapSnapshot)

// SeatService owns the seat state of one instance. Every mutation runs under
// one lock, is applied to the store as a single batch and only then handed
// to the sync adapter.
type SeatService struct {
	mu sync.Mutex

	Store   *store.Store
	Catalog *catalog.Catalog
	Groups  *groups.Manager
	Sync    SyncAdapter
	Logger  *logger.Logger

	listeners []Listener
	paint     paintGesture
}

func NewSeatService(c *catalog.Catalog, s *store.Store, adapter SyncAdapter, log *logger.Logger) *SeatService {
	return &SeatService{
		Store:   s,
		Catalog: c,
		Groups:  groups.NewManager(s, c),
		Sync:    adapter,
		Logger:  log,
	}
}

// OnChange registers a listener for snapshots
func (s *SeatService) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// commit persists an applied batch and tells listeners. Callers hold mu.
func (s *SeatService) commit(reason string, changes []models.SeatChange) {
	if len(changes) == 0 {
		return
	}
	s.Sync.Persist(changes)
	s.notify(reason)
}

func (s *SeatService) notify(reason string) {
	if len(s.listeners) == 0 {
		return
	}
	snapshot := s.Store.Snapshot()
	for _, l := range s.listeners {
		l(reason, snapshot)
	}
}

// Reload replaces the whole state with the persisted one. On error the
// current state is kept.
func (s *SeatService) Reload(ctx context.Context) error {
	entries, err := s.Sync.LoadAll(ctx)
	if err != nil {
		s.Logger.Warn("SEAT", fmt.Sprintf("reload failed, keeping current state: %v", err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Store.Replace(entries)
	s.Logger.LogSync("RELOAD", fmt.Sprintf("%d seats not free", s.Store.Len()))
	s.notify("reload")
	return nil
}

// lookupSeat validates a seat id against the catalog
func (s *SeatService) lookupSeat(seatID string) (models.SeatID, error) {
	id, err := models.ParseSeatID(seatID)
	if err != nil || !s.Catalog.Contains(id) {
		return models.SeatID{}, &models.Failure{Kind: models.FailureSeatNotFound, SeatID: seatID}
	}
	return id, nil
}

// statusChange builds the change moving a seat to status; the group label
// survives any move except to free
func (s *SeatService) statusChange(seatID string, status models.SeatStatus) models.SeatChange {
	change := models.SeatChange{SeatID: seatID, Status: status}
	if status != models.SeatStatusFree {
		change.Group = s.Store.Group(seatID)
	}
	return change
}

// Toggle advances a seat one step through free -> reserved -> occupied
func (s *SeatService) Toggle(seatID string) (models.SeatChange, error) {
	if _, err := s.lookupSeat(seatID); err != nil {
		return models.SeatChange{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	change := s.statusChange(seatID, s.Store.Status(seatID).Next())
	s.Store.SetMany([]models.SeatChange{change})
	s.Logger.LogSeat("TOGGLE", seatID, string(change.Status))
	s.commit("toggle", []models.SeatChange{change})
	return change, nil
}

// SetStatus moves a seat to status; setting the current status changes nothing
func (s *SeatService) SetStatus(seatID string, status models.SeatStatus) (models.SeatChange, error) {
	if !status.Valid() {
		return models.SeatChange{}, fmt.Errorf("unknown seat status %q", status)
	}
	if _, err := s.lookupSeat(seatID); err != nil {
		return models.SeatChange{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	change, changed := s.setStatusLocked(seatID, status)
	if changed {
		s.Logger.LogSeat("SET", seatID, string(status))
		s.commit("set_status", []models.SeatChange{change})
	}
	return change, nil
}

func (s *SeatService) setStatusLocked(seatID string, status models.SeatStatus) (models.SeatChange, bool) {
	change := s.statusChange(seatID, status)
	if s.Store.Status(seatID) == status {
		return change, false
	}
	s.Store.SetMany([]models.SeatChange{change})
	return change, true
}

// Reserve allocates seats for a party and marks them reserved under the
// request's group label
func (s *SeatService) Reserve(req models.ReservationRequest) ([]string, error) {
	if req.Count < 1 {
		return nil, &models.Failure{Kind: models.FailureInvalidCount, SectorID: req.SectorID, Requested: req.Count}
	}
	sector, ok := s.Catalog.Sector(req.SectorID)
	if !ok {
		return nil, &models.Failure{Kind: models.FailureSectorNotFound, SectorID: req.SectorID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seats, err := allocator.Allocate(s.Store, sector, req)
	if err != nil {
		s.Logger.Warn("SEAT", fmt.Sprintf("reservation in %s row %d refused: %v", req.SectorID, req.Row, err))
		return nil, err
	}

	label := strings.TrimSpace(req.Group)
	changes := make([]models.SeatChange, 0, len(seats))
	for _, id := range seats {
		changes = append(changes, models.SeatChange{SeatID: id, Status: models.SeatStatusReserved, Group: label})
	}
	s.Store.SetMany(changes)
	s.Logger.LogGroup("RESERVE", label, fmt.Sprintf("%d seats in %s from row %d", len(seats), req.SectorID, req.Row))
	s.commit("reserve", changes)
	return seats, nil
}

// ResizeGroup grows or shrinks a group to count seats
func (s *SeatService) ResizeGroup(label string, count int) ([]models.SeatChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.Groups.Resize(label, count)
	if err != nil {
		return nil, err
	}
	s.Logger.LogGroup("RESIZE", label, fmt.Sprintf("now %d seats", count))
	s.commit("resize", changes)
	return changes, nil
}

// RenameGroup relabels a group. Blank or unchanged names are ignored.
func (s *SeatService) RenameGroup(oldLabel, newLabel string) ([]models.SeatChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Groups.Members(oldLabel)) == 0 {
		return nil, &models.Failure{Kind: models.FailureEmptyGroup, Group: oldLabel}
	}
	changes := s.Groups.Rename(oldLabel, newLabel)
	if len(changes) > 0 {
		s.Logger.LogGroup("RENAME", oldLabel, fmt.Sprintf("renamed to %s", strings.TrimSpace(newLabel)))
	}
	s.commit("rename", changes)
	return changes, nil
}

// ClearGroup frees every seat of a group
func (s *SeatService) ClearGroup(label string) ([]models.SeatChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes := s.Groups.Clear(label)
	if len(changes) == 0 {
		return nil, &models.Failure{Kind: models.FailureEmptyGroup, Group: label}
	}
	s.Logger.LogGroup("CLEAR", label, fmt.Sprintf("%d seats freed", len(changes)))
	s.commit("clear", changes)
	return changes, nil
}

// ResetAll frees every seat of the venue
func (s *SeatService) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Store.Replace(nil)
	s.Sync.PersistReset()
	s.Logger.LogSeat("RESET", "*", "all seats freed")
	s.notify("reset")
}

// SeatView is one seat as shown on the map
type SeatView struct {
	SeatID   string            `json:"seat_id"`
	SectorID string            `json:"sector_id"`
	Row      int               `json:"row"`
	Seat     int               `json:"seat"`
	Status   models.SeatStatus `json:"status"`
	Group    string            `json:"group,omitempty"`
	Color    string            `json:"color,omitempty"`
}

func (s *SeatService) Seat(seatID string) (SeatView, error) {
	id, err := s.lookupSeat(seatID)
	if err != nil {
		return SeatView{}, err
	}
	view := SeatView{
		SeatID:   seatID,
		SectorID: id.SectorID,
		Row:      id.Row,
		Seat:     id.Seat,
		Status:   s.Store.Status(seatID),
		Group:    s.Store.Group(seatID),
	}
	if view.Group != "" {
		view.Color = s.Groups.Colors()[view.Group]
	}
	return view, nil
}

func (s *SeatService) Snapshot() models.SeatMapSnapshot {
	return s.Store.Snapshot()
}

// GroupSummary describes one group with its display colour
type GroupSummary struct {
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	SectorID string   `json:"sector_id"`
	Count    int      `json:"count"`
	Seats    []string `json:"seats"`
}

// GroupList returns the current groups in colour order
func (s *SeatService) GroupList() []GroupSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.Groups.Index()
	order := s.Groups.Order()
	out := make([]GroupSummary, 0, len(order))
	for i, label := range order {
		seats := index[label]
		summary := GroupSummary{
			Label: label,
			Color: groups.Palette[i%len(groups.Palette)],
			Count: len(seats),
			Seats: seats,
		}
		if id, err := models.ParseSeatID(seats[0]); err == nil {
			summary.SectorID = id.SectorID
		}
		out = append(out, summary)
	}
	return out
}

// Stats counts seats by status against the catalog total
func (s *SeatService) Stats() models.SeatStats {
	counts := s.Store.Counts()
	total := s.Catalog.TotalSeats()
	reserved := counts[models.SeatStatusReserved]
	occupied := counts[models.SeatStatusOccupied]
	free := total - reserved - occupied
	if free < 0 {
		free = 0
	}
	return models.SeatStats{
		Total:    total,
		Free:     free,
		Reserved: reserved,
		Occupied: occupied,
		ByClass:  s.Catalog.TotalSeatsByClass(),
	}
}
