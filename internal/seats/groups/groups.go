package groups

import (
	"sort"
	"strings"

	"ms-seating/internal/catalog"
	"ms-seating/internal/models"
	"ms-seating/internal/seats/store"
)

// Palette is indexed in first-come order over the groups currently on the map
var Palette = []string{
	"#e91e63",
	"#2196f3",
	"#1a237e",
	"#ff9800",
	"#9c27b0",
	"#009688",
	"#795548",
	"#3f51b5",
}

// Manager derives the group index from the store and applies group
// operations to it as single batches. Callers serialize access.
type Manager struct {
	Store   *store.Store
	Catalog *catalog.Catalog
}

func NewManager(s *store.Store, c *catalog.Catalog) *Manager {
	return &Manager{Store: s, Catalog: c}
}

// Index maps every group label to its member seats, sorted by row then seat
func (m *Manager) Index() map[string][]string {
	index := make(map[string][]string)
	for id, label := range m.Store.GroupEntries() {
		index[label] = append(index[label], id)
	}
	for label := range index {
		index[label] = sortSeatIDs(index[label])
	}
	return index
}

// Members returns the seats of one group in row, seat order
func (m *Manager) Members(label string) []string {
	var members []string
	for id, g := range m.Store.GroupEntries() {
		if g == label {
			members = append(members, id)
		}
	}
	return sortSeatIDs(members)
}

// Order lists group labels by first appearance in sector, row, seat order
func (m *Manager) Order() []string {
	entries := m.Store.GroupEntries()
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}

	seen := make(map[string]bool)
	var labels []string
	for _, id := range sortSeatIDs(ids) {
		label := entries[id]
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// Colors assigns palette entries to groups in Order
func (m *Manager) Colors() map[string]string {
	colors := make(map[string]string)
	for i, label := range m.Order() {
		colors[label] = Palette[i%len(Palette)]
	}
	return colors
}

// Resize grows or shrinks a group to newCount seats and returns the applied
// changes. Shrinking keeps the seats with the lowest row and seat numbers
// across every sector the group spans. Growing takes the first free seats of
// the group's sector; when there are not enough of them nothing is changed.
func (m *Manager) Resize(label string, newCount int) ([]models.SeatChange, error) {
	if newCount < 1 {
		return nil, &models.Failure{Kind: models.FailureInvalidCount, Group: label, Requested: newCount}
	}

	members := m.Members(label)
	current := len(members)
	if current == 0 {
		return nil, &models.Failure{Kind: models.FailureEmptyGroup, Group: label}
	}
	if newCount == current {
		return nil, nil
	}

	if newCount < current {
		changes := make([]models.SeatChange, 0, current-newCount)
		for _, id := range sortByRow(members)[newCount:] {
			changes = append(changes, models.SeatChange{SeatID: id, Status: models.SeatStatusFree})
		}
		m.Store.SetMany(changes)
		return changes, nil
	}

	first, err := models.ParseSeatID(members[0])
	if err != nil {
		return nil, &models.Failure{Kind: models.FailureSeatNotFound, SeatID: members[0], Group: label}
	}
	sector, ok := m.Catalog.Sector(first.SectorID)
	if !ok {
		return nil, &models.Failure{Kind: models.FailureSectorNotFound, SectorID: first.SectorID, Group: label}
	}

	needed := newCount - current
	changes := make([]models.SeatChange, 0, needed)
	free := 0
	for _, row := range catalog.SortedRows(sector) {
		for seat := 1; seat <= row.SeatCount; seat++ {
			id := models.NewSeatID(sector.ID, row.Number, seat).String()
			if m.Store.Status(id) != models.SeatStatusFree {
				continue
			}
			free++
			if len(changes) < needed {
				changes = append(changes, models.SeatChange{SeatID: id, Status: models.SeatStatusReserved, Group: label})
			}
		}
	}
	if len(changes) < needed {
		return nil, &models.Failure{
			Kind:      models.FailureInsufficientCapacity,
			SectorID:  sector.ID,
			Group:     label,
			Requested: newCount,
			Free:      free,
		}
	}

	m.Store.SetMany(changes)
	return changes, nil
}

// Rename relabels every member; blank or unchanged names are ignored
func (m *Manager) Rename(oldLabel, newLabel string) []models.SeatChange {
	newLabel = strings.TrimSpace(newLabel)
	if newLabel == "" || newLabel == oldLabel {
		return nil
	}

	members := m.Members(oldLabel)
	changes := make([]models.SeatChange, 0, len(members))
	for _, id := range members {
		changes = append(changes, models.SeatChange{SeatID: id, Status: m.Store.Status(id), Group: newLabel})
	}
	m.Store.SetMany(changes)
	return changes
}

// Clear frees every seat of the group
func (m *Manager) Clear(label string) []models.SeatChange {
	members := m.Members(label)
	changes := make([]models.SeatChange, 0, len(members))
	for _, id := range members {
		changes = append(changes, models.SeatChange{SeatID: id, Status: models.SeatStatusFree})
	}
	m.Store.SetMany(changes)
	return changes
}

// sortSeatIDs orders seats by sector, then row, then seat
func sortSeatIDs(ids []string) []string {
	return sortSeats(ids, func(a, b models.SeatID) bool {
		if a.SectorID != b.SectorID {
			return a.SectorID < b.SectorID
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Seat < b.Seat
	})
}

// sortByRow orders seats by row, then seat; sector only breaks ties
func sortByRow(ids []string) []string {
	return sortSeats(ids, func(a, b models.SeatID) bool {
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Seat != b.Seat {
			return a.Seat < b.Seat
		}
		return a.SectorID < b.SectorID
	})
}

// sortSeats puts malformed ids last, in string order
func sortSeats(ids []string, less func(a, b models.SeatID) bool) []string {
	type keyed struct {
		raw    string
		parsed models.SeatID
		ok     bool
	}
	keys := make([]keyed, len(ids))
	for i, id := range ids {
		parsed, err := models.ParseSeatID(id)
		keys[i] = keyed{raw: id, parsed: parsed, ok: err == nil}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return a.raw < b.raw
		}
		return less(a.parsed, b.parsed)
	})

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.raw
	}
	return out
}
