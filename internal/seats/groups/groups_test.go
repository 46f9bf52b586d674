package groups_test

import (
	"testing"

	"ms-seating/internal/catalog"
	"ms-seating/internal/models"
	"ms-seating/internal/seats/groups"
	"ms-seating/internal/seats/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*groups.Manager, *store.Store) {
	t.Helper()
	c, err := catalog.New([]models.Sector{
		{ID: "1", Class: models.SeatClassTier, Rows: []models.Row{{Number: 2, SeatCount: 3}, {Number: 1, SeatCount: 3}}},
		{ID: "2", Class: models.SeatClassBox, Rows: []models.Row{{Number: 1, SeatCount: 2}}},
	})
	require.NoError(t, err)
	s := store.New()
	return groups.NewManager(s, c), s
}

func reserve(s *store.Store, group string, ids ...string) {
	changes := make([]models.SeatChange, 0, len(ids))
	for _, id := range ids {
		changes = append(changes, models.SeatChange{SeatID: id, Status: models.SeatStatusReserved, Group: group})
	}
	s.SetMany(changes)
}

func assertFreeSeatsUngrouped(t *testing.T, s *store.Store) {
	t.Helper()
	snap := s.Snapshot()
	for id := range snap.Groups {
		assert.NotEqual(t, models.SeatStatusFree, s.Status(id), "seat %s is free but grouped", id)
	}
}

func TestIndexSortsMembers(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-2-1", "1-1-3", "1-1-1")
	reserve(s, "B", "2-1-1")

	index := m.Index()
	assert.Equal(t, []string{"1-1-1", "1-1-3", "1-2-1"}, index["A"])
	assert.Equal(t, []string{"2-1-1"}, index["B"])
}

func TestResizeShrinkKeepsLowestSeats(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-3", "1-1-1", "1-1-2")

	changes, err := m.Resize("A", 1)

	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.Equal(t, []string{"1-1-1"}, m.Members("A"))
	assert.Equal(t, models.SeatStatusFree, s.Status("1-1-2"))
	assert.Equal(t, models.SeatStatusFree, s.Status("1-1-3"))
	assertFreeSeatsUngrouped(t, s)
}

func TestResizeShrinkAcrossSectorsKeepsLowestRows(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-2-1", "2-1-1")

	changes, err := m.Resize("A", 1)

	require.NoError(t, err)
	assert.Equal(t, []models.SeatChange{{SeatID: "1-2-1", Status: models.SeatStatusFree}}, changes)
	assert.Equal(t, []string{"2-1-1"}, m.Members("A"))
	assertFreeSeatsUngrouped(t, s)
}

func TestResizeShrinkAcrossSectorsOrdersByRowThenSeat(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-2-1", "1-1-2", "2-1-1", "1-1-1")

	_, err := m.Resize("A", 3)

	require.NoError(t, err)
	// row 1 seat 1 exists in both sectors; sector id breaks the tie
	assert.Equal(t, []string{"1-1-1", "1-1-2", "2-1-1"}, m.Members("A"))
	assert.Equal(t, models.SeatStatusFree, s.Status("1-2-1"))
}

func TestResizeToSameCountIsNoop(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-1", "1-1-2")
	before := s.Snapshot()

	changes, err := m.Resize("A", 2)

	require.NoError(t, err)
	assert.Empty(t, changes)
	after := s.Snapshot()
	assert.Equal(t, before.Statuses, after.Statuses)
	assert.Equal(t, before.Groups, after.Groups)
}

func TestResizeToZeroIsInvalid(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-1", "1-1-2")

	_, err := m.Resize("A", 0)

	assert.ErrorIs(t, err, models.ErrInvalidCount)
	assert.Equal(t, []string{"1-1-1", "1-1-2"}, m.Members("A"))
}

func TestResizeUnknownGroup(t *testing.T) {
	m, _ := setup(t)
	_, err := m.Resize("ghost", 3)
	assert.ErrorIs(t, err, models.ErrEmptyGroup)
}

func TestResizeGrowTakesFirstFreeSeatsOfSector(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-2-1")
	s.SetMany([]models.SeatChange{{SeatID: "1-1-1", Status: models.SeatStatusOccupied}})

	changes, err := m.Resize("A", 3)

	require.NoError(t, err)
	assert.Equal(t, []models.SeatChange{
		{SeatID: "1-1-2", Status: models.SeatStatusReserved, Group: "A"},
		{SeatID: "1-1-3", Status: models.SeatStatusReserved, Group: "A"},
	}, changes)
	assert.Equal(t, []string{"1-1-2", "1-1-3", "1-2-1"}, m.Members("A"))
	assertFreeSeatsUngrouped(t, s)
}

func TestResizeGrowIsAllOrNothing(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-1")
	reserve(s, "B", "1-1-2", "1-1-3", "1-2-1")
	before := s.Snapshot()

	_, err := m.Resize("A", 4)

	require.ErrorIs(t, err, models.ErrInsufficientCapacity)
	var failure *models.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 2, failure.Free)
	after := s.Snapshot()
	assert.Equal(t, before.Statuses, after.Statuses)
	assert.Equal(t, before.Groups, after.Groups)
}

func TestRename(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-1", "1-1-2")
	s.SetMany([]models.SeatChange{{SeatID: "1-1-2", Status: models.SeatStatusOccupied, Group: "A"}})

	changes := m.Rename("A", "  Dupont ")

	assert.Len(t, changes, 2)
	assert.Empty(t, m.Members("A"))
	assert.Equal(t, []string{"1-1-1", "1-1-2"}, m.Members("Dupont"))
	assert.Equal(t, models.SeatStatusOccupied, s.Status("1-1-2"))
	assert.Equal(t, models.SeatStatusReserved, s.Status("1-1-1"))
}

func TestRenameIgnoresBlankOrSameName(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-1")

	assert.Nil(t, m.Rename("A", "   "))
	assert.Nil(t, m.Rename("A", "A"))
	assert.Equal(t, []string{"1-1-1"}, m.Members("A"))
}

func TestClearFreesAndDegroups(t *testing.T) {
	m, s := setup(t)
	reserve(s, "A", "1-1-1", "1-1-2")
	reserve(s, "B", "2-1-1")

	changes := m.Clear("A")

	assert.Len(t, changes, 2)
	assert.Equal(t, models.SeatStatusFree, s.Status("1-1-1"))
	assert.NotContains(t, m.Index(), "A")
	assert.Contains(t, m.Index(), "B")
	assertFreeSeatsUngrouped(t, s)
}

func TestColorsFollowSeatOrder(t *testing.T) {
	m, s := setup(t)
	reserve(s, "late", "1-2-3")
	reserve(s, "early", "1-1-1")

	colors := m.Colors()
	assert.Equal(t, groups.Palette[0], colors["early"])
	assert.Equal(t, groups.Palette[1], colors["late"])
}

func TestOrderListsGroupsByFirstSeat(t *testing.T) {
	m, s := setup(t)
	reserve(s, "C", "2-1-1")
	reserve(s, "B", "1-2-2", "1-1-3")
	reserve(s, "A", "1-2-1")

	assert.Equal(t, []string{"B", "A", "C"}, m.Order())
}
