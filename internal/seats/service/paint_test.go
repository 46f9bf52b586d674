package service

import (
	"testing"

	"ms-seating/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaintStaysInStartRow(t *testing.T) {
	rec := &recordingSync{}
	s := newTestService(t, rec)

	changes, err := s.Paint("1-1-1", []string{"1-1-2", "1-2-3", "loge-3-1-3", "1-1-3"})

	require.NoError(t, err)
	assert.Equal(t, []models.SeatChange{
		{SeatID: "1-1-1", Status: models.SeatStatusReserved},
		{SeatID: "1-1-2", Status: models.SeatStatusReserved},
		{SeatID: "1-1-3", Status: models.SeatStatusReserved},
	}, changes)
	assert.Equal(t, models.SeatStatusFree, s.Store.Status("1-2-3"))
	assert.Equal(t, models.SeatStatusFree, s.Store.Status("loge-3-1-3"))
	require.Len(t, rec.batches, 1)
}

func TestPaintTargetIsCapturedAtStart(t *testing.T) {
	s := newTestService(t, &recordingSync{})
	_, err := s.SetStatus("1-1-1", models.SeatStatusOccupied)
	require.NoError(t, err)
	_, err = s.SetStatus("1-1-3", models.SeatStatusReserved)
	require.NoError(t, err)

	// occupied -> free, so the whole drag frees seats
	changes, err := s.Paint("1-1-1", []string{"1-1-2", "1-1-3"})

	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.Equal(t, models.SeatStatusFree, s.Store.Status("1-1-3"))
	assert.Zero(t, s.Store.Len())
}

func TestPaintUnknownSeatChangesNothing(t *testing.T) {
	s := newTestService(t, &recordingSync{})

	_, err := s.Paint("1-1-1", []string{"1-1-2", "1-1-99"})

	assert.ErrorIs(t, err, models.ErrSeatNotFound)
	assert.Zero(t, s.Store.Len())
}

func TestInteractiveGesture(t *testing.T) {
	s := newTestService(t, &recordingSync{})

	start, err := s.BeginPaint("loge-3-2-1")
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusReserved, start.Status)

	_, changed, err := s.Enter("loge-3-2-2")
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = s.Enter("loge-3-1-2")
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = s.Enter("loge-3-2-2")
	require.NoError(t, err)
	assert.False(t, changed, "already at the target status")

	s.EndPaint()
	_, changed, err = s.Enter("loge-3-2-3")
	require.NoError(t, err)
	assert.False(t, changed, "no gesture in progress")

	assert.Equal(t, 2, s.Store.Len())
}

func TestPaintKeepsGroupsOfPaintedSeats(t *testing.T) {
	s := newTestService(t, &recordingSync{})
	_, err := s.Reserve(models.ReservationRequest{SectorID: "1", Row: 1, Count: 2, Group: "A"})
	require.NoError(t, err)

	// reserved -> occupied keeps the label on both seats
	_, err = s.Paint("1-1-1", []string{"1-1-2"})

	require.NoError(t, err)
	assert.Equal(t, "A", s.Store.Group("1-1-2"))
	assert.Equal(t, models.SeatStatusOccupied, s.Store.Status("1-1-2"))
}
