package catalog_test

import (
	"testing"

	"ms-seating/internal/catalog"
	"ms-seating/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVenueTotals(t *testing.T) {
	c := catalog.Default()

	totals := c.TotalSeatsByClass()
	assert.Equal(t, 520, totals[models.SeatClassTier])
	assert.Equal(t, 130, totals[models.SeatClassBox])
	assert.Equal(t, 256, totals[models.SeatClassBalcony])
	assert.Equal(t, 906, c.TotalSeats())

	assert.Len(t, c.SectorsByClass(models.SeatClassTier), 8)
	assert.Len(t, c.SectorsByClass(models.SeatClassBox), 14)
	assert.Len(t, c.SectorsByClass(models.SeatClassBalcony), 32)
}

func TestSectorLookup(t *testing.T) {
	c := catalog.Default()

	sector, ok := c.Sector("loge-0g")
	require.True(t, ok)
	assert.Equal(t, models.SeatClassBox, sector.Class)
	row, ok := sector.Row(1)
	require.True(t, ok)
	assert.Equal(t, 3, row.SeatCount)

	_, ok = c.Sector("nope")
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	c := catalog.Default()

	assert.True(t, c.Contains(models.NewSeatID("cote_gauche", 6, 18)))
	assert.False(t, c.Contains(models.NewSeatID("cote_gauche", 6, 19)))
	assert.False(t, c.Contains(models.NewSeatID("cote_gauche", 7, 1)))
	assert.False(t, c.Contains(models.NewSeatID("balcon-17D", 1, 1)))
}

func TestNewRejectsInvalidSectors(t *testing.T) {
	cases := map[string][]models.Sector{
		"duplicate sector": {
			{ID: "a", Class: models.SeatClassTier, Rows: []models.Row{{Number: 1, SeatCount: 2}}},
			{ID: "a", Class: models.SeatClassTier, Rows: []models.Row{{Number: 1, SeatCount: 2}}},
		},
		"duplicate row": {
			{ID: "a", Class: models.SeatClassTier, Rows: []models.Row{{Number: 1, SeatCount: 2}, {Number: 1, SeatCount: 3}}},
		},
		"empty row": {
			{ID: "a", Class: models.SeatClassTier, Rows: []models.Row{{Number: 1, SeatCount: 0}}},
		},
		"unknown class": {
			{ID: "a", Class: "stall", Rows: []models.Row{{Number: 1, SeatCount: 2}}},
		},
		"no rows": {
			{ID: "a", Class: models.SeatClassBox},
		},
	}

	for name, sectors := range cases {
		_, err := catalog.New(sectors)
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog, name)
	}
}

func TestSortedRowsDoesNotMutateSector(t *testing.T) {
	c := catalog.Default()
	sector, _ := c.Sector("face_gauche")

	rows := catalog.SortedRows(sector)
	require.Len(t, rows, 6)
	assert.Equal(t, 1, rows[0].Number)
	assert.Equal(t, 6, rows[5].Number)
	assert.Equal(t, 6, sector.Rows[0].Number)
}
