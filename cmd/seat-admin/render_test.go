package main

import (
	"strings"
	"testing"

	"ms-seating/internal/catalog"
	"ms-seating/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderDumpEmptyVenue(t *testing.T) {
	out := renderDump(catalog.Default(), nil, "")

	assert.Contains(t, out, "every seat is free")
	assert.Contains(t, out, "total 906")
	assert.Contains(t, out, "free 906")
}

func TestRenderDumpShowsTouchedSectorsAndGroups(t *testing.T) {
	entries := []models.SeatChange{
		{SeatID: "loge-3-2-1", Status: models.SeatStatusReserved, Group: "Martin"},
		{SeatID: "loge-3-2-2", Status: models.SeatStatusReserved, Group: "Martin"},
		{SeatID: "loge-3-1-1", Status: models.SeatStatusOccupied},
	}

	out := renderDump(catalog.Default(), entries, "")

	assert.Contains(t, out, "(loge-3)")
	assert.NotContains(t, out, "(loge-4)")
	assert.Contains(t, out, "Martin: 2 seats (loge-3-2-1, loge-3-2-2)")
	assert.Contains(t, out, "reserved 2  occupied 1")
	assert.Equal(t, 2, strings.Count(out, reservedGlyph))
	assert.Equal(t, 1, strings.Count(out, occupiedGlyph))
	assert.Equal(t, 7, strings.Count(out, freeGlyph))
}

func TestRenderDumpSingleSector(t *testing.T) {
	out := renderDump(catalog.Default(), nil, "balcon-2G")

	assert.Contains(t, out, "(balcon-2G)")
	assert.Equal(t, 8, strings.Count(out, freeGlyph))
}
