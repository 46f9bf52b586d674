package main

import (
	"fmt"
	"sort"
	"strings"

	"ms-seating/internal/catalog"
	"ms-seating/internal/models"
	"ms-seating/internal/seats/groups"
	"ms-seating/internal/seats/store"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	freeStyle     = lipgloss.NewStyle().Faint(true)
	reservedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	occupiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

const (
	freeGlyph     = "○"
	reservedGlyph = "◐"
	occupiedGlyph = "●"
)

func glyph(status models.SeatStatus) string {
	switch status {
	case models.SeatStatusReserved:
		return reservedStyle.Render(reservedGlyph)
	case models.SeatStatusOccupied:
		return occupiedStyle.Render(occupiedGlyph)
	default:
		return freeStyle.Render(freeGlyph)
	}
}

// renderSector draws one sector row by row, highest row first as in the hall
func renderSector(sector models.Sector, s *store.Store) string {
	rows := catalog.SortedRows(sector)
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", sector.Label, sector.ID)))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		b.WriteString(fmt.Sprintf("\nrow %2d  ", row.Number))
		for seat := 1; seat <= row.SeatCount; seat++ {
			b.WriteString(glyph(s.Status(models.NewSeatID(sector.ID, row.Number, seat).String())))
		}
	}
	return panelStyle.Render(b.String())
}

// renderDump draws every sector holding at least one non-free seat, or only
// sectorID when given, followed by the group legend and the counters
func renderDump(venue *catalog.Catalog, entries []models.SeatChange, sectorID string) string {
	s := store.New()
	s.Replace(entries)

	touched := make(map[string]bool)
	for id := range s.Snapshot().Statuses {
		if parsed, err := models.ParseSeatID(id); err == nil {
			touched[parsed.SectorID] = true
		}
	}

	var panels []string
	for _, sector := range venue.Sectors() {
		if sectorID != "" && sector.ID != sectorID {
			continue
		}
		if sectorID == "" && !touched[sector.ID] {
			continue
		}
		panels = append(panels, renderSector(sector, s))
	}

	var b strings.Builder
	if len(panels) == 0 {
		b.WriteString(freeStyle.Render("every seat is free"))
	} else {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, panels...))
	}

	m := groups.NewManager(s, venue)
	index := m.Index()
	labels := m.Order()
	if len(labels) > 0 {
		b.WriteString("\n\n" + titleStyle.Render("Groups"))
		for i, label := range labels {
			color := groups.Palette[i%len(groups.Palette)]
			chip := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
			b.WriteString(fmt.Sprintf("\n%s %s: %d seats (%s)", chip, label, len(index[label]), strings.Join(index[label], ", ")))
		}
	}

	counts := s.Counts()
	byClass := venue.TotalSeatsByClass()
	classes := make([]string, 0, len(byClass))
	for class, total := range byClass {
		classes = append(classes, fmt.Sprintf("%s %d", class, total))
	}
	sort.Strings(classes)
	reserved, occupied := counts[models.SeatStatusReserved], counts[models.SeatStatusOccupied]
	b.WriteString(fmt.Sprintf("\n\ntotal %d (%s)  free %d  reserved %d  occupied %d\n",
		venue.TotalSeats(), strings.Join(classes, ", "),
		venue.TotalSeats()-reserved-occupied, reserved, occupied))
	return b.String()
}
