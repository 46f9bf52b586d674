package catalog

import (
	"errors"
	"fmt"
	"sort"

	"ms-seating/internal/models"
)

var ErrInvalidCatalog = errors.New("invalid seat catalog")

// Catalog is the immutable list of sectors. Totals are computed once in New.
type Catalog struct {
	sectors []models.Sector
	byID    map[string]int
	byClass map[models.SeatClass]int
	total   int
}

// New validates the sectors and builds the lookup tables
func New(sectors []models.Sector) (*Catalog, error) {
	c := &Catalog{
		sectors: make([]models.Sector, 0, len(sectors)),
		byID:    make(map[string]int, len(sectors)),
		byClass: make(map[models.SeatClass]int),
	}

	for _, s := range sectors {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: sector with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate sector %q", ErrInvalidCatalog, s.ID)
		}
		if !s.Class.Valid() {
			return nil, fmt.Errorf("%w: sector %q has unknown class %q", ErrInvalidCatalog, s.ID, s.Class)
		}
		if len(s.Rows) == 0 {
			return nil, fmt.Errorf("%w: sector %q has no rows", ErrInvalidCatalog, s.ID)
		}

		seen := make(map[int]bool, len(s.Rows))
		rows := make([]models.Row, len(s.Rows))
		for i, r := range s.Rows {
			if r.Number < 1 || r.SeatCount < 1 {
				return nil, fmt.Errorf("%w: sector %q row %d has %d seats", ErrInvalidCatalog, s.ID, r.Number, r.SeatCount)
			}
			if seen[r.Number] {
				return nil, fmt.Errorf("%w: sector %q repeats row %d", ErrInvalidCatalog, s.ID, r.Number)
			}
			seen[r.Number] = true
			rows[i] = r
		}
		s.Rows = rows

		c.byID[s.ID] = len(c.sectors)
		c.sectors = append(c.sectors, s)
		c.byClass[s.Class] += s.SeatCount()
		c.total += s.SeatCount()
	}

	return c, nil
}

// Default returns the catalog of the circus venue
func Default() *Catalog {
	c, err := New(Venue())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Sectors() []models.Sector {
	out := make([]models.Sector, len(c.sectors))
	copy(out, c.sectors)
	return out
}

func (c *Catalog) SectorsByClass(class models.SeatClass) []models.Sector {
	var out []models.Sector
	for _, s := range c.sectors {
		if s.Class == class {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Sector(id string) (models.Sector, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return models.Sector{}, false
	}
	return c.sectors[idx], true
}

func (c *Catalog) TotalSeats() int {
	return c.total
}

func (c *Catalog) TotalSeatsByClass() map[models.SeatClass]int {
	out := make(map[models.SeatClass]int, len(c.byClass))
	for k, v := range c.byClass {
		out[k] = v
	}
	return out
}

// Contains reports whether id names a physical seat of the venue
func (c *Catalog) Contains(id models.SeatID) bool {
	s, ok := c.Sector(id.SectorID)
	if !ok {
		return false
	}
	r, ok := s.Row(id.Row)
	return ok && id.Seat >= 1 && id.Seat <= r.SeatCount
}

// SortedRows returns the rows of a sector in ascending row number
func SortedRows(s models.Sector) []models.Row {
	rows := make([]models.Row, len(s.Rows))
	copy(rows, s.Rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Number < rows[j].Number })
	return rows
}
