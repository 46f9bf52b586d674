package models

type SeatClass string

const (
	SeatClassTier    SeatClass = "tier"
	SeatClassBox     SeatClass = "box"
	SeatClassBalcony SeatClass = "balcony"
)

func (c SeatClass) Valid() bool {
	return c == SeatClassTier || c == SeatClassBox || c == SeatClassBalcony
}

type Row struct {
	Number    int `json:"row"`
	SeatCount int `json:"seats"`
}

type Sector struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Class SeatClass `json:"class"`
	Rows  []Row     `json:"rows"`
}

// Row looks a row up by its number, not by its position
func (s Sector) Row(number int) (Row, bool) {
	for _, r := range s.Rows {
		if r.Number == number {
			return r, true
		}
	}
	return Row{}, false
}

func (s Sector) SeatCount() int {
	total := 0
	for _, r := range s.Rows {
		total += r.SeatCount
	}
	return total
}

// ReservationRequest asks for Count seats starting at Row. StartSeat is
// optional; a nil value lets the allocator pick the leftmost free block.
type ReservationRequest struct {
	SectorID  string `json:"sector_id" validate:"required"`
	Row       int    `json:"row" validate:"required,min=1"`
	StartSeat *int   `json:"start_seat,omitempty"`
	Count     int    `json:"count"`
	Group     string `json:"group,omitempty" validate:"max=64"`
}
