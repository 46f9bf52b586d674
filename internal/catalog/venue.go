package catalog

import (
	"fmt"

	"ms-seating/internal/models"
)

// tierRows lists the rows of a tier block from the back (row 6) to the ring (row 1)
func tierRows(counts ...int) []models.Row {
	rows := make([]models.Row, 0, len(counts))
	for i, c := range counts {
		rows = append(rows, models.Row{Number: len(counts) - i, SeatCount: c})
	}
	return rows
}

// Venue returns the circus layout: eight tier blocks around the ring,
// fourteen ringside boxes and thirty-two balcony boxes.
func Venue() []models.Sector {
	sectors := []models.Sector{
		{ID: "arriere_gauche", Label: "Côté arrière gauche", Class: models.SeatClassTier, Rows: tierRows(8, 3, 3, 6, 6, 5)},
		{ID: "cote_gauche", Label: "Côté gauche", Class: models.SeatClassTier, Rows: tierRows(18, 14, 14, 15, 15, 13)},
		{ID: "face_cote_gauche", Label: "Face côté gauche", Class: models.SeatClassTier, Rows: tierRows(18, 11, 11, 12, 12, 10)},
		{ID: "face_gauche", Label: "Face gauche", Class: models.SeatClassTier, Rows: tierRows(12, 10, 10, 12, 12, 10)},
		{ID: "face_droite", Label: "Face droite", Class: models.SeatClassTier, Rows: tierRows(12, 10, 10, 12, 12, 10)},
		{ID: "face_cote_droite", Label: "Face côté droite", Class: models.SeatClassTier, Rows: tierRows(18, 11, 11, 12, 12, 10)},
		{ID: "cote_droit", Label: "Côté droit", Class: models.SeatClassTier, Rows: tierRows(18, 14, 14, 15, 15, 13)},
		{ID: "arriere_droit", Label: "Côté arrière droit", Class: models.SeatClassTier, Rows: tierRows(8, 3, 3, 6, 6, 5)},
	}

	// The two boxes next to the artists' entrance are smaller and unusable for sale
	sectors = append(sectors, models.Sector{
		ID: "loge-0g", Label: "Loge 0G (inutilisable)", Class: models.SeatClassBox,
		Rows: []models.Row{{Number: 2, SeatCount: 2}, {Number: 1, SeatCount: 3}},
	})
	for i := 1; i <= 12; i++ {
		sectors = append(sectors, models.Sector{
			ID:    fmt.Sprintf("loge-%d", i),
			Label: fmt.Sprintf("Loge %d", i),
			Class: models.SeatClassBox,
			Rows:  []models.Row{{Number: 2, SeatCount: 5}, {Number: 1, SeatCount: 5}},
		})
	}
	sectors = append(sectors, models.Sector{
		ID: "loge-0d", Label: "Loge 0D (inutilisable)", Class: models.SeatClassBox,
		Rows: []models.Row{{Number: 2, SeatCount: 2}, {Number: 1, SeatCount: 3}},
	})

	for _, side := range []string{"D", "G"} {
		for i := 1; i <= 16; i++ {
			sectors = append(sectors, models.Sector{
				ID:    fmt.Sprintf("balcon-%d%s", i, side),
				Label: fmt.Sprintf("Balcon %d%s", i, side),
				Class: models.SeatClassBalcony,
				Rows:  []models.Row{{Number: 2, SeatCount: 4}, {Number: 1, SeatCount: 4}},
			})
		}
	}

	return sectors
}
