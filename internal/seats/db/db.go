package db

import (
	"context"
	"fmt"
	"time"

	"ms-seating/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// CreateSchema creates seat_reservations when migrations are not used
// (SQLite development mode and tests)
func (d *DB) CreateSchema(ctx context.Context) error {
	_, err := d.Bun.NewCreateTable().
		Model((*models.SeatReservation)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// LoadAll reads every persisted reservation. Rows with an unknown status are
// skipped.
func (d *DB) LoadAll(ctx context.Context) ([]models.SeatChange, error) {
	var rows []models.SeatReservation
	if err := d.Bun.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load seat reservations: %w", err)
	}

	changes := make([]models.SeatChange, 0, len(rows))
	for _, row := range rows {
		change, err := row.ToChange()
		if err != nil {
			continue
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// Upsert writes one seat keyed by seat_id
func (d *DB) Upsert(ctx context.Context, change models.SeatChange) error {
	row := models.SeatReservation{
		SeatID:    change.SeatID,
		Status:    string(change.Status),
		GroupName: change.Group,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := d.Bun.NewInsert().
		Model(&row).
		On("CONFLICT (seat_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("group_name = EXCLUDED.group_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert seat %s: %w", change.SeatID, err)
	}
	return nil
}

// Remove deletes the row of a seat that went back to free
func (d *DB) Remove(ctx context.Context, seatID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.SeatReservation)(nil)).
		Where("seat_id = ?", seatID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove seat %s: %w", seatID, err)
	}
	return nil
}

// RemoveAll empties the table
func (d *DB) RemoveAll(ctx context.Context) error {
	_, err := d.Bun.NewDelete().
		Model((*models.SeatReservation)(nil)).
		Where("seat_id <> ''").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove all seats: %w", err)
	}
	return nil
}

// Count returns the number of persisted rows
func (d *DB) Count(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.SeatReservation)(nil)).Count(ctx)
}
