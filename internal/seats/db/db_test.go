package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"ms-seating/internal/models"
	"ms-seating/internal/seats/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *db.DB {
	// shared cache so every pooled connection sees the same in-memory database
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	seatDB := &db.DB{Bun: bunDB}
	require.NoError(t, seatDB.CreateSchema(context.Background()))
	return seatDB
}

func TestUpsertInsertsAndUpdates(t *testing.T) {
	seatDB := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: "loge-3-2-1", Status: models.SeatStatusReserved, Group: "Martin"}))
	require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: "loge-3-2-1", Status: models.SeatStatusOccupied, Group: "Martin"}))
	require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: "1-1-1", Status: models.SeatStatusReserved}))

	changes, err := seatDB.LoadAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.SeatChange{
		{SeatID: "loge-3-2-1", Status: models.SeatStatusOccupied, Group: "Martin"},
		{SeatID: "1-1-1", Status: models.SeatStatusReserved},
	}, changes)
}

func TestUpsertClearsGroup(t *testing.T) {
	seatDB := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: "2-1-1", Status: models.SeatStatusReserved, Group: "A"}))
	require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: "2-1-1", Status: models.SeatStatusReserved}))

	changes, err := seatDB.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Group)
}

func TestRemoveAndRemoveAll(t *testing.T) {
	seatDB := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"1-1-1", "1-1-2", "1-1-3"} {
		require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: id, Status: models.SeatStatusReserved}))
	}

	require.NoError(t, seatDB.Remove(ctx, "1-1-2"))
	require.NoError(t, seatDB.Remove(ctx, "not-there"))
	count, err := seatDB.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, seatDB.RemoveAll(ctx))
	count, err = seatDB.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLoadAllSkipsUnknownStatus(t *testing.T) {
	seatDB := setupTestDB(t)
	ctx := context.Background()

	_, err := seatDB.Bun.NewInsert().Model(&models.SeatReservation{SeatID: "1-1-1", Status: "broken"}).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, seatDB.Upsert(ctx, models.SeatChange{SeatID: "1-1-2", Status: models.SeatStatusOccupied}))

	changes, err := seatDB.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SeatChange{{SeatID: "1-1-2", Status: models.SeatStatusOccupied}}, changes)
}
