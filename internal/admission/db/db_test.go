package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-admission/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.Ticket)(nil)); err != nil {
		t.Fatalf("Failed to reset tickets table: %v", err)
	}
	if err := bunDB.ResetModel(ctx, (*models.MenuEntry)(nil)); err != nil {
		t.Fatalf("Failed to reset menu table: %v", err)
	}

	return &DB{Bun: bunDB}
}

func sampleTickets() []models.Ticket {
	soldAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return []models.Ticket{
		{TicketID: "0001", Type: "Public", Category: "GOLD", Admit: 2, Seq: 1,
			Sold: true, Customer: "Asha", Timestamp: &soldAt},
		{TicketID: "0002", Type: "Public", Category: "GOLD", Admit: 2, Seq: 1},
	}
}

func TestReplaceAndLoadTickets(t *testing.T) {
	store := setupTestDB(t)

	require.NoError(t, store.ReplaceTickets(sampleTickets()))

	loaded, err := store.LoadTickets()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "0001", loaded[0].TicketID)
	assert.True(t, loaded[0].Sold)
	assert.Equal(t, "Asha", loaded[0].Customer)
	require.NotNil(t, loaded[0].Timestamp)
	assert.False(t, loaded[1].Sold)
	assert.Nil(t, loaded[1].Timestamp)
}

func TestReplaceTicketsDropsPreviousContents(t *testing.T) {
	store := setupTestDB(t)

	require.NoError(t, store.ReplaceTickets(sampleTickets()))
	require.NoError(t, store.ReplaceTickets([]models.Ticket{
		{TicketID: "0009", Type: "Guest", Category: "VIP", Admit: 4},
	}))

	loaded, err := store.LoadTickets()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "0009", loaded[0].TicketID)
}

func TestReplaceTicketsWithEmptySetClearsTable(t *testing.T) {
	store := setupTestDB(t)

	require.NoError(t, store.ReplaceTickets(sampleTickets()))
	require.NoError(t, store.ReplaceTickets(nil))

	loaded, err := store.LoadTickets()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestReplaceAndLoadMenu(t *testing.T) {
	store := setupTestDB(t)

	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 2, Seq: 1, Series: "1-50", Alloc: 50, TotalCapacity: 100},
	}
	require.NoError(t, store.ReplaceMenu(menu))

	loaded, err := store.LoadMenu()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "1-50", loaded[0].Series)
	assert.Equal(t, 50, loaded[0].Alloc)
	assert.Equal(t, 100, loaded[0].TotalCapacity)
}

func TestReplaceAllWritesBothTables(t *testing.T) {
	store := setupTestDB(t)

	tickets := sampleTickets()
	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 2, Seq: 1, Series: "1-2"},
	}
	require.NoError(t, store.ReplaceAll(tickets, menu))

	loadedTickets, err := store.LoadTickets()
	require.NoError(t, err)
	assert.Len(t, loadedTickets, 2)

	loadedMenu, err := store.LoadMenu()
	require.NoError(t, err)
	assert.Len(t, loadedMenu, 1)
}

func TestLoadTicketsOrdersAndNormalizesIDs(t *testing.T) {
	store := setupTestDB(t)

	// Legacy rows can hold unpadded IDs written by earlier tooling.
	legacy := []models.Ticket{
		{TicketID: "12", Type: "Public", Category: "GOLD", Admit: 1},
		{TicketID: "0002", Type: "Public", Category: "GOLD", Admit: 1},
	}
	require.NoError(t, store.ReplaceTickets(legacy))

	loaded, err := store.LoadTickets()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "0002", loaded[0].TicketID)
	assert.Equal(t, "0012", loaded[1].TicketID)
}
