package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-admission/internal/models"
)

func TestReconcileExpandsSeries(t *testing.T) {
	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 2, Seq: 1, Series: "1-50"},
	}

	tickets := Reconcile(menu, nil)
	require.Len(t, tickets, 50)
	assert.Equal(t, "0001", tickets[0].TicketID)
	assert.Equal(t, "0050", tickets[49].TicketID)

	for _, ticket := range tickets {
		assert.Equal(t, "Public", ticket.Type)
		assert.Equal(t, "GOLD", ticket.Category)
		assert.Equal(t, 2, ticket.Admit)
		assert.Equal(t, 1, ticket.Seq)
		assert.False(t, ticket.Sold)
		assert.False(t, ticket.Visited)
		assert.Equal(t, "", ticket.Customer)
		assert.Equal(t, 0, ticket.VisitorSeats)
		assert.Nil(t, ticket.Timestamp)
	}
}

func TestReconcileCarriesExistingStateForward(t *testing.T) {
	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 2, Seq: 1, Series: "1-10"},
	}
	soldAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	existing := []models.Ticket{
		{TicketID: "0003", Type: "Public", Category: "GOLD", Admit: 2, Seq: 1,
			Sold: true, Visited: true, Customer: "Asha", VisitorSeats: 2, Timestamp: &soldAt},
	}

	tickets := Reconcile(menu, existing)
	require.Len(t, tickets, 10)
	assert.Equal(t, existing[0], tickets[2])
	assert.False(t, tickets[3].Sold)
}

func TestReconcileDropsUncoveredIDs(t *testing.T) {
	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 1, Series: "1-5"},
	}
	existing := []models.Ticket{
		{TicketID: "0002", Sold: true, Customer: "Asha"},
		{TicketID: "0099", Sold: true, Customer: "Ravi"},
	}

	tickets := Reconcile(menu, existing)
	require.Len(t, tickets, 5)
	for _, ticket := range tickets {
		assert.NotEqual(t, "0099", ticket.TicketID)
	}
	assert.Equal(t, "Asha", tickets[1].Customer)
}

func TestReconcileIsCarryForwardIdempotent(t *testing.T) {
	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 2, Seq: 1, Series: "1-20"},
		{Type: "Guest", Category: "VIP", Admit: 4, Seq: 2, Series: "21-30"},
	}

	first := Reconcile(menu, nil)
	sold, err := Sell(first[4], "Asha", time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	first[4] = sold

	second := Reconcile(menu, first)
	assert.Equal(t, first, second)
}

func TestReconcileMultipleSeries(t *testing.T) {
	menu := []models.MenuEntry{
		{Type: "Public", Category: "GOLD", Admit: 2, Seq: 1, Series: "1-10"},
		{Type: "Public", Category: "SILVER", Admit: 1, Seq: 2, Series: "11-25"},
	}

	tickets := Reconcile(menu, nil)
	require.Len(t, tickets, 25)
	assert.Equal(t, "GOLD", tickets[9].Category)
	assert.Equal(t, "SILVER", tickets[10].Category)
	assert.Equal(t, "0011", tickets[10].TicketID)
}

func TestReconcileEmptyMenuDropsEverything(t *testing.T) {
	existing := []models.Ticket{{TicketID: "0001", Sold: true}}
	assert.Empty(t, Reconcile(nil, existing))
}
