package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-admission/internal/models"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func familyPolicy() *PartialEntryPolicy {
	return NewPartialEntryPolicy([]string{"FAMILY SILVER", "FAMILY BRONZE"})
}

func unsoldTicket() models.Ticket {
	return models.Ticket{
		TicketID: "0001",
		Type:     "Public",
		Category: "GOLD",
		Admit:    2,
		Seq:      1,
	}
}

func TestSell(t *testing.T) {
	sold, err := Sell(unsoldTicket(), "Asha", testNow)
	require.NoError(t, err)
	assert.True(t, sold.Sold)
	assert.Equal(t, "Asha", sold.Customer)
	require.NotNil(t, sold.Timestamp)
	assert.Equal(t, testNow, *sold.Timestamp)
}

func TestSellAlreadySoldLeavesTicketUnchanged(t *testing.T) {
	sold, err := Sell(unsoldTicket(), "Asha", testNow)
	require.NoError(t, err)

	unchanged, err := Sell(sold, "Ravi", testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadySold)
	assert.Equal(t, sold, unchanged)
}

func TestSellThenReverseSellRestoresPreSellState(t *testing.T) {
	original := unsoldTicket()

	sold, err := Sell(original, "Asha", testNow)
	require.NoError(t, err)
	visited, err := CheckIn(sold, 2, familyPolicy(), testNow)
	require.NoError(t, err)

	reversed, err := ReverseSell(visited)
	require.NoError(t, err)
	assert.Equal(t, original, reversed)
}

func TestReverseSellUnsold(t *testing.T) {
	ticket := unsoldTicket()
	unchanged, err := ReverseSell(ticket)
	assert.ErrorIs(t, err, ErrNotSold)
	assert.Equal(t, ticket, unchanged)
}

func TestCheckInRequiresSale(t *testing.T) {
	ticket := unsoldTicket()
	unchanged, err := CheckIn(ticket, 2, familyPolicy(), testNow)
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Equal(t, ticket, unchanged)
}

func TestCheckInRejectsSecondEntry(t *testing.T) {
	sold, _ := Sell(unsoldTicket(), "Asha", testNow)
	visited, err := CheckIn(sold, 2, familyPolicy(), testNow)
	require.NoError(t, err)

	unchanged, err := CheckIn(visited, 2, familyPolicy(), testNow)
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Equal(t, visited, unchanged)
}

func TestCheckInSeatBounds(t *testing.T) {
	sold, _ := Sell(unsoldTicket(), "Asha", testNow)

	for _, seats := range []int{0, -1, 3} {
		unchanged, err := CheckIn(sold, seats, familyPolicy(), testNow)
		assert.ErrorIs(t, err, ErrOutOfRange, "seats=%d", seats)
		assert.Equal(t, sold, unchanged)
	}
}

func TestCheckInPartialSeatsGatedByCategory(t *testing.T) {
	sold, _ := Sell(unsoldTicket(), "Asha", testNow)

	// GOLD is not a partial-entry category: anything short of full admit is
	// refused.
	unchanged, err := CheckIn(sold, 1, familyPolicy(), testNow)
	assert.ErrorIs(t, err, ErrNotPermitted)
	assert.Equal(t, sold, unchanged)

	family := sold
	family.Category = "Family Silver"
	family.Admit = 4
	visited, err := CheckIn(family, 2, familyPolicy(), testNow)
	require.NoError(t, err)
	assert.True(t, visited.Visited)
	assert.Equal(t, 2, visited.VisitorSeats)
}

func TestCheckInThenReverseCheckInKeepsSale(t *testing.T) {
	sold, _ := Sell(unsoldTicket(), "Asha", testNow)
	visited, err := CheckIn(sold, 2, familyPolicy(), testNow.Add(time.Minute))
	require.NoError(t, err)

	reversed, err := ReverseCheckIn(visited)
	require.NoError(t, err)
	assert.False(t, reversed.Visited)
	assert.Equal(t, 0, reversed.VisitorSeats)
	assert.True(t, reversed.Sold)
	assert.Equal(t, "Asha", reversed.Customer)
	assert.Nil(t, reversed.Timestamp)
}

func TestReverseCheckInWithoutEntry(t *testing.T) {
	sold, _ := Sell(unsoldTicket(), "Asha", testNow)
	unchanged, err := ReverseCheckIn(sold)
	assert.ErrorIs(t, err, ErrNotVisited)
	assert.Equal(t, sold, unchanged)
}

func TestAdjustCheckIn(t *testing.T) {
	ticket := unsoldTicket()
	ticket.Category = "FAMILY SILVER"
	ticket.Admit = 4

	sold, _ := Sell(ticket, "Asha", testNow)
	visited, err := CheckIn(sold, 4, familyPolicy(), testNow)
	require.NoError(t, err)

	adjusted, err := AdjustCheckIn(visited, 2, familyPolicy(), testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, adjusted.Visited)
	assert.Equal(t, 2, adjusted.VisitorSeats)
}

func TestAdjustCheckInToZeroDemotesToSold(t *testing.T) {
	ticket := unsoldTicket()
	ticket.Category = "FAMILY BRONZE"
	ticket.Admit = 4

	sold, _ := Sell(ticket, "Asha", testNow)
	visited, _ := CheckIn(sold, 3, familyPolicy(), testNow)

	demoted, err := AdjustCheckIn(visited, 0, familyPolicy(), testNow)
	require.NoError(t, err)
	assert.False(t, demoted.Visited)
	assert.Equal(t, 0, demoted.VisitorSeats)
	assert.True(t, demoted.Sold)
	assert.Nil(t, demoted.Timestamp)
}

func TestAdjustCheckInRejectedForOtherCategories(t *testing.T) {
	sold, _ := Sell(unsoldTicket(), "Asha", testNow)
	visited, _ := CheckIn(sold, 2, familyPolicy(), testNow)

	unchanged, err := AdjustCheckIn(visited, 1, familyPolicy(), testNow)
	assert.ErrorIs(t, err, ErrNotPermitted)
	assert.Equal(t, visited, unchanged)
}

func TestAdjustCheckInSeatBounds(t *testing.T) {
	ticket := unsoldTicket()
	ticket.Category = "FAMILY SILVER"
	ticket.Admit = 4

	sold, _ := Sell(ticket, "Asha", testNow)
	visited, _ := CheckIn(sold, 4, familyPolicy(), testNow)

	for _, seats := range []int{-1, 5} {
		unchanged, err := AdjustCheckIn(visited, seats, familyPolicy(), testNow)
		assert.ErrorIs(t, err, ErrOutOfRange, "seats=%d", seats)
		assert.Equal(t, visited, unchanged)
	}
}

func TestPartialEntryPolicyMatchesLoosely(t *testing.T) {
	policy := NewPartialEntryPolicy([]string{" family silver ", "FAMILY BRONZE"})
	assert.True(t, policy.Allows("Family Silver"))
	assert.True(t, policy.Allows("  FAMILY BRONZE"))
	assert.False(t, policy.Allows("GOLD"))
}
