package admission

import (
	"strings"
	"time"

	"ms-admission/internal/models"
)

// PartialEntryPolicy decides which categories may check in fewer confirmed
// visitors than the ticket admits. Category names are compared
// case-insensitively after trimming.
type PartialEntryPolicy struct {
	categories map[string]bool
}

func NewPartialEntryPolicy(categories []string) *PartialEntryPolicy {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			set[c] = true
		}
	}
	return &PartialEntryPolicy{categories: set}
}

// Allows reports whether the category may record a visitor count other than
// the full admit (or zero).
func (p *PartialEntryPolicy) Allows(category string) bool {
	return p.categories[strings.ToUpper(strings.TrimSpace(category))]
}

// Every transition below takes the ticket by value and returns the new
// state; on failure the input is returned untouched so a rejected transition
// is observably a no-op.

// Sell marks an unsold ticket as sold to the named customer.
func Sell(t models.Ticket, customer string, now time.Time) (models.Ticket, error) {
	if t.Sold {
		return t, ErrAlreadySold
	}
	t.Sold = true
	t.Customer = strings.TrimSpace(customer)
	ts := now.UTC()
	t.Timestamp = &ts
	return t, nil
}

// ReverseSell returns a sold ticket to its never-touched state, clearing any
// recorded entry along with the sale.
func ReverseSell(t models.Ticket) (models.Ticket, error) {
	if !t.Sold {
		return t, ErrNotSold
	}
	t.Sold = false
	t.Visited = false
	t.Customer = ""
	t.VisitorSeats = 0
	t.Timestamp = nil
	return t, nil
}

// CheckIn records entry on a sold, not-yet-visited ticket. Categories
// without partial entry must confirm exactly the admitted seat count.
func CheckIn(t models.Ticket, seats int, policy *PartialEntryPolicy, now time.Time) (models.Ticket, error) {
	if !t.Sold || t.Visited {
		return t, ErrNotEligible
	}
	if seats < 1 || seats > t.Admit {
		return t, ErrOutOfRange
	}
	if seats != t.Admit && !policy.Allows(t.Category) {
		return t, ErrNotPermitted
	}
	t.Visited = true
	t.VisitorSeats = seats
	ts := now.UTC()
	t.Timestamp = &ts
	return t, nil
}

// AdjustCheckIn revises the confirmed visitor count on a visited ticket of a
// partial-entry category. Zero seats demotes the ticket back to sold.
func AdjustCheckIn(t models.Ticket, seats int, policy *PartialEntryPolicy, now time.Time) (models.Ticket, error) {
	if !t.Visited {
		return t, ErrNotVisited
	}
	if !policy.Allows(t.Category) {
		return t, ErrNotPermitted
	}
	if seats < 0 || seats > t.Admit {
		return t, ErrOutOfRange
	}
	if seats == 0 {
		t.Visited = false
		t.VisitorSeats = 0
		t.Timestamp = nil
		return t, nil
	}
	t.Visited = true
	t.VisitorSeats = seats
	ts := now.UTC()
	t.Timestamp = &ts
	return t, nil
}

// ReverseCheckIn removes the recorded entry, leaving the sale intact.
func ReverseCheckIn(t models.Ticket) (models.Ticket, error) {
	if !t.Visited {
		return t, ErrNotVisited
	}
	t.Visited = false
	t.VisitorSeats = 0
	t.Timestamp = nil
	return t, nil
}
