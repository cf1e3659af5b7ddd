package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// TicketIDWidth is the fixed width of a ticket ID. Numeric IDs from menu
// series are zero-padded to this width before use as the join key.
const TicketIDWidth = 4

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID     string     `bun:"ticket_id,pk" json:"ticket_id"`
	Type         string     `bun:"type" json:"type"`
	Category     string     `bun:"category" json:"category"`
	Admit        int        `bun:"admit" json:"admit"`
	Seq          int        `bun:"seq" json:"seq"`
	Sold         bool       `bun:"sold" json:"sold"`
	Visited      bool       `bun:"visited" json:"visited"`
	Customer     string     `bun:"customer" json:"customer"`
	VisitorSeats int        `bun:"visitor_seats" json:"visitor_seats"`
	Timestamp    *time.Time `bun:"timestamp,nullzero" json:"timestamp"`
}

// FormatTicketID renders a numeric ID in its canonical zero-padded form.
func FormatTicketID(n int) string {
	return fmt.Sprintf("%0*d", TicketIDWidth, n)
}

// NormalizeTicketID trims the raw value and left-pads it with zeros up to
// the canonical width. Values already at or beyond the width pass through.
func NormalizeTicketID(raw string) string {
	id := strings.TrimSpace(raw)
	for len(id) < TicketIDWidth {
		id = "0" + id
	}
	return id
}

// Snapshot is a full read of both persisted tables. Core operations take a
// snapshot by value, mutate a copy, and write the whole result back.
type Snapshot struct {
	Tickets []Ticket    `json:"tickets"`
	Menu    []MenuEntry `json:"menu"`
}

// TicketIndex builds the unique-keyed lookup used by single and bulk
// transitions. Later duplicates would shadow earlier ones, but reconciliation
// never emits the same ID twice.
func TicketIndex(tickets []Ticket) map[string]int {
	idx := make(map[string]int, len(tickets))
	for i, t := range tickets {
		idx[t.TicketID] = i
	}
	return idx
}
