package admission

import (
	"ms-admission/internal/models"
)

// Reconcile derives the complete ticket set from a validated menu. IDs
// already present in existing carry their record forward verbatim, covering
// sold/visited/customer/visitor-seat state across menu edits; new IDs are
// initialized to defaults with category fields copied from the owning entry.
// Any existing ticket whose ID no longer falls inside a series is dropped.
//
// The menu must have passed models.ValidateMenu first; a malformed series
// here is a programmer error and its entry is skipped.
func Reconcile(menu []models.MenuEntry, existing []models.Ticket) []models.Ticket {
	byID := make(map[string]models.Ticket, len(existing))
	for _, t := range existing {
		byID[t.TicketID] = t
	}

	var out []models.Ticket
	for _, m := range menu {
		start, end, err := m.Range()
		if err != nil {
			continue
		}
		for n := start; n <= end; n++ {
			id := models.FormatTicketID(n)
			if t, ok := byID[id]; ok {
				out = append(out, t)
				continue
			}
			out = append(out, models.Ticket{
				TicketID:     id,
				Type:         m.Type,
				Category:     m.Category,
				Admit:        m.Admit,
				Seq:          m.Seq,
				Sold:         false,
				Visited:      false,
				Customer:     "",
				VisitorSeats: 0,
				Timestamp:    nil,
			})
		}
	}
	return out
}
