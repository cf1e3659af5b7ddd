package admission

import (
	"sort"

	"ms-admission/internal/models"
)

// Aggregate rolls the ticket set up into one row per (seq, type, category,
// admit) group plus a grand total. Groups order ascending by seq with zero
// (absent) sorting last; ties keep discovery order. Empty input yields an
// empty row list and no total.
func Aggregate(tickets []models.Ticket) ([]models.GroupSummary, *models.GrandTotal) {
	if len(tickets) == 0 {
		return nil, nil
	}

	type groupKey struct {
		Seq      int
		Type     string
		Category string
		Admit    int
	}

	byKey := make(map[groupKey]int)
	var rows []models.GroupSummary
	for _, t := range tickets {
		key := groupKey{Seq: t.Seq, Type: t.Type, Category: t.Category, Admit: t.Admit}
		idx, ok := byKey[key]
		if !ok {
			idx = len(rows)
			byKey[key] = idx
			rows = append(rows, models.GroupSummary{
				Seq:      t.Seq,
				Type:     t.Type,
				Category: t.Category,
				Admit:    t.Admit,
			})
		}
		rows[idx].TotalTickets++
		if t.Sold {
			rows[idx].TicketsSold++
		}
		rows[idx].TotalVisitors += t.VisitorSeats
	}

	for i := range rows {
		rows[i].TotalSeats = rows[i].TotalTickets * rows[i].Admit
		rows[i].SeatsSold = rows[i].TicketsSold * rows[i].Admit
		rows[i].BalanceTickets = rows[i].TotalTickets - rows[i].TicketsSold
		rows[i].BalanceSeats = rows[i].TotalSeats - rows[i].SeatsSold
		rows[i].BalanceVisitors = rows[i].SeatsSold - rows[i].TotalVisitors
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return seqSortKey(rows[i].Seq) < seqSortKey(rows[j].Seq)
	})

	total := &models.GrandTotal{}
	for _, r := range rows {
		total.Admit += r.Admit
		total.TotalTickets += r.TotalTickets
		total.TicketsSold += r.TicketsSold
		total.TotalSeats += r.TotalSeats
		total.SeatsSold += r.SeatsSold
		total.TotalVisitors += r.TotalVisitors
		total.BalanceTickets += r.BalanceTickets
		total.BalanceSeats += r.BalanceSeats
		total.BalanceVisitors += r.BalanceVisitors
	}

	return rows, total
}

// seqSortKey pushes zero/absent sequence numbers past every explicit one.
func seqSortKey(seq int) int {
	if seq == 0 {
		return int(^uint(0) >> 1)
	}
	return seq
}

// SortMenu orders menu entries for display using the same seq-last rule.
func SortMenu(entries []models.MenuEntry) []models.MenuEntry {
	out := make([]models.MenuEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return seqSortKey(out[i].Seq) < seqSortKey(out[j].Seq)
	})
	return out
}
