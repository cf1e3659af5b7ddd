package admission

import (
	"time"

	"github.com/google/uuid"

	"ms-admission/internal/models"
)

// ApplyBulk classifies every uploaded row and applies the requested
// transition to the valid subset. Buckets are decided in precedence order:
// duplicate-in-batch, then unknown ticket, then per-ticket precondition
// failure. Every occurrence of a duplicated ID is rejected; the remaining
// valid rows still apply.
//
// The ticket slice is mutated in place for valid rows only; callers persist
// the whole set afterwards, or skip the write when nothing applied.
func ApplyBulk(rows []models.BulkRow, op models.TransitionKind, tickets []models.Ticket, policy *PartialEntryPolicy, now time.Time) *models.BulkResult {
	result := &models.BulkResult{
		BatchID: uuid.New().String(),
		Op:      op,
	}

	counts := make(map[string]int, len(rows))
	for i := range rows {
		rows[i].TicketID = models.NormalizeTicketID(rows[i].TicketID)
		counts[rows[i].TicketID]++
	}

	index := models.TicketIndex(tickets)

	for _, row := range rows {
		if counts[row.TicketID] > 1 {
			result.Duplicates = append(result.Duplicates, models.BulkReject{
				Row:      row.Row,
				TicketID: row.TicketID,
				Reason:   ErrDuplicateInBatch.Error(),
			})
			continue
		}
		idx, ok := index[row.TicketID]
		if !ok {
			result.Unknown = append(result.Unknown, models.BulkReject{
				Row:      row.Row,
				TicketID: row.TicketID,
				Reason:   ErrUnknownTicket.Error(),
			})
			continue
		}

		var (
			next models.Ticket
			err  error
		)
		switch op {
		case models.TransitionSell:
			next, err = Sell(tickets[idx], row.Customer, now)
		case models.TransitionCheckIn:
			next, err = CheckIn(tickets[idx], row.VisitorSeats, policy, now)
		default:
			panic("admission: unsupported bulk transition " + string(op))
		}
		if err != nil {
			result.PreconditionFailed = append(result.PreconditionFailed, models.BulkReject{
				Row:      row.Row,
				TicketID: row.TicketID,
				Reason:   err.Error(),
			})
			continue
		}

		tickets[idx] = next
		result.Applied = append(result.Applied, row)
	}

	return result
}
