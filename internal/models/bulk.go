package models

// TransitionKind names the lifecycle operation a bulk batch applies.
type TransitionKind string

const (
	TransitionSell    TransitionKind = "sell"
	TransitionCheckIn TransitionKind = "checkin"
)

// BulkRow is one row of an uploaded batch after tabular parsing. Customer is
// set for sell batches, VisitorSeats for check-in batches.
type BulkRow struct {
	Row          int    `json:"row"`
	TicketID     string `json:"ticket_id"`
	Customer     string `json:"customer,omitempty"`
	VisitorSeats int    `json:"visitor_seats,omitempty"`
}

// BulkReject is a rejected row together with the reason it was excluded.
type BulkReject struct {
	Row      int    `json:"row"`
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// BulkResult partitions a batch into its outcome buckets. Only Applied rows
// were committed; every other bucket is reported back for operator follow-up.
type BulkResult struct {
	BatchID            string         `json:"batch_id"`
	Op                 TransitionKind `json:"op"`
	Applied            []BulkRow      `json:"applied"`
	Duplicates         []BulkReject   `json:"duplicates"`
	Unknown            []BulkReject   `json:"unknown"`
	PreconditionFailed []BulkReject   `json:"precondition_failed"`
}

// Rejects flattens every rejection bucket in classification order.
func (r *BulkResult) Rejects() []BulkReject {
	out := make([]BulkReject, 0, len(r.Duplicates)+len(r.Unknown)+len(r.PreconditionFailed))
	out = append(out, r.Duplicates...)
	out = append(out, r.Unknown...)
	out = append(out, r.PreconditionFailed...)
	return out
}

// AppliedCount reports how many rows were committed.
func (r *BulkResult) AppliedCount() int { return len(r.Applied) }

// RejectCount reports how many rows were excluded across all buckets.
func (r *BulkResult) RejectCount() int {
	return len(r.Duplicates) + len(r.Unknown) + len(r.PreconditionFailed)
}
