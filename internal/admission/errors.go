package admission

import "errors"

// Lifecycle precondition violations. A rejected transition leaves the ticket
// record unchanged.
var (
	ErrAlreadySold  = errors.New("ticket already sold")
	ErrNotSold      = errors.New("ticket not sold")
	ErrNotEligible  = errors.New("ticket not eligible for entry")
	ErrNotVisited   = errors.New("ticket has no entry to reverse")
	ErrOutOfRange   = errors.New("visitor seats out of range")
	ErrNotPermitted = errors.New("partial entry not permitted for this category")
)

// Batch and lookup failures.
var (
	ErrUnknownTicket    = errors.New("unknown ticket")
	ErrDuplicateInBatch = errors.New("duplicate ticket in batch")
)
