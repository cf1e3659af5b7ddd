package admission

import (
	"fmt"
	"sort"
	"time"

	"ms-admission/internal/models"
)

// Store is the persisted snapshot of both tables. Writes replace the whole
// table contents inside one transaction; there is no row-level DML. Under
// the single-writer-per-request model two racing sessions resolve as
// last-full-write-wins, which is the documented behavior of this system.
type Store interface {
	LoadTickets() ([]models.Ticket, error)
	LoadMenu() ([]models.MenuEntry, error)
	ReplaceTickets(tickets []models.Ticket) error
	ReplaceMenu(menu []models.MenuEntry) error
	ReplaceAll(tickets []models.Ticket, menu []models.MenuEntry) error
}

// SnapshotCache bounds read staleness. GetSnapshot returns (nil, nil) on a
// miss; Invalidate must be called after every successful write.
type SnapshotCache interface {
	GetSnapshot() (*models.Snapshot, error)
	SetSnapshot(snap models.Snapshot) error
	Invalidate() error
}

// EventPublisher streams committed state changes. Implementations must not
// be consulted before the store confirms the write.
type EventPublisher interface {
	PublishTicketEvent(event string, ticket models.Ticket) error
	PublishBulkApplied(result models.BulkResult) error
	PublishMenuSynced(entries, tickets int) error
	PublishInventoryReset(tickets int) error
}

// Logger is the subset of the category logger the service needs.
type Logger interface {
	Info(category, message string)
	Warn(category, message string)
	Error(category, message string)
}

type Service struct {
	DB     Store
	Cache  SnapshotCache
	Events EventPublisher
	Policy *PartialEntryPolicy
	Log    Logger

	// Now is the transition clock; override in tests.
	Now func() time.Time
}

func NewService(db Store, cache SnapshotCache, events EventPublisher, policy *PartialEntryPolicy, log Logger) *Service {
	return &Service{
		DB:     db,
		Cache:  cache,
		Events: events,
		Policy: policy,
		Log:    log,
		Now:    time.Now,
	}
}

// Snapshot reads tickets and menu, serving from the cache inside its
// staleness window and falling back to the store.
func (s *Service) Snapshot() (models.Snapshot, error) {
	if s.Cache != nil {
		snap, err := s.Cache.GetSnapshot()
		if err != nil {
			s.Log.Warn("CACHE", fmt.Sprintf("snapshot read failed, falling back to store: %v", err))
		} else if snap != nil {
			return *snap, nil
		}
	}

	tickets, err := s.DB.LoadTickets()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load tickets: %w", err)
	}
	menu, err := s.DB.LoadMenu()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load menu: %w", err)
	}

	snap := models.Snapshot{Tickets: tickets, Menu: menu}
	if s.Cache != nil {
		if err := s.Cache.SetSnapshot(snap); err != nil {
			s.Log.Warn("CACHE", fmt.Sprintf("snapshot store failed: %v", err))
		}
	}
	return snap, nil
}

// Dashboard returns the per-group rollup and grand total.
func (s *Service) Dashboard() ([]models.GroupSummary, *models.GrandTotal, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	rows, total := Aggregate(snap.Tickets)
	return rows, total, nil
}

// Menu returns the configured menu with derived fields recomputed, in
// display order.
func (s *Service) Menu() ([]models.MenuEntry, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	entries := SortMenu(snap.Menu)
	for i := range entries {
		// Malformed rows keep their stored values; the save path already
		// rejects them, this is a read of legacy data.
		_ = entries[i].Recompute()
	}
	return entries, nil
}

// AvailableTickets lists unsold ticket IDs for a type/category pair.
func (s *Service) AvailableTickets(ticketType, category string) ([]string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, t := range snap.Tickets {
		if t.Type == ticketType && t.Category == category && !t.Sold {
			ids = append(ids, t.TicketID)
		}
	}
	return ids, nil
}

// Ticket looks up a single ticket by (normalized) ID.
func (s *Service) Ticket(id string) (models.Ticket, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return models.Ticket{}, err
	}
	id = models.NormalizeTicketID(id)
	idx, ok := models.TicketIndex(snap.Tickets)[id]
	if !ok {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", id, ErrUnknownTicket)
	}
	return snap.Tickets[idx], nil
}

// RecentSales returns sold tickets newest-first; untimestamped records sort
// last.
func (s *Service) RecentSales() ([]models.Ticket, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return filterRecent(snap.Tickets, func(t models.Ticket) bool { return t.Sold }), nil
}

// RecentVisitors returns visited tickets newest-first.
func (s *Service) RecentVisitors() ([]models.Ticket, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return filterRecent(snap.Tickets, func(t models.Ticket) bool { return t.Visited }), nil
}

func filterRecent(tickets []models.Ticket, keep func(models.Ticket) bool) []models.Ticket {
	var out []models.Ticket
	for _, t := range tickets {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp, out[j].Timestamp
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return out
}

// transition runs one lifecycle operation against the current snapshot and
// persists the full ticket set when it succeeds.
func (s *Service) transition(id, event string, apply func(models.Ticket) (models.Ticket, error)) (models.Ticket, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return models.Ticket{}, err
	}

	id = models.NormalizeTicketID(id)
	idx, ok := models.TicketIndex(snap.Tickets)[id]
	if !ok {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", id, ErrUnknownTicket)
	}

	next, err := apply(snap.Tickets[idx])
	if err != nil {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", id, err)
	}

	snap.Tickets[idx] = next
	if err := s.DB.ReplaceTickets(snap.Tickets); err != nil {
		return models.Ticket{}, fmt.Errorf("persist tickets: %w", err)
	}
	s.afterWrite()
	s.publishTicket(event, next)
	s.Log.Info("TICKET", fmt.Sprintf("[%s] ticket %s", event, id))
	return next, nil
}

// SellTicket marks one ticket sold to the named customer.
func (s *Service) SellTicket(id, customer string) (models.Ticket, error) {
	return s.transition(id, EventTicketSold, func(t models.Ticket) (models.Ticket, error) {
		return Sell(t, customer, s.Now())
	})
}

// ReverseSale undoes a sale, clearing any recorded entry with it.
func (s *Service) ReverseSale(id string) (models.Ticket, error) {
	return s.transition(id, EventSaleReversed, ReverseSell)
}

// CheckInTicket records confirmed visitors against a sold ticket.
func (s *Service) CheckInTicket(id string, seats int) (models.Ticket, error) {
	return s.transition(id, EventTicketCheckedIn, func(t models.Ticket) (models.Ticket, error) {
		return CheckIn(t, seats, s.Policy, s.Now())
	})
}

// AdjustEntry revises the visitor count on a visited partial-entry ticket.
func (s *Service) AdjustEntry(id string, seats int) (models.Ticket, error) {
	return s.transition(id, EventEntryAdjusted, func(t models.Ticket) (models.Ticket, error) {
		return AdjustCheckIn(t, seats, s.Policy, s.Now())
	})
}

// ReverseEntry removes a recorded entry, leaving the sale intact.
func (s *Service) ReverseEntry(id string) (models.Ticket, error) {
	return s.transition(id, EventEntryReversed, ReverseCheckIn)
}

// Bulk applies a sell or check-in batch. Only the valid subset is written;
// a batch with zero valid rows performs no write at all.
func (s *Service) Bulk(rows []models.BulkRow, op models.TransitionKind) (*models.BulkResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	result := ApplyBulk(rows, op, snap.Tickets, s.Policy, s.Now())
	if result.AppliedCount() == 0 {
		s.Log.Warn("BULK", fmt.Sprintf("[%s] batch %s rejected entirely (%d rows)", op, result.BatchID, result.RejectCount()))
		return result, nil
	}

	if err := s.DB.ReplaceTickets(snap.Tickets); err != nil {
		return nil, fmt.Errorf("persist bulk %s: %w", op, err)
	}
	s.afterWrite()
	if s.Events != nil {
		if err := s.Events.PublishBulkApplied(*result); err != nil {
			s.Log.Error("KAFKA", fmt.Sprintf("bulk event publish failed: %v", err))
		}
	}
	s.Log.Info("BULK", fmt.Sprintf("[%s] batch %s applied %d rows, rejected %d", op, result.BatchID, result.AppliedCount(), result.RejectCount()))
	return result, nil
}

// UpdateMenu validates every row, reconciles the ticket set against the new
// series, and persists both tables atomically. Any malformed row rejects
// the whole save with itemized errors and no mutation.
func (s *Service) UpdateMenu(entries []models.MenuEntry) (models.Snapshot, error) {
	if err := models.ValidateMenu(entries); err != nil {
		return models.Snapshot{}, err
	}

	snap, err := s.Snapshot()
	if err != nil {
		return models.Snapshot{}, err
	}

	tickets := Reconcile(entries, snap.Tickets)
	if err := s.DB.ReplaceAll(tickets, entries); err != nil {
		return models.Snapshot{}, fmt.Errorf("persist menu sync: %w", err)
	}
	s.afterWrite()
	if s.Events != nil {
		if err := s.Events.PublishMenuSynced(len(entries), len(tickets)); err != nil {
			s.Log.Error("KAFKA", fmt.Sprintf("menu event publish failed: %v", err))
		}
	}
	s.Log.Info("MENU", fmt.Sprintf("menu synced: %d entries, %d tickets", len(entries), len(tickets)))
	return models.Snapshot{Tickets: tickets, Menu: entries}, nil
}

// ResetInventory clears every ticket's mutable state while keeping the
// inventory itself.
func (s *Service) ResetInventory() (int, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return 0, err
	}

	for i := range snap.Tickets {
		snap.Tickets[i].Sold = false
		snap.Tickets[i].Visited = false
		snap.Tickets[i].Customer = ""
		snap.Tickets[i].VisitorSeats = 0
		snap.Tickets[i].Timestamp = nil
	}

	if err := s.DB.ReplaceTickets(snap.Tickets); err != nil {
		return 0, fmt.Errorf("persist reset: %w", err)
	}
	s.afterWrite()
	if s.Events != nil {
		if err := s.Events.PublishInventoryReset(len(snap.Tickets)); err != nil {
			s.Log.Error("KAFKA", fmt.Sprintf("reset event publish failed: %v", err))
		}
	}
	s.Log.Info("ADMIN", fmt.Sprintf("inventory reset: %d tickets cleared", len(snap.Tickets)))
	return len(snap.Tickets), nil
}

// RefreshCache drops the read cache so the next read hits the store.
func (s *Service) RefreshCache() error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Invalidate()
}

func (s *Service) afterWrite() {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(); err != nil {
		s.Log.Error("CACHE", fmt.Sprintf("invalidate after write failed: %v", err))
	}
}

func (s *Service) publishTicket(event string, t models.Ticket) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishTicketEvent(event, t); err != nil {
		s.Log.Error("KAFKA", fmt.Sprintf("ticket event publish failed: %v", err))
	}
}

// Event names published after committed writes.
const (
	EventTicketSold      = "ticket.sold"
	EventSaleReversed    = "ticket.sale-reversed"
	EventTicketCheckedIn = "ticket.checked-in"
	EventEntryAdjusted   = "ticket.entry-adjusted"
	EventEntryReversed   = "ticket.entry-reversed"
)
