package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-admission/internal/admission"
	"ms-admission/internal/admission/passes"
	"ms-admission/internal/auth"
	"ms-admission/internal/models"
	"ms-admission/internal/utils"
)

// rejectsRetained bounds how many recent bulk results are kept for the
// downloadable rejects report.
const rejectsRetained = 32

type Handler struct {
	Service     *admission.Service
	Credentials auth.Credentials

	mu      sync.Mutex
	batches map[string]*models.BulkResult
	order   []string
}

func NewHandler(service *admission.Service, creds auth.Credentials) *Handler {
	return &Handler{
		Service:     service,
		Credentials: creds,
		batches:     make(map[string]*models.BulkResult),
	}
}

// Routes mounts every endpoint of the admission service.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)
	r.Get("/dashboard", h.Dashboard)

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Get("/available", h.AvailableTickets)
		r.Get("/{ticketID}", h.GetTicket)
		r.Get("/{ticketID}/pass", h.TicketPass)
		r.Post("/{ticketID}/sell", h.SellTicket)
		r.Post("/{ticketID}/reverse-sell", h.ReverseSale)
		r.Post("/{ticketID}/checkin", h.CheckIn)
		r.Post("/{ticketID}/adjust-checkin", h.AdjustCheckIn)
		r.Post("/{ticketID}/reverse-checkin", h.ReverseCheckIn)
	})

	r.Route("/bulk", func(r chi.Router) {
		r.Post("/sell", h.BulkSell)
		r.Post("/checkin", h.BulkCheckIn)
		r.Get("/{batchID}/rejects.csv", h.BulkRejects)
	})

	r.Get("/menu", h.GetMenu)
	r.Post("/menu", h.UpdateMenu)

	r.Post("/admin/reset", h.ResetInventory)
	r.Post("/admin/refresh", h.RefreshCache)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var menuErr *models.MenuValidationError
	switch {
	case errors.Is(err, admission.ErrUnknownTicket):
		return http.StatusNotFound
	case errors.Is(err, admission.ErrAlreadySold),
		errors.Is(err, admission.ErrNotSold),
		errors.Is(err, admission.ErrNotEligible),
		errors.Is(err, admission.ErrNotVisited):
		return http.StatusConflict
	case errors.Is(err, admission.ErrOutOfRange),
		errors.Is(err, admission.ErrNotPermitted),
		errors.As(err, &menuErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrIncorrectCredential):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrNotConfigured):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	writeJSON(w, statusFor(err), utils.ErrorResponse(message, err.Error()))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, total, err := h.Service.Dashboard()
	if err != nil {
		h.fail(w, "dashboard failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("dashboard", struct {
		Groups []models.GroupSummary `json:"groups"`
		Total  *models.GrandTotal    `json:"total,omitempty"`
	}{rows, total}))
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	var (
		tickets []models.Ticket
		err     error
	)
	switch {
	case r.URL.Query().Get("sold") == "true":
		tickets, err = h.Service.RecentSales()
	case r.URL.Query().Get("visited") == "true":
		tickets, err = h.Service.RecentVisitors()
	default:
		var snap models.Snapshot
		snap, err = h.Service.Snapshot()
		tickets = snap.Tickets
	}
	if err != nil {
		h.fail(w, "list tickets failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("tickets", tickets))
}

func (h *Handler) AvailableTickets(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Service.AvailableTickets(r.URL.Query().Get("type"), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, "available tickets failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("available tickets", ids))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.Ticket(chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, "ticket lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket", ticket))
}

func (h *Handler) TicketPass(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.Ticket(chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, "ticket lookup failed", err)
		return
	}
	png, err := passes.Generate(ticket)
	if err != nil {
		if errors.Is(err, passes.ErrTicketNotSold) {
			writeJSON(w, http.StatusConflict, utils.ErrorResponse("pass unavailable", err.Error()))
			return
		}
		h.fail(w, "pass generation failed", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) SellTicket(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Customer string `json:"customer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	ticket, err := h.Service.SellTicket(chi.URLParam(r, "ticketID"), body.Customer)
	if err != nil {
		h.fail(w, "sale failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("ticket %s sold", ticket.TicketID), ticket))
}

func (h *Handler) ReverseSale(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.ReverseSale(chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, "reverse sale failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("sale reversed for ticket %s", ticket.TicketID), ticket))
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VisitorSeats int `json:"visitor_seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	ticket, err := h.Service.CheckInTicket(chi.URLParam(r, "ticketID"), body.VisitorSeats)
	if err != nil {
		h.fail(w, "check-in failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("entry confirmed for ticket %s", ticket.TicketID), ticket))
}

func (h *Handler) AdjustCheckIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VisitorSeats int `json:"visitor_seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	ticket, err := h.Service.AdjustEntry(chi.URLParam(r, "ticketID"), body.VisitorSeats)
	if err != nil {
		h.fail(w, "entry adjustment failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("entry updated for ticket %s", ticket.TicketID), ticket))
}

func (h *Handler) ReverseCheckIn(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.ReverseEntry(chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, "reverse entry failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("entry reversed for ticket %s", ticket.TicketID), ticket))
}

func (h *Handler) BulkSell(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, models.TransitionSell)
}

func (h *Handler) BulkCheckIn(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, models.TransitionCheckIn)
}

func (h *Handler) bulk(w http.ResponseWriter, r *http.Request, op models.TransitionKind) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("file upload required", err.Error()))
		return
	}
	defer file.Close()

	rows, err := ParseBulkCSV(file, op)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("file read error", err.Error()))
		return
	}

	result, err := h.Service.Bulk(rows, op)
	if err != nil {
		h.fail(w, "bulk operation failed", err)
		return
	}
	h.retainBatch(result)

	status := http.StatusOK
	if result.AppliedCount() == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, utils.SuccessResponse(
		fmt.Sprintf("%d tickets processed, %d rejected", result.AppliedCount(), result.RejectCount()),
		result,
	))
}

func (h *Handler) retainBatch(result *models.BulkResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches[result.BatchID] = result
	h.order = append(h.order, result.BatchID)
	for len(h.order) > rejectsRetained {
		delete(h.batches, h.order[0])
		h.order = h.order[1:]
	}
}

func (h *Handler) BulkRejects(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	h.mu.Lock()
	result, ok := h.batches[batchID]
	h.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("batch not found", fmt.Sprintf("no retained batch %s", batchID)))
		return
	}

	var buf bytes.Buffer
	if err := WriteRejectsCSV(&buf, result); err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("report generation failed", err.Error()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-rejects.csv", batchID))
	w.Write(buf.Bytes())
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Menu()
	if err != nil {
		h.fail(w, "menu load failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("menu", entries))
}

func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string             `json:"password"`
		Entries  []models.MenuEntry `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	if err := h.Credentials.Authorize(auth.ActionMenuUpdate, body.Password); err != nil {
		h.fail(w, "menu update blocked", err)
		return
	}

	snap, err := h.Service.UpdateMenu(body.Entries)
	if err != nil {
		var menuErr *models.MenuValidationError
		if errors.As(err, &menuErr) {
			writeJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{
				Success:   false,
				Message:   "cannot save menu",
				Error:     menuErr.Error(),
				Data:      menuErr.Rows,
				Timestamp: time.Now(),
			})
			return
		}
		h.fail(w, "menu update failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(
		fmt.Sprintf("menu and inventory synchronized: %d tickets", len(snap.Tickets)),
		snap.Menu,
	))
}

func (h *Handler) ResetInventory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	if err := h.Credentials.Authorize(auth.ActionAdminReset, body.Password); err != nil {
		h.fail(w, "reset blocked", err)
		return
	}

	count, err := h.Service.ResetInventory()
	if err != nil {
		h.fail(w, "reset failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("inventory reset: %d tickets cleared", count), nil))
}

func (h *Handler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RefreshCache(); err != nil {
		h.fail(w, "refresh failed", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("cache refreshed", nil))
}
