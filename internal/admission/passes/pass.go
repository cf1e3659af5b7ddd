package passes

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-admission/internal/models"
)

var ErrTicketNotSold = errors.New("pass requires a sold ticket")

// Payload is what a gate scanner reads off the pass.
type Payload struct {
	TicketID string     `json:"ticket_id"`
	Type     string     `json:"type"`
	Category string     `json:"category"`
	Admit    int        `json:"admit"`
	Customer string     `json:"customer"`
	SoldAt   *time.Time `json:"sold_at,omitempty"`
}

// Generate renders a PNG admission pass for a sold ticket.
func Generate(ticket models.Ticket) ([]byte, error) {
	if !ticket.Sold {
		return nil, ErrTicketNotSold
	}

	payload, err := json.Marshal(Payload{
		TicketID: ticket.TicketID,
		Type:     ticket.Type,
		Category: ticket.Category,
		Admit:    ticket.Admit,
		Customer: ticket.Customer,
		SoldAt:   ticket.Timestamp,
	})
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(string(payload), qrcode.Medium, 256)
}
