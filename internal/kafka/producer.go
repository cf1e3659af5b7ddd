package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-admission/internal/models"
)

// Producer streams committed admission events. Ticket lifecycle changes go
// to the ticket topic; batch, menu, and admin operations to the ops topic.
type Producer struct {
	ticketWriter *kafka.Writer
	opsWriter    *kafka.Writer
}

func NewProducer(brokers []string, ticketTopic, opsTopic string) *Producer {
	return &Producer{
		ticketWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   ticketTopic,
		}),
		opsWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   opsTopic,
		}),
	}
}

type envelope struct {
	Event      string `json:"event"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

func publish(w *kafka.Writer, key, event string, payload any) error {
	msg, err := json.Marshal(envelope{
		Event:      event,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return w.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(key),
		Value: msg,
	})
}

// PublishTicketEvent streams a single-ticket lifecycle change, keyed by
// ticket ID so per-ticket ordering holds.
func (p *Producer) PublishTicketEvent(event string, ticket models.Ticket) error {
	return publish(p.ticketWriter, ticket.TicketID, event, ticket)
}

func (p *Producer) PublishBulkApplied(result models.BulkResult) error {
	return publish(p.opsWriter, result.BatchID, "bulk.applied", struct {
		BatchID  string                `json:"batch_id"`
		Op       models.TransitionKind `json:"op"`
		Applied  int                   `json:"applied"`
		Rejected int                   `json:"rejected"`
	}{result.BatchID, result.Op, result.AppliedCount(), result.RejectCount()})
}

func (p *Producer) PublishMenuSynced(entries, tickets int) error {
	return publish(p.opsWriter, "menu", "menu.synced", struct {
		Entries int `json:"entries"`
		Tickets int `json:"tickets"`
	}{entries, tickets})
}

func (p *Producer) PublishInventoryReset(tickets int) error {
	return publish(p.opsWriter, "reset", "inventory.reset", struct {
		Tickets int `json:"tickets"`
	}{tickets})
}

// Close flushes and closes both writers.
func (p *Producer) Close() error {
	if err := p.ticketWriter.Close(); err != nil {
		p.opsWriter.Close()
		return err
	}
	return p.opsWriter.Close()
}
