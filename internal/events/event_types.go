package events

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketsImported EventType = "tickets_imported"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject string              `json:"subject"`
	Status  domain.TicketStatus `json:"status"`
}

// TicketChange mirrors one audit entry produced by an update.
type TicketChange struct {
	Type domain.TicketChangeType `json:"type"`
	Text string                  `json:"text"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Changes []TicketChange `json:"changes"`
}

// TicketsImportedPayload payload.
type TicketsImportedPayload struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}
