package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

var ticketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// ParseTicketStatus matches name exactly against the known statuses.
func ParseTicketStatus(name string) (TicketStatus, error) {
	for _, status := range ticketStatuses {
		if string(status) == name {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown ticket status %q", name)
}

// String returns the display name used in audit text.
func (s TicketStatus) String() string {
	return string(s)
}

// Ticket is the aggregate for tracked work items.
type Ticket struct {
	ID           string
	Subject      string
	Description  string
	CreatedByID  *string
	ModifiedByID *string
	AssigneeID   *string
	Status       TicketStatus
	CreatedAt    time.Time
	ModifiedAt   *time.Time
	History      []TicketHistory
}
