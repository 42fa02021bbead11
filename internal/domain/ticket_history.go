package domain

import (
	"fmt"
	"time"
)

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeSubject     TicketChangeType = "SUBJECT"
	ChangeTypeDescription TicketChangeType = "DESCRIPTION"
	ChangeTypeAssignedTo  TicketChangeType = "ASSIGNED_TO"
	ChangeTypeStatus      TicketChangeType = "STATUS"
	ChangeTypeComment     TicketChangeType = "COMMENT"
)

var changeTypes = []TicketChangeType{
	ChangeTypeSubject,
	ChangeTypeDescription,
	ChangeTypeAssignedTo,
	ChangeTypeStatus,
	ChangeTypeComment,
}

// ParseChangeType matches name exactly against the known change categories.
func ParseChangeType(name string) (TicketChangeType, error) {
	for _, ct := range changeTypes {
		if string(ct) == name {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unknown change type %q", name)
}

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID          string
	TicketID    string
	Type        TicketChangeType
	UpdateDate  time.Time
	UpdatedByID *string
	Text        string
}
