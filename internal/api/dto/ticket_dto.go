package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// UpdateTicketRequest payload. Omitted or blank fields are left unchanged.
type UpdateTicketRequest struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	AssignedTo  string  `json:"assignedTo"`
	Status      *string `json:"status"`
	Comment     string  `json:"comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string              `json:"id"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	CreatedBy   *string             `json:"createdBy"`
	ModifiedBy  *string             `json:"modifiedBy"`
	AssignedTo  *string             `json:"assignedTo"`
	CreatedAt   time.Time           `json:"createdAt"`
	ModifiedAt  *time.Time          `json:"modifiedAt"`
	Status      domain.TicketStatus `json:"status"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	Type       domain.TicketChangeType `json:"type"`
	UpdateDate time.Time               `json:"updateDate"`
	UpdatedBy  *string                 `json:"updatedBy"`
	Text       string                  `json:"text"`
}
