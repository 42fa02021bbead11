package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const unassigned = "null"

// UserFinder resolves user references by id.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// TicketUpdateInput carries the requested changes. Blank strings and a nil Status mean "leave as is".
type TicketUpdateInput struct {
	Subject     string
	Description string
	AssignedTo  string
	Status      *domain.TicketStatus
	Comment     string
}

// TicketDiffer compares a ticket against requested changes, applies them and
// describes each applied change as an audit entry.
type TicketDiffer struct {
	users UserFinder
	now   func() time.Time
}

// NewTicketDiffer builds a differ; a nil clock defaults to time.Now.
func NewTicketDiffer(users UserFinder, now func() time.Time) *TicketDiffer {
	if now == nil {
		now = time.Now
	}
	return &TicketDiffer{users: users, now: now}
}

// Apply mutates ticket in place and returns the audit entries in field order:
// subject, description, assignee, status, comment. Entries carry the ticket id
// but no entry id; persisting them is left to the caller.
//
// An unresolvable assignee aborts before status and comment are looked at.
// Subject and description changes made up to that point stay on ticket.
func (d *TicketDiffer) Apply(ctx context.Context, ticket *domain.Ticket, input TicketUpdateInput) ([]domain.TicketHistory, error) {
	updatedAt := d.now()
	entries := []domain.TicketHistory{}

	if !isBlank(input.Subject) && input.Subject != ticket.Subject {
		entries = append(entries, changeEntry(domain.ChangeTypeSubject, ticket.Subject, input.Subject))
		ticket.Subject = input.Subject
	}

	if !isBlank(input.Description) && input.Description != ticket.Description {
		entries = append(entries, changeEntry(domain.ChangeTypeDescription, ticket.Description, input.Description))
		ticket.Description = input.Description
	}

	if !isBlank(input.AssignedTo) {
		user, err := d.resolveUser(ctx, input.AssignedTo)
		if err != nil {
			return nil, err
		}
		current := unassigned
		if ticket.AssigneeID != nil {
			current = *ticket.AssigneeID
		}
		if ticket.AssigneeID == nil || *ticket.AssigneeID != user.ID {
			entries = append(entries, changeEntry(domain.ChangeTypeAssignedTo, current, user.ID))
			assignee := user.ID
			ticket.AssigneeID = &assignee
		}
	}

	if input.Status != nil && *input.Status != ticket.Status {
		entries = append(entries, changeEntry(domain.ChangeTypeStatus, ticket.Status.String(), input.Status.String()))
		ticket.Status = *input.Status
	}

	if !isBlank(input.Comment) {
		entries = append(entries, domain.TicketHistory{Type: domain.ChangeTypeComment, Text: input.Comment})
	}

	for i := range entries {
		entries[i].TicketID = ticket.ID
		entries[i].UpdateDate = updatedAt
	}
	ticket.ModifiedAt = &updatedAt
	return entries, nil
}

func (d *TicketDiffer) resolveUser(ctx context.Context, rawID string) (*domain.User, error) {
	id, err := parseID("assignedTo", rawID)
	if err != nil {
		return nil, err
	}
	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": rawID})
		}
		return nil, err
	}
	return user, nil
}

func changeEntry(changeType domain.TicketChangeType, oldValue, newValue string) domain.TicketHistory {
	return domain.TicketHistory{Type: changeType, Text: oldValue + " -> " + newValue}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
