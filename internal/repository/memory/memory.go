// Package memory holds map-backed repositories used when no database is configured and in tests.
package memory

import (
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// Store bundles the in-memory repositories.
type Store struct {
	tickets *ticketRepository
	history *ticketHistoryRepository
	users   *userRepository
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tickets: newTicketRepository(),
		history: newTicketHistoryRepository(),
		users:   newUserRepository(),
	}
}

func (s *Store) Tickets() repository.TicketRepository {
	return s.tickets
}

func (s *Store) History() repository.TicketHistoryRepository {
	return s.history
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	copied := *t
	copied.CreatedByID = copyString(t.CreatedByID)
	copied.ModifiedByID = copyString(t.ModifiedByID)
	copied.AssigneeID = copyString(t.AssigneeID)
	if t.ModifiedAt != nil {
		modified := *t.ModifiedAt
		copied.ModifiedAt = &modified
	}
	copied.History = nil
	return &copied
}
