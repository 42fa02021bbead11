package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	order   []string
}

func newTicketRepository() *ticketRepository {
	return &ticketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(ticket)
	return nil
}

func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range tickets {
		r.insert(&tickets[i])
	}
	return nil
}

func (r *ticketRepository) insert(ticket *domain.Ticket) {
	if _, exists := r.tickets[ticket.ID]; !exists {
		r.order = append(r.order, ticket.ID)
	}
	r.tickets[ticket.ID] = copyTicket(ticket)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := copyTicket(ticket)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedByID = existing.CreatedByID
	r.tickets[ticket.ID] = updated
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTicket(ticket), nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.filter(func(*domain.Ticket) bool { return true }), nil
}

func (r *ticketRepository) ListByAssignee(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.filter(func(t *domain.Ticket) bool {
		return t.AssigneeID != nil && *t.AssigneeID == userID
	}), nil
}

func (r *ticketRepository) filter(keep func(*domain.Ticket) bool) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Ticket{}
	for _, id := range r.order {
		ticket := r.tickets[id]
		if keep(ticket) {
			result = append(result, *copyTicket(ticket))
		}
	}
	return result
}
