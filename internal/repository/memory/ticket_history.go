package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

type ticketHistoryRepository struct {
	mu       sync.RWMutex
	byTicket map[string][]domain.TicketHistory
}

func newTicketHistoryRepository() *ticketHistoryRepository {
	return &ticketHistoryRepository{byTicket: make(map[string][]domain.TicketHistory)}
}

func (r *ticketHistoryRepository) CreateBatch(ctx context.Context, entries []domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		entry.UpdatedByID = copyString(entry.UpdatedByID)
		r.byTicket[entry.TicketID] = append(r.byTicket[entry.TicketID], entry)
	}
	return nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byTicket[ticketID]
	result := make([]domain.TicketHistory, 0, len(entries))
	for _, entry := range entries {
		entry.UpdatedByID = copyString(entry.UpdatedByID)
		result = append(result, entry)
	}
	return result, nil
}
