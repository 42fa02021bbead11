package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketHistoryRepository stores audit entries.
type TicketHistoryRepository interface {
	CreateBatch(ctx context.Context, entries []domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

// CreateBatch appends entries in slice order; the serial seq column keeps that order for reads.
func (r *ticketHistoryRepository) CreateBatch(ctx context.Context, entries []domain.TicketHistory) error {
	if len(entries) == 0 {
		return nil
	}
	const query = `
        INSERT INTO ticket_history (id, ticket_id, type, update_date, updated_by_id, text)
        VALUES ($1,$2,$3,$4,$5,$6)`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(query,
			entry.ID,
			entry.TicketID,
			entry.Type,
			entry.UpdateDate,
			entry.UpdatedByID,
			entry.Text,
		)
	}
	return sendBatch(ctx, r.pool, batch)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, type, update_date, updated_by_id, text
        FROM ticket_history WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.Type,
			&history.UpdateDate,
			&history.UpdatedByID,
			&history.Text,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
