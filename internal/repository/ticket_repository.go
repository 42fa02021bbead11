package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByAssignee(ctx context.Context, userID string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const insertTicketQuery = `
        INSERT INTO tickets (id, subject, description, created_by_id, modified_by_id, assigned_to_id, status, created_at, modified_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

const selectTicketColumns = `
        SELECT id, subject, description, created_by_id, modified_by_id, assigned_to_id, status, created_at, modified_at
        FROM tickets`

func ticketArgs(ticket *domain.Ticket) []any {
	return []any{
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		ticket.CreatedByID,
		ticket.ModifiedByID,
		ticket.AssigneeID,
		ticket.Status,
		ticket.CreatedAt,
		ticket.ModifiedAt,
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	_, err := r.pool.Exec(ctx, insertTicketQuery, ticketArgs(ticket)...)
	return err
}

// CreateBatch inserts every ticket inside one transaction; any failure discards the whole batch.
func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range tickets {
		batch.Queue(insertTicketQuery, ticketArgs(&tickets[i])...)
	}
	return sendBatch(ctx, r.pool, batch)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, modified_by_id=$3, assigned_to_id=$4, status=$5, modified_at=$6
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.ModifiedByID,
		ticket.AssigneeID,
		ticket.Status,
		ticket.ModifiedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	row := r.pool.QueryRow(ctx, selectTicketColumns+` WHERE id=$1`, id)
	if err := scanTicket(row, &ticket); err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.query(ctx, selectTicketColumns+` ORDER BY created_at ASC, id ASC`)
}

func (r *ticketRepository) ListByAssignee(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.query(ctx, selectTicketColumns+` WHERE assigned_to_id=$1 ORDER BY created_at ASC, id ASC`, userID)
}

func (r *ticketRepository) query(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.CreatedByID,
		&ticket.ModifiedByID,
		&ticket.AssigneeID,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.ModifiedAt,
	)
}

func sendBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
