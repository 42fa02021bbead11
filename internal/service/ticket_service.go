package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	differ     *TicketDiffer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		differ:     NewTicketDiffer(deps.UserRepo, clock),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket stores a new ticket with status NEW.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	s.logger.Info("creating ticket", zap.String("subject", input.Subject))

	ticket := &domain.Ticket{
		ID:          newID(),
		Subject:     input.Subject,
		Description: input.Description,
		Status:      domain.TicketStatusNew,
		CreatedAt:   s.now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Debug("ticket created", zap.String("ticket_id", ticket.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Subject: ticket.Subject,
			Status:  ticket.Status,
		},
	})
	return ticket, nil
}

// UpdateTicket applies the requested changes, persists the resulting audit
// entries and then the ticket itself.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	s.logger.Info("updating ticket", zap.String("ticket_id", id))

	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.History, err = s.history.ListByTicket(ctx, ticket.ID); err != nil {
		return nil, err
	}

	entries, err := s.differ.Apply(ctx, ticket, input)
	if err != nil {
		if apperrors.HasCode(err, "NOT_FOUND") {
			s.logger.Warn("assignee not found", zap.String("ticket_id", id), zap.String("assigned_to", input.AssignedTo))
		}
		return nil, err
	}
	for i := range entries {
		entries[i].ID = newID()
	}
	s.logger.Debug("ticket changes", zap.String("ticket_id", ticket.ID), zap.Int("entries", len(entries)))

	// History and ticket are separate writes: a failed ticket write leaves the
	// saved entries in place, and the ticket keeps its previous fields.
	if err := s.history.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}
	ticket.History = append(ticket.History, entries...)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}

	changes := make([]events.TicketChange, 0, len(entries))
	for _, entry := range entries {
		changes = append(changes, events.TicketChange{Type: entry.Type, Text: entry.Text})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload:  events.TicketUpdatedPayload{Changes: changes},
	})
	return ticket, nil
}

// ListTickets returns every ticket, or only those assigned to assigneeID when it is not blank.
func (s *TicketService) ListTickets(ctx context.Context, assigneeID string) ([]domain.Ticket, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return s.tickets.List(ctx)
	}
	id, err := parseID("assignedToUserId", assigneeID)
	if err != nil {
		return nil, err
	}
	return s.tickets.ListByAssignee(ctx, id)
}

// GetTicketHistory returns the ticket's audit entries in chronological order,
// keeping only entries of changeType when it is set.
func (s *TicketService) GetTicketHistory(ctx context.Context, id string, changeType *domain.TicketChangeType) ([]domain.TicketHistory, error) {
	fields := []zap.Field{zap.String("ticket_id", id)}
	if changeType != nil {
		fields = append(fields, zap.String("type", string(*changeType)))
	}
	s.logger.Info("retrieving ticket history", fields...)

	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if changeType == nil {
		return entries, nil
	}

	filtered := make([]domain.TicketHistory, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == *changeType {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

func (s *TicketService) loadTicket(ctx context.Context, rawID string) (*domain.Ticket, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("ticket not found", zap.String("ticket_id", rawID))
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": rawID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, s.now, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
