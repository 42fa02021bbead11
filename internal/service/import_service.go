package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const importFieldSeparator = ","

// ImportService bulk-creates tickets from "subject,description,STATUS" lines.
type ImportService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ImportDependencies bundles collaborators for the import service.
type ImportDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewImportService constructs the service.
func NewImportService(deps ImportDependencies) *ImportService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// ImportTickets parses every line of r and saves the tickets in one batch.
// The first malformed line aborts the import before anything is written.
func (s *ImportService) ImportTickets(ctx context.Context, source string, r io.Reader) (int, error) {
	s.logger.Info("importing tickets", zap.String("source", source))

	tickets, err := ParseTicketLines(r, s.now())
	if err != nil {
		s.logger.Warn("ticket import rejected", zap.String("source", source), zap.Error(err))
		return 0, err
	}
	if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
		s.logger.Error("ticket import failed", zap.String("source", source), zap.Error(err))
		return 0, apperrors.NewIOFailure("failed to save imported tickets", err)
	}

	s.logger.Info("imported tickets", zap.String("source", source), zap.Int("count", len(tickets)))
	publish(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:    events.EventTicketsImported,
		Payload: events.TicketsImportedPayload{Source: source, Count: len(tickets)},
	})
	return len(tickets), nil
}

// ParseTicketLines turns each non-empty line into an unassigned ticket stamped with createdAt.
// Fields past the third are ignored; quoting and headers are not understood.
func ParseTicketLines(r io.Reader, createdAt time.Time) ([]domain.Ticket, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tickets := []domain.Ticket{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		ticket, err := parseTicketLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		ticket.CreatedAt = createdAt
		tickets = append(tickets, ticket)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewIOFailure("failed to read import file", err)
	}
	return tickets, nil
}

func parseTicketLine(line string, lineNo int) (domain.Ticket, error) {
	fields := strings.Split(line, importFieldSeparator)
	if len(fields) < 3 {
		return domain.Ticket{}, apperrors.NewInvalidArgument(
			fmt.Sprintf("line %d: expected subject,description,status", lineNo),
			map[string]any{"line": lineNo},
			nil,
		)
	}
	status, err := domain.ParseTicketStatus(fields[2])
	if err != nil {
		return domain.Ticket{}, apperrors.NewInvalidArgument(
			fmt.Sprintf("line %d: unknown status", lineNo),
			map[string]any{"line": lineNo, "status": fields[2]},
			err,
		)
	}
	return domain.Ticket{
		ID:          newID(),
		Subject:     fields[0],
		Description: fields[1],
		Status:      status,
	}, nil
}
