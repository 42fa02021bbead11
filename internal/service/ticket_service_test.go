package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/repository/memory"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

type ticketFixture struct {
	store      *memory.Store
	svc        *service.TicketService
	dispatched []events.Event
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: aliceID, Username: "alice", Role: domain.UserRoleSupport}))
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: bobID, Username: "bob", Role: domain.UserRoleUser}))

	f := &ticketFixture{store: store}
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		f.dispatched = append(f.dispatched, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketUpdated, record)

	f.svc = service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		HistoryRepo: store.History(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Clock:       fixedClock,
	})
	return f
}

func TestCreateTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "subject", Description: "desc"})
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "subject", ticket.Subject)
	assert.Equal(t, "desc", ticket.Description)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, fixedNow, ticket.CreatedAt)
	assert.Nil(t, ticket.CreatedByID)
	assert.Nil(t, ticket.ModifiedAt)

	stored, err := f.store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Subject, stored.Subject)

	require.Len(t, f.dispatched, 1)
	assert.Equal(t, events.EventTicketCreated, f.dispatched[0].Type)
	assert.Equal(t, ticket.ID, f.dispatched[0].TicketID)
}

func TestUpdateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("persists history and ticket", func(t *testing.T) {
		f := newTicketFixture(t)
		created, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "A", Description: "d"})
		require.NoError(t, err)

		closed := domain.TicketStatusClosed
		updated, err := f.svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{
			Subject:    "B",
			AssignedTo: aliceID,
			Status:     &closed,
			Comment:    "done",
		})
		require.NoError(t, err)
		assert.Equal(t, "B", updated.Subject)
		assert.Equal(t, domain.TicketStatusClosed, updated.Status)
		require.Len(t, updated.History, 4)

		stored, err := f.store.Tickets().GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "B", stored.Subject)
		require.NotNil(t, stored.AssigneeID)
		assert.Equal(t, aliceID, *stored.AssigneeID)
		require.NotNil(t, stored.ModifiedAt)
		assert.Equal(t, fixedNow, *stored.ModifiedAt)

		history, err := f.store.History().ListByTicket(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, "A -> B", history[0].Text)
		assert.Equal(t, "null -> "+aliceID, history[1].Text)
		assert.Equal(t, "NEW -> CLOSED", history[2].Text)
		assert.Equal(t, "done", history[3].Text)
		for _, h := range history {
			assert.NotEmpty(t, h.ID)
			assert.Equal(t, created.ID, h.TicketID)
		}

		require.Len(t, f.dispatched, 2)
		payload, ok := f.dispatched[1].Payload.(events.TicketUpdatedPayload)
		require.True(t, ok)
		assert.Len(t, payload.Changes, 4)
	})

	t.Run("history accumulates across updates", func(t *testing.T) {
		f := newTicketFixture(t)
		created, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "A"})
		require.NoError(t, err)

		_, err = f.svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Comment: "first"})
		require.NoError(t, err)
		updated, err := f.svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Comment: "second"})
		require.NoError(t, err)

		require.Len(t, updated.History, 2)
		assert.Equal(t, "first", updated.History[0].Text)
		assert.Equal(t, "second", updated.History[1].Text)
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		f := newTicketFixture(t)
		_, err := f.svc.UpdateTicket(ctx, ghostID, service.TicketUpdateInput{Comment: "x"})
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	})

	t.Run("malformed ticket id is invalid argument", func(t *testing.T) {
		f := newTicketFixture(t)
		_, err := f.svc.UpdateTicket(ctx, "42", service.TicketUpdateInput{})
		assert.True(t, apperrors.HasCode(err, "INVALID_ARGUMENT"))
	})

	t.Run("unknown assignee persists nothing", func(t *testing.T) {
		f := newTicketFixture(t)
		created, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "A"})
		require.NoError(t, err)

		_, err = f.svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Subject: "B", AssignedTo: ghostID, Comment: "x"})
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))

		stored, err := f.store.Tickets().GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", stored.Subject)
		assert.Nil(t, stored.ModifiedAt)

		history, err := f.store.History().ListByTicket(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestListTickets(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "one"})
	require.NoError(t, err)
	second, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "two"})
	require.NoError(t, err)
	_, err = f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "three"})
	require.NoError(t, err)

	_, err = f.svc.UpdateTicket(ctx, first.ID, service.TicketUpdateInput{AssignedTo: aliceID})
	require.NoError(t, err)
	_, err = f.svc.UpdateTicket(ctx, second.ID, service.TicketUpdateInput{AssignedTo: bobID})
	require.NoError(t, err)

	t.Run("blank filter returns all", func(t *testing.T) {
		for _, filter := range []string{"", "  "} {
			all, err := f.svc.ListTickets(ctx, filter)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		}
	})

	t.Run("assignee filter matches exactly", func(t *testing.T) {
		mine, err := f.svc.ListTickets(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, first.ID, mine[0].ID)

		none, err := f.svc.ListTickets(ctx, ghostID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("malformed filter is invalid argument", func(t *testing.T) {
		_, err := f.svc.ListTickets(ctx, "alice")
		assert.True(t, apperrors.HasCode(err, "INVALID_ARGUMENT"))
	})
}

func TestGetTicketHistory(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "A"})
	require.NoError(t, err)

	inProgress := domain.TicketStatusInProgress
	closed := domain.TicketStatusClosed
	_, err = f.svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Status: &inProgress, Comment: "started"})
	require.NoError(t, err)
	_, err = f.svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Status: &closed, Comment: "finished"})
	require.NoError(t, err)

	t.Run("no filter returns all in order", func(t *testing.T) {
		entries, err := f.svc.GetTicketHistory(ctx, created.ID, nil)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, []string{"NEW -> IN_PROGRESS", "started", "IN_PROGRESS -> CLOSED", "finished"}, texts(entries))
	})

	t.Run("filter keeps order", func(t *testing.T) {
		status := domain.ChangeTypeStatus
		entries, err := f.svc.GetTicketHistory(ctx, created.ID, &status)
		require.NoError(t, err)
		assert.Equal(t, []string{"NEW -> IN_PROGRESS", "IN_PROGRESS -> CLOSED"}, texts(entries))
	})

	t.Run("filter with no matches is empty", func(t *testing.T) {
		subject := domain.ChangeTypeSubject
		entries, err := f.svc.GetTicketHistory(ctx, created.ID, &subject)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		_, err := f.svc.GetTicketHistory(ctx, ghostID, nil)
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	})
}

func TestUpdateTicketStoreFailure(t *testing.T) {
	store := memory.New()
	boom := errors.New("disk full")
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		HistoryRepo: failingHistory{TicketHistoryRepository: store.History(), err: boom},
		UserRepo:    store.Users(),
		Clock:       fixedClock,
	})
	ctx := context.Background()

	created, err := svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "A"})
	require.NoError(t, err)

	_, err = svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Comment: "x"})
	assert.ErrorIs(t, err, boom)

	stored, err := store.Tickets().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ModifiedAt)
}

func TestUpdateTicketWriteFailureKeepsSavedHistory(t *testing.T) {
	store := memory.New()
	boom := errors.New("connection lost")
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  failingTicketUpdate{TicketRepository: store.Tickets(), err: boom},
		HistoryRepo: store.History(),
		UserRepo:    store.Users(),
		Clock:       fixedClock,
	})
	ctx := context.Background()

	created, err := svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "A"})
	require.NoError(t, err)

	_, err = svc.UpdateTicket(ctx, created.ID, service.TicketUpdateInput{Subject: "B", Comment: "x"})
	assert.ErrorIs(t, err, boom)

	stored, err := store.Tickets().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Subject)
	assert.Nil(t, stored.ModifiedAt)

	saved, err := store.History().ListByTicket(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A -> B", "x"}, texts(saved))
}

type failingTicketUpdate struct {
	repository.TicketRepository
	err error
}

func (f failingTicketUpdate) Update(context.Context, *domain.Ticket) error {
	return f.err
}

type failingHistory struct {
	repository.TicketHistoryRepository
	err error
}

func (f failingHistory) CreateBatch(context.Context, []domain.TicketHistory) error {
	return f.err
}

func texts(entries []domain.TicketHistory) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}
