package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

func TestTicketRepository(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("get returns a copy", func(t *testing.T) {
		repo := memory.New().Tickets()
		ticket := &domain.Ticket{ID: "t1", Subject: "s", Status: domain.TicketStatusNew, CreatedAt: created}
		require.NoError(t, repo.Create(ctx, ticket))

		got, err := repo.GetByID(ctx, "t1")
		require.NoError(t, err)
		got.Subject = "mutated"

		again, err := repo.GetByID(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "s", again.Subject)
	})

	t.Run("missing ticket is not found", func(t *testing.T) {
		repo := memory.New().Tickets()
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, &domain.Ticket{ID: "missing"}), repository.ErrNotFound)
	})

	t.Run("list keeps insertion order and filters by assignee", func(t *testing.T) {
		repo := memory.New().Tickets()
		require.NoError(t, repo.CreateBatch(ctx, []domain.Ticket{
			{ID: "a", AssigneeID: strPtr("u1"), CreatedAt: created},
			{ID: "b", CreatedAt: created},
			{ID: "c", AssigneeID: strPtr("u1"), CreatedAt: created},
			{ID: "d", AssigneeID: strPtr("u2"), CreatedAt: created},
		}))

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(all))

		mine, err := repo.ListByAssignee(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids(mine))

		none, err := repo.ListByAssignee(ctx, "u3")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update keeps creation fields", func(t *testing.T) {
		repo := memory.New().Tickets()
		require.NoError(t, repo.Create(ctx, &domain.Ticket{ID: "t1", Subject: "old", CreatedAt: created}))

		modified := created.Add(time.Hour)
		require.NoError(t, repo.Update(ctx, &domain.Ticket{ID: "t1", Subject: "new", ModifiedAt: &modified}))

		got, err := repo.GetByID(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Subject)
		assert.Equal(t, created, got.CreatedAt)
		require.NotNil(t, got.ModifiedAt)
		assert.Equal(t, modified, *got.ModifiedAt)
	})
}

func TestTicketHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().History()

	require.NoError(t, repo.CreateBatch(ctx, []domain.TicketHistory{
		{ID: "h1", TicketID: "t1", Type: domain.ChangeTypeStatus, Text: "NEW -> CLOSED"},
		{ID: "h2", TicketID: "t2", Type: domain.ChangeTypeComment, Text: "other"},
	}))
	require.NoError(t, repo.CreateBatch(ctx, []domain.TicketHistory{
		{ID: "h3", TicketID: "t1", Type: domain.ChangeTypeComment, Text: "done"},
	}))

	entries, err := repo.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h1", entries[0].ID)
	assert.Equal(t, "h3", entries[1].ID)

	empty, err := repo.ListByTicket(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Users()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Username: "alice", Role: domain.UserRoleSupport}))

	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = repo.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Create(ctx, &domain.User{ID: "u2", Username: "alice", Role: domain.UserRoleUser})
	assert.ErrorIs(t, err, repository.ErrConflict)
	err = repo.Create(ctx, &domain.User{ID: "u1", Username: "carol", Role: domain.UserRoleUser})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = repo.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound, "rejected user must not be stored")
	_, err = repo.GetByUsername(ctx, "carol")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}
