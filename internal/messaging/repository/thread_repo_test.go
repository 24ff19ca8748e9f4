package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suncrest/suncrest-backend/internal/messaging/domain"
)

func setupThreadRepo(t *testing.T) *ThreadRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewThreadRepository(client)
}

func TestThreadRepository_Create(t *testing.T) {
	repo := setupThreadRepo(t)
	ctx := context.Background()

	thread := &domain.Thread{TenantID: "tenant-1", Phone: "+351911222333", LeadID: "lead-1"}
	require.NoError(t, repo.Create(ctx, thread))
	assert.NotEmpty(t, thread.ThreadID)
	assert.False(t, thread.CreatedAt.IsZero())

	t.Run("retrievable by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, thread.ThreadID)
		require.NoError(t, err)
		assert.Equal(t, "tenant-1", got.TenantID)
		assert.Equal(t, "lead-1", got.LeadID)
	})

	t.Run("retrievable by phone within tenant", func(t *testing.T) {
		got, err := repo.GetByPhone(ctx, "tenant-1", "+351911222333")
		require.NoError(t, err)
		assert.Equal(t, thread.ThreadID, got.ThreadID)
	})

	t.Run("phone index is tenant scoped", func(t *testing.T) {
		_, err := repo.GetByPhone(ctx, "tenant-2", "+351911222333")
		assert.ErrorIs(t, err, domain.ErrThreadNotFound)
	})
}

func TestThreadRepository_GetByID_NotFound(t *testing.T) {
	repo := setupThreadRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrThreadNotFound)
}

func TestThreadRepository_ListByTenant(t *testing.T) {
	repo := setupThreadRepo(t)
	ctx := context.Background()

	for _, phone := range []string{"+351911111111", "+351922222222"} {
		require.NoError(t, repo.Create(ctx, &domain.Thread{TenantID: "tenant-1", Phone: phone}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Thread{TenantID: "tenant-2", Phone: "+351933333333"}))

	threads, err := repo.ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Len(t, threads, 2)

	threads, err = repo.ListByTenant(ctx, "tenant-2")
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}

func TestThreadRepository_AppendMessage(t *testing.T) {
	repo := setupThreadRepo(t)
	ctx := context.Background()

	thread := &domain.Thread{TenantID: "tenant-1", Phone: "+351911222333"}
	require.NoError(t, repo.Create(ctx, thread))

	out := &domain.Message{
		ThreadID:  thread.ThreadID,
		Direction: domain.DirectionOutbound,
		Body:      "Hello, your proposal is ready.",
		Status:    "sent",
	}
	require.NoError(t, repo.AppendMessage(ctx, out))
	assert.NotEmpty(t, out.ID)

	in := &domain.Message{
		ThreadID:  thread.ThreadID,
		Direction: domain.DirectionInbound,
		Body:      "Great, thanks!",
		Status:    "received",
	}
	require.NoError(t, repo.AppendMessage(ctx, in))

	t.Run("messages come back oldest first", func(t *testing.T) {
		msgs, err := repo.Messages(ctx, thread.ThreadID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, domain.DirectionOutbound, msgs[0].Direction)
		assert.Equal(t, domain.DirectionInbound, msgs[1].Direction)
	})

	t.Run("thread last activity is refreshed", func(t *testing.T) {
		got, err := repo.GetByID(ctx, thread.ThreadID)
		require.NoError(t, err)
		assert.False(t, got.LastMessageAt.IsZero())
	})

	t.Run("appending to a missing thread fails", func(t *testing.T) {
		err := repo.AppendMessage(ctx, &domain.Message{ThreadID: "missing", Body: "x"})
		assert.ErrorIs(t, err, domain.ErrThreadNotFound)
	})
}
