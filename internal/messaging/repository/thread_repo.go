package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/suncrest/suncrest-backend/internal/messaging/domain"
)

const (
	threadKeyPrefix    = "msg:thread:"  // Thread data: msg:thread:{thread_id}
	tenantSetPrefix    = "msg:tenant:"  // Set of thread IDs for a tenant: msg:tenant:{tenant_id}
	phoneIndexPrefix   = "msg:phone:"   // Phone -> thread ID index: msg:phone:{tenant_id}:{phone}
	messagesKeySuffix  = ":messages"    // List of messages per thread
	threadTTL          = 30 * 24 * time.Hour
	maxMessagesPerLoad = 200
)

// ThreadRepository handles Redis operations for conversation threads.
type ThreadRepository struct {
	client *redis.Client
}

func NewThreadRepository(client *redis.Client) *ThreadRepository {
	return &ThreadRepository{client: client}
}

// Create creates a new thread and its tenant/phone indexes atomically.
func (r *ThreadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	if thread.ThreadID == "" {
		thread.ThreadID = uuid.New().String()
	}
	now := time.Now()
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = now
	}
	thread.UpdatedAt = now

	data, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("failed to marshal thread: %w", err)
	}

	threadKey := r.threadKey(thread.ThreadID)
	tenantKey := r.tenantSetKey(thread.TenantID)
	phoneKey := r.phoneIndexKey(thread.TenantID, thread.Phone)

	pipe := r.client.Pipeline()
	pipe.Set(ctx, threadKey, data, threadTTL)
	pipe.SAdd(ctx, tenantKey, thread.ThreadID)
	pipe.Expire(ctx, tenantKey, threadTTL)
	pipe.Set(ctx, phoneKey, thread.ThreadID, threadTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	return nil
}

// GetByID retrieves a thread by its ID.
func (r *ThreadRepository) GetByID(ctx context.Context, threadID string) (*domain.Thread, error) {
	data, err := r.client.Get(ctx, r.threadKey(threadID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	var thread domain.Thread
	if err := json.Unmarshal([]byte(data), &thread); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thread: %w", err)
	}
	return &thread, nil
}

// GetByPhone resolves a tenant's thread for a phone number.
func (r *ThreadRepository) GetByPhone(ctx context.Context, tenantID, phone string) (*domain.Thread, error) {
	threadID, err := r.client.Get(ctx, r.phoneIndexKey(tenantID, phone)).Result()
	if err == redis.Nil {
		return nil, domain.ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve thread by phone: %w", err)
	}
	return r.GetByID(ctx, threadID)
}

// ListByTenant returns all of a tenant's threads.
func (r *ThreadRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Thread, error) {
	ids, err := r.client.SMembers(ctx, r.tenantSetKey(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	out := make([]domain.Thread, 0, len(ids))
	for _, id := range ids {
		thread, err := r.GetByID(ctx, id)
		if err == domain.ErrThreadNotFound {
			continue // expired thread still referenced by the set
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *thread)
	}
	return out, nil
}

// AppendMessage stores a message on a thread and refreshes the thread's
// last-activity timestamp.
func (r *ThreadRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	thread, err := r.GetByID(ctx, msg.ThreadID)
	if err != nil {
		return err
	}
	thread.LastMessageAt = msg.CreatedAt
	thread.UpdatedAt = time.Now()

	threadData, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("failed to marshal thread: %w", err)
	}
	msgData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	messagesKey := r.threadKey(msg.ThreadID) + messagesKeySuffix

	pipe := r.client.Pipeline()
	pipe.RPush(ctx, messagesKey, msgData)
	pipe.Expire(ctx, messagesKey, threadTTL)
	pipe.Set(ctx, r.threadKey(msg.ThreadID), threadData, threadTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Messages returns the most recent messages on a thread, oldest first.
func (r *ThreadRepository) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	if _, err := r.GetByID(ctx, threadID); err != nil {
		return nil, err
	}

	messagesKey := r.threadKey(threadID) + messagesKeySuffix
	raw, err := r.client.LRange(ctx, messagesKey, -maxMessagesPerLoad, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	out := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *ThreadRepository) threadKey(threadID string) string {
	return threadKeyPrefix + threadID
}

func (r *ThreadRepository) tenantSetKey(tenantID string) string {
	return tenantSetPrefix + tenantID
}

func (r *ThreadRepository) phoneIndexKey(tenantID, phone string) string {
	return phoneIndexPrefix + tenantID + ":" + phone
}
