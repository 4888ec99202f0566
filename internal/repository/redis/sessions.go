package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

// SessionRepository stores federated session references in Redis. The value
// kept under each reference is the account email only; everything else is
// re-resolved per request.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository constructs a repository using the provided Redis client.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = "identity:session"
	}
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) key(ref string) string {
	return fmt.Sprintf("%s:%s", r.prefix, ref)
}

// Save stores the email under the session reference with the provided TTL.
func (r *SessionRepository) Save(ctx context.Context, ref string, email string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(ref), email, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Lookup resolves a session reference back to the stored email.
func (r *SessionRepository) Lookup(ctx context.Context, ref string) (string, error) {
	email, err := r.client.Get(ctx, r.key(ref)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis get session: %w", err)
	}
	return email, nil
}

// Delete removes the session reference. Deleting an unknown reference is not an error.
func (r *SessionRepository) Delete(ctx context.Context, ref string) error {
	if err := r.client.Del(ctx, r.key(ref)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

var _ port.SessionStore = (*SessionRepository)(nil)
