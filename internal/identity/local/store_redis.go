// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/notesput/internal/identity"
	"github.com/taibuivan/notesput/internal/platform/constants"
	"github.com/taibuivan/notesput/internal/platform/dberr"
)

// RedisSessionStore implements [SessionStore] using Redis.
//
// Each key expires together with its session, so expired sessions are removed
// by Redis itself.
type RedisSessionStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewSessionStore creates a new Redis-backed [SessionStore].
func NewSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

/*
Create stores the session record with a TTL equal to its remaining lifetime.

Returns:
  - error: identity.ErrRejected if the session is already expired
*/
func (store *RedisSessionStore) Create(ctx context.Context, tokenHash string, record *SessionRecord) error {
	ttl := record.ExpiresAt.Sub(store.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: session already expired", identity.ErrRejected)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_session_store_encode_failed: %w", err)
	}

	if err := store.client.Set(ctx, sessionKey(tokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis_session_store_set_failed: %w", identity.ErrUnavailable, err)
	}

	return nil
}

// Find retrieves the session record for tokenHash.
func (store *RedisSessionStore) Find(ctx context.Context, tokenHash string) (*SessionRecord, error) {
	payload, err := store.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("%w: redis_session_store_get_failed: %w", identity.ErrUnavailable, err)
	}

	record := &SessionRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, fmt.Errorf("redis_session_store_decode_failed: %w", err)
	}

	return record, nil
}

// Delete removes the session record.
func (store *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := store.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("%w: redis_session_store_delete_failed: %w", identity.ErrUnavailable, err)
	}
	return nil
}
