package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionStore implements repository.SessionStore on Redis.
type SessionStore struct {
	client redis.UniversalClient
	ctx    context.Context
}

// NewSessionStore creates a new Redis-backed session store.
func NewSessionStore(client redis.UniversalClient) (*SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for SessionStore")
	}
	return &SessionStore{
		client: client,
		ctx:    context.Background(),
	}, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save writes the session payload with the given TTL.
func (s *SessionStore) Save(session *entity.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, sessionKey(session.ID), data, ttl).Err()
}

// Get loads a session by ID. Missing or expired sessions map to ErrNotFound.
func (s *SessionStore) Get(id string) (*entity.Session, error) {
	data, err := s.client.Get(s.ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) error {
	return s.client.Del(s.ctx, sessionKey(id)).Err()
}

// Refresh slides the session expiry without rewriting the payload.
func (s *SessionStore) Refresh(id string, ttl time.Duration) error {
	ok, err := s.client.Expire(s.ctx, sessionKey(id), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}
