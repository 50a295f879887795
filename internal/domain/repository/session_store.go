package repository

import (
	"time"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
)

// SessionStore defines the server-side session backend.
type SessionStore interface {
	Save(session *entity.Session, ttl time.Duration) error
	Get(id string) (*entity.Session, error)
	Delete(id string) error
	// Refresh extends the session lifetime without rewriting its payload.
	Refresh(id string, ttl time.Duration) error
}
