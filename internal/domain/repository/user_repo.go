package repository

import (
	"github.com/yourusername/recaatinga-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
	// IncrementTotalPoints atomically adds points to the lifetime aggregate.
	// It must be an atomic increment, never read-modify-write, so concurrent
	// completions compose without lost updates.
	IncrementTotalPoints(userID uint, points int) error
	SetRole(userID uint, role string) error
	SetActive(userID uint, active bool) error
	Delete(userID uint) error
	List(limit, offset int) ([]entity.User, error)
	Count() (int64, error)
}
