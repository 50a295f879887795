package repository

import (
	"time"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
)

// ProgressRepository defines persistence operations for the progress ledger.
type ProgressRepository interface {
	// GetOrCreate finds the progress record for (userID, gameID), creating an
	// empty one if absent. Implementations must be race-free: two concurrent
	// first-time calls for the same pair yield the same single row.
	GetOrCreate(userID, gameID uint) (*entity.Progress, error)
	GetByUserAndGame(userID, gameID uint) (*entity.Progress, error)
	GetByID(id uint) (*entity.Progress, error)
	ListByUser(userID uint) ([]entity.Progress, error)

	// AppendCompletion records a level completion exactly once. The
	// check-absence-and-append step and the total_score/current_level rollup
	// are a single atomic storage operation; on replay the entry, score and
	// cursor are untouched and only last_played is refreshed. Returns whether
	// a new completion entry was inserted.
	AppendCompletion(progressID, levelID uint, score int, completedAt time.Time) (bool, error)

	AddAchievement(progressID uint, tag string) error
	CountActivePlayers() (int64, error)
}
