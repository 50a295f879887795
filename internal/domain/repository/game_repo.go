package repository

import (
	"github.com/yourusername/recaatinga-api/internal/domain/entity"
)

// GameRepository defines persistence operations for the game catalog.
// Reads preload levels and questions; the catalog is small and read-mostly.
type GameRepository interface {
	Create(game *entity.Game) error
	GetByID(id uint) (*entity.Game, error)
	GetActiveBySlug(slug string) (*entity.Game, error)
	ListActive() ([]entity.Game, error)
	List() ([]entity.Game, error)
	Update(game *entity.Game) error
	Delete(id uint) error
	Count() (int64, error)

	AddLevel(gameID uint, level *entity.Level) error
	UpdateLevel(level *entity.Level) error
	DeleteLevel(gameID, levelID uint) error
	// ReplaceQuestions swaps a level's question set in one transaction.
	// Recorded completions keep their scores by value, so edits never
	// retroactively change progress.
	ReplaceQuestions(levelID uint, questions []entity.Question) error
	// AddQuestions appends questions to a level.
	AddQuestions(levelID uint, questions []entity.Question) error

	// RefreshAggregates recomputes total_plays and average_score for a game
	// from its progress records.
	RefreshAggregates(gameID uint) error
}
