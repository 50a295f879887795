package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

// GameRepo implements repository.GameRepository.
type GameRepo struct {
	db *gorm.DB
}

// NewGameRepo creates a new game catalog repository.
func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

// preloaded returns a query with levels and questions loaded in stable order.
func (r *GameRepo) preloaded() *gorm.DB {
	return r.db.
		Preload("Levels", func(db *gorm.DB) *gorm.DB {
			return db.Order("levels.level_number ASC, levels.id ASC")
		}).
		Preload("Levels.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		})
}

// Create inserts a game together with any nested levels and questions.
func (r *GameRepo) Create(game *entity.Game) error {
	err := r.db.Create(game).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID returns a game with its levels and questions.
func (r *GameRepo) GetByID(id uint) (*entity.Game, error) {
	var game entity.Game
	err := r.preloaded().First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// GetActiveBySlug returns an active game by its slug.
func (r *GameRepo) GetActiveBySlug(slug string) (*entity.Game, error) {
	var game entity.Game
	err := r.preloaded().Where("slug = ? AND active = ?", slug, true).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// ListActive returns active games, newest first.
func (r *GameRepo) ListActive() ([]entity.Game, error) {
	var games []entity.Game
	err := r.preloaded().Where("active = ?", true).Order("created_at DESC").Find(&games).Error
	return games, err
}

// List returns all games for the admin panel, newest first.
func (r *GameRepo) List() ([]entity.Game, error) {
	var games []entity.Game
	err := r.preloaded().Order("created_at DESC").Find(&games).Error
	return games, err
}

// Update saves game fields without touching the levels association.
func (r *GameRepo) Update(game *entity.Game) error {
	err := r.db.Omit("Levels").Save(game).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return apperrors.ErrConflict
	}
	return err
}

// Delete removes a game; levels and questions cascade at the database level.
func (r *GameRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Game{}, id).Error
}

// Count returns the total number of games.
func (r *GameRepo) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entity.Game{}).Count(&total).Error
	return total, err
}

// AddLevel appends a level (and its questions) to a game.
func (r *GameRepo) AddLevel(gameID uint, level *entity.Level) error {
	level.GameID = gameID
	return r.db.Create(level).Error
}

// UpdateLevel saves level fields without touching the questions association.
func (r *GameRepo) UpdateLevel(level *entity.Level) error {
	return r.db.Omit("Questions").Save(level).Error
}

// DeleteLevel removes a level owned by the given game.
func (r *GameRepo) DeleteLevel(gameID, levelID uint) error {
	res := r.db.Where("game_id = ?", gameID).Delete(&entity.Level{}, levelID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReplaceQuestions swaps the question set of a level in one transaction.
func (r *GameRepo) ReplaceQuestions(levelID uint, questions []entity.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("level_id = ?", levelID).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ID = 0
			questions[i].LevelID = levelID
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

// AddQuestions appends questions to a level.
func (r *GameRepo) AddQuestions(levelID uint, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		questions[i].ID = 0
		questions[i].LevelID = levelID
	}
	return r.db.Create(&questions).Error
}

// RefreshAggregates recomputes the denormalized play counters from the
// progress ledger. Recomputation (not blind increments) keeps the rollup
// correct even after retries.
func (r *GameRepo) RefreshAggregates(gameID uint) error {
	return r.db.Exec(`
		UPDATE games SET
			total_plays = (SELECT COUNT(*) FROM progresses WHERE progresses.game_id = games.id),
			average_score = COALESCE((SELECT AVG(total_score) FROM progresses WHERE progresses.game_id = games.id), 0)
		WHERE id = ?`, gameID).Error
}
