package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

// ProgressRepo implements repository.ProgressRepository on Postgres. The
// ledger invariants live in the schema: UNIQUE(user_id, game_id) on
// progresses and UNIQUE(progress_id, level_id) on completed_levels.
type ProgressRepo struct {
	db *gorm.DB
}

// NewProgressRepo creates a new progress ledger repository.
func NewProgressRepo(db *gorm.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// GetOrCreate finds or lazily creates the progress row for (userID, gameID).
// INSERT ... ON CONFLICT DO NOTHING followed by a fetch makes the
// lookup-or-create free of the duplicate-row race: whichever concurrent call
// wins the insert, both return the same single row.
func (r *ProgressRepo) GetOrCreate(userID, gameID uint) (*entity.Progress, error) {
	fresh := &entity.Progress{
		UserID:       userID,
		GameID:       gameID,
		CurrentLevel: 1,
		Achievements: entity.StringArray{},
		LastPlayed:   time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
		DoNothing: true,
	}).Create(fresh).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndGame(userID, gameID)
}

// GetByUserAndGame returns the progress row for the pair with its completions.
func (r *ProgressRepo) GetByUserAndGame(userID, gameID uint) (*entity.Progress, error) {
	var progress entity.Progress
	err := r.db.Preload("CompletedLevels").
		Where("user_id = ? AND game_id = ?", userID, gameID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// GetByID returns a progress row by primary key with its completions.
func (r *ProgressRepo) GetByID(id uint) (*entity.Progress, error) {
	var progress entity.Progress
	err := r.db.Preload("CompletedLevels").First(&progress, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// ListByUser returns all progress rows of a user, most recently played first.
func (r *ProgressRepo) ListByUser(userID uint) ([]entity.Progress, error) {
	var progresses []entity.Progress
	err := r.db.Preload("CompletedLevels").
		Where("user_id = ?", userID).
		Order("last_played DESC").
		Find(&progresses).Error
	return progresses, err
}

// AppendCompletion records a completion entry exactly once. The conditional
// insert and the rollup update run in one transaction, so total_score can
// never diverge from the sum of the completion rows. Replays only refresh
// last_played.
func (r *ProgressRepo) AppendCompletion(progressID, levelID uint, score int, completedAt time.Time) (bool, error) {
	inserted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		entry := &entity.CompletedLevel{
			ProgressID:  progressID,
			LevelID:     levelID,
			Score:       score,
			CompletedAt: completedAt,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "progress_id"}, {Name: "level_id"}},
			DoNothing: true,
		}).Create(entry)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0

		if !inserted {
			// Replay of an already-completed level: the engagement timestamp
			// still moves, score and cursor stay put.
			return tx.Model(&entity.Progress{}).Where("id = ?", progressID).
				UpdateColumn("last_played", completedAt).Error
		}

		// current_level is a cursor: completed count + 1. Counting inside the
		// same transaction keeps it correct when two different levels land
		// nearly simultaneously.
		return tx.Model(&entity.Progress{}).Where("id = ?", progressID).
			UpdateColumns(map[string]interface{}{
				"total_score":   gorm.Expr("total_score + ?", score),
				"current_level": gorm.Expr("(SELECT COUNT(*) FROM completed_levels WHERE progress_id = ?) + 1", progressID),
				"last_played":   completedAt,
			}).Error
	})
	return inserted, err
}

// AddAchievement appends a tag to the achievements array unless present.
func (r *ProgressRepo) AddAchievement(progressID uint, tag string) error {
	return r.db.Exec(`
		UPDATE progresses
		SET achievements = achievements || to_jsonb(?::text)
		WHERE id = ? AND NOT achievements @> to_jsonb(?::text)`,
		tag, progressID, tag).Error
}

// CountActivePlayers returns the number of progress records, i.e. distinct
// (user, game) pairs that have ever been played.
func (r *ProgressRepo) CountActivePlayers() (int64, error) {
	var total int64
	err := r.db.Model(&entity.Progress{}).Count(&total).Error
	return total, err
}
