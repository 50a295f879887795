package entity

import (
	"time"
)

// CompletedLevel is one completion entry: a specific level finished by a
// specific progress record, with the score it contributed. The unique index
// on (progress_id, level_id) is what makes level completion idempotent: a
// level can be scored at most once per user and game.
type CompletedLevel struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ProgressID  uint      `gorm:"not null;uniqueIndex:idx_progress_level" json:"-"`
	LevelID     uint      `gorm:"not null;uniqueIndex:idx_progress_level" json:"levelId"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	CompletedAt time.Time `gorm:"not null" json:"completedAt"`
}

// TableName sets the table name for GORM.
func (CompletedLevel) TableName() string {
	return "completed_levels"
}

// Progress is the per-user, per-game ledger record. At most one row exists
// per (user_id, game_id); that uniqueness is enforced by the database, not
// just assumed by callers.
type Progress struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UserID          uint             `gorm:"not null;uniqueIndex:idx_user_game" json:"userId"`
	GameID          uint             `gorm:"not null;uniqueIndex:idx_user_game" json:"gameId"`
	CompletedLevels []CompletedLevel `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"completedLevels"`
	CurrentLevel    int              `gorm:"not null;default:1" json:"currentLevel"`
	TotalScore      int              `gorm:"not null;default:0" json:"totalScore"`
	Achievements    StringArray      `gorm:"type:jsonb;not null;default:'[]'" json:"achievements"`
	LastPlayed      time.Time        `gorm:"not null" json:"lastPlayed"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (Progress) TableName() string {
	return "progresses"
}

// HasLevel reports whether the given level already has a completion entry.
func (p *Progress) HasLevel(levelID uint) bool {
	for i := range p.CompletedLevels {
		if p.CompletedLevels[i].LevelID == levelID {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the tag has already been awarded.
func (p *Progress) HasAchievement(tag string) bool {
	for _, a := range p.Achievements {
		if a == tag {
			return true
		}
	}
	return false
}

// RecomputedScore sums the scores of all completion entries. It must always
// equal TotalScore; reconciliation paths recompute instead of incrementing.
func (p *Progress) RecomputedScore() int {
	total := 0
	for i := range p.CompletedLevels {
		total += p.CompletedLevels[i].Score
	}
	return total
}
