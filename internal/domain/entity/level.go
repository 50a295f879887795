package entity

import (
	"time"
)

// Level is one video + quiz unit inside a game. Level identity is the
// generated ID, stable across edits; LevelNumber is only an ordering key and
// is not guaranteed unique or contiguous.
type Level struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GameID      uint       `gorm:"not null;index" json:"gameId"`
	LevelNumber int        `gorm:"not null" json:"levelNumber"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	VideoURL    string     `gorm:"size:500;not null" json:"videoUrl"`
	Thumbnail   string     `gorm:"size:500;not null;default:''" json:"thumbnail"`
	Questions   []Question `gorm:"foreignKey:LevelID;constraint:OnDelete:CASCADE" json:"questions"`
	MinScore    int        `gorm:"not null;default:0" json:"minScore"`
	Active      bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (Level) TableName() string {
	return "levels"
}

// FindQuestion returns the question at the given position, or nil when the
// index is out of range. Linear access is fine at catalog sizes.
func (l *Level) FindQuestion(index int) *Question {
	if index < 0 || index >= len(l.Questions) {
		return nil
	}
	return &l.Questions[index]
}

// MaxScore returns the score of a perfect attempt.
func (l *Level) MaxScore() int {
	total := 0
	for i := range l.Questions {
		total += l.Questions[i].Points
	}
	return total
}

// EvaluateAttempt scores a quiz attempt against this level. answers holds the
// selected option index per question, in question order. Missing or
// out-of-range answers count as incorrect, never as an error. The result is
// deterministic and the method has no side effects.
func (l *Level) EvaluateAttempt(answers []int) (score int, passed bool) {
	for i := range l.Questions {
		q := &l.Questions[i]
		if i >= len(answers) {
			continue
		}
		if q.IsValidOption(answers[i]) && q.IsCorrect(answers[i]) {
			score += q.Points
		}
	}
	return score, score >= l.MinScore
}
