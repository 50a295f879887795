package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

// QuestionOptionCount is the fixed number of answer options per question.
const QuestionOptionCount = 4

// DefaultQuestionPoints is the point value assigned when none is given.
const DefaultQuestionPoints = 10

// StringArray is a custom type stored as JSONB.
type StringArray []string

// Scan implements sql.Scanner so GORM can read JSONB columns.
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer so GORM can write JSONB columns.
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // empty JSON array instead of null
	}
	return json.Marshal(o)
}

// Question is a single multiple-choice item inside a level.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	LevelID       uint        `gorm:"not null;index" json:"levelId"`
	Text          string      `gorm:"size:500;not null" json:"question"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"-"` // hidden from clients
	Points        int         `gorm:"not null;default:10" json:"points"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (Question) TableName() string {
	return "questions"
}

// IsCorrect reports whether the selected option is the right one.
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectOption
}

// IsValidOption reports whether the selected option index is in range.
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// OptionsCount returns the number of answer options.
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// Validate checks the catalog invariants: exactly four options and a
// correct-answer index inside [0, len(options)).
func (q *Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if len(q.Options) != QuestionOptionCount {
		return fmt.Errorf("%w: question %q must have exactly %d options, got %d",
			apperrors.ErrValidation, q.Text, QuestionOptionCount, len(q.Options))
	}
	if !q.IsValidOption(q.CorrectOption) {
		return fmt.Errorf("%w: correct option index %d out of range for question %q",
			apperrors.ErrValidation, q.CorrectOption, q.Text)
	}
	if q.Points < 0 {
		return fmt.Errorf("%w: point value must not be negative", apperrors.ErrValidation)
	}
	return nil
}
