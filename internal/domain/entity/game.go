package entity

import (
	"time"
)

// Game type constants.
const (
	GameTypeQuiz      = "quiz"
	GameTypePuzzle    = "puzzle"
	GameTypeMemory    = "memory"
	GameTypeAdventure = "adventure"
)

// Game is the top-level content unit: display metadata plus an ordered list
// of levels. Games are curated by administrators only.
type Game struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text;not null;default:''" json:"description"`
	CoverImage   string    `gorm:"size:500;not null;default:''" json:"coverImage"`
	GameType     string    `gorm:"size:20;not null;default:'quiz'" json:"gameType"`
	Levels       []Level   `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"levels"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	TotalPlays   int64     `gorm:"not null;default:0" json:"totalPlays"`
	AverageScore float64   `gorm:"not null;default:0" json:"averageScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (Game) TableName() string {
	return "games"
}

// IsValidGameType reports whether s is one of the known game types.
func IsValidGameType(s string) bool {
	switch s {
	case GameTypeQuiz, GameTypePuzzle, GameTypeMemory, GameTypeAdventure:
		return true
	}
	return false
}

// FindLevel returns the level owned by this game with the given ID, or nil.
// Requires Levels to be loaded; linear scan is fine at catalog sizes.
func (g *Game) FindLevel(levelID uint) *Level {
	for i := range g.Levels {
		if g.Levels[i].ID == levelID {
			return &g.Levels[i]
		}
	}
	return nil
}

// ActiveLevelCount returns how many of the game's levels are active.
func (g *Game) ActiveLevelCount() int {
	count := 0
	for i := range g.Levels {
		if g.Levels[i].Active {
			count++
		}
	}
	return count
}
