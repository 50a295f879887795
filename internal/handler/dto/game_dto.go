package dto

import (
	"time"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
)

// GameSummaryResponse is the catalog list view: metadata only, no levels.
type GameSummaryResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	CoverImage   string    `json:"coverImage"`
	GameType     string    `json:"gameType"`
	LevelCount   int       `json:"levelCount"`
	TotalPlays   int64     `json:"totalPlays"`
	AverageScore float64   `json:"averageScore"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewGameSummaryResponse builds the list view for one game.
func NewGameSummaryResponse(g *entity.Game) *GameSummaryResponse {
	return &GameSummaryResponse{
		ID:           g.ID,
		Title:        g.Title,
		Slug:         g.Slug,
		Description:  g.Description,
		CoverImage:   g.CoverImage,
		GameType:     g.GameType,
		LevelCount:   len(g.Levels),
		TotalPlays:   g.TotalPlays,
		AverageScore: g.AverageScore,
		Active:       g.Active,
		CreatedAt:    g.CreatedAt,
	}
}

// NewGameSummaryResponses maps a list of games to the catalog view.
func NewGameSummaryResponses(games []entity.Game) []*GameSummaryResponse {
	out := make([]*GameSummaryResponse, 0, len(games))
	for i := range games {
		out = append(out, NewGameSummaryResponse(&games[i]))
	}
	return out
}
