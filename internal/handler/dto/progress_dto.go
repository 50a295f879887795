package dto

import (
	"time"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
)

// CompletedLevelResponse is one scored completion in a progress snapshot.
type CompletedLevelResponse struct {
	LevelID     uint      `json:"levelId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressResponse is the progress snapshot returned to the client.
type ProgressResponse struct {
	UserID          uint                     `json:"userId"`
	GameID          uint                     `json:"gameId"`
	CompletedLevels []CompletedLevelResponse `json:"completedLevels"`
	CurrentLevel    int                      `json:"currentLevel"`
	TotalScore      int                      `json:"totalScore"`
	Achievements    []string                 `json:"achievements"`
	LastPlayed      time.Time                `json:"lastPlayed"`
}

// NewProgressResponse builds the snapshot from a ledger record. Returns nil
// for a nil record so handlers can pass it straight into the response body.
func NewProgressResponse(p *entity.Progress) *ProgressResponse {
	if p == nil {
		return nil
	}
	levels := make([]CompletedLevelResponse, 0, len(p.CompletedLevels))
	for i := range p.CompletedLevels {
		cl := &p.CompletedLevels[i]
		levels = append(levels, CompletedLevelResponse{
			LevelID:     cl.LevelID,
			Score:       cl.Score,
			CompletedAt: cl.CompletedAt,
		})
	}
	return &ProgressResponse{
		UserID:          p.UserID,
		GameID:          p.GameID,
		CompletedLevels: levels,
		CurrentLevel:    p.CurrentLevel,
		TotalScore:      p.TotalScore,
		Achievements:    append([]string{}, p.Achievements...),
		LastPlayed:      p.LastPlayed,
	}
}

// NewProgressResponses maps a list of ledger records.
func NewProgressResponses(records []entity.Progress) []*ProgressResponse {
	out := make([]*ProgressResponse, 0, len(records))
	for i := range records {
		out = append(out, NewProgressResponse(&records[i]))
	}
	return out
}
