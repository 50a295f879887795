package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/recaatinga-api/internal/handler/dto"
	"github.com/yourusername/recaatinga-api/internal/middleware"
	"github.com/yourusername/recaatinga-api/internal/service"
)

// Context keys for numeric URL parameters, filled by ExtractUintParam.
const (
	ContextGameID   = "game_id"
	ContextLevelID  = "level_id"
	ContextTargetID = "target_id"
)

// GameHandler serves the player-facing catalog and progress endpoints.
type GameHandler struct {
	gameService     *service.GameService
	progressService *service.ProgressService
}

// NewGameHandler creates a new game handler.
func NewGameHandler(gameService *service.GameService, progressService *service.ProgressService) *GameHandler {
	return &GameHandler{
		gameService:     gameService,
		progressService: progressService,
	}
}

// ProgressRequest is a quiz submission. Either answers (server-scored) or a
// precomputed score must be present; answers win when both are sent.
type ProgressRequest struct {
	LevelID uint  `json:"levelId" binding:"required"`
	Score   *int  `json:"score"`
	Answers []int `json:"answers"`
}

// ListGames returns the active catalog as summaries.
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListActiveGames()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "games": dto.NewGameSummaryResponses(games)})
}

// GetGame returns one active game by slug, with the caller's progress for it
// when one exists.
func (h *GameHandler) GetGame(c *gin.Context) {
	game, err := h.gameService.GetGameBySlug(c.Param("game"))
	if err != nil {
		respondError(c, err)
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)
	progress, err := h.progressService.GetUserProgress(userID, game.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"game":     game,
		"progress": dto.NewProgressResponse(progress),
	})
}

// GetProgress returns the caller's progress snapshot for a game, or a null
// progress when the game has never been played.
func (h *GameHandler) GetProgress(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	gameID := c.MustGet(ContextGameID).(uint)

	progress, err := h.progressService.GetUserProgress(userID, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": dto.NewProgressResponse(progress)})
}

// SubmitProgress records a level completion. With raw answers the score is
// computed on the server; the legacy body with a client score is still
// accepted. Replays return the unchanged snapshot.
func (h *GameHandler) SubmitProgress(c *gin.Context) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)
	gameID := c.MustGet(ContextGameID).(uint)

	if req.Answers != nil {
		result, err := h.progressService.SubmitAttempt(userID, gameID, req.LevelID, req.Answers)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Progress saved",
			"progress": dto.NewProgressResponse(result.Progress),
			"score":    result.Score,
			"passed":   result.Passed,
		})
		return
	}

	if req.Score == nil {
		respondBadRequest(c, "Either answers or score is required")
		return
	}

	progress, err := h.progressService.RecordCompletion(userID, gameID, req.LevelID, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Progress saved",
		"progress": dto.NewProgressResponse(progress),
	})
}

// ListMyProgress returns every progress record of the caller, most recently
// played first.
func (h *GameHandler) ListMyProgress(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	records, err := h.progressService.ListUserProgress(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": dto.NewProgressResponses(records)})
}
