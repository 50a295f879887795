package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/internal/handler/dto"
	"github.com/yourusername/recaatinga-api/internal/service"
)

// maxImportFileSize caps question import uploads at 8 MiB.
const maxImportFileSize = 8 << 20

// AdminHandler serves the admin panel: dashboard stats, user management and
// catalog CRUD down to bulk question import.
type AdminHandler struct {
	gameService *service.GameService
	userService *service.UserService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(gameService *service.GameService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		gameService: gameService,
		userService: userService,
	}
}

// GetStats returns the dashboard counters.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.GetDashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// ListUsers returns users with limit/offset pagination.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	users, err := h.userService.ListUsers(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// ToggleUser flips the target account's active flag.
func (h *AdminHandler) ToggleUser(c *gin.Context) {
	targetID := c.MustGet(ContextTargetID).(uint)
	user, err := h.userService.ToggleActive(targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// DeleteUser removes the target account.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	targetID := c.MustGet(ContextTargetID).(uint)
	if err := h.userService.DeleteUser(targetID); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[AdminHandler] user %d deleted", targetID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

// ListGames returns every game, active or not.
func (h *AdminHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListGames()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "games": dto.NewGameSummaryResponses(games)})
}

// GetGame returns one game by ID with levels and questions.
func (h *AdminHandler) GetGame(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)
	game, err := h.gameService.GetGame(gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "game": game})
}

// CreateGame stores a new game, with nested levels when provided.
func (h *AdminHandler) CreateGame(c *gin.Context) {
	var game entity.Game
	if err := c.ShouldBindJSON(&game); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	if err := h.gameService.CreateGame(&game); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AdminHandler] game %d (%s) created", game.ID, game.Slug)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Game created", "game": game})
}

// UpdateGame applies metadata changes to a game.
func (h *AdminHandler) UpdateGame(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)

	var patch entity.Game
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	game, err := h.gameService.UpdateGame(gameID, &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Game updated", "game": game})
}

// DeleteGame removes a game and its levels.
func (h *AdminHandler) DeleteGame(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)
	if err := h.gameService.DeleteGame(gameID); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[AdminHandler] game %d deleted", gameID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Game deleted"})
}

// AddLevel appends a level to a game.
func (h *AdminHandler) AddLevel(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)

	var level entity.Level
	if err := c.ShouldBindJSON(&level); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	game, err := h.gameService.AddLevel(gameID, &level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Level added", "game": game})
}

// UpdateLevel edits a level owned by the game.
func (h *AdminHandler) UpdateLevel(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)
	levelID := c.MustGet(ContextLevelID).(uint)

	var patch entity.Level
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	game, err := h.gameService.UpdateLevel(gameID, levelID, &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Level updated", "game": game})
}

// DeleteLevel removes a level owned by the game.
func (h *AdminHandler) DeleteLevel(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)
	levelID := c.MustGet(ContextLevelID).(uint)

	game, err := h.gameService.DeleteLevel(gameID, levelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Level deleted", "game": game})
}

// ReplaceQuestions swaps a level's question set.
func (h *AdminHandler) ReplaceQuestions(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)
	levelID := c.MustGet(ContextLevelID).(uint)

	var questions []entity.Question
	if err := c.ShouldBindJSON(&questions); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	game, err := h.gameService.ReplaceQuestions(gameID, levelID, questions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Questions replaced", "game": game})
}

// ImportQuestions bulk-loads questions from an uploaded XLSX or CSV file
// (multipart field "file").
func (h *AdminHandler) ImportQuestions(c *gin.Context) {
	gameID := c.MustGet(ContextGameID).(uint)
	levelID := c.MustGet(ContextLevelID).(uint)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "A file upload is required")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		respondBadRequest(c, "File is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	questions, err := h.gameService.ImportQuestions(gameID, levelID, fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AdminHandler] imported %d questions into level %d", len(questions), levelID)
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Questions imported",
		"imported": len(questions),
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw, ok := c.GetQuery(name)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
