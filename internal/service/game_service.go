package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/internal/domain/repository"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// GameService owns the game catalog: public reads plus administrator CRUD
// over games, levels and questions.
type GameService struct {
	gameRepo repository.GameRepository
}

// NewGameService creates a new game catalog service.
func NewGameService(gameRepo repository.GameRepository) *GameService {
	return &GameService{gameRepo: gameRepo}
}

// ListActiveGames returns the games players can see, newest first.
func (s *GameService) ListActiveGames() ([]entity.Game, error) {
	return s.gameRepo.ListActive()
}

// GetGameBySlug returns an active game by slug.
func (s *GameService) GetGameBySlug(slug string) (*entity.Game, error) {
	return s.gameRepo.GetActiveBySlug(slug)
}

// ListGames returns every game for the admin panel.
func (s *GameService) ListGames() ([]entity.Game, error) {
	return s.gameRepo.List()
}

// GetGame returns one game by ID, levels and questions included.
func (s *GameService) GetGame(id uint) (*entity.Game, error) {
	return s.gameRepo.GetByID(id)
}

// CreateGame validates and stores a new game with any nested levels.
func (s *GameService) CreateGame(game *entity.Game) error {
	if strings.TrimSpace(game.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if game.GameType == "" {
		game.GameType = entity.GameTypeQuiz
	}
	if !entity.IsValidGameType(game.GameType) {
		return fmt.Errorf("%w: unknown game type %q", apperrors.ErrValidation, game.GameType)
	}
	if game.Slug == "" {
		game.Slug = Slugify(game.Title)
	}
	for i := range game.Levels {
		if err := validateLevel(&game.Levels[i]); err != nil {
			return err
		}
	}
	return s.gameRepo.Create(game)
}

// UpdateGame applies metadata changes to an existing game. Levels are edited
// through their own operations, never through a game update.
func (s *GameService) UpdateGame(id uint, patch *entity.Game) (*entity.Game, error) {
	game, err := s.gameRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(patch.Title) != "" {
		game.Title = patch.Title
	}
	if patch.Slug != "" {
		game.Slug = Slugify(patch.Slug)
	}
	if patch.GameType != "" {
		if !entity.IsValidGameType(patch.GameType) {
			return nil, fmt.Errorf("%w: unknown game type %q", apperrors.ErrValidation, patch.GameType)
		}
		game.GameType = patch.GameType
	}
	game.Description = patch.Description
	game.CoverImage = patch.CoverImage
	game.Active = patch.Active
	if err := s.gameRepo.Update(game); err != nil {
		return nil, err
	}
	return s.gameRepo.GetByID(id)
}

// DeleteGame removes a game and, via the schema, its levels, questions, and
// the progress records referencing it.
func (s *GameService) DeleteGame(id uint) error {
	return s.gameRepo.Delete(id)
}

// AddLevel validates and appends a level to a game.
func (s *GameService) AddLevel(gameID uint, level *entity.Level) (*entity.Game, error) {
	if _, err := s.gameRepo.GetByID(gameID); err != nil {
		return nil, err
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	if err := s.gameRepo.AddLevel(gameID, level); err != nil {
		return nil, err
	}
	return s.gameRepo.GetByID(gameID)
}

// UpdateLevel edits a level owned by the game. Question edits go through
// ReplaceQuestions; recorded completions are never rewritten.
func (s *GameService) UpdateLevel(gameID, levelID uint, patch *entity.Level) (*entity.Game, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	level := game.FindLevel(levelID)
	if level == nil {
		return nil, fmt.Errorf("%w: level %d does not belong to game %d", apperrors.ErrNotFound, levelID, gameID)
	}
	if patch.LevelNumber > 0 {
		level.LevelNumber = patch.LevelNumber
	}
	if strings.TrimSpace(patch.Title) != "" {
		level.Title = patch.Title
	}
	if patch.VideoURL != "" {
		level.VideoURL = patch.VideoURL
	}
	level.Description = patch.Description
	level.Thumbnail = patch.Thumbnail
	if patch.MinScore >= 0 {
		level.MinScore = patch.MinScore
	}
	level.Active = patch.Active
	if err := s.gameRepo.UpdateLevel(level); err != nil {
		return nil, err
	}
	return s.gameRepo.GetByID(gameID)
}

// DeleteLevel removes a level owned by the game.
func (s *GameService) DeleteLevel(gameID, levelID uint) (*entity.Game, error) {
	if err := s.gameRepo.DeleteLevel(gameID, levelID); err != nil {
		return nil, err
	}
	return s.gameRepo.GetByID(gameID)
}

// ReplaceQuestions swaps a level's question set after validating every item.
func (s *GameService) ReplaceQuestions(gameID, levelID uint, questions []entity.Question) (*entity.Game, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if game.FindLevel(levelID) == nil {
		return nil, fmt.Errorf("%w: level %d does not belong to game %d", apperrors.ErrNotFound, levelID, gameID)
	}
	for i := range questions {
		applyQuestionDefaults(&questions[i])
		if err := questions[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.gameRepo.ReplaceQuestions(levelID, questions); err != nil {
		return nil, err
	}
	return s.gameRepo.GetByID(gameID)
}

// ImportQuestions bulk-loads questions for a level from an uploaded XLSX or
// CSV file. Expected columns: text, four options, zero-based correct index,
// optional point value. Returns the parsed questions after appending them.
func (s *GameService) ImportQuestions(gameID, levelID uint, filename string, r io.Reader) ([]entity.Question, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, err
	}
	if game.FindLevel(levelID) == nil {
		return nil, fmt.Errorf("%w: level %d does not belong to game %d", apperrors.ErrNotFound, levelID, gameID)
	}

	var rows [][]string
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		rows, err = readXLSXRows(r)
	} else {
		rows, err = readCSVRows(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	questions, err := parseQuestionRows(rows)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: file contains no questions", apperrors.ErrValidation)
	}

	if err := s.gameRepo.AddQuestions(levelID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Slugify turns a title into a URL-safe slug.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugCleanup.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func validateLevel(level *entity.Level) error {
	if strings.TrimSpace(level.Title) == "" {
		return fmt.Errorf("%w: level title is required", apperrors.ErrValidation)
	}
	if level.VideoURL == "" {
		return fmt.Errorf("%w: level video URL is required", apperrors.ErrValidation)
	}
	if level.LevelNumber <= 0 {
		return fmt.Errorf("%w: level number must be positive", apperrors.ErrValidation)
	}
	if level.MinScore < 0 {
		return fmt.Errorf("%w: minimum score must not be negative", apperrors.ErrValidation)
	}
	for i := range level.Questions {
		applyQuestionDefaults(&level.Questions[i])
		if err := level.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func applyQuestionDefaults(q *entity.Question) {
	if q.Points == 0 {
		q.Points = entity.DefaultQuestionPoints
	}
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows handled by the parser
	return reader.ReadAll()
}

// parseQuestionRows converts spreadsheet rows into questions. A header row is
// detected by a non-numeric correct-answer column and skipped.
func parseQuestionRows(rows [][]string) ([]entity.Question, error) {
	questions := make([]entity.Question, 0, len(rows))
	for i, row := range rows {
		if len(row) < entity.QuestionOptionCount+2 {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: row %d has %d columns, expected at least %d",
				apperrors.ErrValidation, i+1, len(row), entity.QuestionOptionCount+2)
		}

		correct, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("%w: row %d has a non-numeric correct answer", apperrors.ErrValidation, i+1)
		}

		points := entity.DefaultQuestionPoints
		if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
			points, err = strconv.Atoi(strings.TrimSpace(row[6]))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d has a non-numeric point value", apperrors.ErrValidation, i+1)
			}
		}

		q := entity.Question{
			Text:          strings.TrimSpace(row[0]),
			Options:       entity.StringArray{row[1], row[2], row[3], row[4]},
			CorrectOption: correct,
			Points:        points,
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}
