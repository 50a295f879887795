package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/internal/domain/repository"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

// ProgressService is the progress and scoring engine: it records level
// completions exactly once per (user, game, level), keeps the ledger rollups
// consistent, and projects the lifetime aggregates.
type ProgressService struct {
	progressRepo repository.ProgressRepository
	gameRepo     repository.GameRepository
	userRepo     repository.UserRepository
	now          func() time.Time
}

// NewProgressService creates a new progress service.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	gameRepo repository.GameRepository,
	userRepo repository.UserRepository,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		gameRepo:     gameRepo,
		userRepo:     userRepo,
		now:          time.Now,
	}
}

// AttemptResult is what a quiz submission yields: the fresh progress snapshot
// plus the server-computed outcome of this attempt.
type AttemptResult struct {
	Progress *entity.Progress
	Score    int
	Passed   bool
}

// SubmitAttempt is the server-authoritative path: it scores the raw answers
// against the level's questions and records the completion. The client's own
// score computation is ignored.
func (s *ProgressService) SubmitAttempt(userID, gameID, levelID uint, answers []int) (*AttemptResult, error) {
	game, level, err := s.resolveLevel(gameID, levelID)
	if err != nil {
		return nil, err
	}

	score, passed := level.EvaluateAttempt(answers)

	progress, err := s.record(game, levelID, userID, score)
	if err != nil {
		return nil, err
	}
	return &AttemptResult{Progress: progress, Score: score, Passed: passed}, nil
}

// RecordCompletion records a client-scored completion (legacy path). The
// score must be a non-negative integer; membership of the level in the game
// is always verified.
func (s *ProgressService) RecordCompletion(userID, gameID, levelID uint, score int) (*entity.Progress, error) {
	if score < 0 {
		return nil, fmt.Errorf("%w: score must not be negative", apperrors.ErrValidation)
	}
	game, _, err := s.resolveLevel(gameID, levelID)
	if err != nil {
		return nil, err
	}
	return s.record(game, levelID, userID, score)
}

// GetUserProgress returns the caller's progress for a game, or nil when the
// game has never been played.
func (s *ProgressService) GetUserProgress(userID, gameID uint) (*entity.Progress, error) {
	progress, err := s.progressRepo.GetByUserAndGame(userID, gameID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return progress, nil
}

// ListUserProgress returns all of the caller's progress records, most
// recently played first.
func (s *ProgressService) ListUserProgress(userID uint) ([]entity.Progress, error) {
	return s.progressRepo.ListByUser(userID)
}

func (s *ProgressService) resolveLevel(gameID, levelID uint) (*entity.Game, *entity.Level, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, nil, err
	}
	if !game.Active {
		// Deactivated games stop accepting completions; they read the same
		// as missing ones from the outside.
		return nil, nil, fmt.Errorf("%w: game %d is not active", apperrors.ErrNotFound, gameID)
	}
	level := game.FindLevel(levelID)
	if level == nil {
		return nil, nil, fmt.Errorf("%w: level %d does not belong to game %d", apperrors.ErrNotFound, levelID, gameID)
	}
	return game, level, nil
}

// record is the ledger mutation shared by both submission paths. game must
// already be resolved and the level verified as one of its members.
func (s *ProgressService) record(game *entity.Game, levelID, userID uint, score int) (*entity.Progress, error) {
	progress, err := s.progressRepo.GetOrCreate(userID, game.ID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.progressRepo.AppendCompletion(progress.ID, levelID, score, s.now())
	if err != nil {
		return nil, err
	}

	if inserted {
		// Projections are incremental and commutative; the ledger row is
		// already durable, so a failed projection is logged and reconciled
		// later rather than failing the request.
		if err := s.userRepo.IncrementTotalPoints(userID, score); err != nil {
			log.Printf("[Progress] failed to project total points for user %d: %v", userID, err)
		}
		if err := s.gameRepo.RefreshAggregates(game.ID); err != nil {
			log.Printf("[Progress] failed to refresh aggregates for game %d: %v", game.ID, err)
		}
	}

	fresh, err := s.progressRepo.GetByUserAndGame(userID, game.ID)
	if err != nil {
		return nil, err
	}

	if inserted {
		s.maybeAwardCompletion(game, fresh)
	}
	return fresh, nil
}

// maybeAwardCompletion tags the progress record once every active level of
// the game has a completion entry.
func (s *ProgressService) maybeAwardCompletion(game *entity.Game, progress *entity.Progress) {
	total := game.ActiveLevelCount()
	if total == 0 || len(progress.CompletedLevels) < total {
		return
	}
	tag := "completed:" + game.Slug
	if progress.HasAchievement(tag) {
		return
	}
	if err := s.progressRepo.AddAchievement(progress.ID, tag); err != nil {
		log.Printf("[Progress] failed to award %q on progress %d: %v", tag, progress.ID, err)
		return
	}
	progress.Achievements = append(progress.Achievements, tag)
}
