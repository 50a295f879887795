package service

import (
	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/internal/domain/repository"
)

// UserService covers profile reads and the admin user management surface.
type UserService struct {
	userRepo     repository.UserRepository
	gameRepo     repository.GameRepository
	progressRepo repository.ProgressRepository
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	progressRepo repository.ProgressRepository,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		gameRepo:     gameRepo,
		progressRepo: progressRepo,
	}
}

// GetUser returns one user by ID.
func (s *UserService) GetUser(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// ListUsers returns users with pagination, newest first.
func (s *UserService) ListUsers(limit, offset int) ([]entity.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(limit, offset)
}

// ToggleActive flips the account's active flag and returns the updated user.
func (s *UserService) ToggleActive(userID uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetActive(userID, !user.Active); err != nil {
		return nil, err
	}
	user.Active = !user.Active
	return user, nil
}

// DeleteUser removes the account. The schema cascades the delete to the
// user's progress records and their completion entries.
func (s *UserService) DeleteUser(userID uint) error {
	return s.userRepo.Delete(userID)
}

// DashboardStats are the counters shown on the admin dashboard.
type DashboardStats struct {
	Users         int64 `json:"users"`
	Games         int64 `json:"games"`
	ActivePlayers int64 `json:"activePlayers"`
}

// GetDashboardStats returns the admin dashboard counters.
func (s *UserService) GetDashboardStats() (*DashboardStats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	games, err := s.gameRepo.Count()
	if err != nil {
		return nil, err
	}
	players, err := s.progressRepo.CountActivePlayers()
	if err != nil {
		return nil, err
	}
	return &DashboardStats{Users: users, Games: games, ActivePlayers: players}, nil
}
