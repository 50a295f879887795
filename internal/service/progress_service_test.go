package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	apperrors "github.com/yourusername/recaatinga-api/internal/pkg/errors"
)

// ============================================================================
// Mocks
// ============================================================================

type MockProgressRepo struct {
	mock.Mock
}

func (m *MockProgressRepo) GetOrCreate(userID, gameID uint) (*entity.Progress, error) {
	args := m.Called(userID, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progress), args.Error(1)
}

func (m *MockProgressRepo) GetByUserAndGame(userID, gameID uint) (*entity.Progress, error) {
	args := m.Called(userID, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progress), args.Error(1)
}

func (m *MockProgressRepo) GetByID(id uint) (*entity.Progress, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progress), args.Error(1)
}

func (m *MockProgressRepo) ListByUser(userID uint) ([]entity.Progress, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Progress), args.Error(1)
}

func (m *MockProgressRepo) AppendCompletion(progressID, levelID uint, score int, completedAt time.Time) (bool, error) {
	args := m.Called(progressID, levelID, score, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepo) AddAchievement(progressID uint, tag string) error {
	args := m.Called(progressID, tag)
	return args.Error(0)
}

func (m *MockProgressRepo) CountActivePlayers() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type MockGameRepo struct {
	mock.Mock
}

func (m *MockGameRepo) Create(game *entity.Game) error {
	args := m.Called(game)
	return args.Error(0)
}

func (m *MockGameRepo) GetByID(id uint) (*entity.Game, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepo) GetActiveBySlug(slug string) (*entity.Game, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepo) ListActive() ([]entity.Game, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepo) List() ([]entity.Game, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepo) Update(game *entity.Game) error {
	args := m.Called(game)
	return args.Error(0)
}

func (m *MockGameRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockGameRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGameRepo) AddLevel(gameID uint, level *entity.Level) error {
	args := m.Called(gameID, level)
	return args.Error(0)
}

func (m *MockGameRepo) UpdateLevel(level *entity.Level) error {
	args := m.Called(level)
	return args.Error(0)
}

func (m *MockGameRepo) DeleteLevel(gameID, levelID uint) error {
	args := m.Called(gameID, levelID)
	return args.Error(0)
}

func (m *MockGameRepo) ReplaceQuestions(levelID uint, questions []entity.Question) error {
	args := m.Called(levelID, questions)
	return args.Error(0)
}

func (m *MockGameRepo) AddQuestions(levelID uint, questions []entity.Question) error {
	args := m.Called(levelID, questions)
	return args.Error(0)
}

func (m *MockGameRepo) RefreshAggregates(gameID uint) error {
	args := m.Called(gameID)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) IncrementTotalPoints(userID uint, points int) error {
	args := m.Called(userID, points)
	return args.Error(0)
}

func (m *MockUserRepo) SetRole(userID uint, role string) error {
	args := m.Called(userID, role)
	return args.Error(0)
}

func (m *MockUserRepo) SetActive(userID uint, active bool) error {
	args := m.Called(userID, active)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepo) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// ============================================================================
// Fixtures
// ============================================================================

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestProgressService(pr *MockProgressRepo, gr *MockGameRepo, ur *MockUserRepo) *ProgressService {
	svc := NewProgressService(pr, gr, ur)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func twoLevelGame() *entity.Game {
	return &entity.Game{
		ID:     1,
		Title:  "Caatinga Basics",
		Slug:   "caatinga-basics",
		Active: true,
		Levels: []entity.Level{
			{
				ID:       10,
				GameID:   1,
				MinScore: 20,
				Active:   true,
				Questions: []entity.Question{
					{Options: entity.StringArray{"A", "B", "C", "D"}, CorrectOption: 0, Points: 10},
					{Options: entity.StringArray{"A", "B", "C", "D"}, CorrectOption: 2, Points: 10},
				},
			},
			{ID: 11, GameID: 1, MinScore: 10, Active: true},
		},
	}
}

// ============================================================================
// RecordCompletion
// ============================================================================

func TestProgressService_RecordCompletion_FirstCompletion(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	gameRepo.On("GetByID", uint(1)).Return(game, nil)
	progressRepo.On("GetOrCreate", uint(5), uint(1)).Return(&entity.Progress{ID: 100, UserID: 5, GameID: 1}, nil)
	progressRepo.On("AppendCompletion", uint(100), uint(10), 20, fixedNow).Return(true, nil)
	userRepo.On("IncrementTotalPoints", uint(5), 20).Return(nil)
	gameRepo.On("RefreshAggregates", uint(1)).Return(nil)

	fresh := &entity.Progress{
		ID: 100, UserID: 5, GameID: 1,
		CompletedLevels: []entity.CompletedLevel{{LevelID: 10, Score: 20, CompletedAt: fixedNow}},
		CurrentLevel:    2,
		TotalScore:      20,
		LastPlayed:      fixedNow,
	}
	progressRepo.On("GetByUserAndGame", uint(5), uint(1)).Return(fresh, nil)

	// Act
	progress, err := svc.RecordCompletion(5, 1, 10, 20)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20, progress.TotalScore)
	assert.Equal(t, 2, progress.CurrentLevel)
	userRepo.AssertCalled(t, "IncrementTotalPoints", uint(5), 20)
	gameRepo.AssertCalled(t, "RefreshAggregates", uint(1))
}

func TestProgressService_RecordCompletion_ReplayDoesNotProject(t *testing.T) {
	// Arrange: the completion entry already exists, AppendCompletion inserts
	// nothing.
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	gameRepo.On("GetByID", uint(1)).Return(game, nil)
	progressRepo.On("GetOrCreate", uint(5), uint(1)).Return(&entity.Progress{ID: 100, UserID: 5, GameID: 1}, nil)
	progressRepo.On("AppendCompletion", uint(100), uint(10), 15, fixedNow).Return(false, nil)

	unchanged := &entity.Progress{
		ID: 100, UserID: 5, GameID: 1,
		CompletedLevels: []entity.CompletedLevel{{LevelID: 10, Score: 20}},
		CurrentLevel:    2,
		TotalScore:      20,
		LastPlayed:      fixedNow,
	}
	progressRepo.On("GetByUserAndGame", uint(5), uint(1)).Return(unchanged, nil)

	// Act: replay with a different score
	progress, err := svc.RecordCompletion(5, 1, 10, 15)

	// Assert: the original score stands and no aggregate is touched
	require.NoError(t, err)
	assert.Equal(t, 20, progress.TotalScore)
	assert.Equal(t, 20, progress.CompletedLevels[0].Score)
	userRepo.AssertNotCalled(t, "IncrementTotalPoints", mock.Anything, mock.Anything)
	gameRepo.AssertNotCalled(t, "RefreshAggregates", mock.Anything)
	progressRepo.AssertNotCalled(t, "AddAchievement", mock.Anything, mock.Anything)
}

func TestProgressService_RecordCompletion_NegativeScore(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	// Act
	_, err := svc.RecordCompletion(5, 1, 10, -1)

	// Assert: rejected before any lookup
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	gameRepo.AssertNotCalled(t, "GetByID", mock.Anything)
	progressRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestProgressService_RecordCompletion_LevelNotInGame(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	gameRepo.On("GetByID", uint(1)).Return(twoLevelGame(), nil)

	// Act: level 99 belongs to no game
	_, err := svc.RecordCompletion(5, 1, 99, 20)

	// Assert: not found, and the ledger is untouched
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	progressRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
	progressRepo.AssertNotCalled(t, "AppendCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressService_RecordCompletion_GameNotFound(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	gameRepo.On("GetByID", uint(42)).Return(nil, apperrors.ErrNotFound)

	// Act
	_, err := svc.RecordCompletion(5, 42, 10, 20)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProgressService_RecordCompletion_InactiveGame(t *testing.T) {
	// Arrange: the game exists but has been deactivated
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	game.Active = false
	gameRepo.On("GetByID", uint(1)).Return(game, nil)

	// Act
	_, err := svc.RecordCompletion(7, 1, 10, 20)

	// Assert: reads as not found, ledger untouched
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	progressRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
	progressRepo.AssertNotCalled(t, "AppendCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressService_SubmitAttempt_InactiveGame(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	game.Active = false
	gameRepo.On("GetByID", uint(1)).Return(game, nil)

	// Act
	_, err := svc.SubmitAttempt(7, 1, 10, []int{0, 2})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	progressRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestProgressService_RecordCompletion_ProjectionFailureDoesNotFailRequest(t *testing.T) {
	// Arrange: the ledger write succeeds but the projection is down
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	gameRepo.On("GetByID", uint(1)).Return(game, nil)
	progressRepo.On("GetOrCreate", uint(5), uint(1)).Return(&entity.Progress{ID: 100, UserID: 5, GameID: 1}, nil)
	progressRepo.On("AppendCompletion", uint(100), uint(10), 20, fixedNow).Return(true, nil)
	userRepo.On("IncrementTotalPoints", uint(5), 20).Return(errors.New("connection refused"))
	gameRepo.On("RefreshAggregates", uint(1)).Return(errors.New("connection refused"))

	fresh := &entity.Progress{
		ID: 100, UserID: 5, GameID: 1,
		CompletedLevels: []entity.CompletedLevel{{LevelID: 10, Score: 20}},
		TotalScore:      20,
	}
	progressRepo.On("GetByUserAndGame", uint(5), uint(1)).Return(fresh, nil)

	// Act
	progress, err := svc.RecordCompletion(5, 1, 10, 20)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20, progress.TotalScore)
}

// ============================================================================
// SubmitAttempt (server-authoritative scoring)
// ============================================================================

func TestProgressService_SubmitAttempt_ScoresOnServer(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	gameRepo.On("GetByID", uint(1)).Return(game, nil)
	progressRepo.On("GetOrCreate", uint(5), uint(1)).Return(&entity.Progress{ID: 100, UserID: 5, GameID: 1}, nil)
	// One of two answers correct: 10 points, below the threshold of 20.
	progressRepo.On("AppendCompletion", uint(100), uint(10), 10, fixedNow).Return(true, nil)
	userRepo.On("IncrementTotalPoints", uint(5), 10).Return(nil)
	gameRepo.On("RefreshAggregates", uint(1)).Return(nil)

	fresh := &entity.Progress{
		ID: 100, UserID: 5, GameID: 1,
		CompletedLevels: []entity.CompletedLevel{{LevelID: 10, Score: 10}},
		TotalScore:      10,
	}
	progressRepo.On("GetByUserAndGame", uint(5), uint(1)).Return(fresh, nil)

	// Act
	result, err := svc.SubmitAttempt(5, 1, 10, []int{0, 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 10, result.Progress.TotalScore)
}

func TestProgressService_SubmitAttempt_LevelNotInGame(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	gameRepo.On("GetByID", uint(1)).Return(twoLevelGame(), nil)

	// Act
	_, err := svc.SubmitAttempt(5, 1, 99, []int{0})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Achievement on full completion
// ============================================================================

func TestProgressService_RecordCompletion_AwardsGameCompletion(t *testing.T) {
	// Arrange: this completion finishes the last of the game's active levels
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	game := twoLevelGame()
	gameRepo.On("GetByID", uint(1)).Return(game, nil)
	progressRepo.On("GetOrCreate", uint(5), uint(1)).Return(&entity.Progress{ID: 100, UserID: 5, GameID: 1}, nil)
	progressRepo.On("AppendCompletion", uint(100), uint(11), 10, fixedNow).Return(true, nil)
	userRepo.On("IncrementTotalPoints", uint(5), 10).Return(nil)
	gameRepo.On("RefreshAggregates", uint(1)).Return(nil)

	fresh := &entity.Progress{
		ID: 100, UserID: 5, GameID: 1,
		CompletedLevels: []entity.CompletedLevel{
			{LevelID: 10, Score: 20},
			{LevelID: 11, Score: 10},
		},
		CurrentLevel: 3,
		TotalScore:   30,
	}
	progressRepo.On("GetByUserAndGame", uint(5), uint(1)).Return(fresh, nil)
	progressRepo.On("AddAchievement", uint(100), "completed:caatinga-basics").Return(nil)

	// Act
	progress, err := svc.RecordCompletion(5, 1, 11, 10)

	// Assert
	require.NoError(t, err)
	progressRepo.AssertCalled(t, "AddAchievement", uint(100), "completed:caatinga-basics")
	assert.Contains(t, progress.Achievements, "completed:caatinga-basics")
}

// ============================================================================
// Reads
// ============================================================================

func TestProgressService_GetUserProgress_NeverPlayed(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	progressRepo.On("GetByUserAndGame", uint(5), uint(1)).Return(nil, apperrors.ErrNotFound)

	// Act
	progress, err := svc.GetUserProgress(5, 1)

	// Assert: absence is not an error
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestProgressService_ListUserProgress(t *testing.T) {
	// Arrange
	progressRepo := new(MockProgressRepo)
	gameRepo := new(MockGameRepo)
	userRepo := new(MockUserRepo)
	svc := newTestProgressService(progressRepo, gameRepo, userRepo)

	records := []entity.Progress{{ID: 1, GameID: 1}, {ID: 2, GameID: 2}}
	progressRepo.On("ListByUser", uint(5)).Return(records, nil)

	// Act
	got, err := svc.ListUserProgress(5)

	// Assert
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
