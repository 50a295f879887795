package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/pkg/database"
)

// ============================================================================
// Container fixtures
// ============================================================================

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "recaatinga", "POSTGRES_PASSWORD": "recaatinga", "POSTGRES_DB": "recaatinga_test"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("host=%s port=%s user=recaatinga password=recaatinga dbname=recaatinga_test sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

// newMigratedDB opens the database and applies the real schema migrations, so
// the unique indexes the repository relies on are exactly the shipped ones.
func newMigratedDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	db, err := database.NewPostgresDB(dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	driver, err := migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	require.NoError(t, err)

	m, err := migrateV4.NewWithDatabaseInstance("file://../../../migrations", "postgres", driver)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func seedUserAndGame(t *testing.T, db *gorm.DB) (*entity.User, *entity.Game) {
	t.Helper()

	user := &entity.User{Name: "Maria", Email: "maria@example.com", Password: "secret-pw", Achievements: entity.StringArray{}}
	require.NoError(t, db.Create(user).Error)

	game := &entity.Game{
		Title:  "Caatinga Basics",
		Slug:   "caatinga-basics",
		Active: true,
		Levels: []entity.Level{
			{LevelNumber: 1, Title: "Biome", VideoURL: "https://example.com/v1", Active: true},
			{LevelNumber: 2, Title: "Fauna", VideoURL: "https://example.com/v2", Active: true},
		},
	}
	require.NoError(t, db.Create(game).Error)
	return user, game
}

// ============================================================================
// Ledger uniqueness under concurrency
// ============================================================================

func TestProgressRepo_GetOrCreate_ConcurrentCallsShareOneRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// Arrange
	ctx := context.Background()
	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	db := newMigratedDB(t, dsn)
	user, game := seedUserAndGame(t, db)
	repo := NewProgressRepo(db)

	// Act: racing lookup-or-creates for the same (user, game) pair
	const workers = 8
	ids := make(chan uint, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			progress, err := repo.GetOrCreate(user.ID, game.ID)
			if err != nil {
				errs <- err
				return
			}
			ids <- progress.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	// Assert: every call succeeded and resolved to the same single row
	for err := range errs {
		t.Fatalf("GetOrCreate: %v", err)
	}
	seen := map[uint]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	var rows int64
	require.NoError(t, db.Model(&entity.Progress{}).
		Where("user_id = ? AND game_id = ?", user.ID, game.ID).
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestProgressRepo_AppendCompletion_ConcurrentReplaysScoreOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// Arrange
	ctx := context.Background()
	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	db := newMigratedDB(t, dsn)
	user, game := seedUserAndGame(t, db)
	repo := NewProgressRepo(db)

	progress, err := repo.GetOrCreate(user.ID, game.ID)
	require.NoError(t, err)
	levelID := game.Levels[0].ID
	completedAt := time.Now().UTC().Truncate(time.Microsecond)

	// Act: the same completion submitted from several requests at once
	const workers = 8
	insertions := make(chan bool, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := repo.AppendCompletion(progress.ID, levelID, 20, completedAt)
			if err != nil {
				errs <- err
				return
			}
			insertions <- inserted
		}()
	}
	wg.Wait()
	close(insertions)
	close(errs)

	// Assert: exactly one insert won, the rest were replays
	for err := range errs {
		t.Fatalf("AppendCompletion: %v", err)
	}
	wins := 0
	for inserted := range insertions {
		if inserted {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	fresh, err := repo.GetByUserAndGame(user.ID, game.ID)
	require.NoError(t, err)
	require.Len(t, fresh.CompletedLevels, 1)
	assert.Equal(t, 20, fresh.TotalScore)
	assert.Equal(t, 2, fresh.CurrentLevel)
	assert.Equal(t, fresh.TotalScore, fresh.RecomputedScore())
}

func TestProgressRepo_AppendCompletion_ConcurrentDistinctLevels(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// Arrange
	ctx := context.Background()
	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	db := newMigratedDB(t, dsn)
	user, game := seedUserAndGame(t, db)
	repo := NewProgressRepo(db)

	progress, err := repo.GetOrCreate(user.ID, game.ID)
	require.NoError(t, err)
	completedAt := time.Now().UTC().Truncate(time.Microsecond)

	// Act: two different levels land nearly simultaneously
	var wg sync.WaitGroup
	errs := make(chan error, len(game.Levels))
	for _, level := range game.Levels {
		wg.Add(1)
		go func(levelID uint) {
			defer wg.Done()
			if _, err := repo.AppendCompletion(progress.ID, levelID, 10, completedAt); err != nil {
				errs <- err
			}
		}(level.ID)
	}
	wg.Wait()
	close(errs)

	// Assert: both scored, rollups consistent with the completion rows
	for err := range errs {
		t.Fatalf("AppendCompletion: %v", err)
	}
	fresh, err := repo.GetByUserAndGame(user.ID, game.ID)
	require.NoError(t, err)
	require.Len(t, fresh.CompletedLevels, 2)
	assert.Equal(t, 20, fresh.TotalScore)
	assert.Equal(t, 3, fresh.CurrentLevel)
}
