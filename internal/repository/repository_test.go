// Package repository tests use testcontainers-go to spin up a PostgreSQL
// container, mirroring the schema applied at startup.
package repository

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"tournament-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = runMigrations(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// runMigrations applies the database schema
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tournaments (
			id VARCHAR(64) PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			entry_fee TEXT NOT NULL DEFAULT '',
			prize TEXT NOT NULL DEFAULT '',
			max_participants INT NOT NULL,
			participants INT NOT NULL DEFAULT 0,
			photo_id TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'active'
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS registrations (
			id BIGSERIAL PRIMARY KEY,
			tournament_id VARCHAR(64) NOT NULL REFERENCES tournaments(id),
			user_id BIGINT NOT NULL,
			user_handle TEXT,
			nickname TEXT NOT NULL,
			game_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (tournament_id, user_id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_links (
			user_id BIGINT PRIMARY KEY,
			match_link TEXT NOT NULL
		)
	`)
	return err
}

func testDraft(name string) model.TournamentDraft {
	return model.TournamentDraft{
		Name:            name,
		Description:     "test description",
		Date:            "01.01.2030",
		EntryFee:        "100 rub",
		MaxParticipants: 16,
		Prize:           "5000 rub",
	}
}

// ============================================================================
// TournamentRepository Tests
// ============================================================================

func TestTournamentRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	tournament, err := repo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)
	assert.Equal(t, "tournament_1", tournament.ID)
	assert.Equal(t, "Cup", tournament.Name)
	assert.Equal(t, "01.01.2030", tournament.Date)
	assert.Equal(t, 16, tournament.MaxParticipants)
	assert.Equal(t, 0, tournament.Participants)
	assert.Equal(t, model.StatusActive, tournament.Status)
	assert.Nil(t, tournament.PhotoID)
	assert.True(t, tournament.IsActive())
}

func TestTournamentRepository_Create_WithPhoto(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	draft := testDraft("Cup")
	photoID := "AgACAgIAAxkBAAI"
	draft.PhotoID = &photoID

	tournament, err := repo.Create(ctx, "tournament_1", draft)
	require.NoError(t, err)
	require.NotNil(t, tournament.PhotoID)
	assert.Equal(t, photoID, *tournament.PhotoID)
}

func TestTournamentRepository_Create_InvalidCapacity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	draft := testDraft("Cup")
	draft.MaxParticipants = 0
	_, err := repo.Create(ctx, "tournament_1", draft)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	draft.MaxParticipants = -5
	_, err = repo.Create(ctx, "tournament_1", draft)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestTournamentRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	tournament, err := repo.GetByID(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, "Cup", tournament.Name)

	_, err = repo.GetByID(ctx, "tournament_999")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	_, _ = repo.Create(ctx, "tournament_1", testDraft("First"))
	_, _ = repo.Create(ctx, "tournament_2", testDraft("Second"))
	_, _ = repo.Create(ctx, "tournament_3", testDraft("Third"))

	completed, err := repo.Complete(ctx, "tournament_2")
	require.NoError(t, err)
	assert.True(t, completed)

	// All tournaments, ordered by id
	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tournament_1", all[0].ID)
	assert.Equal(t, "tournament_2", all[1].ID)
	assert.Equal(t, "tournament_3", all[2].ID)

	// Active only excludes the completed one
	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "tournament_1", active[0].ID)
	assert.Equal(t, "tournament_3", active[1].ID)
}

func TestTournamentRepository_Count(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, _ = repo.Create(ctx, "tournament_1", testDraft("First"))
	_, _ = repo.Create(ctx, "tournament_2", testDraft("Second"))
	_, _ = repo.Complete(ctx, "tournament_1")

	// Completed tournaments still count
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTournamentRepository_Complete_Idempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTournamentRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	completed, err := repo.Complete(ctx, "tournament_1")
	require.NoError(t, err)
	assert.True(t, completed)

	// Completing again succeeds and leaves the status unchanged
	completed, err = repo.Complete(ctx, "tournament_1")
	require.NoError(t, err)
	assert.True(t, completed)

	tournament, err := repo.GetByID(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, tournament.Status)

	// Completing a missing tournament reports false without error
	completed, err = repo.Complete(ctx, "tournament_999")
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestTournamentRepository_Delete_Cascades(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	_, err = registrationRepo.Register(ctx, "tournament_1", 111, nil, "PlayerOne", "id1")
	require.NoError(t, err)
	_, err = registrationRepo.Register(ctx, "tournament_1", 222, nil, "PlayerTwo", "id2")
	require.NoError(t, err)

	deleted, err := tournamentRepo.Delete(ctx, "tournament_1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = tournamentRepo.GetByID(ctx, "tournament_1")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	count, err := registrationRepo.CountByTournament(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Deleting a missing tournament reports false without error
	deleted, err = tournamentRepo.Delete(ctx, "tournament_999")
	require.NoError(t, err)
	assert.False(t, deleted)
}

// ============================================================================
// RegistrationRepository Tests
// ============================================================================

func TestRegistrationRepository_Register(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	handle := "someuser"
	reg, err := registrationRepo.Register(ctx, "tournament_1", 111, &handle, "PlayerOne", "game-id-1")
	require.NoError(t, err)
	assert.Equal(t, "tournament_1", reg.TournamentID)
	assert.Equal(t, int64(111), reg.UserID)
	require.NotNil(t, reg.UserHandle)
	assert.Equal(t, "someuser", *reg.UserHandle)
	assert.Equal(t, "PlayerOne", reg.Nickname)
	assert.Equal(t, "game-id-1", reg.GameID)
	assert.False(t, reg.CreatedAt.IsZero())

	// Counter moved with the insert
	tournament, err := tournamentRepo.GetByID(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, 1, tournament.Participants)
}

func TestRegistrationRepository_Register_Duplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	_, err = registrationRepo.Register(ctx, "tournament_1", 111, nil, "PlayerOne", "id1")
	require.NoError(t, err)

	_, err = registrationRepo.Register(ctx, "tournament_1", 111, nil, "OtherNick", "id2")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// The rejected attempt left no trace
	tournament, err := tournamentRepo.GetByID(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, 1, tournament.Participants)

	count, err := registrationRepo.CountByTournament(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegistrationRepository_Register_SameUserDifferentTournaments(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("First"))
	require.NoError(t, err)
	_, err = tournamentRepo.Create(ctx, "tournament_2", testDraft("Second"))
	require.NoError(t, err)

	_, err = registrationRepo.Register(ctx, "tournament_1", 111, nil, "PlayerOne", "id1")
	require.NoError(t, err)
	_, err = registrationRepo.Register(ctx, "tournament_2", 111, nil, "PlayerOne", "id1")
	require.NoError(t, err)
}

func TestRegistrationRepository_Register_CompletedTournament(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	completed, err := tournamentRepo.Complete(ctx, "tournament_1")
	require.NoError(t, err)
	require.True(t, completed)

	_, err = registrationRepo.Register(ctx, "tournament_1", 111, nil, "PlayerOne", "id1")
	assert.ErrorIs(t, err, ErrTournamentNotActive)
}

func TestRegistrationRepository_Register_MissingTournament(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := registrationRepo.Register(ctx, "tournament_999", 111, nil, "PlayerOne", "id1")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegistrationRepository_Register_BeyondCapacity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	draft := testDraft("Cup")
	draft.MaxParticipants = 2
	_, err := tournamentRepo.Create(ctx, "tournament_1", draft)
	require.NoError(t, err)

	// Capacity is advisory: the third registration still succeeds
	for i := int64(1); i <= 3; i++ {
		_, err = registrationRepo.Register(ctx, "tournament_1", i, nil, "Player", "id")
		require.NoError(t, err)
	}

	tournament, err := tournamentRepo.GetByID(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, 3, tournament.Participants)
}

func TestRegistrationRepository_Register_Concurrent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	const users = 20
	var wg sync.WaitGroup
	errs := make([]error, users)

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = registrationRepo.Register(ctx, "tournament_1", int64(1000+i), nil, "Player", "id")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "registration %d failed", i)
	}

	// Counter and row count agree after concurrent registrations
	tournament, err := tournamentRepo.GetByID(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, users, tournament.Participants)

	count, err := registrationRepo.CountByTournament(ctx, "tournament_1")
	require.NoError(t, err)
	assert.Equal(t, users, count)
}

func TestRegistrationRepository_ListByTournament(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tournamentRepo := NewTournamentRepository(pool)
	registrationRepo := NewRegistrationRepository(pool)
	ctx := context.Background()

	_, err := tournamentRepo.Create(ctx, "tournament_1", testDraft("Cup"))
	require.NoError(t, err)

	_, _ = registrationRepo.Register(ctx, "tournament_1", 111, nil, "First", "id1")
	_, _ = registrationRepo.Register(ctx, "tournament_1", 222, nil, "Second", "id2")
	_, _ = registrationRepo.Register(ctx, "tournament_1", 333, nil, "Third", "id3")

	regs, err := registrationRepo.ListByTournament(ctx, "tournament_1")
	require.NoError(t, err)
	require.Len(t, regs, 3)

	// Ordered by creation time
	assert.Equal(t, "First", regs[0].Nickname)
	assert.Equal(t, "Second", regs[1].Nickname)
	assert.Equal(t, "Third", regs[2].Nickname)

	regs, err = registrationRepo.ListByTournament(ctx, "tournament_999")
	require.NoError(t, err)
	assert.Empty(t, regs)
}

// ============================================================================
// UserLinkRepository Tests
// ============================================================================

func TestUserLinkRepository_GetDefault(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserLinkRepository(pool, "https://example.com/default-match")
	ctx := context.Background()

	link, err := repo.Get(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/default-match", link)
}

func TestUserLinkRepository_SetAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserLinkRepository(pool, "https://example.com/default-match")
	ctx := context.Background()

	err := repo.Set(ctx, 111, "https://example.com/match-1")
	require.NoError(t, err)

	link, err := repo.Get(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/match-1", link)

	// Upsert replaces the stored link
	err = repo.Set(ctx, 111, "https://example.com/match-2")
	require.NoError(t, err)

	link, err = repo.Get(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/match-2", link)

	// Other users still fall back to the default
	link, err = repo.Get(ctx, 222)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/default-match", link)
}
