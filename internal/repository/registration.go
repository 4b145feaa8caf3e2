package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tournament-bot/internal/model"
)

// RegistrationRepository handles registration data persistence.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository instance.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// Register inserts a registration and increments the tournament's
// participant counter in a single transaction.
//
// The tournament row is locked for the duration of the transaction, which
// serializes concurrent registrations for the same tournament: the status
// check, the duplicate check, the insert and the counter increment are
// atomic with respect to each other. The UNIQUE (tournament_id, user_id)
// constraint backs the duplicate check at the schema level.
//
// Returns ErrTournamentNotFound, ErrTournamentNotActive or
// ErrAlreadyRegistered for the corresponding domain rejections. Capacity is
// advisory: a full tournament still accepts registrations.
func (r *RegistrationRepository) Register(ctx context.Context, tournamentID string, userID int64, userHandle *string, nickname, gameID string) (*model.Registration, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM tournaments WHERE id = $1 FOR UPDATE`, tournamentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament: %w", err)
	}

	if status != model.StatusActive {
		return nil, ErrTournamentNotActive
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM registrations WHERE tournament_id = $1 AND user_id = $2)`,
		tournamentID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	var reg model.Registration
	err = tx.QueryRow(ctx, `
		INSERT INTO registrations (tournament_id, user_id, user_handle, nickname, game_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, tournament_id, user_id, user_handle, nickname, game_id, created_at
	`, tournamentID, userID, userHandle, nickname, gameID).Scan(
		&reg.ID,
		&reg.TournamentID,
		&reg.UserID,
		&reg.UserHandle,
		&reg.Nickname,
		&reg.GameID,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE tournaments SET participants = participants + 1 WHERE id = $1`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment participants: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return &reg, nil
}

// ListByTournament retrieves all registrations for a tournament, ordered by
// creation time ascending.
func (r *RegistrationRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*model.Registration, error) {
	const query = `
		SELECT id, tournament_id, user_id, user_handle, nickname, game_id, created_at
		FROM registrations
		WHERE tournament_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*model.Registration
	for rows.Next() {
		var reg model.Registration
		err := rows.Scan(
			&reg.ID,
			&reg.TournamentID,
			&reg.UserID,
			&reg.UserHandle,
			&reg.Nickname,
			&reg.GameID,
			&reg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, &reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return registrations, nil
}

// CountByTournament returns the number of registration rows for a tournament.
func (r *RegistrationRepository) CountByTournament(ctx context.Context, tournamentID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}
