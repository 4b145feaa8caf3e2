// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tournament-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTournamentNotActive = errors.New("tournament is completed, registration closed")
	ErrAlreadyRegistered   = errors.New("already registered for this tournament")
	ErrInvalidCapacity     = errors.New("max participants must be a positive integer")
)

// TournamentRepository handles tournament data persistence.
type TournamentRepository struct {
	pool *pgxpool.Pool
}

// NewTournamentRepository creates a new TournamentRepository instance.
func NewTournamentRepository(pool *pgxpool.Pool) *TournamentRepository {
	return &TournamentRepository{pool: pool}
}

const tournamentColumns = `id, name, description, date, entry_fee, prize, max_participants, participants, photo_id, status`

func scanTournament(row pgx.Row) (*model.Tournament, error) {
	var t model.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Date,
		&t.EntryFee,
		&t.Prize,
		&t.MaxParticipants,
		&t.Participants,
		&t.PhotoID,
		&t.Status,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new tournament with status active and zero participants.
// Returns ErrInvalidCapacity when maxParticipants is not positive.
func (r *TournamentRepository) Create(ctx context.Context, id string, draft model.TournamentDraft) (*model.Tournament, error) {
	if draft.MaxParticipants <= 0 {
		return nil, ErrInvalidCapacity
	}

	const query = `
		INSERT INTO tournaments (id, name, description, date, entry_fee, prize, max_participants, participants, photo_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, 'active')
		RETURNING ` + tournamentColumns

	t, err := scanTournament(r.pool.QueryRow(ctx, query,
		id, draft.Name, draft.Description, draft.Date, draft.EntryFee, draft.Prize, draft.MaxParticipants, draft.PhotoID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	return t, nil
}

// GetByID retrieves a tournament by its id.
// Returns ErrTournamentNotFound if the tournament does not exist.
func (r *TournamentRepository) GetByID(ctx context.Context, id string) (*model.Tournament, error) {
	const query = `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	return t, nil
}

// List retrieves tournaments ordered by id ascending.
// When activeOnly is true, completed tournaments are filtered out.
func (r *TournamentRepository) List(ctx context.Context, activeOnly bool) ([]*model.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY id`
	if activeOnly {
		query = `SELECT ` + tournamentColumns + ` FROM tournaments WHERE status = 'active' ORDER BY id`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*model.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournaments: %w", err)
	}

	return tournaments, nil
}

// Count returns the number of tournaments regardless of status.
// The creation wizard derives new tournament ids from this count.
func (r *TournamentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

// Delete removes a tournament and all its registrations in one transaction.
// Registrations go first so a failure never leaves orphaned rows.
// Returns whether a tournament row existed.
func (r *TournamentRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM registrations WHERE tournament_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete registrations: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete tournament: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Complete marks a tournament as completed.
// Returns false without error when the tournament does not exist; calling it
// on an already-completed tournament is a no-op that still reports true.
func (r *TournamentRepository) Complete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE tournaments SET status = 'completed' WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete tournament: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
