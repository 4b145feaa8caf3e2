// Package model defines the data models for the tournament registration bot.
package model

import "time"

// Tournament statuses. The lifecycle is monotonic: a tournament is created
// active and can only move to completed.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Tournament represents a tournament open for registration.
// Display fields (date, entry fee, prize) are free-form strings entered by
// the admin; MaxParticipants is advisory and never enforced as a hard cap.
type Tournament struct {
	ID              string  `db:"id"`
	Name            string  `db:"name"`
	Description     string  `db:"description"`
	Date            string  `db:"date"`
	EntryFee        string  `db:"entry_fee"`
	Prize           string  `db:"prize"`
	MaxParticipants int     `db:"max_participants"`
	Participants    int     `db:"participants"`
	PhotoID         *string `db:"photo_id"`
	Status          string  `db:"status"`
}

// IsActive reports whether the tournament still accepts registrations.
func (t *Tournament) IsActive() bool {
	return t.Status == StatusActive
}

// Registration represents a single user's sign-up for a tournament.
// At most one registration exists per (tournament, user) pair.
type Registration struct {
	ID           int64     `db:"id"`
	TournamentID string    `db:"tournament_id"`
	UserID       int64     `db:"user_id"`
	UserHandle   *string   `db:"user_handle"`
	Nickname     string    `db:"nickname"`
	GameID       string    `db:"game_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// UserLink stores a user's match link preference.
type UserLink struct {
	UserID int64  `db:"user_id"`
	Link   string `db:"match_link"`
}

// TournamentDraft accumulates the fields collected by the creation wizard
// before the tournament is committed to the store.
type TournamentDraft struct {
	Name            string
	Description     string
	Date            string
	EntryFee        string
	MaxParticipants int
	PhotoID         *string
	Prize           string
}
