// Package session tracks per-user conversation state for multi-step wizards.
//
// State lives only in memory: an in-progress wizard is abandoned when the
// process stops. Each user owns exactly one state slot; starting a new wizard
// overwrites whatever was there before.
package session

import (
	"sync"

	"tournament-bot/internal/model"
)

// Step identifies which input a user's wizard is waiting for.
type Step int

const (
	StepIdle Step = iota

	// Tournament creation wizard, one field per message.
	StepTournamentName
	StepTournamentDescription
	StepTournamentDate
	StepTournamentEntryFee
	StepTournamentMaxParticipants
	StepTournamentPhoto
	StepTournamentPrize

	// Registration wizard: waiting for "nickname и game id".
	StepRegistrationNickname

	// Admin broadcast: waiting for "user_id message text".
	StepBroadcastTarget
)

// State is one user's conversation state: the awaited step plus the
// partially built data belonging to it.
type State struct {
	Step Step

	// Draft holds the tournament under construction (creation wizard only).
	Draft model.TournamentDraft

	// TournamentID is the registration target (registration wizard only).
	TournamentID string
}

// Tracker maps user ids to conversation state. The map is safe for
// concurrent access across different users; events for a single user are
// expected to arrive sequentially.
type Tracker struct {
	mu     sync.RWMutex
	states map[int64]*State
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[int64]*State)}
}

// Get returns the user's current state, or nil when the user is idle.
func (t *Tracker) Get(userID int64) *State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[userID]
}

// Set replaces the user's state.
func (t *Tracker) Set(userID int64, state *State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[userID] = state
}

// Clear removes the user's state, returning them to idle.
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, userID)
}

// Step returns the user's current step, StepIdle when no state exists.
func (t *Tracker) Step(userID int64) Step {
	if s := t.Get(userID); s != nil {
		return s.Step
	}
	return StepIdle
}

// InWizard reports whether the user is mid-wizard.
func (t *Tracker) InWizard(userID int64) bool {
	return t.Step(userID) != StepIdle
}
