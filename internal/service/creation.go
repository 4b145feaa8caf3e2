package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tournament-bot/internal/model"
	"tournament-bot/internal/pkg/session"
	"tournament-bot/internal/repository"
)

// CreationService drives the admin's tournament creation wizard: a strictly
// ordered sequence of text prompts, one field per message, committed to the
// store when the final field arrives.
type CreationService struct {
	tournaments *repository.TournamentRepository
	sessions    *session.Tracker
}

// NewCreationService creates a new CreationService instance.
func NewCreationService(tournaments *repository.TournamentRepository, sessions *session.Tracker) *CreationService {
	return &CreationService{
		tournaments: tournaments,
		sessions:    sessions,
	}
}

// StepResult describes the wizard's reaction to one input.
type StepResult struct {
	// Next is the step now awaiting input; StepIdle once the wizard is done.
	Next session.Step

	// Retry means the input was rejected and the same step is re-prompted.
	Retry bool

	// Created holds the committed tournament once the wizard finishes.
	Created *model.Tournament
}

// Begin opens the wizard at the name step with a fresh draft, replacing any
// wizard the admin had in progress.
func (s *CreationService) Begin(userID int64) {
	s.sessions.Set(userID, &session.State{Step: session.StepTournamentName})
}

// HandleText consumes a text message for the current wizard step.
// A malformed capacity keeps the wizard on the same step; any text during
// the photo step skips the photo.
func (s *CreationService) HandleText(ctx context.Context, userID int64, text string) (*StepResult, error) {
	state := s.sessions.Get(userID)
	if state == nil {
		return nil, nil
	}

	switch state.Step {
	case session.StepTournamentName:
		state.Draft = model.TournamentDraft{Name: text}
		state.Step = session.StepTournamentDescription

	case session.StepTournamentDescription:
		state.Draft.Description = text
		state.Step = session.StepTournamentDate

	case session.StepTournamentDate:
		state.Draft.Date = text
		state.Step = session.StepTournamentEntryFee

	case session.StepTournamentEntryFee:
		state.Draft.EntryFee = text
		state.Step = session.StepTournamentMaxParticipants

	case session.StepTournamentMaxParticipants:
		n, ok := parseCapacity(text)
		if !ok {
			return &StepResult{Next: state.Step, Retry: true}, nil
		}
		state.Draft.MaxParticipants = n
		state.Step = session.StepTournamentPhoto

	case session.StepTournamentPhoto:
		// Any text at the photo step means "no cover photo".
		state.Step = session.StepTournamentPrize

	case session.StepTournamentPrize:
		state.Draft.Prize = text
		return s.commit(ctx, userID, state.Draft)

	default:
		return nil, nil
	}

	s.sessions.Set(userID, state)
	return &StepResult{Next: state.Step}, nil
}

// HandlePhoto consumes a photo message; it only matters at the photo step.
func (s *CreationService) HandlePhoto(_ context.Context, userID int64, photoID string) (*StepResult, error) {
	state := s.sessions.Get(userID)
	if state == nil || state.Step != session.StepTournamentPhoto {
		return nil, nil
	}

	state.Draft.PhotoID = &photoID
	state.Step = session.StepTournamentPrize
	s.sessions.Set(userID, state)
	return &StepResult{Next: state.Step}, nil
}

// commit allocates an id and writes the tournament, closing the wizard.
func (s *CreationService) commit(ctx context.Context, userID int64, draft model.TournamentDraft) (*StepResult, error) {
	count, err := s.tournaments.Count(ctx)
	if err != nil {
		s.sessions.Clear(userID)
		return nil, err
	}

	tournament, err := s.tournaments.Create(ctx, nextTournamentID(count), draft)
	s.sessions.Clear(userID)
	if err != nil {
		return nil, err
	}

	return &StepResult{Next: session.StepIdle, Created: tournament}, nil
}

// parseCapacity parses the max-participants input as a positive integer.
func parseCapacity(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// nextTournamentID derives a tournament id from the total tournament count,
// including completed tournaments.
func nextTournamentID(count int) string {
	return fmt.Sprintf("tournament_%d", count+1)
}
