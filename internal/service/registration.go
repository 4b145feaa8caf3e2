package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tournament-bot/internal/model"
	"tournament-bot/internal/pkg/session"
	"tournament-bot/internal/repository"
)

// nicknameSeparator splits the registration reply into nickname and game id.
const nicknameSeparator = " и "

// RegistrationService drives the user's registration wizard: one reply
// containing nickname and game id, validated and written atomically, with a
// best-effort notification to the admin.
type RegistrationService struct {
	tournaments   *repository.TournamentRepository
	registrations *repository.RegistrationRepository
	sessions      *session.Tracker
	notifier      Messenger
	adminChatID   int64
}

// NewRegistrationService creates a new RegistrationService instance.
func NewRegistrationService(
	tournaments *repository.TournamentRepository,
	registrations *repository.RegistrationRepository,
	sessions *session.Tracker,
	notifier Messenger,
	adminChatID int64,
) *RegistrationService {
	return &RegistrationService{
		tournaments:   tournaments,
		registrations: registrations,
		sessions:      sessions,
		notifier:      notifier,
		adminChatID:   adminChatID,
	}
}

// Begin verifies the tournament exists and opens the wizard for the user.
// Returns ErrTournamentNotFound without entering the wizard when it doesn't.
func (s *RegistrationService) Begin(ctx context.Context, userID int64, tournamentID string) (*model.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	s.sessions.Set(userID, &session.State{
		Step:         session.StepRegistrationNickname,
		TournamentID: tournamentID,
	})
	return tournament, nil
}

// SubmitResult describes the outcome of a registration reply.
type SubmitResult struct {
	// Retry means the reply was malformed and the wizard stays open.
	Retry bool

	Tournament   *model.Tournament
	Registration *model.Registration
}

// Submit consumes the user's "nickname и game id" reply.
//
// A format error keeps the wizard open; every other outcome closes it. The
// registration is durable once stored: a failed admin notification is logged
// and ignored.
func (s *RegistrationService) Submit(ctx context.Context, userID int64, userHandle, text string) (*SubmitResult, error) {
	state := s.sessions.Get(userID)
	if state == nil || state.Step != session.StepRegistrationNickname {
		return nil, nil
	}

	tournament, err := s.tournaments.GetByID(ctx, state.TournamentID)
	if err != nil {
		s.sessions.Clear(userID)
		return nil, err
	}

	nickname, gameID, ok := splitNicknameAndID(text)
	if !ok {
		return &SubmitResult{Retry: true}, nil
	}

	var handle *string
	if userHandle != "" {
		handle = &userHandle
	}

	reg, err := s.registrations.Register(ctx, state.TournamentID, userID, handle, nickname, gameID)
	s.sessions.Clear(userID)
	if err != nil {
		return nil, err
	}

	s.notifyAdmin(ctx, tournament, reg)

	return &SubmitResult{Tournament: tournament, Registration: reg}, nil
}

// notifyAdmin tells the admin about a new registration. Delivery failure
// never affects the stored registration.
func (s *RegistrationService) notifyAdmin(ctx context.Context, tournament *model.Tournament, reg *model.Registration) {
	handle := "нет"
	if reg.UserHandle != nil {
		handle = "@" + *reg.UserHandle
	}

	text := fmt.Sprintf(
		"НОВАЯ ЗАПИСЬ НА ТУРНИР!\n"+
			"Турнир: %s\n"+
			"ID TG: %d\n"+
			"Username: %s\n"+
			"Ник: %s\n"+
			"ID в игре: %s",
		tournament.Name, reg.UserID, handle, reg.Nickname, reg.GameID,
	)

	if err := s.notifier.SendText(ctx, s.adminChatID, text); err != nil {
		log.Error().
			Err(err).
			Str("tournament_id", tournament.ID).
			Int64("user_id", reg.UserID).
			Msg("Failed to notify admin about registration")
	}
}

// splitNicknameAndID splits the reply on the fixed separator into two
// trimmed parts. Replies with fewer than two parts are malformed.
func splitNicknameAndID(text string) (nickname, gameID string, ok bool) {
	parts := strings.Split(text, nicknameSeparator)
	if len(parts) < 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
