package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"tournament-bot/internal/menu"
	"tournament-bot/internal/pkg/session"
	"tournament-bot/internal/repository"
	"tournament-bot/internal/service"
)

// AdminHandler handles the admin panel: tournament management and the
// direct-message wizard entry.
type AdminHandler struct {
	tournaments   *repository.TournamentRepository
	registrations *repository.RegistrationRepository
	creation      *service.CreationService
	broadcast     *service.BroadcastService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	tournaments *repository.TournamentRepository,
	registrations *repository.RegistrationRepository,
	creation *service.CreationService,
	broadcast *service.BroadcastService,
) *AdminHandler {
	return &AdminHandler{
		tournaments:   tournaments,
		registrations: registrations,
		creation:      creation,
		broadcast:     broadcast,
	}
}

// HandleAdminPanel shows the admin panel.
func (h *AdminHandler) HandleAdminPanel(c tele.Context) error {
	return c.Edit("⚙️ Админ панель", menu.BuildAdminPanel())
}

// HandleAddTournament opens the creation wizard.
func (h *AdminHandler) HandleAddTournament(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.creation.Begin(sender.ID)
	return c.Edit(menu.CreationPrompt(session.StepTournamentName))
}

// HandleViewTournaments lists every tournament regardless of status.
func (h *AdminHandler) HandleViewTournaments(c tele.Context) error {
	ctx := context.Background()

	tournaments, err := h.tournaments.List(ctx, false)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tournaments")
		return c.Edit("❌ Не удалось загрузить турниры")
	}

	if len(tournaments) == 0 {
		return c.Edit("❌ Нет созданных турниров", menu.BuildBack(menu.CallbackAdminPanel))
	}

	return c.Edit(menu.FormatAdminTournamentList(tournaments), menu.BuildAdminTournamentList(tournaments))
}

// HandleTournamentDetail shows one tournament with management buttons.
func (h *AdminHandler) HandleTournamentDetail(c tele.Context, tournamentID string) error {
	ctx := context.Background()

	t, err := h.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return c.Edit("❌ Турнир не найден", menu.BuildBack(menu.CallbackViewTournaments))
		}
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to get tournament")
		return c.Edit("❌ Не удалось загрузить турнир")
	}

	return c.Edit(menu.FormatTournamentDetails(t), menu.BuildAdminTournamentDetail(t))
}

// HandleDelete deletes a tournament and its registrations.
func (h *AdminHandler) HandleDelete(c tele.Context, tournamentID string) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	deleted, err := h.tournaments.Delete(ctx, tournamentID)
	if err != nil {
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to delete tournament")
		return c.Edit("❌ Не удалось удалить турнир")
	}

	if deleted {
		log.Info().
			Int64("admin_id", sender.ID).
			Str("tournament_id", tournamentID).
			Msg("Tournament deleted")
		_ = c.Edit("✅ Турнир удален!")
	} else {
		_ = c.Edit("❌ Турнир не найден")
	}

	return h.sendTournamentList(c)
}

// HandleComplete marks a tournament as completed.
func (h *AdminHandler) HandleComplete(c tele.Context, tournamentID string) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	completed, err := h.tournaments.Complete(ctx, tournamentID)
	if err != nil {
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to complete tournament")
		return c.Edit("❌ Не удалось завершить турнир")
	}

	if completed {
		log.Info().
			Int64("admin_id", sender.ID).
			Str("tournament_id", tournamentID).
			Msg("Tournament completed")
		_ = c.Edit("✅ Турнир завершен!")
	} else {
		_ = c.Edit("❌ Турнир не найден")
	}

	return h.sendTournamentList(c)
}

// sendTournamentList pushes a fresh admin tournament overview after a
// delete/complete action replaced the previous view.
func (h *AdminHandler) sendTournamentList(c tele.Context) error {
	ctx := context.Background()

	tournaments, err := h.tournaments.List(ctx, false)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tournaments")
		return nil
	}

	if len(tournaments) == 0 {
		return c.Send("❌ Нет созданных турниров", menu.BuildBack(menu.CallbackAdminPanel))
	}

	return c.Send(menu.FormatAdminTournamentList(tournaments), menu.BuildAdminTournamentList(tournaments))
}

// HandleParticipants lists the registrations for a tournament.
func (h *AdminHandler) HandleParticipants(c tele.Context, tournamentID string) error {
	ctx := context.Background()

	t, err := h.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return c.Edit("❌ Турнир не найден")
		}
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to get tournament")
		return c.Edit("❌ Не удалось загрузить турнир")
	}

	registrations, err := h.registrations.ListByTournament(ctx, tournamentID)
	if err != nil {
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to list registrations")
		return c.Edit("❌ Не удалось загрузить участников")
	}

	return c.Edit(menu.FormatParticipantsList(t, registrations), menu.BuildParticipantsNav(tournamentID))
}

// HandleSendMessage opens the direct-message wizard.
func (h *AdminHandler) HandleSendMessage(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.broadcast.Begin(sender.ID)
	return c.Edit("Введите ID пользователя и сообщение в формате: user_id текст сообщения")
}
