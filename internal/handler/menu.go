// Package handler provides Telegram bot command and callback handlers.
package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"tournament-bot/internal/config"
	"tournament-bot/internal/menu"
	"tournament-bot/internal/repository"
	"tournament-bot/internal/service"
)

// MenuHandler handles the user-facing menus: start screen, tournament
// browsing and registration entry.
type MenuHandler struct {
	cfg          *config.Config
	tournaments  *repository.TournamentRepository
	userLinks    *repository.UserLinkRepository
	registration *service.RegistrationService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(
	cfg *config.Config,
	tournaments *repository.TournamentRepository,
	userLinks *repository.UserLinkRepository,
	registration *service.RegistrationService,
) *MenuHandler {
	return &MenuHandler{
		cfg:          cfg,
		tournaments:  tournaments,
		userLinks:    userLinks,
		registration: registration,
	}
}

func (h *MenuHandler) startMarkup(username string) *tele.ReplyMarkup {
	return menu.BuildStartMenu(h.cfg.IsAdmin(username), h.managerURL(), h.cfg.Links.Channel)
}

func (h *MenuHandler) managerURL() string {
	if h.cfg.Links.Manager != "" {
		return h.cfg.Links.Manager
	}
	return "https://t.me/" + h.cfg.Admin.Username
}

// HandleStart handles the /start command.
func (h *MenuHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return c.Send(menu.FormatWelcome(), h.startMarkup(sender.Username))
}

// HandleBackToStart re-renders the start screen in place.
func (h *MenuHandler) HandleBackToStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	return c.Edit(menu.FormatWelcome(), h.startMarkup(sender.Username))
}

// HandleMenu shows the main menu as a fresh message.
func (h *MenuHandler) HandleMenu(c tele.Context) error {
	_ = c.Delete()
	return c.Send("Ringing Tournament", menu.BuildMainMenu())
}

// HandleTournaments lists active tournaments.
func (h *MenuHandler) HandleTournaments(c tele.Context) error {
	ctx := context.Background()

	tournaments, err := h.tournaments.List(ctx, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tournaments")
		return c.Edit("❌ Не удалось загрузить турниры, попробуй позже")
	}

	if len(tournaments) == 0 {
		return c.Edit("🏆 На данный момент нет активных турниров", menu.BuildBack(menu.CallbackMenu))
	}

	return c.Edit("🏆 Выберите турнир:", menu.BuildTournamentList(tournaments))
}

// HandleMyGames shows the "my games" menu with the user's match link.
func (h *MenuHandler) HandleMyGames(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	text := "🎮 Мои игры"
	link, err := h.userLinks.Get(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to get user link")
	} else {
		text += "\n🔗 Ссылка на матч: " + link
	}

	return c.Edit(text, menu.BuildMyGames())
}

// HandleTournamentInfo shows the first active tournament from "my games".
func (h *MenuHandler) HandleTournamentInfo(c tele.Context) error {
	ctx := context.Background()

	tournaments, err := h.tournaments.List(ctx, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tournaments")
		return c.Edit("❌ Не удалось загрузить турниры, попробуй позже")
	}

	if len(tournaments) == 0 {
		return c.Edit("ℹ️ Нет активных турниров", menu.BuildBack(menu.CallbackMyGames))
	}

	t := tournaments[0]
	return c.Edit(menu.FormatTournamentDetails(t), menu.BuildTournamentDetail(t, true))
}

// HandleTournamentDetail shows one tournament with a register button.
func (h *MenuHandler) HandleTournamentDetail(c tele.Context, tournamentID string) error {
	ctx := context.Background()

	t, err := h.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return c.Edit("❌ Турнир не найден", menu.BuildBack(menu.CallbackMyGames))
		}
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to get tournament")
		return c.Edit("❌ Не удалось загрузить турнир, попробуй позже")
	}

	return c.Edit(menu.FormatTournamentDetails(t), menu.BuildTournamentDetail(t, false))
}

// HandleRegister opens the registration wizard for a tournament.
func (h *MenuHandler) HandleRegister(c tele.Context, tournamentID string) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	_, err := h.registration.Begin(ctx, sender.ID, tournamentID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return c.Edit("❌ Турнир не найден")
		}
		log.Error().Err(err).Str("tournament_id", tournamentID).Msg("Failed to start registration")
		return c.Edit("❌ Не удалось начать запись, попробуй позже")
	}

	return c.Send(menu.FormatRegistrationInstructions())
}

// HandleNotifications is a placeholder for notification preferences.
func (h *MenuHandler) HandleNotifications(c tele.Context) error {
	return c.Edit("🔔 Настройки уведомлений будут здесь")
}
