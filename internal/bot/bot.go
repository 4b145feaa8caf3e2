// Package bot provides the Telegram bot initialization, handler
// registration and callback routing.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"tournament-bot/internal/config"
	"tournament-bot/internal/handler"
	"tournament-bot/internal/menu"
	"tournament-bot/internal/pkg/lock"
	"tournament-bot/internal/pkg/session"
	"tournament-bot/internal/repository"
	"tournament-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
// It implements service.Messenger for workflows that push messages.
type Bot struct {
	bot   *tele.Bot
	cfg   *config.Config
	locks *lock.UserLock

	menuHandler   *handler.MenuHandler
	adminHandler  *handler.AdminHandler
	wizardHandler *handler.WizardHandler
}

// New creates the telebot instance and installs middleware. Handlers are
// registered later via Register, once the services that depend on the bot's
// Messenger implementation exist.
func New(cfg *config.Config) (*Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{bot: teleBot, cfg: cfg}

	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(LoggingMiddleware())

	return b, nil
}

// SendText delivers a plain text message to a user.
// Implements service.Messenger.
func (b *Bot) SendText(_ context.Context, userID int64, text string) error {
	_, err := b.bot.Send(&tele.User{ID: userID}, text)
	return err
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Tournaments   *repository.TournamentRepository
	Registrations *repository.RegistrationRepository
	UserLinks     *repository.UserLinkRepository
	Sessions      *session.Tracker
	UserLock      *lock.UserLock
	Creation      *service.CreationService
	Registration  *service.RegistrationService
	Broadcast     *service.BroadcastService
}

// Register wires the handlers and registers all routes.
func (b *Bot) Register(deps *Dependencies) {
	b.locks = deps.UserLock
	b.menuHandler = handler.NewMenuHandler(b.cfg, deps.Tournaments, deps.UserLinks, deps.Registration)
	b.adminHandler = handler.NewAdminHandler(deps.Tournaments, deps.Registrations, deps.Creation, deps.Broadcast)
	b.wizardHandler = handler.NewWizardHandler(deps.Sessions, deps.UserLock, deps.Creation, deps.Registration, deps.Broadcast)

	b.bot.Handle("/start", b.menuHandler.HandleStart)
	b.bot.Handle(tele.OnText, b.wizardHandler.HandleText)
	b.bot.Handle(tele.OnPhoto, b.wizardHandler.HandlePhoto)
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes inline button presses by callback data. Routing runs
// under the same per-user lock as text and photo handling, so a button press
// that starts a wizard cannot interleave with an in-flight message of the
// same user.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	_ = c.Respond()

	return b.locks.WithLock(sender.ID, func() error {
		return b.routeCallback(c, sender, data)
	})
}

func (b *Bot) routeCallback(c tele.Context, sender *tele.User, data string) error {
	switch data {
	case menu.CallbackMenu:
		return b.menuHandler.HandleMenu(c)
	case menu.CallbackBackToStart:
		return b.menuHandler.HandleBackToStart(c)
	case menu.CallbackTournaments:
		return b.menuHandler.HandleTournaments(c)
	case menu.CallbackMyGames:
		return b.menuHandler.HandleMyGames(c)
	case menu.CallbackTournamentInfo:
		return b.menuHandler.HandleTournamentInfo(c)
	case menu.CallbackNotifications:
		return b.menuHandler.HandleNotifications(c)
	}

	if data == menu.CallbackAdminPanel ||
		data == menu.CallbackAddTournament ||
		data == menu.CallbackViewTournaments ||
		data == menu.CallbackSendMessage ||
		strings.HasPrefix(data, menu.CallbackAdminTournamentPrefix) ||
		strings.HasPrefix(data, menu.CallbackDeletePrefix) ||
		strings.HasPrefix(data, menu.CallbackCompletePrefix) ||
		strings.HasPrefix(data, menu.CallbackParticipantsPrefix) {
		return b.handleAdminCallback(c, sender, data)
	}

	if id, ok := strings.CutPrefix(data, menu.CallbackRegisterPrefix); ok {
		return b.menuHandler.HandleRegister(c, id)
	}

	// Bare tournament ids open the detail view.
	if strings.HasPrefix(data, menu.CallbackTournamentPrefix) {
		return b.menuHandler.HandleTournamentDetail(c, data)
	}

	log.Debug().Str("data", data).Msg("Unhandled callback")
	return nil
}

// handleAdminCallback guards admin-only actions by the configured username.
func (b *Bot) handleAdminCallback(c tele.Context, sender *tele.User, data string) error {
	if !b.cfg.IsAdmin(sender.Username) {
		log.Warn().
			Int64("user_id", sender.ID).
			Str("data", data).
			Msg("Non-admin attempted admin action")
		return nil
	}

	switch data {
	case menu.CallbackAdminPanel:
		return b.adminHandler.HandleAdminPanel(c)
	case menu.CallbackAddTournament:
		return b.adminHandler.HandleAddTournament(c)
	case menu.CallbackViewTournaments:
		return b.adminHandler.HandleViewTournaments(c)
	case menu.CallbackSendMessage:
		return b.adminHandler.HandleSendMessage(c)
	}

	if id, ok := strings.CutPrefix(data, menu.CallbackAdminTournamentPrefix); ok {
		return b.adminHandler.HandleTournamentDetail(c, id)
	}
	if id, ok := strings.CutPrefix(data, menu.CallbackDeletePrefix); ok {
		return b.adminHandler.HandleDelete(c, id)
	}
	if id, ok := strings.CutPrefix(data, menu.CallbackCompletePrefix); ok {
		return b.adminHandler.HandleComplete(c, id)
	}
	if id, ok := strings.CutPrefix(data, menu.CallbackParticipantsPrefix); ok {
		return b.adminHandler.HandleParticipants(c, id)
	}

	return nil
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
