package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"tournament-bot/internal/menu"
	"tournament-bot/internal/pkg/lock"
	"tournament-bot/internal/pkg/session"
	"tournament-bot/internal/repository"
	"tournament-bot/internal/service"
)

// WizardHandler routes free-form text and photo messages to whichever
// wizard the sender has in progress. Messages from idle users are ignored.
//
// Each user's messages are serialized through a per-user lock so that two
// rapid replies cannot interleave their state transitions.
type WizardHandler struct {
	sessions     *session.Tracker
	locks        *lock.UserLock
	creation     *service.CreationService
	registration *service.RegistrationService
	broadcast    *service.BroadcastService
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(
	sessions *session.Tracker,
	locks *lock.UserLock,
	creation *service.CreationService,
	registration *service.RegistrationService,
	broadcast *service.BroadcastService,
) *WizardHandler {
	return &WizardHandler{
		sessions:     sessions,
		locks:        locks,
		creation:     creation,
		registration: registration,
		broadcast:    broadcast,
	}
}

// HandleText handles an incoming text message.
func (h *WizardHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	return h.locks.WithLock(sender.ID, func() error {
		switch h.sessions.Step(sender.ID) {
		case session.StepIdle:
			return nil
		case session.StepRegistrationNickname:
			return h.handleRegistrationText(c, sender)
		case session.StepBroadcastTarget:
			return h.handleBroadcastText(c, sender)
		default:
			return h.handleCreationText(c, sender)
		}
	})
}

// HandlePhoto handles an incoming photo message; only the creation wizard's
// photo step consumes photos.
func (h *WizardHandler) HandlePhoto(c tele.Context) error {
	sender := c.Sender()
	photo := c.Message().Photo
	if sender == nil || photo == nil {
		return nil
	}

	return h.locks.WithLock(sender.ID, func() error {
		result, err := h.creation.HandlePhoto(context.Background(), sender.ID, photo.FileID)
		if err != nil || result == nil {
			return err
		}
		return c.Send(menu.CreationPrompt(result.Next))
	})
}

func (h *WizardHandler) handleCreationText(c tele.Context, sender *tele.User) error {
	result, err := h.creation.HandleText(context.Background(), sender.ID, c.Text())
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Tournament creation failed")
		return c.Send("❌ Не удалось создать турнир, попробуйте ещё раз")
	}
	if result == nil {
		return nil
	}

	if result.Retry {
		return c.Send("❌ Пожалуйста, введите число:")
	}

	if result.Created != nil {
		log.Info().
			Int64("admin_id", sender.ID).
			Str("tournament_id", result.Created.ID).
			Str("name", result.Created.Name).
			Msg("Tournament created")
		return c.Send(fmt.Sprintf("✅ Турнир '%s' успешно создан!", result.Created.Name))
	}

	return c.Send(menu.CreationPrompt(result.Next))
}

func (h *WizardHandler) handleRegistrationText(c tele.Context, sender *tele.User) error {
	result, err := h.registration.Submit(context.Background(), sender.ID, sender.Username, c.Text())
	if err != nil {
		return c.Send("❌ " + registrationErrorText(err))
	}
	if result == nil {
		return nil
	}

	if result.Retry {
		return c.Send("❌ Неверный формат. Используйте: ник и айди\nНапример: #CinShlyuhi и no valid")
	}

	log.Info().
		Int64("user_id", sender.ID).
		Str("tournament_id", result.Tournament.ID).
		Msg("User registered for tournament")
	return c.Send(menu.FormatRegistrationSuccess(result.Tournament, result.Registration))
}

func (h *WizardHandler) handleBroadcastText(c tele.Context, sender *tele.User) error {
	result, err := h.broadcast.Submit(context.Background(), sender.ID, c.Text())
	if err != nil {
		log.Error().Err(err).Int64("admin_id", sender.ID).Msg("Broadcast delivery failed")
		return c.Send(fmt.Sprintf("❌ Ошибка отправки: %v", err))
	}
	if result == nil {
		return nil
	}

	if result.Retry {
		return c.Send("❌ Неверный формат. Используйте: user_id текст сообщения")
	}

	return c.Send(fmt.Sprintf("✅ Сообщение отправлено пользователю %d", result.TargetID))
}

// registrationErrorText maps store rejections to user-facing text.
func registrationErrorText(err error) string {
	switch {
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return "Ты уже зарегистрирован на этот турнир"
	case errors.Is(err, repository.ErrTournamentNotActive):
		return "Турнир завершен, запись невозможна"
	case errors.Is(err, repository.ErrTournamentNotFound):
		return "Турнир не найден"
	default:
		log.Error().Err(err).Msg("Registration failed")
		return "Не удалось записаться, попробуй позже"
	}
}
