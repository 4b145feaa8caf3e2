package menu

import (
	"fmt"
	"strings"

	"tournament-bot/internal/model"
	"tournament-bot/internal/pkg/session"
)

// StatusEmoji returns the emoji shown next to a tournament name.
func StatusEmoji(t *model.Tournament) string {
	if t.IsActive() {
		return "✅"
	}
	return "🏁"
}

func statusText(t *model.Tournament) string {
	if t.IsActive() {
		return "Активный"
	}
	return "Завершен"
}

// FormatWelcome creates the /start greeting.
func FormatWelcome() string {
	return "Привет, ты попал в Ringing Tournament 📡\n" +
		"Воспользуйся кнопками ниже чтобы ознакомиться с интерфейсом бота."
}

// FormatTournamentDetails creates the tournament detail view.
func FormatTournamentDetails(t *model.Tournament) string {
	return fmt.Sprintf(
		"🏆 %s %s\n\n"+
			"📝 %s\n"+
			"📅 Дата: %s\n"+
			"💰 Призовой фонд: %s\n"+
			"💵 Стоимость участия: %s\n"+
			"👥 Участников: %d/%d\n"+
			"📊 Статус: %s",
		t.Name, StatusEmoji(t),
		t.Description, t.Date, t.Prize, t.EntryFee,
		t.Participants, t.MaxParticipants,
		statusText(t),
	)
}

// FormatAdminTournamentList creates the admin overview text listing every
// tournament with its status.
func FormatAdminTournamentList(tournaments []*model.Tournament) string {
	var b strings.Builder
	b.WriteString("🏆 Все турниры:\n\n")
	for _, t := range tournaments {
		status := "✅ Активный"
		if !t.IsActive() {
			status = "🏁 Завершен"
		}
		fmt.Fprintf(&b, "• %s (%s)\n", t.Name, status)
	}
	return b.String()
}

// FormatParticipantsList creates the admin's participants view for a
// tournament.
func FormatParticipantsList(t *model.Tournament, registrations []*model.Registration) string {
	if len(registrations) == 0 {
		return fmt.Sprintf("📋 Список участников турнира: %s\n\n❌ Нет зарегистрированных участников", t.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Список участников турнира: %s\n\n", t.Name)
	for i, reg := range registrations {
		handle := "скрыт"
		if reg.UserHandle != nil {
			handle = *reg.UserHandle
		}
		fmt.Fprintf(&b, "%d. 🎮 Ник: %s\n", i+1, reg.Nickname)
		fmt.Fprintf(&b, "   🆔 ID в игре: %s\n", reg.GameID)
		fmt.Fprintf(&b, "   👤 TG: @%s (ID: %d)\n", handle, reg.UserID)
		fmt.Fprintf(&b, "   📅 Зарегистрирован: %s\n\n", reg.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}

// FormatRegistrationInstructions creates the prompt shown when the
// registration wizard opens.
func FormatRegistrationInstructions() string {
	return "# Ringing Tournament\n\n" +
		"📌 Запись на турнир\n\n" +
		"Введи твой ник и айди, например:\n" +
		"#CinShlyuhi и no valid\n\n" +
		"📅 ОБЯЗАТЕЛЬНО: Если ты введёшь неправильный ID, то это дисквалификация!"
}

// FormatRegistrationSuccess creates the acknowledgement sent to a freshly
// registered user.
func FormatRegistrationSuccess(t *model.Tournament, reg *model.Registration) string {
	return fmt.Sprintf(
		"✅ Ты успешно записался на турнир!\n"+
			"🏆 Турнир: %s\n"+
			"🎮 Твой ник: %s\n"+
			"🆔 Твой ID: %s",
		t.Name, reg.Nickname, reg.GameID,
	)
}

// CreationPrompt returns the prompt for a tournament creation wizard step.
func CreationPrompt(step session.Step) string {
	switch step {
	case session.StepTournamentName:
		return "Введите название турнира:"
	case session.StepTournamentDescription:
		return "Введите описание турнира:"
	case session.StepTournamentDate:
		return "📅 Введите дату турнира (например: 15.04.2024):"
	case session.StepTournamentEntryFee:
		return "💵 Введите стоимость участия (например: 500 руб или Бесплатно):"
	case session.StepTournamentMaxParticipants:
		return "👥 Введите максимальное количество участников:"
	case session.StepTournamentPhoto:
		return "🖼 Отправьте фото для обложки турнира (или отправьте любой текст чтобы пропустить):"
	case session.StepTournamentPrize:
		return "💰 Введите призовой фонд (например: 10,000 руб):"
	default:
		return ""
	}
}
