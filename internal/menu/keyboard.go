// Package menu provides inline keyboards and message formatting for the
// tournament registration bot.
package menu

import (
	tele "gopkg.in/telebot.v3"

	"tournament-bot/internal/model"
)

// Callback data tokens. Tournament ids themselves start with "tournament_",
// so the bare id doubles as the detail-view callback.
const (
	CallbackMenu           = "menu"
	CallbackAdminPanel     = "admin_panel"
	CallbackNotifications  = "notifications"
	CallbackBackToStart    = "back_to_start"
	CallbackTournaments    = "tournaments"
	CallbackMyGames        = "my_games"
	CallbackTournamentInfo = "tournament_info"

	CallbackAddTournament   = "add_tournament"
	CallbackViewTournaments = "view_tournaments"
	CallbackSendMessage     = "send_message"

	CallbackTournamentPrefix      = "tournament_"
	CallbackAdminTournamentPrefix = "admin_tournament_"
	CallbackRegisterPrefix        = "register_"
	CallbackDeletePrefix          = "delete_"
	CallbackCompletePrefix        = "complete_"
	CallbackParticipantsPrefix    = "participants_"
)

// BuildStartMenu creates the /start keyboard. The admin panel row is only
// shown to the administrator.
func BuildStartMenu(isAdmin bool, managerURL, channelURL string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := []tele.Row{
		markup.Row(markup.Data("Меню", CallbackMenu)),
	}
	if isAdmin {
		rows = append(rows, markup.Row(markup.Data("Админ панель", CallbackAdminPanel)))
	}
	rows = append(rows,
		markup.Row(markup.URL("Связь с менеджером", managerURL)),
		markup.Row(markup.URL("Наш телеграм канал", channelURL)),
		markup.Row(markup.Data("Уведомления", CallbackNotifications)),
	)

	markup.Inline(rows...)
	return markup
}

// BuildMainMenu creates the main menu keyboard.
func BuildMainMenu() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("Турниры", CallbackTournaments)),
		markup.Row(markup.Data("Мои игры", CallbackMyGames)),
		markup.Row(markup.Data("Назад", CallbackBackToStart)),
	)
	return markup
}

// BuildTournamentList creates one button per tournament, each carrying the
// tournament id as callback data.
func BuildTournamentList(tournaments []*model.Tournament) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	for _, t := range tournaments {
		rows = append(rows, markup.Row(markup.Data(t.Name+" "+StatusEmoji(t), t.ID)))
	}
	rows = append(rows, markup.Row(markup.Data("Назад", CallbackMenu)))

	markup.Inline(rows...)
	return markup
}

// BuildTournamentDetail creates the detail-view keyboard. The register
// button only appears for active tournaments viewed from the list.
func BuildTournamentDetail(t *model.Tournament, fromMyGames bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	if !fromMyGames && t.IsActive() {
		rows = append(rows, markup.Row(markup.Data("📝 Записаться", CallbackRegisterPrefix+t.ID)))
	}

	back := CallbackTournaments
	if fromMyGames {
		back = CallbackMyGames
	}
	rows = append(rows, markup.Row(markup.Data("Назад", back)))

	markup.Inline(rows...)
	return markup
}

// BuildMyGames creates the "my games" keyboard.
func BuildMyGames() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("О турнире", CallbackTournamentInfo)),
		markup.Row(markup.Data("Назад", CallbackMenu)),
	)
	return markup
}

// BuildAdminPanel creates the admin panel keyboard.
func BuildAdminPanel() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("Добавить турнир", CallbackAddTournament)),
		markup.Row(markup.Data("Просмотреть турниры", CallbackViewTournaments)),
		markup.Row(markup.Data("📨 Отправить сообщение", CallbackSendMessage)),
		markup.Row(markup.Data("Назад", CallbackMenu)),
	)
	return markup
}

// BuildAdminTournamentList creates one button per tournament for the admin
// overview, all statuses included.
func BuildAdminTournamentList(tournaments []*model.Tournament) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	for _, t := range tournaments {
		rows = append(rows, markup.Row(markup.Data("📋 "+t.Name, CallbackAdminTournamentPrefix+t.ID)))
	}
	rows = append(rows, markup.Row(markup.Data("Назад", CallbackAdminPanel)))

	markup.Inline(rows...)
	return markup
}

// BuildAdminTournamentDetail creates the per-tournament admin keyboard:
// complete (active only), delete, participants list.
func BuildAdminTournamentDetail(t *model.Tournament) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	if t.IsActive() {
		rows = append(rows, markup.Row(markup.Data("🏁 Завершить турнир", CallbackCompletePrefix+t.ID)))
	}
	rows = append(rows,
		markup.Row(markup.Data("❌ Удалить турнир", CallbackDeletePrefix+t.ID)),
		markup.Row(markup.Data("📋 Список участников", CallbackParticipantsPrefix+t.ID)),
		markup.Row(markup.Data("Назад", CallbackViewTournaments)),
	)

	markup.Inline(rows...)
	return markup
}

// BuildParticipantsNav creates the navigation keyboard under a participants
// list.
func BuildParticipantsNav(tournamentID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("⬅️ Назад к турниру", CallbackAdminTournamentPrefix+tournamentID)),
		markup.Row(markup.Data("📊 Все турниры", CallbackViewTournaments)),
	)
	return markup
}

// BuildBack creates a single back button pointing at the given callback.
func BuildBack(data string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("Назад", data)))
	return markup
}
