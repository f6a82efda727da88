package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nconklindev/timetable/internal/app"
	"github.com/nconklindev/timetable/internal/store"
)

const noData = "— нет данных —"

func (b *Bot) onAdmin(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil || b.cfg.AdminID == 0 || m.From.ID != b.cfg.AdminID {
		b.send(m.Chat.ID, "⛔ Доступ запрещён.", nil)
		return
	}
	st, err := b.store.AdminStats(ctx)
	if err != nil {
		b.log.Error("admin stats", "error", err)
		b.send(m.Chat.ID, "Не удалось получить статистику.", nil)
		return
	}
	b.send(m.Chat.ID, b.renderStats(st), nil)
}

func userTag(id int64, username string) string {
	if username != "" {
		return "@" + html.EscapeString(username)
	}
	return strconv.FormatInt(id, 10)
}

func (b *Bot) renderStats(st store.Stats) string {
	lines := []string{
		"🛠 <b>Админ-панель</b>",
		fmt.Sprintf("👥 Пользователей: <b>%d</b>", st.Users),
		fmt.Sprintf("📨 Событий: <b>%d</b>", st.Events),
		fmt.Sprintf("🟢 Активно за 24ч: <b>%d</b>", st.Active24h),
		"",
		"🏆 <b>Топ 10 по активности</b>",
	}
	if len(st.Top) == 0 {
		lines = append(lines, noData)
	}
	for _, u := range st.Top {
		lines = append(lines, fmt.Sprintf("• %s — %d событий (посл.: %s)",
			userTag(u.ID, u.Username), u.MsgCount, app.FormatStamp(u.LastSeen, b.cfg.Location)))
	}

	lines = append(lines, "", "📝 <b>Последние 10 событий</b>")
	if len(st.Recent) == 0 {
		lines = append(lines, noData)
	}
	for _, e := range st.Recent {
		lines = append(lines, fmt.Sprintf("• %s · %s · %s · %s",
			app.FormatStamp(e.TS, b.cfg.Location), html.EscapeString(e.Type),
			userTag(e.UserID, e.Username), html.EscapeString(e.Meta)))
	}
	return strings.Join(lines, "\n")
}
