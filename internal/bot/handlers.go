package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nconklindev/timetable/internal/store"
	"github.com/nconklindev/timetable/internal/timetable"
)

func (b *Bot) onMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			b.touch(ctx, m.From, store.EventStart, "")
			b.send(m.Chat.ID, fmt.Sprintf("Ищу расписания (площадка №%d)...", b.cfg.Section), mainKeyboard())
			b.showDates(ctx, m.Chat.ID)
		case "admin":
			b.touch(ctx, m.From, store.EventAdmin, "")
			b.onAdmin(ctx, m)
		}
		return
	}

	switch strings.ToLower(strings.TrimSpace(m.Text)) {
	case strings.ToLower(btnSchedule):
		b.touch(ctx, m.From, store.EventOpenMenu, "")
		b.showDates(ctx, m.Chat.ID)
	case strings.ToLower(btnBack):
		b.touch(ctx, m.From, store.EventBack, "")
		b.onBack(ctx, m.Chat.ID)
	case strings.ToLower(btnNews):
		b.touch(ctx, m.From, store.EventNews, "")
		b.send(m.Chat.ID, "Наш новостной канал:", newsKeyboard(b.cfg.NewsChannelURL))
	}
}

func (b *Bot) showDates(ctx context.Context, chatID int64) {
	links, err := b.sched.Links(ctx)
	if err != nil {
		b.log.Warn("links", "error", err)
	}
	if len(links) == 0 {
		b.send(chatID, fmt.Sprintf("Не нашёл ссылки в секции №%d.", b.cfg.Section), mainKeyboard())
		return
	}
	b.states.Set(chatID, State{Step: StepDates})
	b.send(chatID, "Выбери дату:", datesKeyboard(links))
}

func (b *Bot) askGrades(ctx context.Context, chatID int64, date string) {
	grades, err := b.sched.Grades(ctx, date)
	if err != nil {
		b.log.Warn("grades", "date", date, "error", err)
		b.send(chatID, "Не нашёл такую дату.", mainKeyboard())
		return
	}
	b.states.Set(chatID, State{Step: StepGrades, Date: date})
	b.send(chatID, fmt.Sprintf("Выбери номер класса (%s):", html.EscapeString(date)), gradesKeyboard(date, grades))
}

// onBack moves one step up from the chat's current state.
func (b *Bot) onBack(ctx context.Context, chatID int64) {
	st, _ := b.states.Get(chatID)
	switch st.Step {
	case StepClasses:
		if st.Date == "" {
			b.showDates(ctx, chatID)
			return
		}
		b.askGrades(ctx, chatID, st.Date)
	case StepShown:
		if st.Date == "" || st.Grade == 0 {
			b.showDates(ctx, chatID)
			return
		}
		id, labels, err := b.sched.Labels(ctx, st.Date, st.Grade)
		if err != nil {
			b.log.Warn("labels", "date", st.Date, "grade", st.Grade, "error", err)
			b.showDates(ctx, chatID)
			return
		}
		b.states.Set(chatID, State{Step: StepClasses, Date: st.Date, SheetID: id, Grade: st.Grade})
		b.send(chatID, "Выбери класс:", labelsKeyboard(st.Date, id, labels))
	default:
		b.showDates(ctx, chatID)
	}
}

func (b *Bot) onCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
	}

	kind, rest, _ := strings.Cut(cq.Data, ":")
	switch kind {
	case "d":
		b.onPickDate(ctx, cq, chatID, rest)
	case "g":
		b.onPickGrade(ctx, cq, chatID, rest)
	case "c":
		b.onPickClass(ctx, cq, chatID, rest)
	default:
		b.answer(cq, "")
	}
}

func (b *Bot) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		b.log.Debug("answer callback", "error", err)
	}
}

func (b *Bot) onPickDate(ctx context.Context, cq *tgbotapi.CallbackQuery, chatID int64, data string) {
	links, err := b.sched.Links(ctx)
	idx, convErr := strconv.Atoi(data)
	if err != nil || convErr != nil || idx < 0 || idx >= len(links) {
		b.touch(ctx, cq.From, "", "")
		b.answer(cq, "")
		return
	}
	date := links[idx].Date
	b.touch(ctx, cq.From, store.EventDate, date)

	b.answer(cq, "Загружаю…")
	l := b.showLoader(chatID, "⚙️ Загружаю список классов…")
	grades, err := b.sched.Grades(ctx, date)
	if err != nil {
		b.replaceLoader(l, "Не удалось найти Google Sheets: "+html.EscapeString(err.Error()), nil)
		return
	}
	kb := gradesKeyboard(date, grades)
	b.replaceLoader(l, fmt.Sprintf("Выбери номер класса (%s):", html.EscapeString(date)), &kb)
	b.states.Set(chatID, State{Step: StepGrades, Date: date})
}

func (b *Bot) onPickGrade(ctx context.Context, cq *tgbotapi.CallbackQuery, chatID int64, data string) {
	date, gs, ok := strings.Cut(data, ":")
	grade, err := strconv.Atoi(gs)
	if !ok || err != nil {
		b.answer(cq, "")
		return
	}
	b.touch(ctx, cq.From, store.EventGrade, fmt.Sprintf("%s|%d", date, grade))

	b.answer(cq, "Загружаю…")
	l := b.showLoader(chatID, "⚙️ Загружаю расписание…")
	id, labels, err := b.sched.Labels(ctx, date, grade)
	if err != nil {
		b.replaceLoader(l, "Не нашёл вкладку: "+html.EscapeString(err.Error()), nil)
		return
	}
	kb := labelsKeyboard(date, id, labels)
	b.replaceLoader(l, "Выбери класс:", &kb)
	b.states.Set(chatID, State{Step: StepClasses, Date: date, SheetID: id, Grade: grade})
}

func (b *Bot) onPickClass(ctx context.Context, cq *tgbotapi.CallbackQuery, chatID int64, data string) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		b.answer(cq, "")
		return
	}
	date, sheetID, label := parts[0], parts[1], parts[2]
	b.touch(ctx, cq.From, store.EventClass, date+"|"+label)

	b.answer(cq, "Загружаю…")
	l := b.showLoader(chatID, "⚙️ Загружаю расписание…")
	report, err := b.sched.Schedule(ctx, date, sheetID, label)
	switch {
	case errors.Is(err, timetable.ErrLabelNotFound):
		b.replaceLoader(l, "Такой класс не нашёлся на листе.", nil)
		return
	case err != nil:
		b.replaceLoader(l, "Ошибка доступа к листу: "+html.EscapeString(err.Error()), nil)
		return
	}

	b.replaceLoader(l, timetable.FormatHTML(report), nil)
	grade, _ := timetable.GradeFromLabel(report.Label)
	b.states.Set(chatID, State{Step: StepShown, Date: date, SheetID: sheetID, Grade: grade, Label: string(report.Label)})
}
