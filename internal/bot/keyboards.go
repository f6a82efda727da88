package bot

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nconklindev/timetable/internal/schedule"
	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/types"
)

const (
	btnSchedule = "📅 Посмотреть расписание"
	btnBack     = "⬅️ Назад"
	btnNews     = "🔔 Новостной канал"

	gradesPerRow = 3
	labelsPerRow = 4

	noopData = "noop"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSchedule)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnNews),
		),
	)
	kb.InputFieldPlaceholder = "Выберите действие…"
	return kb
}

func newsKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Открыть новостной канал", url)),
	)
}

// datesKeyboard has one button per date; callbacks carry the list index.
func datesKeyboard(links []types.SheetLink) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(links))
	for i, l := range links {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.Date, fmt.Sprintf("d:%d", i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// gradesKeyboard lists the offered grades in rows of three. Grades outside
// the school range are dropped; an empty list offers the whole range.
func gradesKeyboard(date string, grades []int) tgbotapi.InlineKeyboardMarkup {
	seen := make(map[int]bool)
	var gs []int
	for _, g := range grades {
		if g >= schedule.MinGrade && g <= schedule.MaxGrade && !seen[g] {
			seen[g] = true
			gs = append(gs, g)
		}
	}
	if len(gs) == 0 {
		for g := schedule.MinGrade; g <= schedule.MaxGrade; g++ {
			gs = append(gs, g)
		}
	}
	sort.Ints(gs)

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(gs))
	for _, g := range gs {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d класс", g), fmt.Sprintf("g:%s:%d", date, g)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(chunk(buttons, gradesPerRow)...)
}

// labelsKeyboard shows class suffixes in rows of four.
func labelsKeyboard(date, sheetID string, labels []types.Label) tgbotapi.InlineKeyboardMarkup {
	if len(labels) == 0 {
		return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Нет классов", noopData)))
	}

	grade, _ := timetable.GradeFromLabel(labels[0])
	prefix := fmt.Sprint(grade)
	seen := make(map[string]bool)
	var suffixes []string
	for _, l := range labels {
		suf := strings.TrimLeft(string(l), "0123456789")
		if !seen[suf] {
			seen[suf] = true
			suffixes = append(suffixes, suf)
		}
	}
	sort.Strings(suffixes)

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(suffixes))
	for _, suf := range suffixes {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			suf, fmt.Sprintf("c:%s:%s:%s%s", date, sheetID, prefix, suf)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(chunk(buttons, labelsPerRow)...)
}

func chunk(buttons []tgbotapi.InlineKeyboardButton, n int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > n {
		rows = append(rows, buttons[:n:n])
		buttons = buttons[n:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}
