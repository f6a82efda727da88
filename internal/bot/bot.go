package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nconklindev/timetable/internal/cache"
	"github.com/nconklindev/timetable/internal/store"
	"github.com/nconklindev/timetable/internal/types"
)

// Sender is the part of *tgbotapi.BotAPI the bot talks through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Schedules answers the questions users navigate through.
type Schedules interface {
	Links(ctx context.Context) ([]types.SheetLink, error)
	Grades(ctx context.Context, date string) ([]int, error)
	Labels(ctx context.Context, date string, grade int) (string, []types.Label, error)
	Schedule(ctx context.Context, date, sheetID, label string) (types.Report, error)
}

type Store interface {
	UpsertUser(ctx context.Context, u store.User) error
	LogEvent(ctx context.Context, userID int64, eventType, meta string) error
	AllUserIDs(ctx context.Context) ([]int64, error)
	AdminStats(ctx context.Context) (store.Stats, error)
}

type Config struct {
	AdminID        int64
	NewsChannelURL string
	Section        int
	Location       *time.Location
}

// Bot serves the timetable over Telegram.
type Bot struct {
	api    Sender
	sched  Schedules
	store  Store
	states *cache.Store[int64, State]
	cfg    Config
	log    *slog.Logger
}

func New(api Sender, sched Schedules, st Store, states *cache.Store[int64, State], cfg Config, log *slog.Logger) *Bot {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if states == nil {
		states = cache.New[int64, State]()
	}
	return &Bot{
		api:    api,
		sched:  sched,
		store:  st,
		states: states,
		cfg:    cfg,
		log:    log.With("service", "bot"),
	}
}

// Run handles updates until the channel closes or ctx is done. Updates are
// processed concurrently; Run waits for in-flight handlers before returning.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.Handle(ctx, u)
			}()
		}
	}
}

// Handle dispatches one update.
func (b *Bot) Handle(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("handler panic", "panic", r, "update", u.UpdateID)
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.onCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.onMessage(ctx, u.Message)
	}
}

// touch records the user and the event. Failures are logged only.
func (b *Bot) touch(ctx context.Context, from *tgbotapi.User, event, meta string) {
	if from == nil {
		return
	}
	if err := b.store.UpsertUser(ctx, store.User{ID: from.ID, FirstName: from.FirstName, Username: from.UserName}); err != nil {
		b.log.Warn("upsert user", "user_id", from.ID, "error", err)
		return
	}
	if event == "" {
		return
	}
	if err := b.store.LogEvent(ctx, from.ID, event, meta); err != nil {
		b.log.Warn("log event", "user_id", from.ID, "event", event, "error", err)
	}
}

func (b *Bot) send(chatID int64, text string, markup any) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("send message", "chat_id", chatID, "error", err)
	}
	return sent, err
}

// loader is a placeholder message replaced by the result of a slow step.
type loader struct {
	chatID    int64
	messageID int
}

func (b *Bot) showLoader(chatID int64, text string) loader {
	sent, err := b.send(chatID, text, nil)
	if err != nil {
		return loader{chatID: chatID}
	}
	return loader{chatID: chatID, messageID: sent.MessageID}
}

// replaceLoader edits the loader in place. When editing fails a fresh message
// is sent and the loader deleted.
func (b *Bot) replaceLoader(l loader, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if l.messageID != 0 {
		edit := tgbotapi.NewEditMessageText(l.chatID, l.messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = kb
		if _, err := b.api.Send(edit); err == nil {
			return
		}
	}

	var markup any
	if kb != nil {
		markup = *kb
	}
	if _, err := b.send(l.chatID, text, markup); err != nil {
		return
	}
	if l.messageID != 0 {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(l.chatID, l.messageID)); err != nil {
			b.log.Debug("delete loader", "chat_id", l.chatID, "error", err)
		}
	}
}
