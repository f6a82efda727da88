package cli

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nconklindev/timetable/internal/bot"
	"github.com/nconklindev/timetable/internal/cache"
	"github.com/nconklindev/timetable/internal/store"
)

func newBotCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the change watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.cfg.ValidateBot(); err != nil {
				return err
			}
			return runBot(cmd.Context(), e)
		},
	}
}

func runBot(ctx context.Context, e *env) error {
	pool, err := store.NewPool(ctx, e.cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	st := store.New(pool)

	l, err := newLive(ctx, e.cfg, e.log)
	if err != nil {
		return err
	}

	api, err := tgbotapi.NewBotAPI(e.cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	api.Debug = e.cfg.Telegram.Debug
	e.log.Info("bot authorized", "username", api.Self.UserName)

	b := bot.New(api, l.service, st, cache.New[int64, bot.State](), bot.Config{
		AdminID:        e.cfg.Telegram.AdminID,
		NewsChannelURL: e.cfg.Telegram.NewsChannelURL,
		Section:        e.cfg.Source.Section,
		Location:       e.cfg.Location(),
	}, e.log)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		api.StopReceivingUpdates()
		return nil
	})
	g.Go(func() error {
		return b.Run(gctx, updates)
	})
	if e.cfg.Watcher.Enabled {
		w := newWatcher(e, l, st, b)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
