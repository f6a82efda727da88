package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nconklindev/timetable/internal/store"
	"github.com/nconklindev/timetable/internal/watcher"
)

var errNoDates = errors.New("no published timetables found")

func newWatchCommand(e *env) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch for new and edited timetables and log announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.cfg.ValidateDatabase(); err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := store.NewPool(ctx, e.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			l, err := newLive(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			w := newWatcher(e, l, store.New(pool), watcher.LogNotifier{Log: e.log})

			if once {
				return w.CheckOnce(ctx)
			}
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single check and exit")
	return cmd
}

func newWatcher(e *env, l *live, st *store.Store, n watcher.Notifier) *watcher.Watcher {
	return watcher.New(l.site, l.docs, st, l.service, n, watcher.Config{
		MinInterval: e.cfg.Watcher.MinInterval,
		MaxInterval: e.cfg.Watcher.MaxInterval,
		Location:    e.cfg.Location(),
	}, e.log)
}
