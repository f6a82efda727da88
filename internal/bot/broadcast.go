package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"
)

const broadcastParallelism = 20

// Broadcast sends text to every known user as a silent notification.
// Per-user failures are logged and skipped.
func (b *Bot) Broadcast(ctx context.Context, text string) error {
	ids, err := b.store.AllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	sem := semaphore.NewWeighted(broadcastParallelism)
	var wg sync.WaitGroup
	var failed int
	var mu sync.Mutex

	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			msg := tgbotapi.NewMessage(id, text)
			msg.ParseMode = tgbotapi.ModeHTML
			msg.DisableNotification = true
			if _, err := b.api.Send(msg); err != nil {
				b.log.Debug("broadcast send", "chat_id", id, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	b.log.Info("broadcast done", "users", len(ids), "failed", failed)
	return ctx.Err()
}
