package bot

import (
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageKey struct {
	chatID    int64
	messageID int
}

// autoDeleter removes transient confirmation messages after a fixed
// delay. Deletion is fire-and-forget: a failure is logged, never
// retried. Timers are owned here so shutdown can cancel them all.
type autoDeleter struct {
	api   *tgbotapi.BotAPI
	delay time.Duration

	mu     sync.Mutex
	timers map[messageKey]*time.Timer
}

func newAutoDeleter(api *tgbotapi.BotAPI, delay time.Duration) *autoDeleter {
	return &autoDeleter{
		api:    api,
		delay:  delay,
		timers: make(map[messageKey]*time.Timer),
	}
}

func (d *autoDeleter) schedule(chatID int64, messageID int) {
	if d.delay <= 0 {
		return
	}
	key := messageKey{chatID: chatID, messageID: messageID}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()

		if _, err := d.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			log.Printf("[WARN] failed to auto-delete message %d: %v", messageID, err)
		}
	})
}

// Stop cancels every outstanding deletion.
func (d *autoDeleter) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
