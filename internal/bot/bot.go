package bot

import (
	"context"
	"errors"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/reviosa/riverbank-bot/internal/access"
	"github.com/reviosa/riverbank-bot/internal/directory"
	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/ledger"
	"github.com/reviosa/riverbank-bot/internal/models"
	"github.com/reviosa/riverbank-bot/internal/models/events"
	"github.com/reviosa/riverbank-bot/internal/transfer"
)

// Deps bundles everything the chat adapter needs.
type Deps struct {
	API       *tgbotapi.BotAPI
	Store     interfaces.RowStore
	Directory *directory.Directory
	Ledger    *ledger.Ledger
	Transfers *transfer.Manager
	Policy    *access.Policy
	Publisher interfaces.EventPublisher

	BankName        string
	Currency        string
	LogChannelID    int64
	AuditTopic      string
	AutoDeleteDelay time.Duration
}

// Bot routes inbound commands and callback queries to the ledger
// components and renders replies. Dispatch is serial: one update runs
// to completion before the next is read.
type Bot struct {
	api       *tgbotapi.BotAPI
	store     interfaces.RowStore
	dir       *directory.Directory
	ledger    *ledger.Ledger
	transfers *transfer.Manager
	policy    *access.Policy
	publisher interfaces.EventPublisher
	deleter   *autoDeleter

	bankName     string
	currency     string
	logChannelID int64
	auditTopic   string
}

func New(d Deps) *Bot {
	return &Bot{
		api:          d.API,
		store:        d.Store,
		dir:          d.Directory,
		ledger:       d.Ledger,
		transfers:    d.Transfers,
		policy:       d.Policy,
		publisher:    d.Publisher,
		deleter:      newAutoDeleter(d.API, d.AutoDeleteDelay),
		bankName:     d.BankName,
		currency:     d.Currency,
		logChannelID: d.LogChannelID,
		auditTopic:   d.AuditTopic,
	}
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Printf("%s bot is now running as @%s", b.bankName, b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.deleter.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.cmdStart(msg)
	case "new":
		b.cmdNew(ctx, msg)
	case "add":
		b.cmdAdjust(ctx, msg, +1)
	case "use":
		b.cmdAdjust(ctx, msg, -1)
	case "check":
		b.cmdCheck(ctx, msg)
	case "bal":
		b.cmdBal(ctx, msg)
	case "transfer":
		b.cmdTransfer(ctx, msg)
	case "promote", "prom":
		b.cmdPromote(msg)
	case "demote", "dem":
		b.cmdDemote(msg)
	case "infobank":
		b.cmdInfobank(ctx, msg)
	case "clear":
		b.cmdClear(ctx, msg)
	}
}

// reply sends a plain HTML reply in the message's chat.
func (b *Bot) reply(msg *tgbotapi.Message, text string) *tgbotapi.Message {
	return b.send(msg.Chat.ID, text, nil)
}

func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) *tgbotapi.Message {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		out.ReplyMarkup = markup
	}
	sent, err := b.api.Send(out)
	if err != nil {
		log.Printf("[WARN] send failed: %v", err)
		return nil
	}
	return &sent
}

// audit sends a best-effort message to the log channel and publishes
// a structured event. Neither failure reaches the user.
func (b *Bot) audit(kind, text, actor string, memberID, amount, newBalance int64) {
	if b.logChannelID != 0 {
		out := tgbotapi.NewMessage(b.logChannelID, text)
		out.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(out); err != nil {
			log.Printf("[WARN] failed to send audit message: %v", err)
		}
	}

	ev := events.LedgerMutation{
		EventID:    uuid.NewString(),
		Kind:       kind,
		Actor:      actor,
		MemberID:   memberID,
		Amount:     amount,
		NewBalance: newBalance,
		OccurredAt: time.Now(),
	}
	if err := b.publisher.Publish(b.auditTopic, ev); err != nil {
		log.Printf("[WARN] failed to publish audit event: %v", err)
	}
}

// userError maps component errors onto the short replies users see.
// Anything outside the taxonomy is a store problem.
func (b *Bot) userError(err error) string {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		return "✖️ This user doesn't have an account."
	case errors.Is(err, models.ErrAccountExists):
		return "✖️ This user already has an account."
	case errors.Is(err, models.ErrInvalidAmount):
		return "✖️ Invalid amount. Use a whole number."
	case errors.Is(err, models.ErrInsufficientFunds):
		return "✖️ Insufficient balance."
	case errors.Is(err, models.ErrSelfTransfer):
		return "✖️ You cannot transfer money to yourself."
	default:
		return "✖️ The bank ledger is unavailable right now, please try again."
	}
}
