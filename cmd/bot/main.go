package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/reviosa/riverbank-bot/internal/access"
	"github.com/reviosa/riverbank-bot/internal/bot"
	"github.com/reviosa/riverbank-bot/internal/config"
	"github.com/reviosa/riverbank-bot/internal/directory"
	"github.com/reviosa/riverbank-bot/internal/events"
	"github.com/reviosa/riverbank-bot/internal/events/kafka"
	"github.com/reviosa/riverbank-bot/internal/interfaces"
	"github.com/reviosa/riverbank-bot/internal/ledger"
	"github.com/reviosa/riverbank-bot/internal/storage"
	"github.com/reviosa/riverbank-bot/internal/storage/memory"
	"github.com/reviosa/riverbank-bot/internal/storage/postgres"
	"github.com/reviosa/riverbank-bot/internal/storage/sheets"
	"github.com/reviosa/riverbank-bot/internal/transfer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// An unreachable ledger store is fatal at startup; running against
	// a broken store would lose mutations.
	var store interfaces.RowStore
	switch cfg.StoreBackend {
	case "sheets":
		s, err := sheets.NewSheetsRowStore(ctx, cfg.CredentialsJSON, cfg.SpreadsheetID, cfg.SheetName)
		if err != nil {
			log.Fatal("ledger store: ", err)
		}
		store = storage.WithRetry(s)
	case "postgres":
		p, err := postgres.NewPostgresRowStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("ledger store: ", err)
		}
		store = storage.WithRetry(p)
	default:
		store = memory.NewMemoryRowStore()
	}

	policy, err := access.LoadPolicy(cfg.ManagersFile, cfg.OwnerID)
	if err != nil {
		log.Fatal("access policy: ", err)
	}

	var publisher interfaces.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		defer kp.Close()
		publisher = kp
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("telegram: ", err)
	}

	ldg := ledger.NewLedger(store, cfg.Currency)
	transfers := transfer.NewManager(store, ldg, cfg.TransferTTL)

	b := bot.New(bot.Deps{
		API:             api,
		Store:           store,
		Directory:       directory.NewDirectory(store),
		Ledger:          ldg,
		Transfers:       transfers,
		Policy:          policy,
		Publisher:       publisher,
		BankName:        cfg.BankName,
		Currency:        cfg.Currency,
		LogChannelID:    cfg.LogChannelID,
		AuditTopic:      cfg.AuditTopic,
		AutoDeleteDelay: cfg.AutoDeleteDelay,
	})

	// Keep-alive shim for hosting platforms that expect an HTTP port.
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	go func() {
		log.Printf("health endpoint listening on %s", cfg.HealthAddr)
		if err := http.ListenAndServe(cfg.HealthAddr, nil); err != nil {
			log.Printf("[WARN] health server: %v", err)
		}
	}()

	if err := b.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
