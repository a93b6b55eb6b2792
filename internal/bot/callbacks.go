package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/reviosa/riverbank-bot/internal/ledger"
	"github.com/reviosa/riverbank-bot/internal/models"
)

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	b.ack(cq)

	data := cq.Data
	switch {
	case strings.HasPrefix(data, "tx_"):
		b.cbTransactions(ctx, cq, strings.TrimPrefix(data, "tx_"))
	case strings.HasPrefix(data, "back_"):
		b.cbAccountSummary(ctx, cq, strings.TrimPrefix(data, "back_"))
	case strings.HasPrefix(data, "close_"):
		b.edit(cq, fmt.Sprintf("✨ Thanks for using %s!", html.EscapeString(b.bankName)), nil)
	case strings.HasPrefix(data, "confirm_"):
		b.cbConfirmTransfer(ctx, cq, strings.TrimPrefix(data, "confirm_"))
	case strings.HasPrefix(data, "cancel_"):
		b.cbCancelTransfer(cq, strings.TrimPrefix(data, "cancel_"))
	}
}

func (b *Bot) cbTransactions(ctx context.Context, cq *tgbotapi.CallbackQuery, idArg string) {
	row, ok := b.callbackRow(ctx, cq, idArg)
	if !ok {
		return
	}

	entries, total, err := b.ledger.Recent(ctx, row, ledger.RecentLimit)
	if err != nil {
		b.alert(cq, "Ledger unavailable, try again.")
		return
	}

	memberID, _ := strconv.ParseInt(idArg, 10, 64)
	kb := historyKeyboard(memberID)
	b.edit(cq, historyView(entries, total), &kb)
}

func (b *Bot) cbAccountSummary(ctx context.Context, cq *tgbotapi.CallbackQuery, idArg string) {
	row, ok := b.callbackRow(ctx, cq, idArg)
	if !ok {
		return
	}

	acct, err := b.dir.Get(ctx, row)
	if err != nil {
		b.alert(cq, "Ledger unavailable, try again.")
		return
	}
	breakdown, err := b.ledger.Breakdown(ctx, row)
	if err != nil {
		b.alert(cq, "Ledger unavailable, try again.")
		return
	}

	kb := accountKeyboard(acct.MemberID)
	b.edit(cq, b.accountDetails(acct, breakdown), &kb)
}

// callbackRow resolves the member id embedded in a callback payload to
// a ledger row, alerting the user when it no longer exists.
func (b *Bot) callbackRow(ctx context.Context, cq *tgbotapi.CallbackQuery, idArg string) (int, bool) {
	memberID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		b.alert(cq, "User not found")
		return 0, false
	}
	row, err := b.dir.FindByMemberID(ctx, memberID)
	if err != nil {
		b.alert(cq, "User not found")
		return 0, false
	}
	return row, true
}

func (b *Bot) cbConfirmTransfer(ctx context.Context, cq *tgbotapi.CallbackQuery, transferID string) {
	res, err := b.transfers.Confirm(ctx, transferID, cq.From.ID)
	switch {
	case errors.Is(err, models.ErrTransferExpired):
		b.edit(cq, "✖️ This transfer has expired or already been processed.", nil)
		return
	case errors.Is(err, models.ErrTransferNotOwner):
		b.alert(cq, "This is not your transfer!")
		return
	case errors.Is(err, models.ErrInsufficientFunds):
		b.edit(cq, "✖️ Insufficient balance. Transfer cancelled.", nil)
		return
	case err != nil:
		b.edit(cq, b.userError(err), nil)
		return
	}

	b.edit(cq, fmt.Sprintf(
		"✨ <b>Transfer Successful!</b>\n\n"+
			"Sent: <b>%s</b> to <b>%s</b>\n"+
			"New balance: <b>%s</b>",
		formatMoney(b.currency, res.Amount), html.EscapeString(res.TargetName),
		formatMoney(b.currency, res.NewSenderBalance)), nil)
	b.audit("transfer",
		fmt.Sprintf("💸 %s transferred %s to %s", html.EscapeString(cq.From.FirstName),
			formatMoney(b.currency, res.Amount), html.EscapeString(res.TargetName)),
		cq.From.FirstName, cq.From.ID, -res.Amount, res.NewSenderBalance)
}

func (b *Bot) cbCancelTransfer(cq *tgbotapi.CallbackQuery, transferID string) {
	if err := b.transfers.Cancel(transferID, cq.From.ID); err != nil {
		b.alert(cq, "This is not your transfer!")
		return
	}
	b.edit(cq, "✖️ Transfer cancelled.", nil)
}

func (b *Bot) ack(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("[WARN] callback ack failed: %v", err)
	}
}

func (b *Bot) alert(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text)); err != nil {
		log.Printf("[WARN] callback alert failed: %v", err)
	}
}

func (b *Bot) edit(cq *tgbotapi.CallbackQuery, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	chatID := cq.Message.Chat.ID
	var edit tgbotapi.Chattable
	if markup != nil {
		m := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, text, *markup)
		m.ParseMode = tgbotapi.ModeHTML
		edit = m
	} else {
		m := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, text)
		m.ParseMode = tgbotapi.ModeHTML
		edit = m
	}
	// "message is not modified" comes back as an error; nothing to do.
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("[WARN] edit failed: %v", err)
	}
}
