package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/reviosa/riverbank-bot/internal/models"
)

// target is a resolved command target: a ledger row plus the identity
// fields needed for replies and audit lines.
type target struct {
	row  int
	id   int64
	name string
}

var errNoTarget = errors.New("no target given")

// resolveTarget finds the account a command acts on, either from the
// replied-to message or from an explicit @handle argument.
func (b *Bot) resolveTarget(ctx context.Context, msg *tgbotapi.Message, handleArg string) (target, error) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		from := msg.ReplyToMessage.From
		row, err := b.dir.FindByMemberID(ctx, from.ID)
		if err != nil {
			return target{}, err
		}
		return target{row: row, id: from.ID, name: from.FirstName}, nil
	}

	if strings.HasPrefix(handleArg, "@") {
		row, err := b.dir.FindByHandle(ctx, handleArg)
		if err != nil {
			return target{}, err
		}
		acct, err := b.dir.Get(ctx, row)
		if err != nil {
			return target{}, err
		}
		return target{row: row, id: acct.MemberID, name: acct.DisplayName}, nil
	}

	return target{}, errNoTarget
}

func (b *Bot) cmdStart(msg *tgbotapi.Message) {
	b.reply(msg, b.helpText(msg.From.FirstName))
}

func (b *Bot) cmdNew(ctx context.Context, msg *tgbotapi.Message) {
	if !b.policy.CanModify(msg.From.ID, msg.From.UserName) {
		b.reply(msg, "✖️ Only the bank owner or managers can create accounts.")
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		b.reply(msg, "ℹ️ Reply to a user to create their account.")
		return
	}

	from := msg.ReplyToMessage.From
	handle := ""
	if from.UserName != "" {
		handle = "@" + from.UserName
	}
	link := userLink(from.ID, from.FirstName)
	acct := models.NewAccount(from.ID, fullName(from), handle, link, time.Now())

	if err := b.dir.Create(ctx, acct); err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	b.reply(msg, fmt.Sprintf("account created for %s — %d ☑️", link, from.ID))
	b.audit("new",
		fmt.Sprintf("✨ New account created for %s (%d) by %s", html.EscapeString(fullName(from)), from.ID, html.EscapeString(msg.From.FirstName)),
		msg.From.FirstName, from.ID, 0, 0)
}

// cmdAdjust handles /add (sign +1) and /use (sign -1). Zero and
// negative amounts pass through unchecked; overdraft is allowed.
func (b *Bot) cmdAdjust(ctx context.Context, msg *tgbotapi.Message, sign int64) {
	verb, word, emoji, prep := "add", "added", "💰", "to"
	if sign < 0 {
		verb, word, emoji, prep = "use", "deducted", "💸", "from"
	}

	if !b.policy.CanModify(msg.From.ID, msg.From.UserName) {
		b.reply(msg, "✖️ Only the bank owner or managers can modify balances.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	var handleArg, amountArg string
	switch {
	case msg.ReplyToMessage != nil:
		if len(args) < 1 {
			b.reply(msg, fmt.Sprintf("Usage: /%s [amount] (replying to a user)", verb))
			return
		}
		amountArg = args[0]
	case len(args) >= 2 && strings.HasPrefix(args[0], "@"):
		handleArg, amountArg = args[0], args[1]
	default:
		b.reply(msg, fmt.Sprintf("Usage:\n• Reply: /%s [amount]\n• Mention: /%s @user [amount]", verb, verb))
		return
	}

	amount, err := models.ParseAmount(amountArg)
	if err != nil {
		b.reply(msg, "Invalid amount. Use an integer.")
		return
	}

	tgt, err := b.resolveTarget(ctx, msg, handleArg)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	newBalance, err := b.ledger.ApplyDelta(ctx, tgt.row, sign*amount, msg.From.FirstName)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	b.reply(msg, fmt.Sprintf("%s %s %s.\nNew balance: %s.",
		html.EscapeString(tgt.name), word, formatMoney(b.currency, amount), formatMoney(b.currency, newBalance)))
	b.audit(verb,
		fmt.Sprintf("%s %s %s %s %s %s (%d)", emoji, html.EscapeString(msg.From.FirstName), word,
			formatMoney(b.currency, amount), prep, html.EscapeString(tgt.name), tgt.id),
		msg.From.FirstName, tgt.id, sign*amount, newBalance)
}

func (b *Bot) cmdCheck(ctx context.Context, msg *tgbotapi.Message) {
	if !b.policy.CanModify(msg.From.ID, msg.From.UserName) {
		b.reply(msg, "✖️ Only the bank owner or managers can check other accounts.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	handleArg := ""
	if len(args) > 0 {
		handleArg = args[0]
	}
	tgt, err := b.resolveTarget(ctx, msg, handleArg)
	if errors.Is(err, errNoTarget) {
		b.reply(msg, "Usage:\n• Reply: /check\n• Mention: /check @user")
		return
	}
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	acct, err := b.dir.Get(ctx, tgt.row)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}
	breakdown, err := b.ledger.Breakdown(ctx, tgt.row)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	kb := accountKeyboard(acct.MemberID)
	b.send(msg.Chat.ID, b.accountDetails(acct, breakdown), &kb)
}

func (b *Bot) cmdBal(ctx context.Context, msg *tgbotapi.Message) {
	row, err := b.dir.FindByMemberID(ctx, msg.From.ID)
	if errors.Is(err, models.ErrAccountNotFound) {
		b.reply(msg, "✖️ No account yet. Use /new to create one!")
		return
	}
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	acct, err := b.dir.Get(ctx, row)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	kb := accountKeyboard(acct.MemberID)
	b.send(msg.Chat.ID, b.accountDetails(acct, nil), &kb)
}

func (b *Bot) cmdTransfer(ctx context.Context, msg *tgbotapi.Message) {
	if !b.policy.CanModify(msg.From.ID, msg.From.UserName) {
		b.reply(msg, "✖️ Transfers are disabled for regular users. You can only check your balance.")
		return
	}

	senderRow, err := b.dir.FindByMemberID(ctx, msg.From.ID)
	if errors.Is(err, models.ErrAccountNotFound) {
		b.reply(msg, "✖️ You don't have an account yet. Use /new to create one.")
		return
	}
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg, "Usage: /transfer @username [amount]\nExample: /transfer @john 500")
		return
	}

	amount, err := models.ParseAmount(args[1])
	if err != nil {
		b.reply(msg, "✖️ Invalid amount. Use a number.")
		return
	}

	targetRow, err := b.dir.FindByHandle(ctx, args[0])
	if errors.Is(err, models.ErrAccountNotFound) {
		b.reply(msg, fmt.Sprintf("✖️ User %s not found or doesn't have an account.", html.EscapeString(args[0])))
		return
	}
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	targetAcct, err := b.dir.Get(ctx, targetRow)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	pt, balance, err := b.transfers.Propose(ctx, msg.From.ID, senderRow, targetAcct.MemberID, targetRow, targetAcct.DisplayName, amount)
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		b.reply(msg, "✖️ Amount must be greater than 0.")
		return
	case errors.Is(err, models.ErrInsufficientFunds):
		b.reply(msg, fmt.Sprintf("✖️ Insufficient balance. You only have %s.", formatMoney(b.currency, balance)))
		return
	case err != nil:
		b.reply(msg, b.userError(err))
		return
	}

	kb := transferKeyboard(pt.ID)
	b.send(msg.Chat.ID, fmt.Sprintf(
		"📤 <b>Transfer Confirmation</b>\n\n"+
			"Send <b>%s</b> to <b>%s</b>?\n\n"+
			"Your balance: %s\n"+
			"After transfer: %s",
		formatMoney(b.currency, amount), html.EscapeString(targetAcct.DisplayName),
		formatMoney(b.currency, balance), formatMoney(b.currency, balance-amount)), &kb)
}

func (b *Bot) cmdPromote(msg *tgbotapi.Message) {
	if msg.From.ID != b.policy.OwnerID() {
		b.reply(msg, "✖️ Only the bank owner can promote managers.")
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		b.reply(msg, "Reply to a user to promote them.")
		return
	}

	tgt := msg.ReplyToMessage.From
	if tgt.ID == b.policy.OwnerID() {
		b.reply(msg, "The owner cannot be modified.")
		return
	}
	if tgt.UserName == "" {
		b.reply(msg, "✖️ This user has no @username and cannot be promoted.")
		return
	}

	if err := b.policy.Promote(tgt.ID, tgt.UserName); err != nil {
		if errors.Is(err, models.ErrAlreadyManager) {
			b.reply(msg, fmt.Sprintf("%s is already a bank manager.", html.EscapeString(tgt.FirstName)))
			return
		}
		b.reply(msg, b.userError(err))
		return
	}

	sent := b.reply(msg, fmt.Sprintf("✨ %s (@%s) is now a Bank Manager!", html.EscapeString(tgt.FirstName), tgt.UserName))
	if sent != nil {
		b.deleter.schedule(sent.Chat.ID, sent.MessageID)
	}
	b.audit("promote",
		fmt.Sprintf("👑 %s (@%s) promoted to manager.", html.EscapeString(tgt.FirstName), tgt.UserName),
		msg.From.FirstName, tgt.ID, 0, 0)
}

func (b *Bot) cmdDemote(msg *tgbotapi.Message) {
	if msg.From.ID != b.policy.OwnerID() {
		b.reply(msg, "✖️ Only the bank owner can demote managers.")
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		b.reply(msg, "Reply to a user to demote them.")
		return
	}

	tgt := msg.ReplyToMessage.From
	if tgt.ID == b.policy.OwnerID() {
		b.reply(msg, "The owner cannot be modified.")
		return
	}

	if err := b.policy.Demote(tgt.ID, tgt.UserName); err != nil {
		if errors.Is(err, models.ErrNotManager) {
			b.reply(msg, fmt.Sprintf("%s is not a bank manager.", html.EscapeString(tgt.FirstName)))
			return
		}
		b.reply(msg, b.userError(err))
		return
	}

	sent := b.reply(msg, fmt.Sprintf("❎ %s (@%s) has been demoted.", html.EscapeString(tgt.FirstName), tgt.UserName))
	if sent != nil {
		b.deleter.schedule(sent.Chat.ID, sent.MessageID)
	}
	b.audit("demote",
		fmt.Sprintf("⚠️ %s (@%s) demoted from manager.", html.EscapeString(tgt.FirstName), tgt.UserName),
		msg.From.FirstName, tgt.ID, 0, 0)
}

func (b *Bot) cmdInfobank(ctx context.Context, msg *tgbotapi.Message) {
	rows, err := b.store.Rows(ctx)
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	totalAccounts := 0
	var totalValue int64
	for i, cells := range rows {
		acct, err := models.AccountFromRow(i+1, cells)
		if err != nil {
			continue
		}
		totalAccounts++
		totalValue += acct.Balance
	}

	ownerName := "Owner"
	if row, err := b.dir.FindByMemberID(ctx, b.policy.OwnerID()); err == nil {
		if acct, err := b.dir.Get(ctx, row); err == nil && acct.DisplayName != "" {
			ownerName = acct.DisplayName
		}
	}

	var managers strings.Builder
	for _, handle := range b.policy.Managers() {
		if row, err := b.dir.FindByHandle(ctx, handle); err == nil {
			if acct, err := b.dir.Get(ctx, row); err == nil {
				fmt.Fprintf(&managers, "• %s\n", userLink(acct.MemberID, acct.DisplayName))
				continue
			}
		}
		fmt.Fprintf(&managers, "• @%s\n", html.EscapeString(handle))
	}

	sent := b.reply(msg, fmt.Sprintf(
		"owner: %s\nmanagers:\n%s\ncurrency: %s\ntotal accounts: %d\ntotal value: %s",
		userLink(b.policy.OwnerID(), ownerName), managers.String(),
		b.currency, totalAccounts, formatMoney(b.currency, totalValue)))
	if sent != nil {
		b.deleter.schedule(sent.Chat.ID, sent.MessageID)
	}
}

func (b *Bot) cmdClear(ctx context.Context, msg *tgbotapi.Message) {
	if !b.policy.CanModify(msg.From.ID, msg.From.UserName) {
		b.reply(msg, "✖️ Only the bank owner or managers can clear accounts.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	handleArg := ""
	if len(args) > 0 {
		handleArg = args[0]
	}
	tgt, err := b.resolveTarget(ctx, msg, handleArg)
	if errors.Is(err, errNoTarget) {
		b.reply(msg, "Usage:\n• Reply: /clear\n• Mention: /clear @user")
		return
	}
	if err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	if err := b.ledger.Clear(ctx, tgt.row); err != nil {
		b.reply(msg, b.userError(err))
		return
	}

	b.reply(msg, fmt.Sprintf("account cleared for %s — %d ☑️", userLink(tgt.id, tgt.name), tgt.id))
	b.audit("clear",
		fmt.Sprintf("🗑️ %s cleared account for %s", html.EscapeString(msg.From.FirstName), html.EscapeString(tgt.name)),
		msg.From.FirstName, tgt.id, 0, 0)
}
