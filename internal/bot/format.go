package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/reviosa/riverbank-bot/internal/ledger"
	"github.com/reviosa/riverbank-bot/internal/models"
)

// formatMoney renders an amount with thousands separators, e.g. ₱1,500.
func formatMoney(currency string, amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)

	sign := ""
	if neg {
		sign = "-"
	}
	return sign + currency + strings.Join(parts, ",")
}

// userLink builds a tg:// mention so the name is clickable even for
// members without a public handle.
func userLink(id int64, name string) string {
	return fmt.Sprintf("<a href=\"tg://user?id=%d\">%s</a>", id, html.EscapeString(name))
}

func fullName(u *tgbotapi.User) string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

const divider = "━━━━━━━━━━━━━━━━━━━━"

// accountDetails renders the /bal and /check card. The breakdown is
// optional and appears between balance and the footer.
func (b *Bot) accountDetails(acct models.Account, breakdown []ledger.Contribution) string {
	var sb strings.Builder
	sb.WriteString("💳 <b>Account Details</b>\n")
	sb.WriteString(divider + "\n")
	fmt.Fprintf(&sb, "👤 %s %s\n", html.EscapeString(acct.DisplayName), html.EscapeString(acct.Handle))
	fmt.Fprintf(&sb, "🆔 %d\n\n", acct.MemberID)
	fmt.Fprintf(&sb, "🧾 <b>Balance:</b> %s\n", formatMoney(b.currency, acct.Balance))
	for _, c := range breakdown {
		fmt.Fprintf(&sb, "☁️ %s: %s\n", html.EscapeString(c.Actor), formatMoney(b.currency, c.Amount))
	}
	sb.WriteString(divider + "\n")
	fmt.Fprintf(&sb, "🕐 Last updated: %s", html.EscapeString(acct.LastUpdated))
	return sb.String()
}

// historyView renders the recent transaction list with the total count.
func historyView(entries []string, total int) string {
	var sb strings.Builder
	sb.WriteString("🧾 <b>Transaction History</b>\n")
	sb.WriteString(divider + "\n\n")
	if len(entries) == 0 {
		sb.WriteString("No transactions yet.\n")
	} else {
		for _, e := range entries {
			fmt.Fprintf(&sb, "• %s\n", html.EscapeString(e))
		}
	}
	sb.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&sb, "total: %d transactions", total)
	return sb.String()
}

// accountKeyboard is the Transactions/Close row shown under account
// cards.
func accountKeyboard(memberID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧾 Transactions", fmt.Sprintf("tx_%d", memberID)),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Close", fmt.Sprintf("close_%d", memberID)),
		),
	)
}

func historyKeyboard(memberID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", fmt.Sprintf("back_%d", memberID)),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Close", fmt.Sprintf("close_%d", memberID)),
		),
	)
}

func transferKeyboard(transferID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✨ Confirm", "confirm_"+transferID),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", "cancel_"+transferID),
		),
	)
}

func (b *Bot) helpText(firstName string) string {
	return fmt.Sprintf(
		"🏦 <b>Welcome to %s!</b>\n"+
			divider+"\n"+
			"Hello, %s! 👋\n\n"+
			"💳 <b>Account</b>\n"+
			"  /new — Create account\n"+
			"  /bal — Check balance\n\n"+
			" <b>Info</b>\n"+
			"  /infobank — Bank stats\n"+
			"  /help — This menu\n\n"+
			divider+"\n"+
			"🔧 <b>Admin Commands</b>\n"+
			"  /add — Add balance (Reply or @user)\n"+
			"  /use — Deduct balance (Reply or @user)\n"+
			"  /check — View user info\n"+
			"  /transfer — Transfer (Admin Only)\n"+
			"  /promote — Promote (reply)\n"+
			"  /demote — Demote (reply)",
		html.EscapeString(b.bankName), html.EscapeString(firstName),
	)
}
