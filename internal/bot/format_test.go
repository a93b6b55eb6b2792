package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₱0", formatMoney("₱", 0))
	assert.Equal(t, "₱500", formatMoney("₱", 500))
	assert.Equal(t, "₱1,500", formatMoney("₱", 1500))
	assert.Equal(t, "₱1,234,567", formatMoney("₱", 1234567))
	assert.Equal(t, "-₱100", formatMoney("₱", -100))
	assert.Equal(t, "-₱12,000", formatMoney("₱", -12000))
}

func TestHistoryView(t *testing.T) {
	empty := historyView(nil, 0)
	assert.Contains(t, empty, "No transactions yet.")
	assert.Contains(t, empty, "total: 0 transactions")

	view := historyView([]string{"06-01-2024, 02:30 PM + ₱500 root"}, 12)
	assert.Contains(t, view, "• 06-01-2024, 02:30 PM + ₱500 root")
	assert.Contains(t, view, "total: 12 transactions")
}

func TestUserLinkEscapesName(t *testing.T) {
	link := userLink(42, "Ava <3")
	assert.Equal(t, "<a href=\"tg://user?id=42\">Ava &lt;3</a>", link)
}
