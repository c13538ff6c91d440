package gantt

import (
	"image/color"
	"strings"
)

// DefaultTradeColor fills bars whose trade has no palette entry.
var DefaultTradeColor = mustHex("#60a5fa")

var tradePalette = map[string]color.RGBA{
	"ELECTRICAL": mustHex("#fbbf24"),
	"HVAC":       mustHex("#34d399"),
	"PLUMBING":   mustHex("#60a5fa"),
	"STRUCTURE":  mustHex("#f472b6"),
	"GENERAL":    mustHex("#a78bfa"),
}

// TradeColor returns the bar color for a trade, ignoring case. A blank trade
// is GENERAL.
func TradeColor(trade string) color.RGBA {
	key := strings.ToUpper(strings.TrimSpace(trade))
	if key == "" {
		key = "GENERAL"
	}
	if c, ok := tradePalette[key]; ok {
		return c
	}
	return DefaultTradeColor
}

var (
	colorBackground = mustHex("#0f172a")
	colorPanel      = mustHex("#1e293b")
	colorGrid       = mustHex("#334155")
	colorText       = mustHex("#e2e8f0")
	colorMuted      = mustHex("#94a3b8")
	colorToday      = mustHex("#ef4444")
)
