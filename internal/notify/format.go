package notify

import (
	"fmt"
	"html"
	"strings"

	"RentScanner/internal/domain"
)

// FormatMessage renders one listing as a Telegram HTML message.
func FormatMessage(l domain.Listing) string {
	parts := []string{
		fmt.Sprintf("🏠 <b>%s</b>", html.EscapeString(l.Title)),
		fmt.Sprintf("💰 %s 元/月", formatPrice(l.Price)),
		fmt.Sprintf("📍 %s", html.EscapeString(l.Address)),
	}

	if l.AreaName != "" {
		parts = append(parts, fmt.Sprintf("📐 %s", html.EscapeString(l.AreaName)))
	}
	if l.FloorName != "" {
		elevator := "無電梯"
		if l.Elevator == domain.FlagYes {
			elevator = "有電梯"
		}
		parts = append(parts, fmt.Sprintf("🏢 %s（%s）", html.EscapeString(l.FloorName), elevator))
	}
	if l.Layout != "" {
		parts = append(parts, fmt.Sprintf("🛏 %s", html.EscapeString(l.Layout)))
	}

	parts = append(parts, fmt.Sprintf("🔗 <a href=\"%s\">查看詳情</a>", l.URL))
	return strings.Join(parts, "\n")
}

func formatPrice(price int) string {
	if price <= 0 {
		return "?"
	}

	digits := fmt.Sprintf("%d", price)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
