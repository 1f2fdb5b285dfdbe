package utils

import (
	"fmt"
	"time"
)

// FormatPremium formats a signed net premium as credit or debit.
func FormatPremium(premium float64) string {
	if premium >= 0 {
		return fmt.Sprintf("%.4f cr", premium)
	}
	return fmt.Sprintf("%.4f dr", -premium)
}

// FormatDuration formats a duration as days and hours.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if days == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// FormatExpiry formats an expiration timestamp as a date.
func FormatExpiry(t time.Time) string {
	return t.Format("2006-01-02")
}
