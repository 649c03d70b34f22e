package tui

import (
	"fmt"
	"time"
)

// Ago renders the time elapsed between t and now in a compact form, e.g. "3m
// ago".
func Ago(now, t time.Time) string {
	diff := now.Sub(t)
	var (
		n      int
		suffix string
	)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		n = int(diff.Minutes())
		suffix = "m"
	case diff < 24*time.Hour:
		n = int(diff.Hours())
		suffix = "h"
	default:
		n = int(diff.Hours() / 24)
		suffix = "d"
	}
	return fmt.Sprintf("%d%s ago", n, suffix)
}
