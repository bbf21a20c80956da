package models

import (
	"fmt"
	"strings"
)

// Window selects the period used for movement queries
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// ParseWindow accepts a window name case-insensitively
func ParseWindow(s string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(s))) {
	case WindowWeek:
		return WindowWeek, nil
	case WindowMonth:
		return WindowMonth, nil
	case WindowYear:
		return WindowYear, nil
	default:
		return "", fmt.Errorf("unknown window %q: expected week, month or year", s)
	}
}

// Title returns the capitalised window name used in chart headings
func (w Window) Title() string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(string(w[:1])) + string(w[1:])
}
