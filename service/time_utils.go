package service

import (
	"fmt"
	"time"

	"cactuscoin/models"
)

// WindowStart returns the UTC instant at which window began relative to now.
// Weeks start on Monday; every boundary is midnight in loc.
func WindowStart(window models.Window, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)

	var start time.Time
	switch window {
	case models.WindowWeek:
		daysSinceMonday := (int(local.Weekday()) + 6) % 7
		start = time.Date(local.Year(), local.Month(), local.Day()-daysSinceMonday, 0, 0, 0, 0, loc)
	case models.WindowMonth:
		start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	case models.WindowYear:
		start = time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Time{}, fmt.Errorf("unknown window %q", window)
	}

	return start.UTC(), nil
}
