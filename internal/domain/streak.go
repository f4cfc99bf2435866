package domain

import "time"

// StreakState is the persisted writing streak.
type StreakState struct {
	Count         int    `json:"streakCount"`
	LastEntryDate string `json:"lastEntryDate,omitempty"` // DayKey of the last counted entry
}

// Active reports whether the streak can still grow: the last counted entry
// was written today or yesterday.
func (s StreakState) Active(now time.Time) bool {
	if s.LastEntryDate == "" {
		return false
	}
	return s.LastEntryDate == DayKey(now) || s.LastEntryDate == PreviousDayKey(now)
}

// PreviousDayKey is the DayKey of the local calendar day before t. It steps
// by calendar date, not by 24 hours, so DST changes do not skip a day.
func PreviousDayKey(t time.Time) string {
	l := t.Local()
	return time.Date(l.Year(), l.Month(), l.Day()-1, 12, 0, 0, 0, l.Location()).Format(time.DateOnly)
}
