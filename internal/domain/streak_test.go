package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousDayKey(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"mid month", time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local), "2026-10-14"},
		{"first of month", time.Date(2026, 3, 1, 0, 30, 0, 0, time.Local), "2026-02-28"},
		{"leap year", time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local), "2024-02-29"},
		{"new year", time.Date(2027, 1, 1, 1, 0, 0, 0, time.Local), "2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreviousDayKey(tt.now))
		})
	}
}

func TestStreakState_Active(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)

	assert.False(t, StreakState{}.Active(now))
	assert.True(t, StreakState{Count: 3, LastEntryDate: "2026-10-15"}.Active(now))
	assert.True(t, StreakState{Count: 3, LastEntryDate: "2026-10-14"}.Active(now))
	assert.False(t, StreakState{Count: 3, LastEntryDate: "2026-10-13"}.Active(now))
}
