package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesAt(n int, at time.Time, moods ...Mood) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{ID: fmt.Sprintf("entry-%d", i), Mood: MoodHappy, CreatedAt: at.UnixMilli()}
		if len(moods) > 0 {
			out[i].Mood = moods[i%len(moods)]
		}
	}
	return out
}

func TestCatalog_IsComplete(t *testing.T) {
	want := []AchievementID{
		AchievementFirstEntry, AchievementWeekStreak, AchievementMonthStreak,
		AchievementTenEntries, AchievementFiftyEntries, AchievementHundredEntries,
		AchievementAllMoods, AchievementNightWriter,
	}
	require.Len(t, Catalog, len(want))
	for i, a := range Catalog {
		assert.Equal(t, want[i], a.ID)
		assert.Positive(t, a.Target)
		assert.NotEmpty(t, a.Title)
	}
}

func TestAchievement_Satisfied(t *testing.T) {
	tests := []struct {
		id   AchievementID
		snap ProgressSnapshot
		want bool
	}{
		{AchievementFirstEntry, ProgressSnapshot{EntryCount: 0}, false},
		{AchievementFirstEntry, ProgressSnapshot{EntryCount: 1}, true},
		{AchievementTenEntries, ProgressSnapshot{EntryCount: 9}, false},
		{AchievementHundredEntries, ProgressSnapshot{EntryCount: 100}, true},
		{AchievementWeekStreak, ProgressSnapshot{Streak: 6}, false},
		{AchievementWeekStreak, ProgressSnapshot{Streak: 7}, true},
		{AchievementMonthStreak, ProgressSnapshot{Streak: 30}, true},
		{AchievementAllMoods, ProgressSnapshot{DistinctMood: 5}, false},
		{AchievementAllMoods, ProgressSnapshot{DistinctMood: 6}, true},
		{AchievementNightWriter, ProgressSnapshot{NightEntries: 1}, true},
		{AchievementNightWriter, ProgressSnapshot{}, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%+v", tt.id, tt.snap), func(t *testing.T) {
			a, ok := LookupAchievement(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Satisfied(tt.snap))
		})
	}
}

func TestLookupAchievement_Unknown(t *testing.T) {
	_, ok := LookupAchievement("speed_writer")
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	noon := time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local)
	night := time.Date(2026, 10, 15, 3, 0, 0, 0, time.Local)

	entries := entriesAt(4, noon, MoodHappy, MoodSad, Mood("grateful"))
	entries = append(entries, entriesAt(1, night, MoodHappy)...)

	snap := Snapshot(entries, 4)
	assert.Equal(t, 5, snap.EntryCount)
	assert.Equal(t, 4, snap.Streak)
	assert.Equal(t, 3, snap.DistinctMood, "unknown moods still count")
	assert.Equal(t, 1, snap.NightEntries)
}

func TestIsNightHour(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2026, 1, 1, h, m, 0, 0, time.Local) }

	assert.True(t, IsNightHour(day(0, 0)))
	assert.True(t, IsNightHour(day(5, 59)))
	assert.False(t, IsNightHour(day(6, 0)))
	assert.False(t, IsNightHour(day(23, 59)))
}
