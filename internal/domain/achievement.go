package domain

import (
	"slices"
	"time"
)

// AchievementID names a catalog entry. Persisted in the unlocked list.
type AchievementID string

const (
	AchievementFirstEntry     AchievementID = "first_entry"
	AchievementWeekStreak     AchievementID = "week_streak"
	AchievementMonthStreak    AchievementID = "month_streak"
	AchievementTenEntries     AchievementID = "ten_entries"
	AchievementFiftyEntries   AchievementID = "fifty_entries"
	AchievementHundredEntries AchievementID = "hundred_entries"
	AchievementAllMoods       AchievementID = "all_moods"
	AchievementNightWriter    AchievementID = "night_writer"
)

// MoodDiversityTarget is how many distinct moods unlock all_moods.
const MoodDiversityTarget = 6

// NightEndHour bounds the night_writer window: 00:00 up to (not including) 06:00.
const NightEndHour = 6

// ProgressSnapshot is everything an achievement rule may look at.
type ProgressSnapshot struct {
	EntryCount   int
	Streak       int
	DistinctMood int
	NightEntries int
}

// Achievement is a catalog row: display data plus the metric it tracks and
// the value that unlocks it.
type Achievement struct {
	ID          AchievementID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Target      int           `json:"target"`
	Milestone   bool          `json:"milestone,omitempty"`

	metric func(ProgressSnapshot) int
}

// Measure returns the metric the rule tracks, evaluated for s.
func (a Achievement) Measure(s ProgressSnapshot) int {
	if a.metric == nil {
		return 0
	}
	return a.metric(s)
}

// Satisfied reports whether s meets the target.
func (a Achievement) Satisfied(s ProgressSnapshot) bool {
	return a.Measure(s) >= a.Target
}

func entryCount(s ProgressSnapshot) int { return s.EntryCount }
func streakDays(s ProgressSnapshot) int { return s.Streak }
func distinctMoods(s ProgressSnapshot) int { return s.DistinctMood }
func nightEntries(s ProgressSnapshot) int { return s.NightEntries }

// Catalog lists every achievement in display order.
var Catalog = []Achievement{
	{ID: AchievementFirstEntry, Title: "First Step", Description: "Create your first diary entry", Icon: "✏️", Target: 1, metric: entryCount},
	{ID: AchievementWeekStreak, Title: "Week Warrior", Description: "Write for 7 days straight", Icon: "🔥", Target: 7, metric: streakDays},
	{ID: AchievementMonthStreak, Title: "Monthly Master", Description: "Write for 30 days straight", Icon: "🌟", Target: 30, Milestone: true, metric: streakDays},
	{ID: AchievementTenEntries, Title: "Getting Started", Description: "Create 10 entries", Icon: "📝", Target: 10, metric: entryCount},
	{ID: AchievementFiftyEntries, Title: "Dedicated Diarist", Description: "Create 50 entries", Icon: "📚", Target: 50, metric: entryCount},
	{ID: AchievementHundredEntries, Title: "Century Club", Description: "Create 100 entries", Icon: "💯", Target: 100, Milestone: true, metric: entryCount},
	{ID: AchievementAllMoods, Title: "Emotional Explorer", Description: "Use all mood types", Icon: "🎭", Target: MoodDiversityTarget, metric: distinctMoods},
	{ID: AchievementNightWriter, Title: "Night Owl", Description: "Write after midnight", Icon: "🌙", Target: 1, metric: nightEntries},
}

// LookupAchievement finds a catalog row by id.
func LookupAchievement(id AchievementID) (Achievement, bool) {
	i := slices.IndexFunc(Catalog, func(a Achievement) bool { return a.ID == id })
	if i < 0 {
		return Achievement{}, false
	}
	return Catalog[i], true
}

// AchievementProgress is the read-only projection shown to users.
type AchievementProgress struct {
	Achievement
	Unlocked bool `json:"unlocked"`
	Progress int  `json:"progress"`
}

// Snapshot computes the rule inputs from entries and the current streak.
// Night entries are judged by the local hour of CreatedAt.
func Snapshot(entries []Entry, streak int) ProgressSnapshot {
	moods := make(map[Mood]struct{}, len(entries))
	night := 0
	for i := range entries {
		moods[entries[i].Mood] = struct{}{}
		if IsNightHour(time.UnixMilli(entries[i].CreatedAt).Local()) {
			night++
		}
	}
	return ProgressSnapshot{
		EntryCount:   len(entries),
		Streak:       streak,
		DistinctMood: len(moods),
		NightEntries: night,
	}
}

// IsNightHour reports whether t falls in the night_writer window.
func IsNightHour(t time.Time) bool {
	return t.Hour() < NightEndHour
}
