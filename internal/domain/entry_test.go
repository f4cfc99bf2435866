package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Apply(t *testing.T) {
	e := Entry{
		ID:        "entry-1",
		Title:     "Morning",
		Content:   "<p>coffee</p>",
		Mood:      MoodCalm,
		Tags:      []string{"home"},
		Date:      "2026-10-01T08:00:00Z",
		CreatedAt: 10,
		UpdatedAt: 10,
	}

	title := "Evening"
	tags := []string{"work", "late"}
	e.Apply(EntryPatch{Title: &title, Tags: &tags})

	assert.Equal(t, "Evening", e.Title)
	assert.Equal(t, []string{"work", "late"}, e.Tags)
	assert.Equal(t, "<p>coffee</p>", e.Content)
	assert.Equal(t, MoodCalm, e.Mood)
	assert.Equal(t, "entry-1", e.ID)
	assert.Equal(t, int64(10), e.CreatedAt)

	tags[0] = "mutated"
	assert.Equal(t, "work", e.Tags[0], "patch slice must be copied")
}

func TestEntryPatch_IsEmpty(t *testing.T) {
	assert.True(t, EntryPatch{}.IsEmpty())
	mood := MoodSad
	assert.False(t, EntryPatch{Mood: &mood}.IsEmpty())
}

func TestEntry_Draft(t *testing.T) {
	e := Entry{ID: "x", Title: "t", Content: "c", Mood: MoodTired, Tags: []string{"a"}, Date: "d", CreatedAt: 1, UpdatedAt: 2}
	d := e.Draft()

	assert.Equal(t, EntryDraft{Title: "t", Content: "c", Mood: MoodTired, Tags: []string{"a"}, Date: "d"}, d)
	d.Tags[0] = "b"
	assert.Equal(t, "a", e.Tags[0])
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"work", []string{"work"}},
		{" work , family,, travel ", []string{"work", "family", "travel"}},
		{",,,", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.in), "input %q", tt.in)
	}
}

func TestDayKey_UsesLocalCalendar(t *testing.T) {
	local := time.Date(2026, 10, 15, 23, 30, 0, 0, time.Local)
	assert.Equal(t, "2026-10-15", DayKey(local))
}

func TestMood_Info(t *testing.T) {
	assert.Equal(t, "Calm", MoodCalm.Info().Label)
	assert.True(t, MoodExcited.Known())

	unknown := Mood("grateful")
	assert.False(t, unknown.Known())
	info := unknown.Info()
	assert.Equal(t, unknown, info.Mood)
	assert.Equal(t, "😐", info.Emoji)
}

func TestParseStorageMode(t *testing.T) {
	m, err := ParseStorageMode("cloud")
	assert.NoError(t, err)
	assert.Equal(t, StorageCloud, m)

	_, err = ParseStorageMode("ftp")
	assert.Error(t, err)
}

func TestSession_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{AccessExpiresAt: now.Add(time.Hour), RefreshExpiresAt: now.Add(24 * time.Hour)}

	assert.False(t, s.AccessExpired(now))
	assert.True(t, s.AccessExpired(now.Add(time.Hour)))
	assert.True(t, s.AccessExpired(now.Add(59*time.Minute+45*time.Second)), "within skew")
	assert.False(t, s.RefreshExpired(now))
	assert.True(t, s.RefreshExpired(now.Add(24*time.Hour)))
}
