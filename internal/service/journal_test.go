package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/storage"
)

func TestJournal_Create(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	res, err := h.journal.Create(ctx, EntryInput{
		Title:   "  Beach day ",
		Content: "<p>Sand everywhere.</p>",
		Tags:    " summer, ,family,  ",
	})
	require.NoError(t, err)

	e := res.Entry
	assert.Equal(t, "Beach day", e.Title)
	assert.Equal(t, []string{"summer", "family"}, e.Tags)
	assert.Equal(t, domain.MoodHappy, e.Mood)
	assert.Equal(t, domain.FormatDate(baseTime), e.Date)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, []domain.AchievementID{domain.AchievementFirstEntry}, ids(res.Unlocked))
	assert.Equal(t, []domain.AchievementID{domain.AchievementFirstEntry}, h.notifier.got)
}

func TestJournal_CreateValidation(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	_, err := h.journal.Create(ctx, EntryInput{Title: "   ", Content: "words"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Details, "title")

	_, err = h.journal.Create(ctx, EntryInput{Title: "Title", Content: "\n"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	all, err := h.router.GetAllEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing saved")

	state, err := h.streaks.Streak(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.Count)
}

func TestJournal_CreateKeepsUnknownMood(t *testing.T) {
	h := setupHarness(t)

	res, err := h.journal.Create(context.Background(), EntryInput{Title: "t", Content: "c", Mood: "melancholy"})
	require.NoError(t, err)
	assert.Equal(t, domain.Mood("melancholy"), res.Entry.Mood)
}

func TestJournal_CreateInCloudWithoutSession(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	require.NoError(t, h.router.SetMode(ctx, domain.StorageCloud))

	_, err := h.journal.Create(ctx, EntryInput{Title: "t", Content: "c"})
	require.ErrorIs(t, err, storage.ErrAuthRequired)

	state, err := h.streaks.Streak(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.Count, "streak untouched when the save fails")
}

func TestJournal_EditInCloudWithoutSession(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	res, err := h.journal.Create(ctx, EntryInput{Title: "Local", Content: "kept"})
	require.NoError(t, err)
	require.NoError(t, h.router.SetMode(ctx, domain.StorageCloud))

	_, err = h.journal.Edit(ctx, res.Entry.ID, EntryInput{Title: "Changed", Content: "c"})
	require.ErrorIs(t, err, storage.ErrAuthRequired)
	_, err = h.journal.Edit(ctx, "entry-unknown", EntryInput{Title: "Changed", Content: "c"})
	require.ErrorIs(t, err, storage.ErrAuthRequired)

	require.NoError(t, h.router.SetMode(ctx, domain.StorageLocal))
	got, err := h.journal.Get(ctx, res.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Local", got.Title)
}

func TestJournal_Edit(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	res, err := h.journal.Create(ctx, EntryInput{Title: "Draft", Content: "first", Mood: domain.MoodSad, Tags: "a", Date: "2026-10-01T08:00:00Z"})
	require.NoError(t, err)

	h.clock.Set(baseTime.Add(time.Hour))
	edited, err := h.journal.Edit(ctx, res.Entry.ID, EntryInput{Title: "Final", Content: "second", Tags: "b, c"})
	require.NoError(t, err)

	assert.Equal(t, "Final", edited.Title)
	assert.Equal(t, "second", edited.Content)
	assert.Equal(t, []string{"b", "c"}, edited.Tags)
	assert.Equal(t, domain.MoodSad, edited.Mood, "empty mood keeps the stored one")
	assert.Equal(t, "2026-10-01T08:00:00Z", edited.Date)
	assert.Equal(t, res.Entry.CreatedAt, edited.CreatedAt)
	assert.Greater(t, edited.UpdatedAt, edited.CreatedAt)

	_, err = h.journal.Edit(ctx, "entry-404", EntryInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJournal_Delete(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	res, err := h.journal.Create(ctx, EntryInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, h.journal.Delete(ctx, res.Entry.ID))
	require.NoError(t, h.journal.Delete(ctx, res.Entry.ID), "twice is fine")

	_, err = h.journal.Get(ctx, res.Entry.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJournal_ListEntries(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	for _, in := range []EntryInput{
		{Title: "Groceries", Content: "<p>Milk and ÉCLAIRS</p>"},
		{Title: "Straße trip", Content: "<p>long drive</p>"},
		{Title: "Quiet", Content: "<p>nothing much</p>"},
	} {
		_, err := h.journal.Create(ctx, in)
		require.NoError(t, err)
		h.clock.Set(h.clock.Now().Add(time.Minute))
	}

	all, err := h.journal.ListEntries(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Quiet", all[0].Title, "newest first")
	assert.Equal(t, "Groceries", all[2].Title)

	got, err := h.journal.ListEntries(ctx, "éclairs")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].Title)

	got, err = h.journal.ListEntries(ctx, "STRASSE")
	require.NoError(t, err)
	require.Len(t, got, 1, "full case folding")
	assert.Equal(t, "Straße trip", got[0].Title)

	got, err = h.journal.ListEntries(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJournal_EntriesOn(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	for _, in := range []EntryInput{
		{Title: "Spring walk", Content: "<p>blossoms</p>", Date: "2026-04-02T10:00:00Z"},
		{Title: "Autumn walk", Content: "<p>leaves</p>", Date: "2026-10-02T10:00:00Z"},
		{Title: "Autumn tea", Content: "<p>warm</p>", Date: "2026-10-09T18:00:00Z"},
	} {
		_, err := h.journal.Create(ctx, in)
		require.NoError(t, err)
	}

	october, err := h.journal.EntriesOn(ctx, "2026-10", "")
	require.NoError(t, err)
	require.Len(t, october, 2)
	assert.Equal(t, "Autumn tea", october[0].Title)
	assert.Equal(t, "Autumn walk", october[1].Title)

	walks, err := h.journal.EntriesOn(ctx, "2026", "WALK")
	require.NoError(t, err)
	require.Len(t, walks, 2)
	assert.Equal(t, "Autumn walk", walks[0].Title)
	assert.Equal(t, "Spring walk", walks[1].Title)

	day, err := h.journal.EntriesOn(ctx, " 2026-04-02 ", "")
	require.NoError(t, err)
	require.Len(t, day, 1)

	for _, bad := range []string{"", "26", "2026-13", "2026-10-1", "October"} {
		_, err := h.journal.EntriesOn(ctx, bad, "")
		assert.ErrorIs(t, err, domainerrors.ErrValidation, bad)
	}
}

func TestJournal_Calendar(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	days := []time.Time{
		time.Date(2026, 9, 30, 10, 0, 0, 0, time.Local),
		time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local),
		time.Date(2026, 10, 1, 21, 0, 0, 0, time.Local),
		time.Date(2026, 10, 3, 7, 0, 0, 0, time.Local),
	}
	for i, d := range days {
		h.clock.Set(d)
		_, err := h.journal.Create(ctx, EntryInput{Title: d.Format(time.Kitchen), Content: "c", Tags: string(rune('a' + i))})
		require.NoError(t, err)
	}

	all, err := h.journal.Calendar(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-09-30", all[0].Day)

	october, err := h.journal.Calendar(ctx, "2026-10")
	require.NoError(t, err)
	require.Len(t, october, 2)
	assert.Equal(t, "2026-10-01", october[0].Day)
	require.Len(t, october[0].Entries, 2)
	assert.Equal(t, "9:00PM", october[0].Entries[0].Title, "newest first within a day")
	assert.Equal(t, "2026-10-03", october[1].Day)

	_, err = h.journal.Calendar(ctx, "October")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
