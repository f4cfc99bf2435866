package store_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/store"
)

func draft(title string) domain.EntryDraft {
	return domain.EntryDraft{
		Title:   title,
		Content: "<p>" + title + "</p>",
		Mood:    domain.MoodCalm,
		Tags:    []string{"daily"},
		Date:    "2026-10-15T09:00:00Z",
	}
}

func TestAddEntry_AssignsIdAndTimestamps(t *testing.T) {
	clock := newFakeClock(time.UnixMilli(1_760_000_000_000))
	s := setupTestStore(t, store.WithClock(clock.Now))
	ctx := context.Background()

	e, err := s.AddEntry(ctx, draft("Morning pages"))
	require.NoError(t, err)

	assert.Equal(t, "entry-1760000000000", e.ID)
	assert.Equal(t, int64(1_760_000_000_000), e.CreatedAt)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	got, err := s.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, *e, *got)
}

func TestAddEntry_SameMillisecond(t *testing.T) {
	clock := newFakeClock(time.UnixMilli(42))
	s := setupTestStore(t, store.WithClock(clock.Now))
	ctx := context.Background()

	a, err := s.AddEntry(ctx, draft("a"))
	require.NoError(t, err)
	b, err := s.AddEntry(ctx, draft("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	n, err := s.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAddEntry_NilTagsStoredEmpty(t *testing.T) {
	s := setupTestStore(t)
	d := draft("no tags")
	d.Tags = nil

	e, err := s.AddEntry(context.Background(), d)
	require.NoError(t, err)
	assert.NotNil(t, e.Tags)
	assert.Empty(t, e.Tags)
}

func TestGetEntry_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetEntry(context.Background(), "entry-404")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateEntry_ChangesOnlyPatchedFields(t *testing.T) {
	clock := newFakeClock(time.UnixMilli(10_000))
	s := setupTestStore(t, store.WithClock(clock.Now))
	ctx := context.Background()

	before, err := s.AddEntry(ctx, draft("Original"))
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	title := "X"
	require.NoError(t, s.UpdateEntry(ctx, before.ID, domain.EntryPatch{Title: &title}))

	after, err := s.GetEntry(ctx, before.ID)
	require.NoError(t, err)

	assert.Equal(t, "X", after.Title)
	assert.Equal(t, int64(15_000), after.UpdatedAt)

	expected := *before
	expected.Title = "X"
	expected.UpdatedAt = after.UpdatedAt
	assert.Equal(t, expected, *after)
}

func TestUpdateEntry_AbsentIsNoop(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	title := "ghost"
	require.NoError(t, s.UpdateEntry(ctx, "entry-1", domain.EntryPatch{Title: &title}))

	n, err := s.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateEntry_ClockBehindCreation(t *testing.T) {
	clock := newFakeClock(time.UnixMilli(50_000))
	s := setupTestStore(t, store.WithClock(clock.Now))
	ctx := context.Background()

	e, err := s.AddEntry(ctx, draft("skewed"))
	require.NoError(t, err)

	clock.Advance(-time.Hour)
	mood := domain.MoodSad
	require.NoError(t, s.UpdateEntry(ctx, e.ID, domain.EntryPatch{Mood: &mood}))

	got, err := s.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.CreatedAt, got.UpdatedAt)
}

func TestDeleteEntry_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	e, err := s.AddEntry(ctx, draft("bye"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
	_, err = s.GetEntry(ctx, e.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
}

func TestGetAllEntries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	empty, err := s.GetAllEntries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i := range 5 {
		_, err := s.AddEntry(ctx, draft(fmt.Sprintf("entry %d", i)))
		require.NoError(t, err)
	}

	all, err := s.GetAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)

	titles := make([]string, len(all))
	for i, e := range all {
		titles[i] = e.Title
	}
	sort.Strings(titles)
	assert.Equal(t, []string{"entry 0", "entry 1", "entry 2", "entry 3", "entry 4"}, titles)
}

func TestEntriesByDate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	dates := []string{
		"2026-09-30T10:00:00Z",
		"2026-10-02T08:00:00Z",
		"2026-10-01T21:00:00Z",
		"2026-10-02T07:00:00Z",
	}
	ids := map[string]string{}
	for _, date := range dates {
		d := draft(date)
		d.Date = date
		e, err := s.AddEntry(ctx, d)
		require.NoError(t, err)
		ids[date] = e.ID
	}

	october, err := s.EntriesByDate(ctx, "2026-10", false)
	require.NoError(t, err)
	require.Len(t, october, 3)
	assert.Equal(t, "2026-10-01T21:00:00Z", october[0].Date)
	assert.Equal(t, "2026-10-02T07:00:00Z", october[1].Date)
	assert.Equal(t, "2026-10-02T08:00:00Z", october[2].Date)

	newestFirst, err := s.EntriesByDate(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, newestFirst, 4)
	assert.Equal(t, "2026-10-02T08:00:00Z", newestFirst[0].Date)
	assert.Equal(t, "2026-09-30T10:00:00Z", newestFirst[3].Date)
}

func TestEntriesByDate_FollowsUpdatesAndDeletes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	e, err := s.AddEntry(ctx, draft("moving"))
	require.NoError(t, err)

	newDate := "2025-01-01T00:00:00Z"
	require.NoError(t, s.UpdateEntry(ctx, e.ID, domain.EntryPatch{Date: &newDate}))

	old, err := s.EntriesByDate(ctx, "2026-10-15", false)
	require.NoError(t, err)
	assert.Empty(t, old)

	moved, err := s.EntriesByDate(ctx, "2025", false)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, e.ID, moved[0].ID)

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
	gone, err := s.EntriesByDate(ctx, "", false)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestEntryOperations_CanceledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.AddEntry(ctx, draft("late"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.GetAllEntries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntryOperations_ClosedStore(t *testing.T) {
	s, err := store.OpenInMemory(nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.AddEntry(ctx, draft("before close"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	all, err := s.GetAllEntries(ctx)
	assert.ErrorIs(t, err, badger.ErrDBClosed)
	assert.Nil(t, all)

	byDate, err := s.EntriesByDate(ctx, "", true)
	assert.ErrorIs(t, err, badger.ErrDBClosed)
	assert.Nil(t, byDate)

	_, err = s.CountEntries(ctx)
	assert.Error(t, err)
}
