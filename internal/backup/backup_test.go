package backup_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydiary/mydiary/internal/backup"
	"github.com/mydiary/mydiary/internal/domain"
	domainerrors "github.com/mydiary/mydiary/internal/errors"
	"github.com/mydiary/mydiary/internal/storage"
	"github.com/mydiary/mydiary/internal/store"
)

func newRouter(t *testing.T) *storage.Router {
	t.Helper()

	st, err := store.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return storage.NewRouter(st, st, nil, nil)
}

func seed(t *testing.T, r *storage.Router) []domain.Entry {
	t.Helper()
	ctx := context.Background()

	drafts := []domain.EntryDraft{
		{Title: "First day", Content: "<p>Started a <em>diary</em>.</p>", Mood: domain.MoodExcited, Tags: []string{"start"}, Date: "2026-10-01T08:00:00Z"},
		{Title: "Rain", Content: "<p>Grey & wet.</p>", Mood: domain.MoodCalm, Tags: []string{}, Date: "2026-10-02T19:30:00Z"},
		{Title: "Odd mood", Content: "<ul><li>one</li><li>two</li></ul>", Mood: "melancholy", Tags: []string{"lists", "misc"}, Date: "2026-10-03T22:00:00Z"},
	}
	for _, d := range drafts {
		_, err := r.AddEntry(ctx, d)
		require.NoError(t, err)
	}

	all, err := r.GetAllEntries(ctx)
	require.NoError(t, err)
	return all
}

func TestExport_JSON(t *testing.T) {
	router := newRouter(t)
	entries := seed(t, router)
	dir := t.TempDir()
	svc := backup.NewService(router, dir, nil)

	res, err := svc.Export(context.Background(), backup.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, backup.FormatJSON, res.Format)
	assert.Equal(t, 3, res.Entries)
	assert.Equal(t, dir, filepath.Dir(res.Path))

	name := filepath.Base(res.Path)
	assert.True(t, strings.HasPrefix(name, "my-diary-backup-"))
	assert.True(t, strings.HasSuffix(name, ".json"))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": ", "two-space indent")
	assert.Contains(t, string(data), "Grey & wet.", "markup is not escaped")

	var decoded []domain.Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entries, decoded)
}

func TestExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, backup.WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExport_Markdown(t *testing.T) {
	router := newRouter(t)
	seed(t, router)
	svc := backup.NewService(router, t.TempDir(), nil)

	res, err := svc.Export(context.Background(), backup.ExportOptions{Format: backup.FormatMarkdown})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Path, ".md"))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "# My Diary\n"))
	assert.Contains(t, md, "## First day")
	assert.Contains(t, md, "Started a *diary*.")
	assert.Contains(t, md, "Tags: lists, misc")
	assert.Contains(t, md, "😐 Neutral", "unknown moods render with the fallback")
	assert.NotContains(t, md, "<p>")
	assert.Equal(t, 2, strings.Count(md, "\n---\n"))
}

func TestExport_UnknownFormat(t *testing.T) {
	svc := backup.NewService(newRouter(t), t.TempDir(), nil)

	_, err := svc.Export(context.Background(), backup.ExportOptions{Format: "pdf"})
	assert.Error(t, err)
}

func TestImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newRouter(t)
	original := seed(t, source)

	var buf bytes.Buffer
	require.NoError(t, backup.WriteJSON(&buf, original))

	target := newRouter(t)
	svc := backup.NewService(target, t.TempDir(), nil)
	res, err := svc.Import(ctx, &buf, backup.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Imported)

	restored, err := target.GetAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, restored, len(original))

	for i := range original {
		assert.Equal(t, original[i].Draft(), restored[i].Draft(), "all user fields preserved")
	}
}

func TestImport_OldestFirst(t *testing.T) {
	ctx := context.Background()
	input := `[
  {"id": "b", "title": "Second", "content": "2", "mood": "sad", "tags": [], "date": "d2", "createdAt": 2000, "updatedAt": 2000},
  {"id": "a", "title": "First", "content": "1", "mood": "happy", "date": "d1", "createdAt": 1000, "updatedAt": 1000}
]`

	router := newRouter(t)
	svc := backup.NewService(router, t.TempDir(), nil)
	_, err := svc.Import(ctx, strings.NewReader(input), backup.ImportOptions{})
	require.NoError(t, err)

	all, err := router.GetAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "First", all[0].Title)
	assert.Equal(t, []string{}, all[0].Tags, "missing tags import as empty")
	assert.NotEqual(t, "a", all[0].ID, "ids are reassigned")
}

func TestImport_SkipExistingAndDryRun(t *testing.T) {
	ctx := context.Background()
	router := newRouter(t)
	original := seed(t, router)
	svc := backup.NewService(router, t.TempDir(), nil)

	var buf bytes.Buffer
	require.NoError(t, backup.WriteJSON(&buf, original))
	data := buf.Bytes()

	res, err := svc.Import(ctx, bytes.NewReader(data), backup.ImportOptions{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 3, res.Skipped)

	res, err = svc.Import(ctx, bytes.NewReader(data), backup.ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)

	all, err := router.GetAllEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "neither run wrote anything")

	_, err = svc.Import(ctx, bytes.NewReader(data), backup.ImportOptions{})
	require.NoError(t, err)
	all, err = router.GetAllEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6, "plain import duplicates")
}

func TestImport_Invalid(t *testing.T) {
	svc := backup.NewService(newRouter(t), t.TempDir(), nil)

	for _, input := range []string{`{"title": "x"}`, `null`, `not json`, ``} {
		_, err := svc.Import(context.Background(), strings.NewReader(input), backup.ImportOptions{})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, input)
	}
}

func TestImport_CloudWithoutSession(t *testing.T) {
	ctx := context.Background()
	router := newRouter(t)
	require.NoError(t, router.SetMode(ctx, domain.StorageCloud))
	svc := backup.NewService(router, t.TempDir(), nil)

	res, err := svc.Import(ctx, strings.NewReader(`[{"title": "t", "content": "c"}]`), backup.ImportOptions{})
	require.ErrorIs(t, err, storage.ErrAuthRequired)
	assert.Equal(t, 0, res.Imported)
}

func TestImportFile_Missing(t *testing.T) {
	svc := backup.NewService(newRouter(t), t.TempDir(), nil)

	_, err := svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"), backup.ImportOptions{})
	assert.ErrorIs(t, err, backup.ErrBackupNotFound)
}

func TestListGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := backup.NewService(newRouter(t), dir, nil)

	older := backup.FileName(time.UnixMilli(1_700_000_000_000), backup.FormatJSON)
	newer := backup.FileName(time.UnixMilli(1_800_000_000_000), backup.FormatMarkdown)
	assert.Equal(t, "my-diary-backup-1700000000000.json", older)

	for _, name := range []string{older, newer, "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644))
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer, list[0].Name)
	assert.Equal(t, int64(1_700_000_000_000), list[1].CreatedAt.UnixMilli())

	_, err = svc.Get(ctx, "../"+older)
	assert.ErrorIs(t, err, backup.ErrBackupNotFound)

	require.NoError(t, svc.Delete(ctx, older))
	assert.ErrorIs(t, svc.Delete(ctx, older), backup.ErrBackupNotFound)
}

func TestList_MissingDir(t *testing.T) {
	svc := backup.NewService(newRouter(t), filepath.Join(t.TempDir(), "none"), nil)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFormat_Valid(t *testing.T) {
	tests := []struct {
		format backup.Format
		valid  bool
	}{
		{backup.FormatJSON, true},
		{backup.FormatMarkdown, true},
		{"pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.format.Valid())
		})
	}
}
