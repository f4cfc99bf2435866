package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydiary/mydiary/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func testEntries() []domain.Entry {
	return []domain.Entry{
		{ID: "entry-1", Title: "Hiking the ridge", Content: "<p>Long climb, <strong>amazing</strong> views.</p>", Mood: domain.MoodExcited, Tags: []string{"outdoors", "weekend"}, Date: "2026-10-03T08:00:00Z", CreatedAt: 1000},
		{ID: "entry-2", Title: "Rainy Tuesday", Content: "<p>Stayed in and read about mountains.</p>", Mood: domain.MoodCalm, Tags: []string{"reading"}, Date: "2026-10-06T19:00:00Z", CreatedAt: 2000},
		{ID: "entry-3", Title: "Work stress", Content: "<p>Deadline moved up again.</p>", Mood: domain.MoodAnxious, Tags: []string{"work", "self-care"}, Date: "2026-10-07T22:00:00Z", CreatedAt: 3000},
	}
}

func hitIDs(res *SearchResult) []string {
	out := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, h.ID)
	}
	return out
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexAndDelete(t *testing.T) {
	index := setupTestIndex(t)
	entries := testEntries()

	require.NoError(t, index.IndexEntries(entries))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	// Re-indexing replaces rather than duplicates.
	require.NoError(t, index.IndexEntry(&entries[0]))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	require.NoError(t, index.DeleteEntry("entry-2"))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSearch_TitleAndContent(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))
	ctx := context.Background()

	res, err := index.Search(ctx, SearchParams{Query: "rainy"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "entry-2", res.Hits[0].ID)
	assert.Equal(t, "Rainy Tuesday", res.Hits[0].Title)

	// Content is indexed as text, without the markup.
	res, err = index.Search(ctx, SearchParams{Query: "amazing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-1"}, hitIDs(res))

	res, err = index.Search(ctx, SearchParams{Query: "strong"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits, "markup is not indexed")
}

func TestSearch_Stemming(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))

	res, err := index.Search(context.Background(), SearchParams{Query: "mountain"})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-2"}, hitIDs(res))
}

func TestSearch_Fuzzy(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))

	res, err := index.Search(context.Background(), SearchParams{Query: "clmb"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "entry-1")
}

func TestSearch_Prefix(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))

	res, err := index.Search(context.Background(), SearchParams{Query: "hik"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "entry-1")
}

func TestSearch_Filters(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))
	ctx := context.Background()

	res, err := index.Search(ctx, SearchParams{Moods: []string{"calm", "anxious"}, SortBy: "recent"})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-3", "entry-2"}, hitIDs(res))

	res, err = index.Search(ctx, SearchParams{Tags: []string{"self-care"}})
	require.NoError(t, err)
	require.Equal(t, []string{"entry-3"}, hitIDs(res))
	assert.Equal(t, []string{"work", "self-care"}, res.Hits[0].Tags)

	res, err = index.Search(ctx, SearchParams{Query: "reading"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "entry-2", "tags match free text")
}

func TestSearch_Facets(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))

	params := DefaultSearchParams()
	res, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Len(t, res.Facets.Moods, 3)
	assert.Len(t, res.Facets.Tags, 5)
}

func TestSearch_Highlight(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))

	res, err := index.Search(context.Background(), SearchParams{Query: "deadline", Highlight: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Contains(t, res.Hits[0].Highlights["text"], "<mark>")
}

func TestIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexEntries(testEntries()))

	require.NoError(t, index.Rebuild(testEntries()[:1]))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := index.Search(context.Background(), SearchParams{Query: "rainy"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestIndex_LargeBatch(t *testing.T) {
	index := setupTestIndex(t)

	entries := make([]domain.Entry, 1200)
	for i := range entries {
		entries[i] = domain.Entry{ID: fmt.Sprintf("entry-%d", i), Title: fmt.Sprintf("Day %d", i), Content: "<p>ok</p>", Mood: domain.MoodNeutral}
	}
	require.NoError(t, index.IndexEntries(entries))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), count)
}

func TestEntryToDocument(t *testing.T) {
	e := testEntries()[0]
	doc := EntryToDocument(&e)

	assert.Equal(t, "entry-1", doc.ID)
	assert.Equal(t, "Long climb, **amazing** views.", doc.Text)
	assert.Equal(t, "excited", doc.Mood)

	m := doc.ToMap()
	assert.Equal(t, []string{"outdoors", "weekend"}, m["tags"])
	assert.Equal(t, int64(1000), m["created_at"])
}

func TestDefaultSearchParams(t *testing.T) {
	p := DefaultSearchParams()
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, "relevance", p.SortBy)
	assert.True(t, p.IncludeFacets)
}
