package service

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/mydiary/mydiary/internal/domain"
)

// ListEntries returns entries newest first by creation time. A non-empty
// query keeps entries whose title or content contains it, ignoring case.
func (s *JournalService) ListEntries(ctx context.Context, query string) ([]domain.Entry, error) {
	entries, err := s.router.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)

	return filterByText(entries, query), nil
}

// EntriesOn returns entries whose stored date falls in the UTC year, month
// or day given as "2006", "2006-01" or "2006-01-02", latest date first. A
// non-empty query filters them like ListEntries.
func (s *JournalService) EntriesOn(ctx context.Context, date, query string) ([]domain.Entry, error) {
	date = strings.TrimSpace(date)
	if !isDatePrefix(date) {
		return nil, s.validator.Var("date", date, "datetime=2006-01-02")
	}
	entries, err := s.router.EntriesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return filterByText(entries, query), nil
}

func isDatePrefix(v string) bool {
	for _, layout := range []string{"2006", "2006-01", time.DateOnly} {
		if len(v) == len(layout) {
			if _, err := time.Parse(layout, v); err == nil {
				return true
			}
		}
	}
	return false
}

func filterByText(entries []domain.Entry, query string) []domain.Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	fold := cases.Fold()
	needle := fold.String(query)
	out := entries[:0]
	for _, e := range entries {
		if strings.Contains(fold.String(e.Title), needle) || strings.Contains(fold.String(e.Content), needle) {
			out = append(out, e)
		}
	}
	return out
}

// CalendarDay is one local calendar day with entries.
type CalendarDay struct {
	Day     string         `json:"day"` // 2006-01-02
	Entries []domain.Entry `json:"entries"`
}

// Calendar groups entries by the local day they were created, oldest day
// first. month ("2006-01") narrows the result; empty means every month.
// Entries within a day are newest first.
func (s *JournalService) Calendar(ctx context.Context, month string) ([]CalendarDay, error) {
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, s.validator.Var("month", month, "datetime=2006-01")
		}
	}

	entries, err := s.router.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)

	byDay := map[string][]domain.Entry{}
	for _, e := range entries {
		day := domain.DayKey(e.Created())
		if month != "" && !strings.HasPrefix(day, month+"-") {
			continue
		}
		byDay[day] = append(byDay[day], e)
	}

	days := make([]CalendarDay, 0, len(byDay))
	for day, list := range byDay {
		days = append(days, CalendarDay{Day: day, Entries: list})
	}
	slices.SortFunc(days, func(a, b CalendarDay) int { return strings.Compare(a.Day, b.Day) })
	return days, nil
}

func sortNewestFirst(entries []domain.Entry) {
	slices.SortStableFunc(entries, func(a, b domain.Entry) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
}
