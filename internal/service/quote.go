package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/store"
)

// QuoteService hands out the quote of the day.
type QuoteService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
	pick   func(n int) int
}

// NewQuoteService creates a new quote service.
func NewQuoteService(store *store.Store, logger *slog.Logger, opts ...Option) *QuoteService {
	o := newOptions(opts)
	return &QuoteService{
		store:  store,
		logger: logger,
		now:    o.now,
		pick:   o.pick,
	}
}

// DailyQuote returns today's quote. The first call on a local day draws a
// random quote and remembers it; later calls that day return the same one.
func (s *QuoteService) DailyQuote(ctx context.Context) (string, error) {
	today := domain.DayKey(s.now())

	var day, quote string
	if _, err := s.store.GetSetting(ctx, domain.SettingQuoteDate, &day); err != nil {
		return "", fmt.Errorf("read quote date: %w", err)
	}
	if day == today {
		if _, err := s.store.GetSetting(ctx, domain.SettingDailyQuote, &quote); err != nil {
			return "", fmt.Errorf("read daily quote: %w", err)
		}
		if quote != "" {
			return quote, nil
		}
		return domain.Quotes[0], nil
	}

	quote = domain.Quotes[s.pick(len(domain.Quotes))]
	if err := s.store.SetSetting(ctx, domain.SettingQuoteDate, today); err != nil {
		return "", fmt.Errorf("save quote date: %w", err)
	}
	if err := s.store.SetSetting(ctx, domain.SettingDailyQuote, quote); err != nil {
		return "", fmt.Errorf("save daily quote: %w", err)
	}
	s.logger.Debug("new quote of the day", "day", today)
	return quote, nil
}
