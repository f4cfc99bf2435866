// Package id generates identifiers for entries, sessions and tokens.
package id

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns "prefix-<nanoid>", e.g. "sess-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// UUID returns a random (v4) UUID string. Hosted entries use these.
func UUID() string {
	return uuid.NewString()
}

// EntryPrefix prefixes every locally created entry id.
const EntryPrefix = "entry-"

// EntryClock hands out time-derived entry ids ("entry-<unix millis>").
//
// Two entries created in the same millisecond would collide, so the clock
// remembers the last value it issued and moves forward past it. Ids therefore
// sort in creation order for a single writer.
type EntryClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewEntryClock creates a clock. A nil now uses time.Now.
func NewEntryClock(now func() time.Time) *EntryClock {
	if now == nil {
		now = time.Now
	}
	return &EntryClock{now: now}
}

// Next returns the next entry id and the millisecond it was derived from.
func (c *EntryClock) Next() (string, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return EntryPrefix + strconv.FormatInt(ms, 10), ms
}

// Observe tells the clock about an id that already exists (for example after
// reopening a store) so Next never reissues it.
func (c *EntryClock) Observe(entryID string) {
	ms, ok := EntryMillis(entryID)
	if !ok {
		return
	}
	c.mu.Lock()
	if ms > c.last {
		c.last = ms
	}
	c.mu.Unlock()
}

// EntryMillis extracts the millisecond component of a local entry id.
func EntryMillis(entryID string) (int64, bool) {
	if len(entryID) <= len(EntryPrefix) || entryID[:len(EntryPrefix)] != EntryPrefix {
		return 0, false
	}
	ms, err := strconv.ParseInt(entryID[len(EntryPrefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
