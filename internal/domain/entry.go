package domain

import (
	"strings"
	"time"
)

// Entry is one diary record. Timestamps are Unix epoch milliseconds in both
// backends; the JSON form is also the export format.
type Entry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"` // rich-text markup (HTML)
	Mood      Mood     `json:"mood"`
	Tags      []string `json:"tags"`
	Date      string   `json:"date"` // user-facing date, RFC 3339 by default
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Created returns CreatedAt as a time in the local zone.
func (e *Entry) Created() time.Time {
	return time.UnixMilli(e.CreatedAt).Local()
}

// Updated returns UpdatedAt as a time in the local zone.
func (e *Entry) Updated() time.Time {
	return time.UnixMilli(e.UpdatedAt).Local()
}

// Draft returns the caller-owned fields of e, as they would be re-inserted
// into another backend.
func (e *Entry) Draft() EntryDraft {
	return EntryDraft{
		Title:   e.Title,
		Content: e.Content,
		Mood:    e.Mood,
		Tags:    append([]string(nil), e.Tags...),
		Date:    e.Date,
	}
}

// Apply merges the non-nil fields of p into e. It does not touch the id or
// either timestamp.
func (e *Entry) Apply(p EntryPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Mood != nil {
		e.Mood = *p.Mood
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
}

// EntryDraft holds the fields a caller supplies when creating an entry.
type EntryDraft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    Mood     `json:"mood"`
	Tags    []string `json:"tags"`
	Date    string   `json:"date"`
}

// EntryPatch is a partial update. Nil fields are left unchanged.
type EntryPatch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Mood    *Mood     `json:"mood,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Date    *string   `json:"date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Mood == nil && p.Tags == nil && p.Date == nil
}

// ParseTags splits a comma-separated tag line, trimming whitespace and
// dropping empty labels. Order is preserved.
func ParseTags(line string) []string {
	tags := []string{}
	for _, part := range strings.Split(line, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FormatDate renders t the way new entries store their date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DayKey is the local calendar day of t, used by streaks and the calendar.
func DayKey(t time.Time) string {
	return t.Local().Format(time.DateOnly)
}
