// Package search provides full-text search over diary entries using Bleve.
// Entries are indexed with their title, the plain text of their content,
// tags and mood, and searched with stemming, fuzzy and prefix matching.
package search

import (
	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/markup"
)

// EntryDocument is the indexed form of an entry.
type EntryDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Text      string   `json:"text"` // content converted from HTML to Markdown
	Tags      []string `json:"tags,omitempty"`
	Mood      string   `json:"mood"`
	Date      string   `json:"date"`
	CreatedAt int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map keyed by the field names the index
// mapping uses.
func (d *EntryDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"text":       d.Text,
		"mood":       d.Mood,
		"date":       d.Date,
		"created_at": d.CreatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// EntryToDocument converts a domain Entry to an EntryDocument.
func EntryToDocument(e *domain.Entry) *EntryDocument {
	return &EntryDocument{
		ID:        e.ID,
		Title:     e.Title,
		Text:      markup.ToMarkdown(e.Content),
		Tags:      e.Tags,
		Mood:      string(e.Mood),
		Date:      e.Date,
		CreatedAt: e.CreatedAt,
	}
}
