package dto

import (
	"time"

	"github.com/mydiary/mydiary/internal/domain"
)

// Entry is a hosted diary entry on the wire.
type Entry struct {
	ID        string    `json:"id" doc:"Entry ID (UUID)"`
	UserID    string    `json:"user_id" doc:"Owner"`
	Title     string    `json:"title" doc:"Title"`
	Content   string    `json:"content" doc:"Rich-text content"`
	Mood      string    `json:"mood" doc:"Mood name"`
	Tags      []string  `json:"tags" doc:"Tag labels"`
	Date      string    `json:"date" doc:"User-facing date"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ToDomain converts to the shape the rest of the diary uses: camelCase
// fields and epoch-millisecond timestamps.
func (e Entry) ToDomain() domain.Entry {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Entry{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		Mood:      domain.Mood(e.Mood),
		Tags:      tags,
		Date:      e.Date,
		CreatedAt: e.CreatedAt.UnixMilli(),
		UpdatedAt: e.UpdatedAt.UnixMilli(),
	}
}

// EntryList is the body of GET /entries.
type EntryList struct {
	Entries []Entry `json:"entries" doc:"Entries, newest date first"`
}

// EntryCreate is the body of POST /entries.
type EntryCreate struct {
	Title   string   `json:"title" maxLength:"500" doc:"Title"`
	Content string   `json:"content" doc:"Rich-text content"`
	Mood    string   `json:"mood,omitempty" maxLength:"32" doc:"Mood name"`
	Tags    []string `json:"tags,omitempty" maxItems:"100" doc:"Tag labels"`
	Date    string   `json:"date,omitempty" maxLength:"64" doc:"User-facing date"`
}

// EntryCreateFromDraft builds a create body.
func EntryCreateFromDraft(d domain.EntryDraft) EntryCreate {
	return EntryCreate{
		Title:   d.Title,
		Content: d.Content,
		Mood:    string(d.Mood),
		Tags:    d.Tags,
		Date:    d.Date,
	}
}

// Draft converts the body to a domain draft.
func (c EntryCreate) Draft() domain.EntryDraft {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.EntryDraft{
		Title:   c.Title,
		Content: c.Content,
		Mood:    domain.Mood(c.Mood),
		Tags:    tags,
		Date:    c.Date,
	}
}

// EntryPatch is the body of PATCH /entries/{id}. Absent fields are kept.
type EntryPatch struct {
	Title   *string   `json:"title,omitempty" maxLength:"500" doc:"Title"`
	Content *string   `json:"content,omitempty" doc:"Rich-text content"`
	Mood    *string   `json:"mood,omitempty" maxLength:"32" doc:"Mood name"`
	Tags    *[]string `json:"tags,omitempty" maxItems:"100" doc:"Tag labels"`
	Date    *string   `json:"date,omitempty" maxLength:"64" doc:"User-facing date"`
}

// EntryPatchFromDomain builds a patch body.
func EntryPatchFromDomain(p domain.EntryPatch) EntryPatch {
	out := EntryPatch{Title: p.Title, Content: p.Content, Tags: p.Tags, Date: p.Date}
	if p.Mood != nil {
		m := string(*p.Mood)
		out.Mood = &m
	}
	return out
}

// Patch converts the body to a domain patch.
func (p EntryPatch) Patch() domain.EntryPatch {
	out := domain.EntryPatch{Title: p.Title, Content: p.Content, Tags: p.Tags, Date: p.Date}
	if p.Mood != nil {
		m := domain.Mood(*p.Mood)
		out.Mood = &m
	}
	return out
}
