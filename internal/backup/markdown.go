package backup

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/markup"
)

// WriteMarkdown renders entries as one Markdown document, in the order given.
// Entry bodies are converted from their stored markup.
func WriteMarkdown(w io.Writer, entries []domain.Entry) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# My Diary")
	for i := range entries {
		e := &entries[i]
		info := e.Mood.Info()

		fmt.Fprintf(bw, "\n## %s\n\n", heading(e.Title))
		fmt.Fprintf(bw, "*%s* · %s %s\n", displayDate(e), info.Emoji, info.Label)
		if len(e.Tags) > 0 {
			fmt.Fprintf(bw, "\nTags: %s\n", strings.Join(e.Tags, ", "))
		}
		if body := markup.ToMarkdown(e.Content); body != "" {
			fmt.Fprintf(bw, "\n%s\n", body)
		}
		if i < len(entries)-1 {
			fmt.Fprintln(bw, "\n---")
		}
	}

	return bw.Flush()
}

func heading(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "Untitled"
	}
	return title
}

// displayDate prefers the user-facing date and falls back to creation time.
func displayDate(e *domain.Entry) string {
	if t, err := time.Parse(time.RFC3339Nano, e.Date); err == nil {
		return t.Local().Format("Monday, January 2, 2006")
	}
	if e.Date != "" {
		return e.Date
	}
	return e.Created().Format("Monday, January 2, 2006")
}
