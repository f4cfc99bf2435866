package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mydiary/mydiary/internal/domain"
	"github.com/mydiary/mydiary/internal/markup"
	"github.com/mydiary/mydiary/internal/service"
)

type entryFlags struct {
	title   string
	content string
	mood    string
	tags    string
	date    string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "entry title")
	cmd.Flags().StringVarP(&f.content, "content", "c", "", "entry body (HTML or plain text); read from stdin when empty")
	cmd.Flags().StringVarP(&f.mood, "mood", "m", "", "mood: happy, sad, angry, calm, anxious, tired, excited, neutral")
	cmd.Flags().StringVar(&f.tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&f.date, "date", "", "entry date (default: now)")
}

func (a *App) newCommand() *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:     "new",
		Aliases: []string{"write"},
		Short:   "Write a new entry",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			journal, err := invoke[*service.JournalService](a)
			if err != nil {
				return err
			}

			if f.title == "" {
				if f.title, err = a.prompt("Title: "); err != nil {
					return err
				}
			}
			if f.content == "" {
				if f.content, err = a.prompt("Content: "); err != nil {
					return err
				}
			}

			res, err := journal.Create(ctx, service.EntryInput{
				Title:   f.title,
				Content: f.content,
				Mood:    domain.Mood(f.mood),
				Tags:    f.tags,
				Date:    f.date,
			})
			if res == nil {
				return err
			}
			if a.json {
				if jerr := a.printJSON(res); jerr != nil {
					return jerr
				}
				return err
			}
			successColor.Fprintf(a.out, "Saved %q (%s)\n", res.Entry.Title, res.Entry.ID)
			if res.Streak > 0 {
				fmt.Fprintf(a.out, "🔥 %s\n", streakLabel(res.Streak))
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) editCommand() *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			journal, err := invoke[*service.JournalService](a)
			if err != nil {
				return err
			}

			current, err := journal.Get(ctx, args[0])
			if err != nil {
				return err
			}
			in := service.EntryInput{
				Title:   current.Title,
				Content: current.Content,
				Mood:    current.Mood,
				Tags:    strings.Join(current.Tags, ", "),
				Date:    current.Date,
			}
			changed := cmd.Flags().Changed
			if changed("title") {
				in.Title = f.title
			}
			if changed("content") {
				in.Content = f.content
			}
			if changed("mood") {
				in.Mood = domain.Mood(f.mood)
			}
			if changed("tags") {
				in.Tags = f.tags
			}
			if changed("date") {
				in.Date = f.date
			}

			updated, err := journal.Edit(ctx, args[0], in)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(updated)
			}
			successColor.Fprintf(a.out, "Updated %q\n", updated.Title)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			journal, err := invoke[*service.JournalService](a)
			if err != nil {
				return err
			}
			if err := journal.Delete(ctx, args[0]); err != nil {
				return err
			}
			successColor.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *App) listCommand() *cobra.Command {
	var filter, date string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			journal, err := invoke[*service.JournalService](a)
			if err != nil {
				return err
			}
			var entries []domain.Entry
			if cmd.Flags().Changed("date") {
				entries, err = journal.EntriesOn(ctx, date, filter)
			} else {
				entries, err = journal.ListEntries(ctx, filter)
			}
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(entries)
			}
			if len(entries) == 0 {
				mutedColor.Fprintln(a.out, "No entries yet.")
				return nil
			}
			writeEntryTable(a.out, entries)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only entries whose title or content contains this text")
	cmd.Flags().StringVar(&date, "date", "", "only entries dated in this UTC year, month or day (YYYY, YYYY-MM or YYYY-MM-DD)")
	return cmd
}

func writeEntryTable(out io.Writer, entries []domain.Entry) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tMOOD\tTITLE\tTAGS")
	for _, e := range entries {
		info := e.Mood.Info()
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n",
			e.ID, e.Created().Format("2006-01-02 15:04"), info.Emoji, info.Label, e.Title, strings.Join(e.Tags, ", "))
	}
	tw.Flush()
}

func (a *App) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			journal, err := invoke[*service.JournalService](a)
			if err != nil {
				return err
			}
			e, err := journal.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(e)
			}

			info := e.Mood.Info()
			titleColor.Fprintln(a.out, e.Title)
			mutedColor.Fprintf(a.out, "%s · %s %s\n", e.Created().Format("Monday, January 2, 2006 15:04"), info.Emoji, info.Label)
			if len(e.Tags) > 0 {
				mutedColor.Fprintf(a.out, "Tags: %s\n", strings.Join(e.Tags, ", "))
			}
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, markup.ToMarkdown(e.Content))
			return nil
		},
	}
}

func (a *App) calendarCommand() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show which days have entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			journal, err := invoke[*service.JournalService](a)
			if err != nil {
				return err
			}
			days, err := journal.Calendar(ctx, month)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(days)
			}
			if len(days) == 0 {
				mutedColor.Fprintln(a.out, "No entries in this period.")
				return nil
			}
			for _, d := range days {
				titleColor.Fprintf(a.out, "%s (%d)\n", d.Day, len(d.Entries))
				for _, e := range d.Entries {
					fmt.Fprintf(a.out, "  %s %s  %s\n", e.Mood.Info().Emoji, e.Title, mutedColor.Sprint(e.ID))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show, as YYYY-MM (default: all)")
	return cmd
}

func streakLabel(n int) string {
	if n == 1 {
		return "1 day streak"
	}
	return fmt.Sprintf("%d day streak", n)
}
