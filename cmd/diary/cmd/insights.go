package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mydiary/mydiary/internal/search"
	"github.com/mydiary/mydiary/internal/service"
)

func (a *App) searchCommand() *cobra.Command {
	params := search.DefaultSearchParams()
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over entries",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			svc, err := invoke[*service.SearchService](a)
			if err != nil {
				return err
			}

			params.Query = strings.Join(args, " ")
			res, err := svc.Search(ctx, params)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(res)
			}

			mutedColor.Fprintf(a.out, "%d result(s) in %dms\n", res.Total, res.TookMs)
			for _, hit := range res.Hits {
				titleColor.Fprintf(a.out, "%s  %s\n", hit.Title, mutedColor.Sprint(hit.ID))
				if hit.Date != "" {
					mutedColor.Fprintf(a.out, "  %s\n", hit.Date)
				}
				for field, fragment := range hit.Highlights {
					fmt.Fprintf(a.out, "  %s: %s\n", field, fragment)
				}
			}
			if len(res.Facets.Moods) > 0 {
				fmt.Fprint(a.out, "\nMoods:")
				for _, f := range res.Facets.Moods {
					fmt.Fprintf(a.out, " %s(%d)", f.Value, f.Count)
				}
				fmt.Fprintln(a.out)
			}
			if len(res.Facets.Tags) > 0 {
				fmt.Fprint(a.out, "Tags:")
				for _, f := range res.Facets.Tags {
					fmt.Fprintf(a.out, " %s(%d)", f.Value, f.Count)
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVar(&params.Moods, "mood", nil, "only these moods")
	fl.StringSliceVar(&params.Tags, "tag", nil, "only these tags")
	fl.IntVar(&params.Limit, "limit", params.Limit, "maximum results")
	fl.IntVar(&params.Offset, "offset", 0, "results to skip")
	fl.StringVar(&params.SortBy, "sort", params.SortBy, "relevance, recent or title")
	fl.StringVar(&params.SortOrder, "order", params.SortOrder, "asc or desc")
	return cmd
}

func (a *App) achievementsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show achievements and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireOpen(ctx); err != nil {
				return err
			}
			svc, err := invoke[*service.AchievementService](a)
			if err != nil {
				return err
			}
			progress, err := svc.GetAchievements(ctx)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(progress)
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, p := range progress {
				status := fmt.Sprintf("%d/%d", min(p.Progress, p.Target), p.Target)
				if p.Unlocked {
					status = "unlocked"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Icon, p.Title, status, p.Description)
			}
			return tw.Flush()
		},
	}
}

func (a *App) streakCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current writing streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := invoke[*service.StreakService](a)
			if err != nil {
				return err
			}
			state, err := svc.Streak(cmd.Context())
			if err != nil {
				return err
			}
			active := state.Active(time.Now())
			if a.json {
				return a.printJSON(map[string]any{
					"streakCount":   state.Count,
					"lastEntryDate": state.LastEntryDate,
					"active":        active,
				})
			}
			fmt.Fprintf(a.out, "🔥 %s\n", streakLabel(state.Count))
			if state.Count > 0 && !active {
				mutedColor.Fprintln(a.out, "Write today to start a new streak.")
			}
			return nil
		},
	}
}

func (a *App) quoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Show today's writing quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := invoke[*service.QuoteService](a)
			if err != nil {
				return err
			}
			quote, err := svc.DailyQuote(cmd.Context())
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(map[string]string{"quote": quote})
			}
			fmt.Fprintln(a.out, quote)
			return nil
		},
	}
}
