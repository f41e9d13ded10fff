package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"tipster/config"
	"tipster/domain/entities"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cfg := config.LoadCLI()

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate predictions on a running tipster API",
	}
	cmd.PersistentFlags().StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL")
	cmd.PersistentFlags().StringVar(&cfg.UserID, "user", cfg.UserID, "moderator user id")
	cmd.PersistentFlags().StringVar(&cfg.AccessCode, "access-code", cfg.AccessCode, "moderator access code")

	client := func() *adminClient { return newAdminClient(cfg) }

	cmd.AddCommand(
		&cobra.Command{
			Use:   "pending",
			Short: "List predictions awaiting validation",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				predictions, err := client().ListPending(ctx)
				if err != nil {
					return err
				}
				return renderPredictions(cmd.OutOrStdout(), predictions)
			},
		},
		&cobra.Command{
			Use:   "waiting",
			Short: "List predictions waiting for a result",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				predictions, err := client().ListWaiting(ctx)
				if err != nil {
					return err
				}
				return renderPredictions(cmd.OutOrStdout(), predictions)
			},
		},
		&cobra.Command{
			Use:   "validate <prediction-id>",
			Short: "Publish a pending prediction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				if err := client().Validate(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "prediction %s is now active\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "reject <prediction-id>",
			Short: "Reject and delete a pending prediction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				if err := client().Reject(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "prediction %s rejected\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:       "result <prediction-id> <success|failed|exact_success>",
			Short:     "Record the outcome of a finished match",
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{string(entities.ResultSuccess), string(entities.ResultFailed), string(entities.ResultExactSuccess)},
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				if err := client().RecordResult(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "prediction %s resolved as %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "sweep",
			Short: "Trigger the expiry sweep on the server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd)
				defer cancel()
				promoted, err := client().Sweep(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "promoted %d prediction(s)\n", promoted)
				return nil
			},
		},
		newAdminLeaderboardCmd(client),
	)
	return cmd
}

func newAdminLeaderboardCmd(client func() *adminClient) *cobra.Command {
	var oddsRange, sport string

	cmd := &cobra.Command{
		Use:   "leaderboard [global|total|avg_odds|exact_scores|odds_range|sport]",
		Short: "Show the leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) == 1 {
				mode = args[0]
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			board, err := client().Leaderboard(ctx, mode, oddsRange, sport)
			if err != nil {
				return err
			}
			return renderLeaderboard(cmd.OutOrStdout(), board.Entries)
		},
	}
	cmd.Flags().StringVar(&oddsRange, "odds-range", "", "odds bucket for odds_range mode")
	cmd.Flags().StringVar(&sport, "sport", "", "sport for sport mode")
	return cmd
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func renderPredictions(out io.Writer, predictions []*entities.PredictionWithAuthor) error {
	if len(predictions) == 0 {
		_, err := fmt.Fprintln(out, "no predictions")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTHOR\tSPORT\tMATCH\tKICK-OFF\tODDS\tPREDICTION")
	for _, p := range predictions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\t%.2f\t%s\n",
			p.ID, authorName(p.Author), p.Sport, p.MatchName, p.MatchDate, p.MatchTime, p.Odds, oneLine(p.PredictionText))
	}
	return tw.Flush()
}

func renderLeaderboard(out io.Writer, entries []*entities.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "leaderboard is empty")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tTOTAL\tWON\tEXACT\tRATE\tAVG ODDS")
	for _, e := range entries {
		name := e.UserID
		if e.Pseudo != nil {
			name = *e.Pseudo
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%.1f%%\t%.2f\n",
			e.Rank, name, e.TotalPredictions, e.SuccessPredictions, e.ExactScorePredictions, e.SuccessRate, e.AvgOdds)
	}
	return tw.Flush()
}

func authorName(a *entities.Author) string {
	switch {
	case a == nil:
		return "?"
	case a.Pseudo != nil:
		return *a.Pseudo
	case a.Email != nil:
		return *a.Email
	}
	return a.ID
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
