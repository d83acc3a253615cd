package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cohort/internal/adapters/repository"
	service "github.com/okian/cohort/internal/app"
	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/internal/synthetic"
)

var (
	simWeeks  int
	simSize   int
	simSeed   int64
	simStart  string
	simCities []string
)

// simulateCmd runs consecutive weeks against an in-memory pool
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate consecutive weekly runs on a synthetic pool",
	Long: `Simulate matching over several weeks without touching the database.

Each week reuses the same synthetic pool, so the output shows how the
cooldown window shrinks the set of allowed pairs over time.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, err := parseDay(simStart)
		if err != nil {
			return err
		}
		if simWeeks < 1 {
			return fmt.Errorf("weeks must be positive, got %d", simWeeks)
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		pool := synthetic.New(
			synthetic.WithSize(simSize),
			synthetic.WithSeed(simSeed),
			synthetic.WithCities(simCities...),
		).Pool()
		members := make([]repository.Member, len(pool))
		for i, p := range pool {
			members[i] = repository.Member{CandidateProfile: p, Verified: true, Subscribed: true, OnboardingCompleted: true}
		}

		svc, err := service.NewFromConfig(cfg, repository.NewMemoryStore(repository.WithMembers(members...)))
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WEEK\tOUTCOME\tGROUPS\tMATCHED\tUNMATCHED\tEXCLUDED PAIRS\tMEAN SCORE")
		week := model.WeekOf(start)
		for i := 0; i < simWeeks; i++ {
			report, err := svc.RunMatching(ctx, week)
			if err != nil {
				return err
			}

			var matched int
			var scoreSum float64
			for _, g := range report.Groups {
				matched += len(g.MemberIDs)
				scoreSum += g.Score
			}
			mean := 0.0
			if len(report.Groups) > 0 {
				mean = scoreSum / float64(len(report.Groups))
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.3f\n",
				week.Format(time.DateOnly), report.Outcome, report.Persisted,
				matched, report.PoolSize-matched, report.ExcludedPairs, mean)

			week = week.AddDate(0, 0, 7)
		}
		return tw.Flush()
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&simWeeks, "weeks", "w", 8, "Number of consecutive weeks")
	simulateCmd.Flags().IntVarP(&simSize, "size", "n", 60, "Pool size")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 42, "Random seed")
	simulateCmd.Flags().StringVar(&simStart, "start", "", "First week, any day YYYY-MM-DD (default today)")
	simulateCmd.Flags().StringSliceVar(&simCities, "cities", nil, "Restrict generated cities")
}
