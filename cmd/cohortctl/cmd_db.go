package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/cohort/internal/adapters/repository"
	"github.com/okian/cohort/internal/synthetic"
)

var (
	seedSize   int
	seedSeed   int64
	seedCities []string
)

// migrateCmd creates the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		_, db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.DatabaseDriver)
		return nil
	},
}

// seedCmd loads a synthetic pool
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a reproducible synthetic member pool",
	Long: `Insert a synthetic pool of eligible members for development.

The same --seed always produces the same members, so seeding twice skips
members that already exist.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		store, db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		pool := synthetic.New(
			synthetic.WithSize(seedSize),
			synthetic.WithSeed(seedSeed),
			synthetic.WithCities(seedCities...),
		).Pool()

		var added, skipped int
		for _, p := range pool {
			err := store.AddMember(ctx, repository.Member{
				CandidateProfile:    p,
				Verified:            true,
				Subscribed:          true,
				OnboardingCompleted: true,
			})
			switch {
			case errors.Is(err, repository.ErrMemberExists):
				skipped++
			case err != nil:
				return fmt.Errorf("seeding %s: %w", p.ID, err)
			default:
				added++
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d members, %d already present\n", added, skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVarP(&seedSize, "size", "n", 60, "Number of members")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 42, "Random seed")
	seedCmd.Flags().StringSliceVar(&seedCities, "cities", nil, "Restrict generated cities")
}
