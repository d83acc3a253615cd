package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/cohort/internal/app"
	"github.com/okian/cohort/internal/domain/model"
)

var (
	runAt     string
	groupWeek string
)

// runCmd performs one matching run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run matching once and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		at, err := parseDay(runAt)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		store, db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := service.NewFromConfig(cfg, store)
		if err != nil {
			return err
		}

		report, err := svc.RunMatching(ctx, at)
		if report != nil {
			if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
				return perr
			}
		}
		return err
	},
}

// groupsCmd lists the stored groups of a week
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the groups stored for a week",
	RunE: func(cmd *cobra.Command, _ []string) error {
		day, err := parseDay(groupWeek)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		store, db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		groups, err := store.GroupsForWeek(ctx, model.WeekOf(day))
		if err != nil {
			return err
		}
		if groups == nil {
			groups = []model.GroupRecord{}
		}
		return printJSON(cmd.OutOrStdout(), groups)
	},
}

func init() {
	runCmd.Flags().StringVar(&runAt, "at", "", "Run as of this day, YYYY-MM-DD (default today)")
	groupsCmd.Flags().StringVar(&groupWeek, "week", "", "Any day of the week, YYYY-MM-DD (default today)")
}

// parseDay parses YYYY-MM-DD. An empty value means now.
func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("day must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}
