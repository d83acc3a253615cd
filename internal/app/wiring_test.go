package service

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cohort/internal/adapters/repository"
	"github.com/okian/cohort/internal/config"
	"github.com/okian/cohort/internal/domain/scoring"
	"github.com/okian/cohort/internal/domain/types"
)

func TestNewFromConfig(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New()

		Convey("When weights do not sum to one", func() {
			cfg.WeightProximity = 0.9
			_, err := NewFromConfig(cfg, repository.NewMemoryStore())

			Convey("Then the service is not built", func() {
				So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
			})
		})

		Convey("When the service is built", func() {
			cfg.CooldownWeeks = 3
			cfg.RunTimeoutSeconds = 30
			svc, err := NewFromConfig(cfg, repository.NewMemoryStore())
			So(err, ShouldBeNil)

			Convey("Then the run parameters come from the configuration", func() {
				So(svc.cooldownWeeks, ShouldEqual, 3)
				So(svc.runTimeout, ShouldEqual, 30*time.Second)
			})

			Convey("Then a run over an empty store reports an insufficient pool", func() {
				report, err := svc.RunMatching(context.Background(), time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
				So(err, ShouldBeNil)
				So(report.Outcome, ShouldEqual, types.OutcomeInsufficientPool)
			})
		})
	})
}
