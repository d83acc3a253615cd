package scheduler_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/cohort/internal/adapters/scheduler"
	"github.com/okian/cohort/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNextWeekly(t *testing.T) {
	Convey("Given a Wednesday morning", t, func() {
		wed := time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)

		Convey("Then the next Monday 09:00 is five days later", func() {
			So(scheduler.NextWeekly(wed, time.Monday, 9), ShouldEqual, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
		})

		Convey("Then a later hour on the same day is today", func() {
			So(scheduler.NextWeekly(wed, time.Wednesday, 9), ShouldEqual, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
		})

		Convey("Then an earlier hour on the same day is next week", func() {
			So(scheduler.NextWeekly(wed, time.Wednesday, 8), ShouldEqual, time.Date(2026, 10, 21, 8, 0, 0, 0, time.UTC))
		})

		Convey("Then the exact trigger instant schedules the following week", func() {
			at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
			So(scheduler.NextWeekly(at, time.Wednesday, 9), ShouldEqual, at.AddDate(0, 0, 7))
		})

		Convey("Then non-UTC inputs are converted first", func() {
			loc := time.FixedZone("UTC+3", 3*3600)
			local := time.Date(2026, 10, 19, 11, 0, 0, 0, loc) // Monday 08:00 UTC
			So(scheduler.NextWeekly(local, time.Monday, 9), ShouldEqual, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
		})

		Convey("Then out-of-range hours are clamped", func() {
			So(scheduler.NextWeekly(wed, time.Thursday, 99).Hour(), ShouldEqual, 23)
		})
	})
}

func TestScheduler_Run(t *testing.T) {
	Convey("Given a scheduler whose clock sits just before the trigger", t, func() {
		trigger := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		clock := func() time.Time { return trigger.Add(-5 * time.Millisecond) }

		var mu sync.Mutex
		var calls []time.Time
		fired := make(chan struct{}, 8)
		job := func(_ context.Context, at time.Time) error {
			mu.Lock()
			calls = append(calls, at)
			mu.Unlock()
			select {
			case fired <- struct{}{}:
			default:
			}
			return errors.New("run failed")
		}

		s := scheduler.New(job, scheduler.WithWeekly(time.Monday, 9), scheduler.WithClock(clock))

		Convey("When it runs until cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- s.Run(ctx) }()

			<-fired
			<-fired
			cancel()
			err := <-done

			Convey("Then the job ran at the trigger instant and failures did not stop it", func() {
				So(err, ShouldBeNil)
				mu.Lock()
				defer mu.Unlock()
				So(len(calls), ShouldBeGreaterThanOrEqualTo, 2)
				So(calls[0], ShouldEqual, trigger)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Convey("Then Run returns immediately", func() {
				So(s.Run(ctx), ShouldBeNil)
			})
		})
	})
}
