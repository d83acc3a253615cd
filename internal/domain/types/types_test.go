package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/cohort/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunReport(t *testing.T) {
	Convey("Given a run report", t, func() {
		report := types.RunReport{
			RunID:      "run-1",
			WeekOf:     time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			Outcome:    types.OutcomeFormed,
			Attempted:  2,
			Persisted:  1,
			Failed:     1,
			Duration:   1500 * time.Millisecond,
			DurationMS: 1500,
			Groups:     []types.GroupReport{{ID: "g1", MemberIDs: []string{"a", "b", "c"}, Score: 0.7, Persisted: true}},
		}

		Convey("When it is encoded as JSON", func() {
			raw, err := json.Marshal(report)
			So(err, ShouldBeNil)
			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)

			Convey("Then it uses snake_case keys and hides the raw duration", func() {
				So(decoded["run_id"], ShouldEqual, "run-1")
				So(decoded["outcome"], ShouldEqual, "formed")
				So(decoded["week_of"], ShouldEqual, "2026-10-12T00:00:00Z")
				So(decoded["duration_ms"], ShouldEqual, 1500.0)
				So(decoded, ShouldNotContainKey, "Duration")
				So(decoded, ShouldNotContainKey, "error")
			})
		})

		Convey("Then a run with both stored and failed groups is partial", func() {
			So(report.Partial(), ShouldBeTrue)
			report.Failed = 0
			So(report.Partial(), ShouldBeFalse)
		})
	})
}
