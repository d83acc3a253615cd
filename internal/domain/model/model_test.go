package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	model "github.com/okian/cohort/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseGenderPreference(t *testing.T) {
	convey.Convey("Given stored preference strings", t, func() {
		cases := map[string]model.GenderPreference{
			"":               model.NoPreference,
			"none":           model.NoPreference,
			"no-preference":  model.NoPreference,
			"same":           model.SameGenderOnly,
			"SAME":           model.SameGenderOnly,
			"mixed-required": model.MixedRequired,
			" mixed ":        model.MixedRequired,
		}

		convey.Convey("Then known values map onto the enum", func() {
			for in, want := range cases {
				got, err := model.ParseGenderPreference(in)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("Then unknown values are rejected", func() {
			_, err := model.ParseGenderPreference("women-only-on-tuesdays")
			convey.So(errors.Is(err, model.ErrInvalidGenderPreference), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a profile decoded from JSON", t, func() {
		var p model.CandidateProfile
		err := json.Unmarshal([]byte(`{"id":"m1","gender":"f","gender_preference":"mixed"}`), &p)

		convey.Convey("Then the preference is parsed through the enum", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.GenderPreference, convey.ShouldEqual, model.MixedRequired)
			convey.So(p.Interests, convey.ShouldBeNil)
		})

		convey.Convey("Then an invalid preference fails decoding", func() {
			err := json.Unmarshal([]byte(`{"id":"m1","gender_preference":"sometimes"}`), &p)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestPairKeyAndExclusionSet(t *testing.T) {
	convey.Convey("Given two ids in either order", t, func() {
		convey.So(model.NewPairKey("b", "a"), convey.ShouldResemble, model.NewPairKey("a", "b"))
		convey.So(model.NewPairKey("b", "a").String(), convey.ShouldEqual, "a|b")
	})

	convey.Convey("Given an exclusion set", t, func() {
		set := model.ExclusionSet{}
		set.Add("x", "y")

		convey.Convey("Then membership is order independent", func() {
			convey.So(set.Contains("y", "x"), convey.ShouldBeTrue)
			convey.So(set.Contains("x", "z"), convey.ShouldBeFalse)
			convey.So(set.Len(), convey.ShouldEqual, 1)
		})

		convey.Convey("Then a nil set excludes nothing", func() {
			var empty model.ExclusionSet
			convey.So(empty.Contains("x", "y"), convey.ShouldBeFalse)
		})
	})
}

func TestWeekOf(t *testing.T) {
	convey.Convey("Given timestamps across a week", t, func() {
		monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

		convey.Convey("Then every day maps to that Monday", func() {
			for d := 0; d < 7; d++ {
				ts := monday.AddDate(0, 0, d).Add(13 * time.Hour)
				convey.So(model.WeekOf(ts), convey.ShouldEqual, monday)
			}
		})

		convey.Convey("Then the next Monday starts a new week", func() {
			convey.So(model.WeekOf(monday.AddDate(0, 0, 7)), convey.ShouldEqual, monday.AddDate(0, 0, 7))
		})
	})
}
