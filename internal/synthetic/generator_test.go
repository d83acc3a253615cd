package synthetic_test

import (
	"testing"

	"github.com/okian/cohort/internal/synthetic"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator_Pool(t *testing.T) {
	Convey("Given a generator with a fixed seed", t, func() {
		gen := synthetic.New(synthetic.WithSize(25), synthetic.WithSeed(7))

		Convey("When a pool is generated twice", func() {
			first, second := gen.Pool(), gen.Pool()

			Convey("Then both pools are identical", func() {
				So(first, ShouldResemble, second)
			})

			Convey("And every candidate is well formed", func() {
				So(len(first), ShouldEqual, 25)
				ids := map[string]bool{}
				for _, c := range first {
					So(c.ID, ShouldNotBeBlank)
					So(c.Gender, ShouldNotBeBlank)
					So(len(c.Interests), ShouldBeGreaterThanOrEqualTo, 2)
					So(len(c.Availability), ShouldBeGreaterThanOrEqualTo, 1)
					So(ids[c.ID], ShouldBeFalse)
					ids[c.ID] = true
				}
			})
		})

		Convey("When a different seed is used", func() {
			other := synthetic.New(synthetic.WithSize(25), synthetic.WithSeed(8)).Pool()

			Convey("Then the pool differs", func() {
				So(other, ShouldNotResemble, gen.Pool())
			})
		})

		Convey("When cities are restricted", func() {
			pool := synthetic.New(synthetic.WithCities("berlin")).Pool()

			Convey("Then everyone lives there", func() {
				for _, c := range pool {
					So(c.City, ShouldEqual, "berlin")
				}
			})
		})
	})
}
