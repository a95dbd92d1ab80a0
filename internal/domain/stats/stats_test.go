package stats_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stagewise/stagewise/internal/domain/stats"
)

func TestPercentile(t *testing.T) {
	Convey("Given the values 1 through 5", t, func() {
		values := []float64{1, 2, 3, 4, 5}

		Convey("Then the 50th percentile is the middle element", func() {
			So(stats.Percentile(values, 50), ShouldEqual, 3)
		})

		Convey("And the 100th percentile equals the maximum", func() {
			So(stats.Percentile(values, 100), ShouldEqual, stats.Max(values))
		})

		Convey("And the 0th percentile clamps to the minimum", func() {
			So(stats.Percentile(values, 0), ShouldEqual, 1)
		})
	})

	Convey("Given unsorted input", t, func() {
		values := []float64{40, 10, 30, 20}

		Convey("Then the input order does not matter", func() {
			So(stats.Percentile(values, 50), ShouldEqual, 20)
			So(stats.Percentile(values, 75), ShouldEqual, 30)
		})

		Convey("And the original slice is left untouched", func() {
			_ = stats.Percentile(values, 95)
			So(values, ShouldResemble, []float64{40, 10, 30, 20})
		})
	})

	Convey("Given a single value", t, func() {
		Convey("Then every percentile returns it", func() {
			So(stats.Percentile([]float64{7}, 1), ShouldEqual, 7)
			So(stats.Percentile([]float64{7}, 50), ShouldEqual, 7)
			So(stats.Percentile([]float64{7}, 99), ShouldEqual, 7)
		})
	})

	Convey("Given no values", t, func() {
		Convey("Then the percentile is 0", func() {
			So(stats.Percentile(nil, 95), ShouldEqual, 0)
		})
	})
}

func TestMeanAndMedian(t *testing.T) {
	Convey("Given a list of durations", t, func() {
		values := []float64{10, 20, 30, 100}

		Convey("Then the mean averages all of them", func() {
			So(stats.Mean(values), ShouldEqual, 40)
		})

		Convey("And an even-length median takes the lower middle", func() {
			So(stats.Median(values), ShouldEqual, 20)
		})

		Convey("And an odd-length median takes the true middle", func() {
			So(stats.Median([]float64{30, 10, 20}), ShouldEqual, 20)
		})
	})

	Convey("Given no values", t, func() {
		Convey("Then mean and median are 0", func() {
			So(stats.Mean(nil), ShouldEqual, 0)
			So(stats.Median(nil), ShouldEqual, 0)
		})
	})
}

func TestMinMax(t *testing.T) {
	Convey("Given a list of values", t, func() {
		values := []float64{5, -2, 9, 3}

		Convey("Then min and max find the extremes", func() {
			So(stats.Min(values), ShouldEqual, -2)
			So(stats.Max(values), ShouldEqual, 9)
		})
	})

	Convey("Given no values", t, func() {
		Convey("Then min and max are 0", func() {
			So(stats.Min(nil), ShouldEqual, 0)
			So(stats.Max(nil), ShouldEqual, 0)
		})
	})
}

func TestRoundPercent(t *testing.T) {
	Convey("Given raw percentages", t, func() {
		Convey("Then values round to the nearest integer", func() {
			So(stats.RoundPercent(66.4), ShouldEqual, 66)
			So(stats.RoundPercent(66.5), ShouldEqual, 67)
		})

		Convey("And results clamp to the 0..100 range", func() {
			So(stats.RoundPercent(-3), ShouldEqual, 0)
			So(stats.RoundPercent(104.2), ShouldEqual, 100)
		})
	})
}
