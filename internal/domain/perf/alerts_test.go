package perf_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/internal/domain/perf"
)

func TestAlerts(t *testing.T) {
	Convey("Given a recorder with stock thresholds", t, func() {
		r := perf.NewRecorder()

		Convey("When the buffer is empty", func() {
			Convey("Then no alerts fire", func() {
				So(r.Alerts(), ShouldBeEmpty)
			})
		})

		Convey("When API responses average 1500ms but p95 stays under 2000ms", func() {
			for i := 0; i < 10; i++ {
				r.Record("api-op", 1500, model.SampleAPI, nil)
			}

			alerts := r.Alerts()

			Convey("Then exactly the average warning fires, not the p95 error", func() {
				So(alerts, ShouldHaveLength, 1)
				So(alerts[0].Severity, ShouldEqual, perf.SeverityWarning)
				So(alerts[0].Metric, ShouldEqual, "api_avg_response_ms")
				So(alerts[0].Value, ShouldEqual, 1500)
				So(alerts[0].Threshold, ShouldEqual, 1000)
			})
		})

		Convey("When a slow tail breaches the p95 limit but not the average", func() {
			for i := 0; i < 90; i++ {
				r.Record("api-op", 10, model.SampleAPI, nil)
			}
			for i := 0; i < 10; i++ {
				r.Record("api-op", 3000, model.SampleAPI, nil)
			}

			alerts := r.Alerts()

			Convey("Then exactly the p95 breach fires, at error severity", func() {
				So(alerts, ShouldHaveLength, 1)
				So(alerts[0].Severity, ShouldEqual, perf.SeverityError)
				So(alerts[0].Metric, ShouldEqual, "api_p95_response_ms")
				So(alerts[0].Value, ShouldEqual, 3000)
			})
		})

		Convey("When a value lands exactly on a threshold", func() {
			r.Record("db-op", 200, model.SampleDatabase, nil)

			Convey("Then the strict comparison keeps it quiet", func() {
				So(r.Alerts(), ShouldBeEmpty)
			})
		})

		Convey("When the longest job exceeds its ceiling", func() {
			r.Record("nightly-rollup", 61_000, model.SampleJob, nil)

			alerts := r.Alerts()

			Convey("Then a max-job warning fires with a readable message", func() {
				So(alerts, ShouldHaveLength, 1)
				So(alerts[0].Metric, ShouldEqual, "job_max_duration_ms")
				So(alerts[0].Message, ShouldContainSubstring, "61000ms")
			})
		})
	})

	Convey("Given overridden thresholds", t, func() {
		r := perf.NewRecorder(perf.WithAlertThresholds(perf.AlertThresholds{AvgQueryMs: 50}))
		r.Record("db-op", 75, model.SampleDatabase, nil)

		Convey("Then the override applies and other limits keep their defaults", func() {
			alerts := r.Alerts()
			So(alerts, ShouldHaveLength, 1)
			So(alerts[0].Metric, ShouldEqual, "db_avg_query_ms")
			So(alerts[0].Threshold, ShouldEqual, 50)
		})
	})
}
