package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("kiosk"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"challenge": "grip"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered on that registry", func() {
				So(m, ShouldNotBeNil)
				m.submissions.WithLabelValues("accepted").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_kiosk_submissions_total")
				So(names, ShouldContain, "test_kiosk_entries")
			})
		})

		Convey("When registering the same manager twice on one registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the duplicate registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline outcomes", func() {
			before := testutil.ToFloat64(globalManager.submissions.WithLabelValues("missing_field"))
			RecordSubmission("missing_field")
			RecordSubmission("missing_field")

			Convey("Then the labelled counter grows", func() {
				after := testutil.ToFloat64(globalManager.submissions.WithLabelValues("missing_field"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When updating gauges", func() {
			UpdateEntries(7)
			UpdateQueueSize(3)
			UpdateQueueCapacity(64)
			UpdateDedupeSize(12)
			UpdateLiveSubscribers(2)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.entries), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.dedupeSize), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.liveSubscribers), ShouldEqual, 2)
			})
		})

		Convey("When recording the remaining series", func() {
			So(func() {
				RecordComparison("above")
				RecordSessionReset()
				RecordPipelineLatency(0.4)
				RecordStoreAppendLatency(0.01)
				RecordQueueRejection("full")
				RecordHTTPRequest("submissions", "POST", "201")
				RecordHTTPRequestDuration("submissions", "POST", "201", 1.5)
				RecordErrorByEndpoint("submissions", "POST", "client_error")
				RecordChartRender("ok")
				RecordLiveDropped()
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
