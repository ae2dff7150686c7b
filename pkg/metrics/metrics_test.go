package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the libero namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "libero")
				So(manager.subsystem, ShouldEqual, "analysis")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.name("x"), ShouldEqual, "test_prefix_x")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.customLabels["env"], ShouldEqual, "test")
			})

			Convey("Then metrics land on the supplied registry", func() {
				manager.matchesAnalyzed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_test_prefix_matches_analyzed_total" {
						found = true
						So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are passed to options", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "libero")
				So(manager.subsystem, ShouldEqual, "analysis")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording simulation metrics", func() {
			So(func() {
				RecordMatchAnalyzed(12.5)
				RecordMatchRejected("missing_events")
				RecordMatchIncomplete()
				RecordEventsProcessed(42)
				RecordEventSkipped("unparseable_score")
				RecordDataQualityIssue("unknown_scorer")
				RecordStreaks(3)
				RecordSeasonAggregation("matched")
				RecordMatchDuplicate()
			}, ShouldNotPanic)
		})

		Convey("When recording queue, upstream and repository metrics", func() {
			So(func() {
				UpdateQueueSize(4)
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueRejected("full")
				UpdateWorkerCount(2)
				RecordWorkerError()
				RecordUpstreamFetch("ok", 80)
				RecordRepositoryLatency("save_season", 1.2)
				UpdateLeaderboardSize(10)
				RecordHTTPRequest("/v1/analyze", "POST", "200")
				RecordHTTPRequestDuration("/v1/analyze", "POST", "200", 3.4)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			RecordStreaks(1)
			families, err := GetRegistry().Gather()

			Convey("Then the streak counter is exported", func() {
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "libero_analysis_serving_streaks_total")
			})
		})

		Convey("When taking a snapshot", func() {
			RecordStreaks(2)
			snap, err := Snapshot()

			Convey("Then families are summed by name", func() {
				So(err, ShouldBeNil)
				So(snap["libero_analysis_serving_streaks_total"], ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When gathering fails", func() {
			failing := prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
				return nil, errors.New("collector broke")
			})
			snap, err := snapshotOf(failing)

			Convey("Then the error is an observe failure", func() {
				So(snap, ShouldBeNil)
				So(errors.Is(err, ErrObserveFailed), ShouldBeTrue)
			})
		})

		Convey("When metrics are disabled", func() {
			prev := globalManager
			globalManager = NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(prometheus.NewRegistry()))
			defer func() { globalManager = prev }()

			So(func() {
				RecordMatchAnalyzed(1)
				RecordUpstreamFetch("error", 1)
				UpdateQueueSize(1)
			}, ShouldNotPanic)
		})
	})
}
