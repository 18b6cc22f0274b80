package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the dashboard defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.namespace, ShouldEqual, "chainaudit")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("demo"),
				WithSubsystem("ui"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "demo")
				So(manager.subsystem, ShouldEqual, "ui")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
				So(manager.customLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When creating with empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "chainaudit")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording page renders", func() {
			before := testutil.ToFloat64(globalManager.pageRenders.WithLabelValues("case-library", "api"))
			RecordPageRender("case-library", "api", 0.4)
			RecordPageRender("case-library", "api", 0.2)

			Convey("Then the counter should grow by two", func() {
				after := testutil.ToFloat64(globalManager.pageRenders.WithLabelValues("case-library", "api"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording notices", func() {
			before := testutil.ToFloat64(globalManager.notices.WithLabelValues("duplicate"))
			RecordNotice("duplicate")

			Convey("Then the duplicate outcome should be counted", func() {
				So(testutil.ToFloat64(globalManager.notices.WithLabelValues("duplicate"))-before, ShouldEqual, 1)
			})
		})

		Convey("When updating the session gauge", func() {
			UpdateActiveSessions(7)

			Convey("Then the gauge should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 7)
			})
		})

		Convey("When recording evictions", func() {
			before := testutil.ToFloat64(globalManager.sessionsEvicted.WithLabelValues("idle"))
			RecordSessionEvicted("idle", 3)
			RecordSessionEvicted("idle", 0)

			Convey("Then only positive counts should be added", func() {
				So(testutil.ToFloat64(globalManager.sessionsEvicted.WithLabelValues("idle"))-before, ShouldEqual, 3)
			})
		})

		Convey("When recording the remaining collectors", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordParameterUpdate("base_price")
					RecordCaseFilterRows(0)
					RecordSessionCreated()
					RecordHTTPRequest("/", "GET", "200")
					RecordHTTPRequestDuration("/", "GET", "200", 1.5)
					RecordErrorByEndpoint("views", "GET", "not_found")
					RecordErrorByType("not_found", "medium")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordSessionCreated()

		Convey("Then it should gather the dashboard collectors", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["chainaudit_dashboard_sessions_created_total"], ShouldBeTrue)
			So(names["go_goroutines"], ShouldBeFalse)
		})
	})
}
