package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors use the quiz namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.selectionsServed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "quiz_rewards_selections_served_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("payout"),
				WithMetricPrefix("cli"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels reflect them", func() {
				manager.ledgerRetries.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var retries *dto.MetricFamily
				for _, f := range families {
					if f.GetName() == "test_payout_cli_ledger_retries_total" {
						retries = f
					}
				}
				So(retries, ShouldNotBeNil)
				So(retries.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
				So(retries.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
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
				So(manager.namespace, ShouldEqual, "quiz")
				So(manager.subsystem, ShouldEqual, "rewards")
				So(manager.histogramBuckets, ShouldResemble, DefaultLatencyBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		SetEnabled(true)

		Convey("When recording selections", func() {
			before := testutil.ToFloat64(globalManager.selectionsServed)
			RecordSelection(10)
			RecordSelectionError()

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.selectionsServed), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.selectionErrors), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording a plan", func() {
			RecordPlan("gold", 99, 1)
			RecordPayoutPlanned("gold_bars", "tiered", 750)

			Convey("Then gauges reflect the last plan", func() {
				So(testutil.ToFloat64(globalManager.cohortParticipants.WithLabelValues("gold")), ShouldEqual, 99)
				So(testutil.ToFloat64(globalManager.cohortExcluded.WithLabelValues("gold")), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.payoutAmountPlanned.WithLabelValues("gold_bars")), ShouldBeGreaterThanOrEqualTo, 750)
			})
		})

		Convey("When recording writer activity", func() {
			So(func() {
				RecordPayoutApplied("gems")
				RecordPayoutDuplicate()
				RecordPayoutFailed()
				RecordLedgerLatency(12.5)
				RecordLedgerRetry()
				UpdateQueueCapacity(128)
				UpdateQueueSize(3)
				RecordQueueEnqueue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(4)
				RecordHTTPRequest("/daily", "GET", "200")
				RecordHTTPRequestDuration("/daily", "GET", "200", 1.2)
				RecordErrorByComponent("writer", "credit")
			}, ShouldNotPanic)

			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 128)
			So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 4)
		})

		Convey("When the helpers are disabled", func() {
			SetEnabled(false)
			defer SetEnabled(true)
			UpdateQueueSize(42)

			Convey("Then nothing is recorded", func() {
				So(Enabled(), ShouldBeFalse)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldNotEqual, 42)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordSelection(1)
		families, err := GetRegistry().Gather()

		Convey("Then it exposes only quiz metrics", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "quiz_rewards_"), ShouldBeTrue)
			}
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the global manager rebuilt with a tool label", t, func() {
		SetEnabled(true)
		Init(WithNamespace("quiz"), WithCustomLabels(map[string]string{"tool": "server"}))
		RecordSelection(10)

		Convey("When the served registry is gathered", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			var served *dto.MetricFamily
			for _, f := range families {
				if f.GetName() == "quiz_rewards_selections_served_total" {
					served = f
				}
			}

			Convey("Then the series carries the label and the new count", func() {
				So(served, ShouldNotBeNil)
				m := served.GetMetric()[0]
				So(m.GetCounter().GetValue(), ShouldEqual, 1)
				So(m.GetLabel()[0].GetName(), ShouldEqual, "tool")
				So(m.GetLabel()[0].GetValue(), ShouldEqual, "server")
			})
		})
	})
}
