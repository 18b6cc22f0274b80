package scenario_test

import (
	"math"
	"testing"

	"github.com/okian/chainaudit/internal/domain/model"
	"github.com/okian/chainaudit/internal/domain/scenario"
	"github.com/okian/chainaudit/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func round1(v float64) float64 { return math.Round(v*10) / 10 }

var sampleCases = []model.CaseRecord{
	{CaseID: "C-2023-045", ConflictType: model.ConflictTriple, Disposition: "有条件通过", DurationHours: 24, Outcome: "成功合作"},
	{CaseID: "C-2024-012", ConflictType: model.ConflictDual, Disposition: "调整后通过", DurationHours: 8, Outcome: "进行中"},
	{CaseID: "C-2024-018", ConflictType: model.ConflictSingle, Disposition: "自动处理", DurationHours: 2, Outcome: "已终止"},
}

func TestPriceDeviation(t *testing.T) {
	Convey("Given the sample supplier price of 15800 yuan", t, func() {
		const price = 15800.0

		Convey("When the base price is the default 14.2", func() {
			dev := scenario.PriceDeviation(price, 14.2)

			Convey("Then the deviation should be about -88.9%", func() {
				So(round1(dev), ShouldEqual, -88.9)
				So(scenario.FlagDeviation(dev), ShouldEqual, scenario.ExceedsThreshold)
			})
		})

		Convey("When sweeping the base price slider range", func() {
			Convey("Then the formula should hold at every step", func() {
				for b := types.MinBasePrice; b <= types.MaxBasePrice; b += 0.1 {
					want := (1.58 - b) / b * 100
					So(round1(scenario.PriceDeviation(price, b)), ShouldEqual, round1(want))
				}
			})
		})

		Convey("When converting the quoted price", func() {
			So(scenario.CurrentPrice(price), ShouldAlmostEqual, 1.58, 1e-9)
		})
	})
}

func TestFlagDeviation(t *testing.T) {
	Convey("Given deviations around the 5% tolerance", t, func() {
		Convey("Then exactly 5 in either direction should be within range", func() {
			So(scenario.FlagDeviation(5.0), ShouldEqual, scenario.WithinRange)
			So(scenario.FlagDeviation(-5.0), ShouldEqual, scenario.WithinRange)
			So(scenario.FlagDeviation(0), ShouldEqual, scenario.WithinRange)
		})

		Convey("And anything strictly beyond should exceed the threshold", func() {
			So(scenario.FlagDeviation(5.0001), ShouldEqual, scenario.ExceedsThreshold)
			So(scenario.FlagDeviation(-5.0001), ShouldEqual, scenario.ExceedsThreshold)
		})

		Convey("And the labels should follow the flag", func() {
			So(scenario.WithinRange.Label(), ShouldEqual, "在允许范围内")
			So(scenario.ExceedsThreshold.Label(), ShouldEqual, "超出阈值")
			So(scenario.ExceedsThreshold.Inverse(), ShouldBeTrue)
			So(scenario.WithinRange.Inverse(), ShouldBeFalse)
		})
	})
}

func TestClassifyRisk(t *testing.T) {
	Convey("Given risk thresholds", t, func() {
		Convey("Then values below 70 should be high", func() {
			So(scenario.ClassifyRisk(0), ShouldEqual, scenario.RiskHigh)
			So(scenario.ClassifyRisk(60), ShouldEqual, scenario.RiskHigh)
			So(scenario.ClassifyRisk(69), ShouldEqual, scenario.RiskHigh)
		})

		Convey("And 70 and above should be medium", func() {
			So(scenario.ClassifyRisk(70), ShouldEqual, scenario.RiskMedium)
			So(scenario.ClassifyRisk(100), ShouldEqual, scenario.RiskMedium)
		})

		Convey("And labels should be the display characters", func() {
			So(scenario.RiskHigh.Label(), ShouldEqual, "高")
			So(scenario.RiskMedium.Label(), ShouldEqual, "中")
		})
	})
}

func TestFilterCases(t *testing.T) {
	Convey("Given the three sample cases", t, func() {
		Convey("When filtering by triple conflict", func() {
			got := scenario.FilterCases(sampleCases, "三重冲突")

			Convey("Then only C-2023-045 should remain", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].CaseID, ShouldEqual, "C-2023-045")
			})
		})

		Convey("When filtering by all", func() {
			got := scenario.FilterCases(sampleCases, types.FilterAll)

			Convey("Then all rows should remain in order", func() {
				So(got, ShouldResemble, sampleCases)
			})

			Convey("And the result should not alias the input", func() {
				got[0].CaseID = "changed"
				So(sampleCases[0].CaseID, ShouldEqual, "C-2023-045")
			})
		})

		Convey("When filtering by the ASCII all keyword or an empty filter", func() {
			for _, f := range []types.CaseFilter{"all", "ALL", ""} {
				So(scenario.FilterCases(sampleCases, f), ShouldResemble, sampleCases)
			}
		})

		Convey("When the filter matches nothing", func() {
			got := scenario.FilterCases(sampleCases, "四重冲突")

			Convey("Then an empty, non-nil slice should be returned", func() {
				So(got, ShouldNotBeNil)
				So(len(got), ShouldEqual, 0)
			})
		})

		Convey("When there are no cases at all", func() {
			So(len(scenario.FilterCases(nil, types.FilterAll)), ShouldEqual, 0)
		})
	})
}

func TestAssess(t *testing.T) {
	Convey("Given the sample supplier and default parameters", t, func() {
		a := scenario.Assess(model.Supplier{Price: 15800}, types.DefaultParameters())

		Convey("Then every derived value should be consistent", func() {
			So(a.CurrentPrice, ShouldAlmostEqual, 1.58, 1e-9)
			So(round1(a.Deviation), ShouldEqual, -88.9)
			So(a.Flag, ShouldEqual, scenario.ExceedsThreshold)
			So(a.Risk, ShouldEqual, scenario.RiskHigh)
		})
	})
}
