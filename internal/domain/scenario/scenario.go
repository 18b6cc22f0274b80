// Package scenario holds the computed part of the demo: price deviation,
// risk classification and case filtering. Every function is pure.
package scenario

import (
	"math"

	"github.com/okian/chainaudit/internal/domain/model"
	"github.com/okian/chainaudit/internal/domain/types"
)

const (
	// priceUnit converts a quoted price in yuan to the slider unit (10k yuan).
	priceUnit = 10000

	// DeviationTolerance is the allowed deviation in percent.
	DeviationTolerance = 5.0

	// riskHighBelow is the first threshold classified as medium.
	riskHighBelow = 70
)

// RiskLevel is the legal department's risk rating.
type RiskLevel string

// Risk levels.
const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
)

// Label returns the display label of the risk level.
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return "高"
	case RiskMedium:
		return "中"
	}
	return string(r)
}

// DeviationFlag tells whether the price deviation is within tolerance.
type DeviationFlag string

// Deviation flags.
const (
	WithinRange      DeviationFlag = "within range"
	ExceedsThreshold DeviationFlag = "exceeds threshold"
)

// Label returns the display label of the flag.
func (f DeviationFlag) Label() string {
	if f == ExceedsThreshold {
		return "超出阈值"
	}
	return "在允许范围内"
}

// Inverse reports whether the flag is shown in the warning colour.
func (f DeviationFlag) Inverse() bool { return f == ExceedsThreshold }

// CurrentPrice converts a quoted price in yuan to units of 10k yuan.
func CurrentPrice(supplierPrice float64) float64 {
	return supplierPrice / priceUnit
}

// PriceDeviation returns (supplierPrice/10000 - basePrice) / basePrice * 100.
// basePrice is never zero inside the slider domain.
func PriceDeviation(supplierPrice, basePrice float64) float64 {
	current := CurrentPrice(supplierPrice)
	return (current - basePrice) / basePrice * 100
}

// FlagDeviation returns ExceedsThreshold when |deviation| is strictly above
// the tolerance.
func FlagDeviation(deviation float64) DeviationFlag {
	if math.Abs(deviation) > DeviationTolerance {
		return ExceedsThreshold
	}
	return WithinRange
}

// ClassifyRisk rates thresholds below 70 as high, 70 and above as medium.
func ClassifyRisk(riskThreshold int) RiskLevel {
	if riskThreshold < riskHighBelow {
		return RiskHigh
	}
	return RiskMedium
}

// FilterCases returns the cases whose conflict type equals filter, in their
// dataset order. FilterAll, "all" or an empty filter returns every case. The
// result never aliases the input.
func FilterCases(cases []model.CaseRecord, filter types.CaseFilter) []model.CaseRecord {
	out := make([]model.CaseRecord, 0, len(cases))
	for _, c := range cases {
		if filter.IsAll() || string(c.ConflictType) == string(filter) {
			out = append(out, c)
		}
	}
	return out
}

// Assessment bundles the derived values for one supplier and parameter set.
type Assessment struct {
	CurrentPrice float64       `json:"current_price"`
	Deviation    float64       `json:"deviation"`
	Flag         DeviationFlag `json:"flag"`
	Risk         RiskLevel     `json:"risk"`
}

// Assess derives every display value from the supplier price and parameters.
func Assess(supplier model.Supplier, p types.Parameters) Assessment {
	dev := PriceDeviation(supplier.Price, p.BasePrice)
	return Assessment{
		CurrentPrice: CurrentPrice(supplier.Price),
		Deviation:    dev,
		Flag:         FlagDeviation(dev),
		Risk:         ClassifyRisk(p.RiskThreshold),
	}
}
