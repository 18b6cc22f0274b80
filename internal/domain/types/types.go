// Package types contains the session-scoped inputs of the dashboard.
package types

import (
	"math"
	"strings"
)

// Page selects which view is rendered.
type Page string

// Pages of the dashboard, in navigation order.
const (
	PageConflictSimulation  Page = "conflict-simulation"
	PageArbitrationWorkflow Page = "arbitration-workflow"
	PageCaseLibrary         Page = "case-library"
)

// Pages lists every page in navigation order.
var Pages = []Page{PageConflictSimulation, PageArbitrationWorkflow, PageCaseLibrary}

// Valid reports whether p is a known page.
func (p Page) Valid() bool {
	switch p {
	case PageConflictSimulation, PageArbitrationWorkflow, PageCaseLibrary:
		return true
	}
	return false
}

// Label returns the navigation label of p.
func (p Page) Label() string {
	switch p {
	case PageConflictSimulation:
		return "冲突场景模拟"
	case PageArbitrationWorkflow:
		return "仲裁工作流"
	case PageCaseLibrary:
		return "实施案例库"
	}
	return string(p)
}

// ParsePage accepts either the page id or its navigation label.
func ParsePage(s string) (Page, bool) {
	for _, p := range Pages {
		if s == string(p) || s == p.Label() {
			return p, true
		}
	}
	return "", false
}

// Slider domains.
const (
	MinBasePrice     = 10.0
	MaxBasePrice     = 20.0
	MinRiskThreshold = 0
	MaxRiskThreshold = 100

	DefaultBasePrice     = 14.2
	DefaultRiskThreshold = 60
)

// Parameters are the two slider inputs.
type Parameters struct {
	// BasePrice is the market benchmark in units of 10k yuan.
	BasePrice     float64 `json:"base_price"`
	RiskThreshold int     `json:"risk_threshold"`
}

// DefaultParameters returns the values a session starts with.
func DefaultParameters() Parameters {
	return Parameters{BasePrice: DefaultBasePrice, RiskThreshold: DefaultRiskThreshold}
}

// ClampBasePrice limits v to the base price slider range. NaN maps to the default.
func ClampBasePrice(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultBasePrice
	}
	return math.Max(MinBasePrice, math.Min(MaxBasePrice, v))
}

// ClampRiskThreshold limits v to the risk threshold slider range.
func ClampRiskThreshold(v int) int {
	return max(MinRiskThreshold, min(MaxRiskThreshold, v))
}

// Clamped returns p with both inputs forced into their slider domains.
func (p Parameters) Clamped() Parameters {
	return Parameters{
		BasePrice:     ClampBasePrice(p.BasePrice),
		RiskThreshold: ClampRiskThreshold(p.RiskThreshold),
	}
}

// CaseFilter narrows the case library by conflict type. FilterAll keeps every row.
type CaseFilter string

// FilterAll is the "all" option of the case filter.
const FilterAll CaseFilter = "全部"

// filterAllAlias is the ASCII spelling of FilterAll accepted from clients.
const filterAllAlias = "all"

// CaseFilters lists the options of the case filter dropdown.
var CaseFilters = []CaseFilter{FilterAll, "三重冲突", "双重冲突", "单一冲突"}

// IsAll reports whether f keeps every case: FilterAll, "all" or empty.
func (f CaseFilter) IsAll() bool {
	return f == FilterAll || f == "" || strings.EqualFold(string(f), filterAllAlias)
}

// ParseCaseFilter trims s and maps "all" (any case) to FilterAll.
func ParseCaseFilter(s string) CaseFilter {
	f := CaseFilter(strings.TrimSpace(s))
	if f.IsAll() {
		return FilterAll
	}
	return f
}

// Valid reports whether f is one of the dropdown options.
func (f CaseFilter) Valid() bool {
	for _, c := range CaseFilters {
		if f == c {
			return true
		}
	}
	return false
}

// VoteOption is the simulated vote selection. It is display only.
type VoteOption string

// Vote options.
const (
	VoteApprove     VoteOption = "赞成"
	VoteConditional VoteOption = "有条件通过"
	VoteReject      VoteOption = "否决"
)

// VoteOptions lists the vote radio options.
var VoteOptions = []VoteOption{VoteApprove, VoteConditional, VoteReject}

// Valid reports whether v is one of the vote options.
func (v VoteOption) Valid() bool {
	return v == VoteApprove || v == VoteConditional || v == VoteReject
}

// State is everything one session can change.
type State struct {
	Page       Page       `json:"page"`
	Parameters Parameters `json:"parameters"`
	CaseFilter CaseFilter `json:"case_filter"`
	Vote       VoteOption `json:"vote"`
}

// DefaultState is the state of a fresh session.
func DefaultState() State {
	return State{
		Page:       PageConflictSimulation,
		Parameters: DefaultParameters(),
		CaseFilter: FilterAll,
		Vote:       VoteApprove,
	}
}
