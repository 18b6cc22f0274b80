package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/chainaudit/internal/domain/types"
)

// Query parameter names shared by the dashboard and the JSON API.
const (
	paramPage          = "page"
	paramBasePrice     = "base_price"
	paramRiskThreshold = "risk_threshold"
	paramCaseFilter    = "case_filter"
	paramVote          = "vote"
)

// overlay applies the query inputs present in q to st and returns the names
// of the inputs that changed. In strict mode a malformed value fails the
// whole overlay; otherwise it is skipped. Numbers are clamped either way.
func overlay(q url.Values, st *types.State, strict bool) ([]string, error) {
	next := *st
	var changed []string
	fail := func(name, raw string) error {
		if strict {
			return fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
		}
		return nil
	}

	if raw, ok := lookup(q, paramPage); ok {
		if p, valid := types.ParsePage(raw); valid {
			next.Page = p
		} else if err := fail(paramPage, raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := lookup(q, paramBasePrice); ok {
		if v, err := parseNumber(raw); err == nil {
			next.Parameters.BasePrice = types.ClampBasePrice(v)
		} else if err := fail(paramBasePrice, raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := lookup(q, paramRiskThreshold); ok {
		if v, err := parseNumber(raw); err == nil {
			next.Parameters.RiskThreshold = clampThreshold(v)
		} else if err := fail(paramRiskThreshold, raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := lookup(q, paramCaseFilter); ok {
		if f := types.ParseCaseFilter(raw); f.Valid() {
			next.CaseFilter = f
		} else if err := fail(paramCaseFilter, raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := lookup(q, paramVote); ok {
		if v := types.VoteOption(raw); v.Valid() {
			next.Vote = v
		} else if err := fail(paramVote, raw); err != nil {
			return nil, err
		}
	}

	if next.Page != st.Page {
		changed = append(changed, paramPage)
	}
	if next.Parameters.BasePrice != st.Parameters.BasePrice {
		changed = append(changed, paramBasePrice)
	}
	if next.Parameters.RiskThreshold != st.Parameters.RiskThreshold {
		changed = append(changed, paramRiskThreshold)
	}
	if next.CaseFilter != st.CaseFilter {
		changed = append(changed, paramCaseFilter)
	}
	if next.Vote != st.Vote {
		changed = append(changed, paramVote)
	}
	*st = next
	return changed, nil
}

// lookup returns the trimmed value of name if present and non-empty.
func lookup(q url.Values, name string) (string, bool) {
	raw := strings.TrimSpace(q.Get(name))
	return raw, raw != ""
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

// clampThreshold rounds v to the nearest slider step inside the range.
func clampThreshold(v float64) int {
	return int(math.Max(types.MinRiskThreshold, math.Min(types.MaxRiskThreshold, math.Round(v))))
}
