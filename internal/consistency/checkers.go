package consistency

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/creatorlink/platform/internal/daterange"
)

// Heuristic thresholds. Their derivation is operational, not principled, so
// they live here as named constants rather than embedded literals.
const (
	// MinComparableSales is the sales total at or below which the
	// earnings-versus-sales bound rule does not apply.
	MinComparableSales = 0.0
	// RevenueVarianceThreshold is the relative variance between analytics
	// revenue and earnings totals above which a warning fires.
	RevenueVarianceThreshold = 0.5
)

// fallbackProvenance lists the dataSource tags that denote degraded or
// non-live origins. Mixed tags only warrant a warning when one of these
// is present.
var fallbackProvenance = map[string]bool{
	"database": true,
	"fallback": true,
	"cache":    true,
}

// DateRangeMismatch records one range that disagrees with the baseline.
type DateRangeMismatch struct {
	Index    int                 `json:"index"`
	Expected daterange.DateRange `json:"expected"`
	Actual   daterange.DateRange `json:"actual"`
}

// DateRangeCheckResult is the outcome of comparing ranges for exact agreement.
type DateRangeCheckResult struct {
	IsConsistent bool                `json:"isConsistent"`
	Mismatches   []DateRangeMismatch `json:"mismatches"`
}

// CompareDateRanges checks that every range matches the first exactly on
// start date, end date and effective days. Fewer than two ranges are
// trivially consistent.
func CompareDateRanges(ranges []daterange.DateRange) DateRangeCheckResult {
	result := DateRangeCheckResult{IsConsistent: true}
	if len(ranges) < 2 {
		return result
	}
	baseline := ranges[0]
	for i, rng := range ranges[1:] {
		if rng.StartDate != baseline.StartDate ||
			rng.EndDate != baseline.EndDate ||
			rng.EffectiveDays != baseline.EffectiveDays {
			result.Mismatches = append(result.Mismatches, DateRangeMismatch{
				Index:    i + 1,
				Expected: baseline,
				Actual:   rng,
			})
		}
	}
	result.IsConsistent = len(result.Mismatches) == 0
	return result
}

// SubIDCheckResult is the outcome of validating extracted identifiers
// against the one expected for the call.
type SubIDCheckResult struct {
	IsConsistent  bool     `json:"isConsistent"`
	InvalidSubIDs []string `json:"invalidSubIds"`
	Issues        []Issue  `json:"issues"`
}

// CheckSubIDs extracts identifier sets from both datasets, unions them, and
// flags every identifier that differs from expected under one
// UNEXPECTED_SUBIDS issue. An empty expectation reports consistent with no
// findings: with nothing expected there is nothing to violate. Unscoped
// aggregate calls therefore pass unchecked, which is deliberate and
// documented rather than fixed here.
func CheckSubIDs(earnings, analytics map[string]interface{}, expected string) SubIDCheckResult {
	result := SubIDCheckResult{IsConsistent: true}
	if expected == "" {
		return result
	}

	seen := ExtractSubIDs(earnings)
	for id := range ExtractSubIDs(analytics) {
		seen[id] = struct{}{}
	}

	for _, id := range SortedSubIDs(seen) {
		if id != expected {
			result.InvalidSubIDs = append(result.InvalidSubIDs, id)
		}
	}
	if len(result.InvalidSubIDs) > 0 {
		result.Issues = append(result.Issues, Issue{
			Type: IssueUnexpectedSubIDs,
			Message: fmt.Sprintf("found attribution ids not matching expected %q: %s",
				expected, strings.Join(result.InvalidSubIDs, ", ")),
			Details: map[string]interface{}{
				"expectedSubId": expected,
				"invalidSubIds": result.InvalidSubIDs,
			},
		})
	}
	result.IsConsistent = len(result.InvalidSubIDs) == 0
	return result
}

// SourceCheckResult carries provenance warnings; mixed provenance is often
// unavoidable, so this check never produces errors.
type SourceCheckResult struct {
	Warnings []Issue `json:"warnings"`
}

// CheckSources collects each payload's dataSource tag and warns once when
// the bundle mixes more than one distinct tag and at least one of them is a
// fallback provenance.
func CheckSources(responses ResponseBundle) SourceCheckResult {
	result := SourceCheckResult{}
	tags := make(map[string]string)
	distinct := make(map[string]bool)
	hasFallback := false

	for name, payload := range responses {
		tag, ok := payload["dataSource"].(string)
		if !ok || tag == "" {
			continue
		}
		tags[name] = tag
		distinct[tag] = true
		if fallbackProvenance[tag] {
			hasFallback = true
		}
	}

	if len(distinct) > 1 && hasFallback {
		names := make([]string, 0, len(tags))
		for name := range tags {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		details := make(map[string]interface{}, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, tags[name]))
			details[name] = tags[name]
		}
		result.Warnings = append(result.Warnings, Issue{
			Type:    IssueMixedDataSources,
			Message: "responses mix live and fallback data sources: " + strings.Join(parts, ", "),
			Details: details,
		})
	}

	return result
}

// NumericalCheckResult is the outcome of the numeric sanity rules. Both
// rules are non-fatal heuristics; IsConsistent reflects only whether any
// fired and never drives the orchestrator's overall verdict.
type NumericalCheckResult struct {
	IsConsistent bool    `json:"isConsistent"`
	Issues       []Issue `json:"issues"`
}

// CheckNumerical runs two independent sanity rules across related metrics:
// commissions should not exceed the sales they derive from, and analytics
// revenue should roughly agree with reported earnings.
func CheckNumerical(responses ResponseBundle) NumericalCheckResult {
	result := NumericalCheckResult{IsConsistent: true}

	totalEarnings, hasEarnings := numericField(responses["earnings"], "totalEarnings")
	totalSales, hasSales := numericField(responses["sales"], "totalSales")
	if hasEarnings && hasSales && totalSales > MinComparableSales && totalEarnings > totalSales {
		result.Issues = append(result.Issues, Issue{
			Type: IssueEarningsExceedSales,
			Message: fmt.Sprintf("total earnings %.2f exceed total sales %.2f",
				totalEarnings, totalSales),
			Details: map[string]interface{}{
				"totalEarnings": totalEarnings,
				"totalSales":    totalSales,
			},
		})
	}

	revenue, hasRevenue := nestedNumericField(responses["analytics"], "performanceMetrics", "revenue")
	if hasRevenue && hasEarnings && revenue > 0 && totalEarnings > 0 {
		variance := relativeVariance(revenue, totalEarnings)
		if variance > RevenueVarianceThreshold {
			result.Issues = append(result.Issues, Issue{
				Type: IssueRevenueVariance,
				Message: fmt.Sprintf("analytics revenue %.2f and reported earnings %.2f diverge by %.1f%%",
					revenue, totalEarnings, variance*100),
				Details: map[string]interface{}{
					"analyticsRevenue": revenue,
					"totalEarnings":    totalEarnings,
					"variancePercent":  variance * 100,
				},
			})
		}
	}

	result.IsConsistent = len(result.Issues) == 0
	return result
}

func relativeVariance(a, b float64) float64 {
	max := a
	if b > max {
		max = b
	}
	if max < 1 {
		max = 1
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff / max
}

func numericField(payload map[string]interface{}, field string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	return toFloat(payload[field])
}

func nestedNumericField(payload map[string]interface{}, container, field string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	sub, ok := payload[container].(map[string]interface{})
	if !ok {
		return 0, false
	}
	return toFloat(sub[field])
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
