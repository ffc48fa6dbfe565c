package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/platform/internal/daterange"
)

func rangeFor(start, end string, days int) daterange.DateRange {
	return daterange.DateRange{StartDate: start, EndDate: end, EffectiveDays: days}
}

func earningsWithIDs(ids ...string) map[string]interface{} {
	records := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		records = append(records, map[string]interface{}{
			"metadata": map[string]interface{}{"subId1": id},
		})
	}
	return map[string]interface{}{"earnings": records}
}

func analyticsWithIDs(ids ...string) map[string]interface{} {
	records := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		records = append(records, map[string]interface{}{"subId1": id})
	}
	return map[string]interface{}{"actions": records}
}

func TestCompareDateRanges(t *testing.T) {
	a := rangeFor("2024-03-01", "2024-03-10", 10)

	t.Run("identical ranges are consistent", func(t *testing.T) {
		result := CompareDateRanges([]daterange.DateRange{a, a})
		assert.True(t, result.IsConsistent)
		assert.Empty(t, result.Mismatches)
	})

	t.Run("fewer than two ranges are trivially consistent", func(t *testing.T) {
		assert.True(t, CompareDateRanges(nil).IsConsistent)
		assert.True(t, CompareDateRanges([]daterange.DateRange{a}).IsConsistent)
	})

	t.Run("end date disagreement is recorded with index", func(t *testing.T) {
		b := rangeFor("2024-03-01", "2024-03-11", 11)
		result := CompareDateRanges([]daterange.DateRange{a, b})
		assert.False(t, result.IsConsistent)
		require.Len(t, result.Mismatches, 1)
		assert.Equal(t, 1, result.Mismatches[0].Index)
		assert.Equal(t, a, result.Mismatches[0].Expected)
		assert.Equal(t, b, result.Mismatches[0].Actual)
	})

	t.Run("every divergent range is recorded", func(t *testing.T) {
		b := rangeFor("2024-03-02", "2024-03-10", 9)
		result := CompareDateRanges([]daterange.DateRange{a, b, a, b})
		require.Len(t, result.Mismatches, 2)
		assert.Equal(t, 1, result.Mismatches[0].Index)
		assert.Equal(t, 3, result.Mismatches[1].Index)
	})
}

func TestCheckSubIDs(t *testing.T) {
	t.Run("mismatched identifier is flagged", func(t *testing.T) {
		result := CheckSubIDs(earningsWithIDs("X"), analyticsWithIDs("Y"), "X")
		assert.False(t, result.IsConsistent)
		assert.Equal(t, []string{"Y"}, result.InvalidSubIDs)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, IssueUnexpectedSubIDs, result.Issues[0].Type)
		assert.Equal(t, "X", result.Issues[0].Details["expectedSubId"])
		assert.Equal(t, []string{"Y"}, result.Issues[0].Details["invalidSubIds"])
	})

	t.Run("agreeing identifiers pass", func(t *testing.T) {
		result := CheckSubIDs(earningsWithIDs("X"), analyticsWithIDs("X"), "X")
		assert.True(t, result.IsConsistent)
		assert.Empty(t, result.InvalidSubIDs)
		assert.Empty(t, result.Issues)
	})

	t.Run("no expectation reports consistent", func(t *testing.T) {
		result := CheckSubIDs(earningsWithIDs("X"), analyticsWithIDs("Y"), "")
		assert.True(t, result.IsConsistent)
		assert.Empty(t, result.InvalidSubIDs)
		assert.Empty(t, result.Issues)
	})

	t.Run("empty datasets pass", func(t *testing.T) {
		result := CheckSubIDs(nil, nil, "X")
		assert.True(t, result.IsConsistent)
	})
}

func TestCheckSources(t *testing.T) {
	t.Run("mixed live and fallback provenance warns once", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings":  {"dataSource": "api"},
			"sales":     {"dataSource": "database"},
			"analytics": {"dataSource": "computed"},
		}
		result := CheckSources(responses)
		require.Len(t, result.Warnings, 1)
		warning := result.Warnings[0]
		assert.Equal(t, IssueMixedDataSources, warning.Type)
		assert.Equal(t, "api", warning.Details["earnings"])
		assert.Equal(t, "database", warning.Details["sales"])
	})

	t.Run("uniform provenance does not warn", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings": {"dataSource": "api"},
			"sales":    {"dataSource": "api"},
		}
		assert.Empty(t, CheckSources(responses).Warnings)
	})

	t.Run("distinct tags without a fallback do not warn", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings":  {"dataSource": "api"},
			"analytics": {"dataSource": "computed"},
		}
		assert.Empty(t, CheckSources(responses).Warnings)
	})

	t.Run("untagged payloads are ignored", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings": {"totalEarnings": 10.0},
			"sales":    {"dataSource": "database"},
		}
		assert.Empty(t, CheckSources(responses).Warnings)
	})
}

func TestCheckNumerical(t *testing.T) {
	t.Run("earnings exceeding sales is flagged", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings": {"totalEarnings": 100.0},
			"sales":    {"totalSales": 50.0},
		}
		result := CheckNumerical(responses)
		assert.False(t, result.IsConsistent)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, IssueEarningsExceedSales, result.Issues[0].Type)
	})

	t.Run("zero sales skips the bound rule", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings": {"totalEarnings": 100.0},
			"sales":    {"totalSales": 0.0},
		}
		assert.True(t, CheckNumerical(responses).IsConsistent)
	})

	t.Run("variance above threshold warns", func(t *testing.T) {
		responses := ResponseBundle{
			"analytics": {"performanceMetrics": map[string]interface{}{"revenue": 100.0}},
			"earnings":  {"totalEarnings": 40.0},
		}
		result := CheckNumerical(responses)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, IssueRevenueVariance, result.Issues[0].Type)
		assert.InDelta(t, 60.0, result.Issues[0].Details["variancePercent"], 0.001)
	})

	t.Run("variance at or below threshold passes", func(t *testing.T) {
		responses := ResponseBundle{
			"analytics": {"performanceMetrics": map[string]interface{}{"revenue": 100.0}},
			"earnings":  {"totalEarnings": 60.0},
		}
		assert.True(t, CheckNumerical(responses).IsConsistent)
	})

	t.Run("missing metrics mean nothing to check", func(t *testing.T) {
		assert.True(t, CheckNumerical(ResponseBundle{}).IsConsistent)
		assert.True(t, CheckNumerical(ResponseBundle{"earnings": {"totalEarnings": 10.0}}).IsConsistent)
	})

	t.Run("both rules can fire together", func(t *testing.T) {
		responses := ResponseBundle{
			"earnings":  {"totalEarnings": 300.0},
			"sales":     {"totalSales": 50.0},
			"analytics": {"performanceMetrics": map[string]interface{}{"revenue": 50.0}},
		}
		result := CheckNumerical(responses)
		assert.Len(t, result.Issues, 2)
	})
}
