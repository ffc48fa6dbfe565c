package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSubIDs(t *testing.T) {
	t.Run("trims and deduplicates across alias spellings", func(t *testing.T) {
		dataset := map[string]interface{}{
			"actions": []interface{}{
				map[string]interface{}{"SubId1": "abc "},
				map[string]interface{}{"Subid1": "abc"},
			},
		}
		ids := ExtractSubIDs(dataset)
		assert.Equal(t, []string{"abc"}, SortedSubIDs(ids))
	})

	t.Run("reads nested sub-records", func(t *testing.T) {
		dataset := map[string]interface{}{
			"recentSales": []interface{}{
				map[string]interface{}{
					"orderId": "o-1",
					"debug":   map[string]interface{}{"subId1": "creator-7"},
				},
			},
			"earnings": []interface{}{
				map[string]interface{}{
					"amount":   12.5,
					"metadata": map[string]interface{}{"subId1": "creator-8"},
				},
			},
		}
		ids := ExtractSubIDs(dataset)
		assert.Equal(t, []string{"creator-7", "creator-8"}, SortedSubIDs(ids))
	})

	t.Run("unions flat and nested collections", func(t *testing.T) {
		dataset := map[string]interface{}{
			"actions": []interface{}{
				map[string]interface{}{"subId1": "x"},
			},
			"recentSales": []interface{}{
				map[string]interface{}{"debug": map[string]interface{}{"SubId1": "y"}},
			},
		}
		assert.Equal(t, []string{"x", "y"}, SortedSubIDs(ExtractSubIDs(dataset)))
	})

	t.Run("missing collections contribute nothing", func(t *testing.T) {
		assert.Empty(t, ExtractSubIDs(map[string]interface{}{"totalEarnings": 100.0}))
		assert.Empty(t, ExtractSubIDs(nil))
	})

	t.Run("skips empty and blank values", func(t *testing.T) {
		dataset := map[string]interface{}{
			"actions": []interface{}{
				map[string]interface{}{"subId1": ""},
				map[string]interface{}{"subId1": "   "},
				map[string]interface{}{"subId1": nil},
				map[string]interface{}{"other": "field"},
			},
		}
		assert.Empty(t, ExtractSubIDs(dataset))
	})

	t.Run("stringifies numeric identifiers", func(t *testing.T) {
		dataset := map[string]interface{}{
			"actions": []interface{}{
				map[string]interface{}{"subId1": float64(42)},
			},
		}
		assert.Equal(t, []string{"42"}, SortedSubIDs(ExtractSubIDs(dataset)))
	})

	t.Run("tolerates malformed records", func(t *testing.T) {
		dataset := map[string]interface{}{
			"actions":     []interface{}{"not-a-record", 5},
			"recentSales": []interface{}{map[string]interface{}{"debug": "not-a-map"}},
		}
		assert.Empty(t, ExtractSubIDs(dataset))
	})
}
