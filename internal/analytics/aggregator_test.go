package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
)

type stubStore struct {
	records []database.EarningRecord
	clicks  int64
	err     error

	gotStart time.Time
	gotEnd   time.Time
}

func (s *stubStore) EarningsWindow(_ context.Context, _ uint, start, end time.Time) ([]database.EarningRecord, error) {
	s.gotStart = start
	s.gotEnd = end
	return s.records, s.err
}

func (s *stubStore) ClickCount(_ context.Context, _ uint, _, _ time.Time) (int64, error) {
	return s.clicks, s.err
}

func testRange(t *testing.T) daterange.DateRange {
	t.Helper()
	rng, err := daterange.TryParseCustomRange(daterange.Options{StartDate: "2024-06-01", EndDate: "2024-06-07"})
	require.NoError(t, err)
	return rng
}

func TestBuildAggregatesEarnings(t *testing.T) {
	store := &stubStore{
		records: []database.EarningRecord{
			{SubID: "creator-9", OrderID: "ord-1", SaleAmount: 120, Commission: 12, OccurredAt: time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)},
			{SubID: "creator-9", OrderID: "ord-2", SaleAmount: 80, Commission: 8, OccurredAt: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
		},
		clicks: 40,
	}

	agg := NewAggregator(store, zap.NewNop())
	payload, err := agg.Build(context.Background(), 9, "creator-9", testRange(t))
	require.NoError(t, err)

	assert.Equal(t, DataSourceTag, payload["dataSource"])
	assert.Equal(t, "creator-9", payload["subId1"])

	actions, ok := payload["actions"].([]interface{})
	require.True(t, ok)
	require.Len(t, actions, 2)
	first, ok := actions[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "creator-9", first["subId1"])
	assert.Equal(t, "ord-1", first["orderId"])

	metrics, ok := payload["performanceMetrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 20.0, metrics["revenue"])
	assert.Equal(t, int64(40), metrics["clicks"])
	assert.Equal(t, 2, metrics["conversions"])
	assert.Equal(t, 0.5, metrics["epc"])
	assert.Equal(t, 0.05, metrics["conversionRate"])
}

func TestBuildWindowBounds(t *testing.T) {
	store := &stubStore{}
	agg := NewAggregator(store, zap.NewNop())

	_, err := agg.Build(context.Background(), 1, "creator-1", testRange(t))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), store.gotStart)
	assert.Equal(t, time.Date(2024, 6, 7, 23, 59, 59, 999_000_000, time.UTC), store.gotEnd)
}

func TestBuildEmptyWindow(t *testing.T) {
	agg := NewAggregator(&stubStore{}, zap.NewNop())

	payload, err := agg.Build(context.Background(), 1, "creator-1", testRange(t))
	require.NoError(t, err)

	actions, ok := payload["actions"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, actions)

	metrics, ok := payload["performanceMetrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.0, metrics["revenue"])
	assert.NotContains(t, metrics, "epc")
	assert.NotContains(t, metrics, "conversionRate")
}

func TestBuildStoreError(t *testing.T) {
	agg := NewAggregator(&stubStore{err: errors.New("db down")}, zap.NewNop())

	_, err := agg.Build(context.Background(), 1, "creator-1", testRange(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics")
}
