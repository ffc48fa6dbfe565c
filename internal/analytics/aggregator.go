package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
)

// DataSourceTag marks payloads computed locally from tracked events.
const DataSourceTag = "computed"

// Store is the slice of the earnings repository the aggregator reads.
type Store interface {
	EarningsWindow(ctx context.Context, creatorID uint, start, end time.Time) ([]database.EarningRecord, error)
	ClickCount(ctx context.Context, creatorID uint, start, end time.Time) (int64, error)
}

// Aggregator computes a creator's analytics payload from locally tracked
// clicks and attributed earnings. Its output mirrors the shape the
// consistency layer probes: action records carrying subId1 plus a
// performanceMetrics block.
type Aggregator struct {
	store  Store
	logger *zap.Logger
}

// NewAggregator creates an analytics aggregator.
func NewAggregator(store Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, logger: logger}
}

// Build computes the analytics payload for one creator over a window.
func (a *Aggregator) Build(ctx context.Context, creatorID uint, subID string, rng daterange.DateRange) (map[string]interface{}, error) {
	start, end, err := rng.Bounds()
	if err != nil {
		return nil, err
	}

	records, err := a.store.EarningsWindow(ctx, creatorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load earnings for analytics: %w", err)
	}
	clicks, err := a.store.ClickCount(ctx, creatorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks for analytics: %w", err)
	}

	var revenue float64
	actions := make([]interface{}, 0, len(records))
	for _, record := range records {
		revenue += record.Commission
		actions = append(actions, map[string]interface{}{
			"subId1":     record.SubID,
			"orderId":    record.OrderID,
			"saleAmount": record.SaleAmount,
			"commission": record.Commission,
			"occurredAt": record.OccurredAt.UTC().Format(time.RFC3339),
		})
	}

	conversions := len(records)
	metrics := map[string]interface{}{
		"revenue":     revenue,
		"clicks":      clicks,
		"conversions": conversions,
	}
	if clicks > 0 {
		metrics["epc"] = revenue / float64(clicks)
		metrics["conversionRate"] = float64(conversions) / float64(clicks)
	}

	a.logger.Debug("built analytics payload",
		zap.Uint("creator_id", creatorID),
		zap.Int("conversions", conversions),
		zap.Int64("clicks", clicks))

	return map[string]interface{}{
		"dataSource":         DataSourceTag,
		"subId1":             subID,
		"actions":            actions,
		"performanceMetrics": metrics,
	}, nil
}
