package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/analytics"
	"github.com/creatorlink/platform/internal/consistency"
	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
	"github.com/creatorlink/platform/internal/metrics"
)

// FallbackSourceTag marks payloads rebuilt from the local earnings store
// after a partner fetch failed.
const FallbackSourceTag = "database"

// PartnerAPI is the partner network surface the service fetches from.
type PartnerAPI interface {
	FetchEarnings(ctx context.Context, subID string, rng daterange.DateRange) (map[string]interface{}, error)
	FetchRecentSales(ctx context.Context, subID string, rng daterange.DateRange) (map[string]interface{}, error)
}

// BundleCache stores assembled response bundles between requests.
type BundleCache interface {
	Get(ctx context.Context, key string) (consistency.ResponseBundle, bool)
	Set(ctx context.Context, key string, bundle consistency.ResponseBundle) error
}

// AnalyticsBuilder computes the locally derived analytics payload.
type AnalyticsBuilder interface {
	Build(ctx context.Context, creatorID uint, subID string, rng daterange.DateRange) (map[string]interface{}, error)
}

// Broadcaster pushes finished reports to realtime subscribers.
type Broadcaster interface {
	BroadcastReport(creatorID uint, report interface{}) error
}

// Dashboard is the assembled response for one creator and window.
type Dashboard struct {
	DateRange daterange.DateRange        `json:"dateRange"`
	Data      consistency.ResponseBundle `json:"data"`
	Report    consistency.Report         `json:"consistencyReport"`
	Cached    bool                       `json:"cached"`
}

// Service assembles creator dashboards: it resolves the requested window,
// gathers the partner, fallback and local payloads for that window, runs
// the cross-source consistency checks and builds the diagnostic report.
type Service struct {
	resolver  *daterange.Resolver
	partner   PartnerAPI
	cache     BundleCache
	analytics AnalyticsBuilder
	store     analytics.Store
	validator *consistency.Validator
	hub       Broadcaster
	collector *metrics.Collector
	logger    *zap.Logger

	cachePrefix string
	checkSubIDs bool
}

// Options configures optional service collaborators. Cache, Hub and
// Collector may be nil; the service then skips that concern.
type Options struct {
	Cache       BundleCache
	Hub         Broadcaster
	Collector   *metrics.Collector
	CachePrefix string
	CheckSubIDs bool
}

// NewService wires the dashboard orchestrator.
func NewService(
	resolver *daterange.Resolver,
	partner PartnerAPI,
	builder AnalyticsBuilder,
	store analytics.Store,
	validator *consistency.Validator,
	logger *zap.Logger,
	opts Options,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := opts.CachePrefix
	if prefix == "" {
		prefix = daterange.DefaultCachePrefix
	}
	return &Service{
		resolver:    resolver,
		partner:     partner,
		cache:       opts.Cache,
		analytics:   builder,
		store:       store,
		validator:   validator,
		hub:         opts.Hub,
		collector:   opts.Collector,
		logger:      logger,
		cachePrefix: prefix,
		checkSubIDs: opts.CheckSubIDs,
	}
}

// Build assembles the dashboard for one creator. Partner failures degrade
// to locally stored data instead of failing the request; only a broken
// local store is fatal.
func (s *Service) Build(ctx context.Context, profile *database.CreatorProfile, rangeOpts daterange.Options) (*Dashboard, error) {
	started := time.Now()
	rng := s.resolver.Resolve(rangeOpts)
	key := s.cacheKey(profile.SubID, rng)

	bundle, cached := s.lookupCache(ctx, key)
	if !cached {
		var err error
		bundle, err = s.assembleBundle(ctx, profile, rng)
		if err != nil {
			return nil, err
		}
		s.storeCache(ctx, key, bundle)
	}

	meta := consistency.Metadata{
		CreatorID:  strconv.FormatUint(uint64(profile.ID), 10),
		DateRanges: bundleRanges(bundle, rng),
	}
	if s.checkSubIDs {
		meta.ExpectedSubID = profile.SubID
	}
	result := s.validator.Validate(bundle, meta)
	report := consistency.BuildReport(result, bundle)

	s.publish(profile.ID, result, report)
	if s.collector != nil {
		s.collector.ObserveDashboardBuild(time.Since(started))
	}

	return &Dashboard{
		DateRange: rng,
		Data:      bundle,
		Report:    report,
		Cached:    cached,
	}, nil
}

func (s *Service) assembleBundle(ctx context.Context, profile *database.CreatorProfile, rng daterange.DateRange) (consistency.ResponseBundle, error) {
	bundle := consistency.ResponseBundle{}

	earnings, err := s.partner.FetchEarnings(ctx, profile.SubID, rng)
	if s.collector != nil {
		s.collector.RecordPartnerRequest("earnings", err)
	}
	if err != nil {
		s.logger.Warn("partner earnings fetch failed, using local fallback",
			zap.Uint("creator_id", profile.ID), zap.Error(err))
		earnings, err = s.localEarnings(ctx, profile, rng)
		if err != nil {
			return nil, err
		}
		if s.collector != nil {
			s.collector.RecordPartnerFallback()
		}
	}
	bundle["earnings"] = withRange(earnings, rng)

	sales, err := s.partner.FetchRecentSales(ctx, profile.SubID, rng)
	if s.collector != nil {
		s.collector.RecordPartnerRequest("sales", err)
	}
	if err != nil {
		s.logger.Warn("partner sales fetch failed, using local fallback",
			zap.Uint("creator_id", profile.ID), zap.Error(err))
		sales, err = s.localSales(ctx, profile, rng)
		if err != nil {
			return nil, err
		}
		if s.collector != nil {
			s.collector.RecordPartnerFallback()
		}
	}
	bundle["sales"] = withRange(sales, rng)

	local, err := s.analytics.Build(ctx, profile.ID, profile.SubID, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics payload: %w", err)
	}
	bundle["analytics"] = withRange(local, rng)

	return bundle, nil
}

// localEarnings rebuilds the earnings payload from attributed records in
// the local store, shaped like the partner response so the downstream
// checks need no special casing.
func (s *Service) localEarnings(ctx context.Context, profile *database.CreatorProfile, rng daterange.DateRange) (map[string]interface{}, error) {
	start, end, err := rng.Bounds()
	if err != nil {
		return nil, err
	}
	records, err := s.store.EarningsWindow(ctx, profile.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback earnings: %w", err)
	}

	var total float64
	rows := make([]interface{}, 0, len(records))
	for _, record := range records {
		total += record.Commission
		rows = append(rows, map[string]interface{}{
			"orderId":    record.OrderID,
			"commission": record.Commission,
			"occurredAt": record.OccurredAt.UTC().Format(time.RFC3339),
			"metadata":   map[string]interface{}{"subId1": record.SubID},
		})
	}
	return map[string]interface{}{
		"dataSource":    FallbackSourceTag,
		"totalEarnings": total,
		"earnings":      rows,
	}, nil
}

func (s *Service) localSales(ctx context.Context, profile *database.CreatorProfile, rng daterange.DateRange) (map[string]interface{}, error) {
	start, end, err := rng.Bounds()
	if err != nil {
		return nil, err
	}
	records, err := s.store.EarningsWindow(ctx, profile.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback sales: %w", err)
	}

	var total float64
	rows := make([]interface{}, 0, len(records))
	for _, record := range records {
		total += record.SaleAmount
		rows = append(rows, map[string]interface{}{
			"orderId":    record.OrderID,
			"saleAmount": record.SaleAmount,
			"occurredAt": record.OccurredAt.UTC().Format(time.RFC3339),
			"debug":      map[string]interface{}{"subId1": record.SubID},
		})
	}
	return map[string]interface{}{
		"dataSource":  FallbackSourceTag,
		"totalSales":  total,
		"recentSales": rows,
	}, nil
}

func (s *Service) cacheKey(subID string, rng daterange.DateRange) string {
	return daterange.CacheKey(rng, fmt.Sprintf("%s_%s", s.cachePrefix, subID))
}

func (s *Service) lookupCache(ctx context.Context, key string) (consistency.ResponseBundle, bool) {
	if s.cache == nil {
		return nil, false
	}
	bundle, hit := s.cache.Get(ctx, key)
	if s.collector != nil {
		s.collector.RecordCacheLookup(hit)
	}
	return bundle, hit
}

func (s *Service) storeCache(ctx context.Context, key string, bundle consistency.ResponseBundle) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, bundle); err != nil {
		s.logger.Warn("failed to cache dashboard bundle", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) publish(creatorID uint, result *consistency.ValidationResult, report consistency.Report) {
	if s.collector != nil {
		s.collector.RecordValidation(result.IsConsistent, issueTypes(result.Errors), issueTypes(result.Warnings))
	}
	if s.hub != nil {
		if err := s.hub.BroadcastReport(creatorID, report); err != nil {
			s.logger.Warn("failed to broadcast consistency report",
				zap.Uint("creator_id", creatorID), zap.Error(err))
		}
	}
}

// withRange stamps the payload with the window it was fetched for so the
// response is self-describing.
func withRange(payload map[string]interface{}, rng daterange.DateRange) map[string]interface{} {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if _, ok := payload["dateRange"]; !ok {
		payload["dateRange"] = rng
	}
	return payload
}

// bundleRanges collects the window each payload claims to cover. Live
// payloads echo the resolver output, so a mismatch flags a cache entry
// assembled under different resolution rules.
func bundleRanges(bundle consistency.ResponseBundle, rng daterange.DateRange) []daterange.DateRange {
	ranges := make([]daterange.DateRange, 0, len(bundle))
	for _, payload := range bundle {
		ranges = append(ranges, payloadRange(payload, rng))
	}
	return ranges
}

// payloadRange decodes a payload's dateRange echo. Cached entries come
// back as generic maps after the JSON round trip.
func payloadRange(payload map[string]interface{}, fallback daterange.DateRange) daterange.DateRange {
	switch echo := payload["dateRange"].(type) {
	case daterange.DateRange:
		return echo
	case map[string]interface{}:
		rng := fallback
		if v, ok := echo["startDate"].(string); ok {
			rng.StartDate = v
		}
		if v, ok := echo["endDate"].(string); ok {
			rng.EndDate = v
		}
		if v, ok := echo["effectiveDays"].(float64); ok {
			rng.EffectiveDays = int(v)
		}
		return rng
	}
	return fallback
}

func issueTypes(issues []consistency.Issue) []string {
	types := make([]string, 0, len(issues))
	for _, issue := range issues {
		types = append(types, string(issue.Type))
	}
	return types
}
