package daterange

import "fmt"

// DefaultCachePrefix namespaces cache keys when callers do not supply one.
const DefaultCachePrefix = "data"

// CacheKey derives a deterministic identity string for a DateRange, used by
// the response cache to key stored payloads per window. Field-identical
// ranges always produce identical keys.
func CacheKey(rng DateRange, prefix string) string {
	if prefix == "" {
		prefix = DefaultCachePrefix
	}
	return fmt.Sprintf("%s_%s_%s_%d", prefix, rng.StartDate, rng.EndDate, rng.EffectiveDays)
}
