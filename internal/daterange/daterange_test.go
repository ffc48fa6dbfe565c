package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// 2024-06-15 12:30 UTC; preset ranges end on 2024-06-15.
var testNow = time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

func newTestResolver() *Resolver {
	return NewResolver(fixedClock{now: testNow}, zap.NewNop())
}

func TestResolvePresetRange(t *testing.T) {
	r := newTestResolver()

	t.Run("explicit day count", func(t *testing.T) {
		rng := r.Resolve(Options{Days: 7})
		assert.Equal(t, 7, rng.EffectiveDays)
		assert.Equal(t, 7, rng.RequestedDays)
		assert.Equal(t, "2024-06-15", rng.EndDate)
		assert.Equal(t, "2024-06-09", rng.StartDate)
		assert.False(t, rng.IsCustomRange)
	})

	t.Run("defaults to 30 days when absent", func(t *testing.T) {
		rng := r.Resolve(Options{})
		assert.Equal(t, 30, rng.EffectiveDays)
		assert.Equal(t, "2024-06-15", rng.EndDate)
		assert.Equal(t, "2024-05-17", rng.StartDate)
	})

	t.Run("clamps above 90", func(t *testing.T) {
		rng := r.Resolve(Options{Days: 400})
		assert.Equal(t, 90, rng.EffectiveDays)
		assert.Equal(t, 400, rng.RequestedDays)
	})

	t.Run("clamps below 1", func(t *testing.T) {
		rng := r.Resolve(Options{Days: -5})
		assert.Equal(t, 1, rng.EffectiveDays)
		assert.Equal(t, rng.StartDate, rng.EndDate)
	})

	t.Run("populates projections", func(t *testing.T) {
		rng := r.Resolve(Options{Days: 7})
		assert.Equal(t, "2024-06-09T00:00:00.000Z", rng.StartDateISO)
		assert.Equal(t, "2024-06-15T23:59:59.999Z", rng.EndDateISO)
		assert.Equal(t, "06/09/2024", rng.StartDatePartner)
		assert.Equal(t, "06/15/2024", rng.EndDatePartner)
	})
}

func TestResolveCustomRange(t *testing.T) {
	r := newTestResolver()

	t.Run("valid bounds are accepted", func(t *testing.T) {
		rng := r.Resolve(Options{StartDate: "2024-03-01", EndDate: "2024-03-10"})
		assert.True(t, rng.IsCustomRange)
		assert.Equal(t, "2024-03-01", rng.StartDate)
		assert.Equal(t, "2024-03-10", rng.EndDate)
		assert.Equal(t, 10, rng.EffectiveDays)
		assert.Zero(t, rng.RequestedDays)
		assert.Equal(t, "2024-03-01T00:00:00.000Z", rng.StartDateISO)
		assert.Equal(t, "2024-03-10T23:59:59.999Z", rng.EndDateISO)
		assert.Equal(t, "03/01/2024", rng.StartDatePartner)
		assert.Equal(t, "03/10/2024", rng.EndDatePartner)
	})

	t.Run("single day range", func(t *testing.T) {
		rng := r.Resolve(Options{StartDate: "2024-03-05", EndDate: "2024-03-05"})
		assert.True(t, rng.IsCustomRange)
		assert.Equal(t, 1, rng.EffectiveDays)
	})

	t.Run("reversed bounds fall back to 30-day preset", func(t *testing.T) {
		rng := r.Resolve(Options{StartDate: "2024-03-10", EndDate: "2024-03-01"})
		assert.False(t, rng.IsCustomRange)
		assert.Equal(t, 30, rng.EffectiveDays)
		assert.Equal(t, "2024-06-15", rng.EndDate)
	})

	t.Run("span over 365 days falls back identically", func(t *testing.T) {
		rng := r.Resolve(Options{StartDate: "2023-01-01", EndDate: "2024-06-01"})
		assert.False(t, rng.IsCustomRange)
		assert.Equal(t, 30, rng.EffectiveDays)
	})

	t.Run("non-calendar input takes the preset path", func(t *testing.T) {
		rng := r.Resolve(Options{StartDate: "03/01/2024", EndDate: "03/10/2024", Days: 14})
		assert.False(t, rng.IsCustomRange)
		assert.Equal(t, 14, rng.EffectiveDays)
	})
}

func TestTryParseCustomRange(t *testing.T) {
	t.Run("fulfills the span invariant", func(t *testing.T) {
		rng, err := TryParseCustomRange(Options{StartDate: "2024-01-01", EndDate: "2024-01-31"})
		require.NoError(t, err)
		assert.Equal(t, 31, rng.EffectiveDays)
	})

	t.Run("reversed bounds", func(t *testing.T) {
		_, err := TryParseCustomRange(Options{StartDate: "2024-03-10", EndDate: "2024-03-01"})
		assert.ErrorIs(t, err, ErrReversedBounds)
	})

	t.Run("span too long", func(t *testing.T) {
		_, err := TryParseCustomRange(Options{StartDate: "2023-01-01", EndDate: "2024-06-01"})
		assert.ErrorIs(t, err, ErrSpanTooLong)
	})

	t.Run("unparseable date", func(t *testing.T) {
		_, err := TryParseCustomRange(Options{StartDate: "2024-13-40", EndDate: "2024-03-01"})
		assert.Error(t, err)
	})
}

func TestCacheKey(t *testing.T) {
	rng := DateRange{StartDate: "2024-03-01", EndDate: "2024-03-10", EffectiveDays: 10}

	t.Run("deterministic for field-identical ranges", func(t *testing.T) {
		other := DateRange{StartDate: "2024-03-01", EndDate: "2024-03-10", EffectiveDays: 10}
		assert.Equal(t, CacheKey(rng, "data"), CacheKey(other, "data"))
	})

	t.Run("format", func(t *testing.T) {
		assert.Equal(t, "earnings_2024-03-01_2024-03-10_10", CacheKey(rng, "earnings"))
	})

	t.Run("empty prefix defaults", func(t *testing.T) {
		assert.Equal(t, "data_2024-03-01_2024-03-10_10", CacheKey(rng, ""))
	})
}
