package daterange

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// DateRange is the canonical representation of a reporting window. All
// handlers that must agree on which window of data to fetch resolve their
// inputs through this package first, so the partner network, the fallback
// database and the local analytics aggregator are always queried for the
// same calendar days.
type DateRange struct {
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	EffectiveDays    int    `json:"effectiveDays"`
	RequestedDays    int    `json:"requestedDays,omitempty"`
	IsCustomRange    bool   `json:"isCustomRange"`
	StartDateISO     string `json:"startDateISO"`
	EndDateISO       string `json:"endDateISO"`
	StartDatePartner string `json:"startDatePartnerFormat"`
	EndDatePartner   string `json:"endDatePartnerFormat"`
}

// Options carries the heterogeneous range inputs accepted from callers:
// either explicit calendar bounds, or a preset day count ending today.
// A zero Days means no preset was requested.
type Options struct {
	Days      int    `json:"days,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

const (
	calendarLayout  = "2006-01-02"
	partnerLayout   = "01/02/2006"
	isoMillisLayout = "2006-01-02T15:04:05.000Z"

	// DefaultPresetDays is the window applied when no usable day count is
	// supplied, and the fallback window when custom bounds are rejected.
	DefaultPresetDays = 30
	// MinPresetDays and MaxPresetDays clamp preset day counts.
	MinPresetDays = 1
	MaxPresetDays = 90
	// MaxCustomRangeDays caps the span of an explicit custom range.
	MaxCustomRangeDays = 365
)

var calendarPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var (
	// ErrReversedBounds reports a custom range whose start falls after its end.
	ErrReversedBounds = errors.New("custom range start date is after end date")
	// ErrSpanTooLong reports a custom range wider than MaxCustomRangeDays.
	ErrSpanTooLong = errors.New("custom range exceeds maximum span")
)

// Clock supplies the current time. Resolution is pure given (Options, Clock),
// so tests pin the clock instead of reading the ambient one.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Resolver turns heterogeneous date-range inputs into one canonical
// DateRange. Invalid custom input never raises: it falls back to the
// 30-day preset, favoring availability over precision. The rejection
// reason is logged and goes no further.
type Resolver struct {
	clock  Clock
	logger *zap.Logger
}

// NewResolver creates a resolver around the given clock.
func NewResolver(clock Clock, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{clock: clock, logger: logger}
}

// Resolve normalizes the supplied options into a DateRange. When both bounds
// match the strict YYYY-MM-DD form the custom path is attempted; any parse
// or invariant failure silently falls back to the 30-day preset. Otherwise
// the preset path clamps Days into [MinPresetDays, MaxPresetDays],
// defaulting to DefaultPresetDays.
func (r *Resolver) Resolve(opts Options) DateRange {
	if calendarPattern.MatchString(opts.StartDate) && calendarPattern.MatchString(opts.EndDate) {
		rng, err := TryParseCustomRange(opts)
		if err != nil {
			r.logger.Warn("custom date range rejected, using preset fallback",
				zap.String("start_date", opts.StartDate),
				zap.String("end_date", opts.EndDate),
				zap.Error(err))
			return PresetRange(DefaultPresetDays, r.clock.Now())
		}
		return rng
	}
	return PresetRange(opts.Days, r.clock.Now())
}

// TryParseCustomRange parses explicit YYYY-MM-DD bounds into a DateRange.
// It enforces start <= end and a span of at most MaxCustomRangeDays. It
// applies no fallback; callers that want the recovery policy compose it
// with PresetRange the way Resolve does.
func TryParseCustomRange(opts Options) (DateRange, error) {
	start, err := time.ParseInLocation(calendarLayout, opts.StartDate, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date %q: %w", opts.StartDate, err)
	}
	end, err := time.ParseInLocation(calendarLayout, opts.EndDate, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date %q: %w", opts.EndDate, err)
	}
	if start.After(end) {
		return DateRange{}, ErrReversedBounds
	}
	days := daysBetween(start, end) + 1
	if days > MaxCustomRangeDays {
		return DateRange{}, fmt.Errorf("%w: %d days > %d", ErrSpanTooLong, days, MaxCustomRangeDays)
	}
	rng := newRange(start, end, days)
	rng.IsCustomRange = true
	return rng, nil
}

// PresetRange builds the range covering the `days` calendar days ending on
// now's UTC calendar date. Day counts outside [MinPresetDays, MaxPresetDays]
// are clamped; a zero count means none was requested and defaults to
// DefaultPresetDays.
func PresetRange(days int, now time.Time) DateRange {
	if days == 0 {
		days = DefaultPresetDays
	}
	requested := days
	if days < MinPresetDays {
		days = MinPresetDays
	}
	if days > MaxPresetDays {
		days = MaxPresetDays
	}
	end := startOfDayUTC(now)
	start := end.AddDate(0, 0, -(days - 1))
	rng := newRange(start, end, days)
	rng.RequestedDays = requested
	return rng
}

// Bounds returns the UTC instants the range covers, from midnight on
// StartDate through the last millisecond of EndDate. Stores that index by
// timestamp query with these bounds.
func (r DateRange) Bounds() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(calendarLayout, r.StartDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range start %q: %w", r.StartDate, err)
	}
	end, err := time.ParseInLocation(calendarLayout, r.EndDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range end %q: %w", r.EndDate, err)
	}
	return start, end.Add(24*time.Hour - time.Millisecond), nil
}

func newRange(start, end time.Time, days int) DateRange {
	endOfDay := end.Add(24*time.Hour - time.Millisecond)
	return DateRange{
		StartDate:        start.Format(calendarLayout),
		EndDate:          end.Format(calendarLayout),
		EffectiveDays:    days,
		StartDateISO:     start.UTC().Format(isoMillisLayout),
		EndDateISO:       endOfDay.UTC().Format(isoMillisLayout),
		StartDatePartner: start.Format(partnerLayout),
		EndDatePartner:   end.Format(partnerLayout),
	}
}

func startOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}
