package consistency

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/daterange"
)

// Validator orchestrates the individual checkers into one verdict over a
// bundle of already-fetched responses. It holds no mutable state; the same
// instance can validate unrelated requests concurrently.
type Validator struct {
	clock  daterange.Clock
	logger *zap.Logger
}

// NewValidator creates a validator. The clock stamps result metadata; the
// logger receives failed or warned results as a fire-and-forget side effect.
func NewValidator(clock daterange.Clock, logger *zap.Logger) *Validator {
	if clock == nil {
		clock = daterange.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{clock: clock, logger: logger}
}

// Validate runs the consistency checks in fixed order. Date-range and
// identifier disagreements are errors and flip IsConsistent; provenance
// mixing and numeric anomalies are only ever warnings.
func (v *Validator) Validate(responses ResponseBundle, meta Metadata) *ValidationResult {
	result := &ValidationResult{
		IsConsistent: true,
		Errors:       []Issue{},
		Warnings:     []Issue{},
	}

	if len(meta.DateRanges) >= 2 {
		dr := CompareDateRanges(meta.DateRanges)
		if !dr.IsConsistent {
			result.IsConsistent = false
			for _, mismatch := range dr.Mismatches {
				result.Errors = append(result.Errors, Issue{
					Type: IssueDateRangeMismatch,
					Message: fmt.Sprintf("date range %d (%s..%s, %d days) does not match baseline (%s..%s, %d days)",
						mismatch.Index,
						mismatch.Actual.StartDate, mismatch.Actual.EndDate, mismatch.Actual.EffectiveDays,
						mismatch.Expected.StartDate, mismatch.Expected.EndDate, mismatch.Expected.EffectiveDays),
					Details: map[string]interface{}{
						"index":    mismatch.Index,
						"expected": mismatch.Expected,
						"actual":   mismatch.Actual,
					},
				})
			}
		}
	}

	earnings, hasEarnings := responses["earnings"]
	analytics, hasAnalytics := responses["analytics"]
	if hasEarnings && hasAnalytics {
		sub := CheckSubIDs(earnings, analytics, meta.ExpectedSubID)
		if !sub.IsConsistent {
			result.IsConsistent = false
			for _, issue := range sub.Issues {
				result.Errors = append(result.Errors, Issue{
					Type:    IssueSubIDInconsistency,
					Message: issue.Message,
					Details: map[string]interface{}{
						"rule":    string(issue.Type),
						"details": issue.Details,
					},
				})
			}
		}
	}

	result.Warnings = append(result.Warnings, CheckSources(responses).Warnings...)

	numerical := CheckNumerical(responses)
	for _, issue := range numerical.Issues {
		result.Warnings = append(result.Warnings, Issue{
			Type:    IssueNumericalInconsistency,
			Message: issue.Message,
			Details: map[string]interface{}{
				"rule":    string(issue.Type),
				"details": issue.Details,
			},
		})
	}

	result.Metadata = ResultMetadata{
		Timestamp: v.clock.Now(),
		CreatorID: meta.CreatorID,
		RequestID: meta.RequestID,
	}
	if result.Metadata.RequestID == "" {
		result.Metadata.RequestID = uuid.NewString()
	}

	if !result.IsConsistent || len(result.Warnings) > 0 {
		v.logger.Warn("cross-source consistency check found issues",
			zap.Bool("is_consistent", result.IsConsistent),
			zap.Int("errors", len(result.Errors)),
			zap.Int("warnings", len(result.Warnings)),
			zap.String("creator_id", meta.CreatorID),
			zap.String("request_id", result.Metadata.RequestID))
	}

	return result
}
