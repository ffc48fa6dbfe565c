package consistency

import (
	"time"

	"github.com/creatorlink/platform/internal/daterange"
)

// IssueType tags a detected inconsistency or anomaly.
type IssueType string

const (
	IssueDateRangeMismatch      IssueType = "DATE_RANGE_MISMATCH"
	IssueSubIDInconsistency     IssueType = "SUBID_INCONSISTENCY"
	IssueUnexpectedSubIDs       IssueType = "UNEXPECTED_SUBIDS"
	IssueMixedDataSources       IssueType = "MIXED_DATA_SOURCES"
	IssueNumericalInconsistency IssueType = "NUMERICAL_INCONSISTENCY"
	IssueEarningsExceedSales    IssueType = "EARNINGS_EXCEED_SALES"
	IssueRevenueVariance        IssueType = "REVENUE_VARIANCE"
)

// Issue describes one finding. Details are opaque diagnostic context and
// never feed back into control flow.
type Issue struct {
	Type    IssueType              `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ResponseBundle maps a logical source name (earnings, analytics, sales, ...)
// to an already-fetched payload. Payloads may carry a "dataSource" provenance
// tag and a "cached" flag; both are consumed only for diagnostics and never
// mutated. This package does no fetching of its own.
type ResponseBundle map[string]map[string]interface{}

// Metadata carries caller context into a validation run.
type Metadata struct {
	CreatorID     string
	RequestID     string
	ExpectedSubID string
	DateRanges    []daterange.DateRange
}

// ResultMetadata is the metadata echoed back on a ValidationResult.
type ResultMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	CreatorID string    `json:"creatorId,omitempty"`
	RequestID string    `json:"requestId"`
}

// ValidationResult is the outcome of one validation call. IsConsistent is
// false iff at least one error-class issue was found; warnings never flip it.
type ValidationResult struct {
	IsConsistent bool           `json:"isConsistent"`
	Errors       []Issue        `json:"errors"`
	Warnings     []Issue        `json:"warnings"`
	Metadata     ResultMetadata `json:"metadata"`
}
