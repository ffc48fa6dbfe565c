package consistency

import "time"

// recordCollections is the fixed priority order probed when counting the
// records a payload carries.
var recordCollections = []string{"actions", "recentSales", "earnings", "topLinks"}

// Report is a flat diagnostic view of a validation run, built for logging
// and observability sinks rather than for callers' control flow.
type Report struct {
	Summary      ReportSummary             `json:"summary"`
	Details      ReportDetails             `json:"details"`
	DataOverview map[string]SourceOverview `json:"dataOverview"`
}

// ReportSummary condenses the validation verdict.
type ReportSummary struct {
	IsConsistent bool      `json:"isConsistent"`
	ErrorCount   int       `json:"errorCount"`
	WarningCount int       `json:"warningCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReportDetails carries the full issue lists and metadata.
type ReportDetails struct {
	Errors   []Issue        `json:"errors"`
	Warnings []Issue        `json:"warnings"`
	Metadata ResultMetadata `json:"metadata"`
}

// SourceOverview summarizes one payload's shape and provenance.
type SourceOverview struct {
	HasData     bool   `json:"hasData"`
	DataSource  string `json:"dataSource,omitempty"`
	Cached      bool   `json:"cached"`
	RecordCount int    `json:"recordCount"`
}

// BuildReport flattens a ValidationResult plus the original payloads into a
// diagnostic report. The record count probes each payload's collections in
// fixed priority order and takes the first one present.
func BuildReport(result *ValidationResult, responses ResponseBundle) Report {
	overview := make(map[string]SourceOverview, len(responses))
	for name, payload := range responses {
		entry := SourceOverview{HasData: payload != nil}
		if payload != nil {
			if src, ok := payload["dataSource"].(string); ok {
				entry.DataSource = src
			}
			if cached, ok := payload["cached"].(bool); ok {
				entry.Cached = cached
			}
			entry.RecordCount = recordCount(payload)
		}
		overview[name] = entry
	}

	return Report{
		Summary: ReportSummary{
			IsConsistent: result.IsConsistent,
			ErrorCount:   len(result.Errors),
			WarningCount: len(result.Warnings),
			Timestamp:    result.Metadata.Timestamp,
		},
		Details: ReportDetails{
			Errors:   result.Errors,
			Warnings: result.Warnings,
			Metadata: result.Metadata,
		},
		DataOverview: overview,
	}
}

func recordCount(payload map[string]interface{}) int {
	for _, key := range recordCollections {
		if list, ok := payload[key].([]interface{}); ok {
			return len(list)
		}
	}
	return 0
}
