package history

import "time"

const SchemaVersion = 1

// Run is one persisted analysis result.
type Run struct {
	RunID            string    `json:"run_id"`
	SchemaVersion    int       `json:"schema_version"`
	Timestamp        time.Time `json:"timestamp"`
	PackageCount     int       `json:"package_count"`
	EdgeCount        int       `json:"edge_count"`
	CycleCount       int       `json:"cycle_count"`
	ConflictCount    int       `json:"conflict_count"`
	FilesAnalyzed    int       `json:"files_analyzed"`
	ParseErrors      int       `json:"parse_errors"`
	TotalBundleSize  int64     `json:"total_bundle_size"`
	EstimatedSavings int64     `json:"estimated_savings"`
	AvgUtilization   float64   `json:"avg_utilization"`
}
