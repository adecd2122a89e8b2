package history

import "time"

const SchemaVersion = 2

// Snapshot is the persisted summary of one analysis run.
type Snapshot struct {
	RunID          string         `json:"run_id"`
	SchemaVersion  int            `json:"schema_version"`
	ProjectKey     string         `json:"project_key"`
	Timestamp      time.Time      `json:"timestamp"`
	PackageCount   int            `json:"package_count"`
	EdgeCount      int            `json:"edge_count"`
	CycleCount     int            `json:"cycle_count"`
	AnomalyCount   int            `json:"anomaly_count"`
	MaxDepth       int            `json:"max_depth"`
	AvgInstability float64        `json:"avg_instability"`
	AnomalyCounts  map[string]int `json:"anomaly_counts"`
	AnomalyIDs     []string       `json:"anomaly_ids"`
}

// TrendDelta compares two consecutive snapshots. Kind deltas are keyed by
// anomaly type (plus smell for code smells), so renamed IDs with the same
// kind still compare.
type TrendDelta struct {
	From              Snapshot       `json:"from"`
	To                Snapshot       `json:"to"`
	DeltaPackages     int            `json:"delta_packages"`
	DeltaEdges        int            `json:"delta_edges"`
	DeltaCycles       int            `json:"delta_cycles"`
	DeltaAnomalies    int            `json:"delta_anomalies"`
	DeltaMaxDepth     int            `json:"delta_max_depth"`
	DeltaInstability  float64        `json:"delta_avg_instability"`
	DeltaByKind       map[string]int `json:"delta_by_kind"`
	NewAnomalies      []string       `json:"new_anomalies"`
	ResolvedAnomalies []string       `json:"resolved_anomalies"`
}
