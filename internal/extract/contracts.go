package extract

import "context"

// RawRow is the loose row shape both strategies produce. Numeric fields are
// float64 so model JSON unmarshals without fuss; the normalizer owns
// coercion, clamping and defaulting.
type RawRow struct {
	RecordID     string `json:"record_id,omitempty"`
	ProjectName  string `json:"project_name,omitempty"`
	GCName       string `json:"gc_name,omitempty"`
	SCName       string `json:"sc_name,omitempty"`
	Trade        string `json:"trade,omitempty"`
	TaskID       string `json:"task_id,omitempty"`
	TaskName     string `json:"task_name,omitempty"`
	LocationPath string `json:"location_path,omitempty"`

	UpstreamTaskID   string  `json:"upstream_task_id,omitempty"`
	DownstreamTaskID string  `json:"downstream_task_id,omitempty"`
	DependencyType   string  `json:"dependency_type,omitempty"`
	LagDays          float64 `json:"lag_days,omitempty"`

	PlannedStart  string  `json:"planned_start,omitempty"`
	PlannedFinish string  `json:"planned_finish,omitempty"`
	DurationDays  float64 `json:"duration_days,omitempty"`

	SCAvailableFrom string  `json:"sc_available_from,omitempty"`
	SCAvailableTo   string  `json:"sc_available_to,omitempty"`
	AllocationPct   float64 `json:"allocation_pct,omitempty"`

	ConstraintType       string  `json:"constraint_type,omitempty"`
	ConstraintNote       string  `json:"constraint_note,omitempty"`
	ConstraintImpactDays float64 `json:"constraint_impact_days,omitempty"`

	Status          string  `json:"status,omitempty"`
	PercentComplete float64 `json:"percent_complete,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`

	SourcePage    float64 `json:"source_page,omitempty"`
	SourceSnippet string  `json:"source_snippet,omitempty"`
}

// Request carries everything a strategy needs for one document.
type Request struct {
	DocumentID string
	Filename   string
	Text       string
}

// RowExtractor is the strategy interface. The heuristic implementation is
// total: it never errors and never returns zero rows.
type RowExtractor interface {
	Name() string
	Extract(ctx context.Context, req Request) ([]RawRow, error)
}
