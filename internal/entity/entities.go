package entity

import (
	"time"

	"github.com/project-compass/docpipe/constants"
)

// Document is an uploaded PDF awaiting (or done with) extraction.
type Document struct {
	ID          string
	Filename    string
	StoragePath string
	UploadedBy  string
	CreatedAt   time.Time
}

// Job is one unit of extraction work for a document.
// Status transitions are monotonic: queued -> processing -> completed|failed.
type Job struct {
	ID          string
	DocumentID  string
	Status      constants.JobStatus
	Attempts    int
	Error       *string
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// TaskRow is one canonical task-assignment record extracted from a document.
// Immutable once written; reprocessing mints new record IDs.
type TaskRow struct {
	RecordID   string
	DocumentID string

	ProjectName  string
	GCName       string
	SCName       string
	Trade        string
	TaskID       string
	TaskName     string
	LocationPath string

	UpstreamTaskID   string
	DownstreamTaskID string
	DependencyType   constants.DependencyType
	LagDays          int

	PlannedStart  string // YYYY-MM-DD or empty
	PlannedFinish string // YYYY-MM-DD or empty
	DurationDays  int

	SCAvailableFrom string // YYYY-MM-DD or empty
	SCAvailableTo   string // YYYY-MM-DD or empty
	AllocationPct   float64

	ConstraintType       constants.ConstraintType
	ConstraintNote       string
	ConstraintImpactDays int

	Status          constants.TaskStatus
	PercentComplete float64
	Confidence      float64

	SourcePage    int
	SourceSnippet string
	ExtractedAt   time.Time
}

// FieldRow is the legacy single-field representation. One is written per
// TaskRow so older readers and the issues FK keep working.
type FieldRow struct {
	ID         string
	DocumentID string
	Name       string
	Value      string
	Confidence float64
	SourcePage int
	SourceBBox [4]float64
	CreatedAt  time.Time
}

// Issue is a validation finding attached to one extracted row.
type Issue struct {
	ID         string
	DocumentID string
	FieldID    string
	Type       string
	Severity   constants.IssueSeverity
	Status     constants.IssueStatus
	Details    string
	CreatedAt  time.Time
}

// Notification tells a human that a pipeline run finished.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Body      string
	CreatedAt time.Time
}

// AuditRecord is one append-only ledger entry.
type AuditRecord struct {
	ID         string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	Metadata   map[string]any
	CreatedAt  time.Time
}
