package constants

// JobStatus is the canonical status for rows in output_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued     JobStatus = "queued"     // waiting for a worker
	JobStatusProcessing JobStatus = "processing" // claimed by a worker
	JobStatusCompleted  JobStatus = "completed"  // terminal success
	JobStatusFailed     JobStatus = "failed"     // terminal failure
)

// IssueSeverity for rows in issues.
type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// IssueStatus for rows in issues. Resolution happens outside the worker.
type IssueStatus string

const (
	IssueOpen     IssueStatus = "open"
	IssueResolved IssueStatus = "resolved"
)
