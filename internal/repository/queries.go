package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/common"
	"github.com/project-compass/docpipe/internal/entity"
)

// Queries are pool-level reads used outside the job transaction (export,
// CLI tooling). Nothing here mutates state.
type Queries struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewQueries(pool *pgxpool.Pool, log *slog.Logger) *Queries {
	if log == nil {
		log = slog.Default()
	}
	return &Queries{pool: pool, log: log}
}

func (q *Queries) GetDocument(ctx context.Context, documentID string) (*entity.Document, error) {
	const sql = `SELECT id, filename, storage_path, uploaded_by, created_at
	             FROM documents WHERE id = $1`
	var d entity.Document
	err := q.pool.QueryRow(ctx, sql, documentID).Scan(
		&d.ID, &d.Filename, &d.StoragePath, &d.UploadedBy, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "select document")
	}
	return &d, nil
}

func (q *Queries) GetJob(ctx context.Context, jobID string) (*entity.Job, error) {
	const sql = `SELECT id, document_id, status, attempts, error, started_at, completed_at, created_at
	             FROM output_jobs WHERE id = $1`
	var j entity.Job
	var status string
	err := q.pool.QueryRow(ctx, sql, jobID).Scan(
		&j.ID, &j.DocumentID, &status, &j.Attempts, &j.Error, &j.StartedAt, &j.CompletedAt, &j.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "select job")
	}
	j.Status = constants.JobStatus(status)
	return &j, nil
}

func (q *Queries) ListTaskRowsByDocument(ctx context.Context, documentID string) ([]entity.TaskRow, error) {
	const sql = `SELECT record_id, document_id, project_name, gc_name, sc_name, trade, task_id, task_name,
	                    location_path, upstream_task_id, downstream_task_id, dependency_type, lag_days,
	                    planned_start, planned_finish, duration_days, sc_available_from, sc_available_to,
	                    allocation_pct, constraint_type, constraint_note, constraint_impact_days, status,
	                    percent_complete, confidence, source_page, source_snippet, extracted_at
	             FROM extraction_task_rows
	             WHERE document_id = $1
	             ORDER BY extracted_at ASC, record_id ASC`
	rows, err := q.pool.Query(ctx, sql, documentID)
	if err != nil {
		return nil, common.WrapError(err, "list task rows")
	}
	defer rows.Close()

	var out []entity.TaskRow
	for rows.Next() {
		var r entity.TaskRow
		var depType, conType, status string
		var plannedStart, plannedFinish, availFrom, availTo *time.Time
		if err := rows.Scan(
			&r.RecordID, &r.DocumentID, &r.ProjectName, &r.GCName, &r.SCName, &r.Trade, &r.TaskID, &r.TaskName,
			&r.LocationPath, &r.UpstreamTaskID, &r.DownstreamTaskID, &depType, &r.LagDays,
			&plannedStart, &plannedFinish, &r.DurationDays, &availFrom, &availTo,
			&r.AllocationPct, &conType, &r.ConstraintNote, &r.ConstraintImpactDays, &status,
			&r.PercentComplete, &r.Confidence, &r.SourcePage, &r.SourceSnippet, &r.ExtractedAt,
		); err != nil {
			return nil, common.WrapError(err, "scan task row")
		}
		r.DependencyType = constants.DependencyType(depType)
		r.ConstraintType = constants.ConstraintType(conType)
		r.Status = constants.TaskStatus(status)
		r.PlannedStart = fmtDate(plannedStart)
		r.PlannedFinish = fmtDate(plannedFinish)
		r.SCAvailableFrom = fmtDate(availFrom)
		r.SCAvailableTo = fmtDate(availTo)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) ListIssuesByDocument(ctx context.Context, documentID string) ([]entity.Issue, error) {
	const sql = `SELECT id, document_id, field_id, type, severity, status, details, created_at
	             FROM issues
	             WHERE document_id = $1
	             ORDER BY created_at ASC, id ASC`
	rows, err := q.pool.Query(ctx, sql, documentID)
	if err != nil {
		return nil, common.WrapError(err, "list issues")
	}
	defer rows.Close()

	var out []entity.Issue
	for rows.Next() {
		var i entity.Issue
		var severity, status string
		if err := rows.Scan(&i.ID, &i.DocumentID, &i.FieldID, &i.Type, &severity, &status, &i.Details, &i.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan issue")
		}
		i.Severity = constants.IssueSeverity(severity)
		i.Status = constants.IssueStatus(status)
		out = append(out, i)
	}
	return out, rows.Err()
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
