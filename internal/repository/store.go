package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/common"
	"github.com/project-compass/docpipe/internal/entity"
)

// Store opens job-scoped transactions. The processor drives exactly one Tx
// per queue message; everything it writes commits or rolls back together.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the unit of work for one job attempt. JobForUpdate takes an
// exclusive row lock, so a second worker claiming the same job blocks here
// until this transaction resolves.
type Tx interface {
	// JobForUpdate locks and returns the job row, or (nil, nil) when the
	// job does not exist.
	JobForUpdate(ctx context.Context, jobID string) (*entity.Job, error)
	// DocumentByID returns (nil, nil) when the document does not exist.
	DocumentByID(ctx context.Context, documentID string) (*entity.Document, error)

	MarkJobProcessing(ctx context.Context, jobID string, now time.Time) error
	MarkJobCompleted(ctx context.Context, jobID string, at time.Time) error
	MarkJobFailed(ctx context.Context, jobID, errMsg string, at time.Time) error

	InsertTaskRow(ctx context.Context, row *entity.TaskRow) error
	InsertFieldRow(ctx context.Context, field *entity.FieldRow) error
	InsertIssue(ctx context.Context, issue *entity.Issue) error
	InsertNotification(ctx context.Context, n *entity.Notification) error
	AppendAudit(ctx context.Context, rec *entity.AuditRecord) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewStore(pool *pgxpool.Pool, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}
	return &pgStore{pool: pool, log: log}
}

func (s *pgStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, common.WrapError(err, "begin tx")
	}
	return &pgTx{tx: tx, log: s.log}, nil
}

type pgTx struct {
	tx  pgx.Tx
	log *slog.Logger
}

func (t *pgTx) JobForUpdate(ctx context.Context, jobID string) (*entity.Job, error) {
	const q = `SELECT id, document_id, status, attempts, error, started_at, completed_at, created_at
	           FROM output_jobs
	           WHERE id = $1
	           FOR UPDATE`
	var j entity.Job
	var status string
	err := t.tx.QueryRow(ctx, q, jobID).Scan(
		&j.ID, &j.DocumentID, &status, &j.Attempts, &j.Error, &j.StartedAt, &j.CompletedAt, &j.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "select job for update")
	}
	j.Status = constants.JobStatus(status)
	return &j, nil
}

func (t *pgTx) DocumentByID(ctx context.Context, documentID string) (*entity.Document, error) {
	const q = `SELECT id, filename, storage_path, uploaded_by, created_at
	           FROM documents
	           WHERE id = $1`
	var d entity.Document
	err := t.tx.QueryRow(ctx, q, documentID).Scan(
		&d.ID, &d.Filename, &d.StoragePath, &d.UploadedBy, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "select document")
	}
	return &d, nil
}

func (t *pgTx) MarkJobProcessing(ctx context.Context, jobID string, now time.Time) error {
	const q = `UPDATE output_jobs
	           SET status = $2, attempts = attempts + 1, started_at = COALESCE(started_at, $3)
	           WHERE id = $1`
	_, err := t.tx.Exec(ctx, q, jobID, string(constants.JobStatusProcessing), now)
	return common.WrapError(err, "mark job processing")
}

func (t *pgTx) MarkJobCompleted(ctx context.Context, jobID string, at time.Time) error {
	const q = `UPDATE output_jobs
	           SET status = $2, completed_at = $3, error = NULL
	           WHERE id = $1`
	_, err := t.tx.Exec(ctx, q, jobID, string(constants.JobStatusCompleted), at)
	return common.WrapError(err, "mark job completed")
}

func (t *pgTx) MarkJobFailed(ctx context.Context, jobID, errMsg string, at time.Time) error {
	const q = `UPDATE output_jobs
	           SET status = $2, error = $3, completed_at = $4
	           WHERE id = $1`
	_, err := t.tx.Exec(ctx, q, jobID, string(constants.JobStatusFailed), errMsg, at)
	return common.WrapError(err, "mark job failed")
}

func (t *pgTx) InsertTaskRow(ctx context.Context, row *entity.TaskRow) error {
	const q = `INSERT INTO extraction_task_rows
	  (record_id, document_id, project_name, gc_name, sc_name, trade, task_id, task_name, location_path,
	   upstream_task_id, downstream_task_id, dependency_type, lag_days, planned_start, planned_finish,
	   duration_days, sc_available_from, sc_available_to, allocation_pct, constraint_type, constraint_note,
	   constraint_impact_days, status, percent_complete, confidence, source_page, source_snippet, extracted_at)
	  VALUES
	  ($1, $2, $3, $4, $5, $6, $7, $8, $9,
	   $10, $11, $12, $13, NULLIF($14, '')::date, NULLIF($15, '')::date,
	   $16, NULLIF($17, '')::date, NULLIF($18, '')::date, $19, $20, $21,
	   $22, $23, $24, $25, $26, $27, $28)
	  ON CONFLICT (record_id) DO NOTHING`
	_, err := t.tx.Exec(ctx, q,
		row.RecordID, row.DocumentID, row.ProjectName, row.GCName, row.SCName, row.Trade,
		row.TaskID, row.TaskName, row.LocationPath,
		row.UpstreamTaskID, row.DownstreamTaskID, string(row.DependencyType), row.LagDays,
		row.PlannedStart, row.PlannedFinish,
		row.DurationDays, row.SCAvailableFrom, row.SCAvailableTo, row.AllocationPct,
		string(row.ConstraintType), row.ConstraintNote,
		row.ConstraintImpactDays, string(row.Status), row.PercentComplete, row.Confidence,
		row.SourcePage, row.SourceSnippet, row.ExtractedAt,
	)
	return common.WrapError(err, "insert task row")
}

func (t *pgTx) InsertFieldRow(ctx context.Context, field *entity.FieldRow) error {
	bbox, err := json.Marshal(field.SourceBBox)
	if err != nil {
		return common.WrapError(err, "marshal bbox")
	}
	const q = `INSERT INTO extraction_fields
	  (id, document_id, name, value, confidence, source_page, source_bbox, created_at)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = t.tx.Exec(ctx, q,
		field.ID, field.DocumentID, field.Name, field.Value,
		field.Confidence, field.SourcePage, bbox, field.CreatedAt,
	)
	return common.WrapError(err, "insert field row")
}

func (t *pgTx) InsertIssue(ctx context.Context, issue *entity.Issue) error {
	const q = `INSERT INTO issues
	  (id, document_id, field_id, type, severity, status, details, created_at)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := t.tx.Exec(ctx, q,
		issue.ID, issue.DocumentID, issue.FieldID, issue.Type,
		string(issue.Severity), string(issue.Status), issue.Details, issue.CreatedAt,
	)
	return common.WrapError(err, "insert issue")
}

func (t *pgTx) InsertNotification(ctx context.Context, n *entity.Notification) error {
	const q = `INSERT INTO notifications
	  (id, user_id, type, title, body, created_at)
	  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := t.tx.Exec(ctx, q, n.ID, n.UserID, n.Type, n.Title, n.Body, n.CreatedAt)
	return common.WrapError(err, "insert notification")
}

func (t *pgTx) AppendAudit(ctx context.Context, rec *entity.AuditRecord) error {
	meta := rec.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return common.WrapError(err, "marshal audit metadata")
	}
	const q = `INSERT INTO audit_records
	  (id, actor_id, entity_type, entity_id, action, metadata, created_at)
	  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = t.tx.Exec(ctx, q, rec.ID, rec.ActorID, rec.EntityType, rec.EntityID, rec.Action, b, rec.CreatedAt)
	return common.WrapError(err, "append audit record")
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
