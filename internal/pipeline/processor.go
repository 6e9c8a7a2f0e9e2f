package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/doctext"
	"github.com/project-compass/docpipe/internal/entity"
	"github.com/project-compass/docpipe/internal/extract"
	"github.com/project-compass/docpipe/internal/notify"
	"github.com/project-compass/docpipe/internal/repository"
	"github.com/project-compass/docpipe/internal/utils"
)

const actorWorker = "worker"

// Config is the pipeline's explicit tuning; built once in main and injected
// here so tests stay deterministic.
type Config struct {
	ConfidenceThreshold float64
	ExtractionMode      string
}

// Processor drives one job through its state machine:
// queued -> processing -> completed|failed, everything persisted in a
// single transaction per attempt.
type Processor struct {
	logger    *slog.Logger
	store     repository.Store
	loader    doctext.Loader
	extractor extract.RowExtractor
	notifier  notify.Notifier
	cfg       Config
}

func NewProcessor(
	logger *slog.Logger,
	store repository.Store,
	loader doctext.Loader,
	extractor extract.RowExtractor,
	notifier notify.Notifier,
	cfg Config,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.7
	}
	if cfg.ExtractionMode == "" {
		cfg.ExtractionMode = "row"
	}
	return &Processor{
		logger:    logger,
		store:     store,
		loader:    loader,
		extractor: extractor,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// ProcessJob claims the job with an exclusive row lock and runs
// extract -> normalize -> validate -> persist. A redelivered message for a
// completed job is a silent no-op; any error mid-flight rolls the whole
// attempt back and leaves the job eligible for redelivery. Notifications
// go out only after the transaction commits.
func (p *Processor) ProcessJob(ctx context.Context, jobID, documentID string) error {
	tx, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				p.logger.Warn("pipeline.rollback_failed", "job_id", jobID, "error", rbErr)
			}
		}
	}()

	now := time.Now().UTC()

	job, err := tx.JobForUpdate(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		// Message referenced a job that was never created or already purged.
		p.logger.Warn("pipeline.job_missing", "job_id", jobID, "document_id", documentID)
		return nil
	}
	if job.Status == constants.JobStatusCompleted {
		// At-least-once delivery: redelivery of a finished job is a no-op.
		p.logger.Info("pipeline.job_already_completed", "job_id", jobID)
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		committed = true
		return nil
	}

	doc, err := tx.DocumentByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		// Terminal: nothing to extract from, no point retrying.
		if err := tx.MarkJobFailed(ctx, jobID, "Document not found", now); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		committed = true
		p.logger.Warn("pipeline.document_missing", "job_id", jobID, "document_id", documentID)
		return nil
	}

	if err := tx.MarkJobProcessing(ctx, jobID, now); err != nil {
		return err
	}
	if err := tx.AppendAudit(ctx, &entity.AuditRecord{
		ID:         utils.NewID("aud"),
		ActorID:    actorWorker,
		EntityType: "OutputJob",
		EntityID:   jobID,
		Action:     "processing",
		Metadata:   map[string]any{"mode": p.cfg.ExtractionMode, "attempt": job.Attempts + 1},
		CreatedAt:  now,
	}); err != nil {
		return err
	}

	rows, issues, err := p.extractAndPersist(ctx, tx, doc, documentID, now)
	if err != nil {
		return err
	}

	finishedAt := time.Now().UTC()
	if err := tx.MarkJobCompleted(ctx, jobID, finishedAt); err != nil {
		return err
	}

	notification := &entity.Notification{
		ID:        utils.NewID("ntf"),
		UserID:    doc.UploadedBy,
		Type:      "job.completed",
		Title:     "Document processing complete",
		Body:      "Finished processing " + doc.Filename,
		CreatedAt: finishedAt,
	}
	if err := tx.InsertNotification(ctx, notification); err != nil {
		return err
	}
	if err := tx.AppendAudit(ctx, &entity.AuditRecord{
		ID:         utils.NewID("aud"),
		ActorID:    actorWorker,
		EntityType: "OutputJob",
		EntityID:   jobID,
		Action:     "completed",
		Metadata:   map[string]any{"rows_stored": rows, "mode": p.cfg.ExtractionMode},
		CreatedAt:  finishedAt,
	}); err != nil {
		return err
	}
	if err := tx.AppendAudit(ctx, &entity.AuditRecord{
		ID:         utils.NewID("aud"),
		ActorID:    actorWorker,
		EntityType: "Notification",
		EntityID:   notification.ID,
		Action:     "created",
		Metadata:   map[string]any{"user_id": doc.UploadedBy},
		CreatedAt:  finishedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true

	// Outside the transaction on purpose: notifier failure must not undo
	// persisted state.
	p.notifier.Email(doc.UploadedBy, "Document processing complete", "Finished processing "+doc.Filename)
	p.notifier.SMS(doc.UploadedBy, "Project Compass: "+doc.Filename+" is ready for review.")

	p.logger.Info("pipeline.job_completed",
		"job_id", jobID,
		"document_id", documentID,
		"rows", rows,
		"issues", issues,
		"attempt", job.Attempts+1,
	)
	return nil
}

// extractAndPersist builds the full row/field/issue set for the document
// and writes it through the open transaction. Returns row and issue counts.
func (p *Processor) extractAndPersist(ctx context.Context, tx repository.Tx, doc *entity.Document, documentID string, now time.Time) (int, int, error) {
	text, err := p.loader.Load(ctx, doc.StoragePath)
	if err != nil {
		// Unreadable document degrades to empty text; the heuristic still
		// yields its default row.
		p.logger.Warn("pipeline.text_load_failed",
			"document_id", documentID, "path", doc.StoragePath, "error", err)
		text = ""
	}

	raws, err := p.extractor.Extract(ctx, extract.Request{
		DocumentID: documentID,
		Filename:   doc.Filename,
		Text:       extract.NormalizeText(text),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("extract rows: %w", err)
	}

	issueCount := 0
	for _, raw := range raws {
		row := Normalize(raw, documentID, doc.Filename, now)
		if err := tx.InsertTaskRow(ctx, &row); err != nil {
			return 0, 0, err
		}

		// Compatibility field entry so existing readers and the issues FK
		// remain valid.
		field := compatibilityField(&row, now)
		if err := tx.InsertFieldRow(ctx, field); err != nil {
			return 0, 0, err
		}

		for _, msg := range Validate(row, p.cfg.ConfidenceThreshold) {
			issue := &entity.Issue{
				ID:         utils.NewID("iss"),
				DocumentID: documentID,
				FieldID:    field.ID,
				Type:       "row-validation",
				Severity:   constants.SeverityMedium,
				Status:     constants.IssueOpen,
				Details:    fmt.Sprintf("Row %s: %s", row.RecordID, msg),
				CreatedAt:  now,
			}
			if err := tx.InsertIssue(ctx, issue); err != nil {
				return 0, 0, err
			}
			issueCount++
		}
	}
	return len(raws), issueCount, nil
}

func compatibilityField(row *entity.TaskRow, now time.Time) *entity.FieldRow {
	task := row.TaskName
	if task == "" {
		task = "(unknown task)"
	}
	sub := row.SCName
	if sub == "" {
		sub = "(unknown subcontractor)"
	}
	return &entity.FieldRow{
		ID:         utils.NewID("fld"),
		DocumentID: row.DocumentID,
		Name:       "task_assignment_row",
		Value:      task + " | " + sub,
		Confidence: row.Confidence,
		SourcePage: row.SourcePage,
		SourceBBox: [4]float64{0.05, 0.05, 0.95, 0.95},
		CreatedAt:  now,
	}
}
