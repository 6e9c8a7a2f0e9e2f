package repository

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-compass/docpipe/constants"
	"github.com/project-compass/docpipe/internal/common"
	"github.com/project-compass/docpipe/internal/utils"
)

// Exercises the exclusive claim against a real database: set TEST_DB_URL to
// a scratch Postgres to run it.
func TestJobClaimIsExclusive(t *testing.T) {
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := Open(ctx, common.DatabaseConfig{
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
		MaxConnIdleTime: time.Minute,
		DialTimeout:     3 * time.Second,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool, logger))

	docID := utils.NewID("doc")
	jobID := utils.NewID("job")
	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO documents (id, filename, storage_path, uploaded_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		docID, "schedule.pdf", "/tmp/none.pdf", "user_1", now)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM documents WHERE id = $1`, docID)
	})

	_, err = pool.Exec(ctx,
		`INSERT INTO output_jobs (id, document_id, status, attempts, created_at)
		 VALUES ($1, $2, $3, 0, $4)`,
		jobID, docID, string(constants.JobStatusQueued), now)
	require.NoError(t, err)

	store := NewStore(pool, logger)

	tx1, err := store.Begin(ctx)
	require.NoError(t, err)
	job, err := tx1.JobForUpdate(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, constants.JobStatusQueued, job.Status)

	type claim struct {
		status constants.JobStatus
		err    error
	}
	second := make(chan claim, 1)
	go func() {
		tx2, err := store.Begin(context.Background())
		if err != nil {
			second <- claim{err: err}
			return
		}
		defer func() { _ = tx2.Rollback(context.Background()) }()
		j, err := tx2.JobForUpdate(context.Background(), jobID)
		if err != nil {
			second <- claim{err: err}
			return
		}
		second <- claim{status: j.Status}
	}()

	// While tx1 holds the row lock the second claim must stay blocked.
	select {
	case c := <-second:
		t.Fatalf("second claim returned while the lock was held: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, tx1.MarkJobProcessing(ctx, jobID, now))
	require.NoError(t, tx1.MarkJobCompleted(ctx, jobID, time.Now().UTC()))
	require.NoError(t, tx1.Commit(ctx))

	select {
	case c := <-second:
		require.NoError(t, c.err)
		assert.Equal(t, constants.JobStatusCompleted, c.status,
			"late claimer observes the committed terminal state and no-ops")
	case <-time.After(5 * time.Second):
		t.Fatal("second claim never unblocked after commit")
	}
}
