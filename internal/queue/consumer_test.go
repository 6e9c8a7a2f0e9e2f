package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	jobIDs      []string
	documentIDs []string
	err         error
}

func (p *recordingProcessor) ProcessJob(_ context.Context, jobID, documentID string) error {
	p.jobIDs = append(p.jobIDs, jobID)
	p.documentIDs = append(p.documentIDs, documentID)
	return p.err
}

func TestHandleDispatchesValidMessage(t *testing.T) {
	proc := &recordingProcessor{}
	c := NewConsumer(nil, proc, nil, "queue:document-ingest", 0)

	c.Handle(context.Background(), []byte(`{"jobId":"job_1","documentId":"doc_1"}`))

	require.Equal(t, []string{"job_1"}, proc.jobIDs)
	require.Equal(t, []string{"doc_1"}, proc.documentIDs)
}

func TestHandleSkipsMalformedPayload(t *testing.T) {
	proc := &recordingProcessor{}
	c := NewConsumer(nil, proc, nil, "queue:document-ingest", 0)

	c.Handle(context.Background(), []byte(`not json at all`))
	c.Handle(context.Background(), []byte(`{"jobId": 42}`))

	assert.Empty(t, proc.jobIDs)
}

func TestHandleSkipsIncompletePayload(t *testing.T) {
	proc := &recordingProcessor{}
	c := NewConsumer(nil, proc, nil, "queue:document-ingest", 0)

	c.Handle(context.Background(), []byte(`{"jobId":"job_1"}`))
	c.Handle(context.Background(), []byte(`{"documentId":"doc_1"}`))
	c.Handle(context.Background(), []byte(`{}`))

	assert.Empty(t, proc.jobIDs)
}

func TestHandleSurvivesProcessorError(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("db down")}
	c := NewConsumer(nil, proc, nil, "queue:document-ingest", 0)

	// Must not panic; the message is logged and dropped back to redelivery.
	c.Handle(context.Background(), []byte(`{"jobId":"job_1","documentId":"doc_1"}`))

	assert.Equal(t, []string{"job_1"}, proc.jobIDs)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	proc := &recordingProcessor{}
	c := NewConsumer(nil, proc, nil, "queue:document-ingest", 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, proc.jobIDs)
}
