package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bnema/vidpipe/internal/adapter/storage/sqlite/sqlitedb"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/port"
)

type JobQueue struct {
	queries *sqlitedb.Queries
	now     func() time.Time
}

func NewJobQueue(store *Store) *JobQueue {
	return &JobQueue{
		queries: store.queries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (q *JobQueue) Enqueue(job *domain.Job) error {
	if !job.Kind.Valid() {
		return domain.ErrInvalidRequest
	}
	return q.queries.InsertJob(context.Background(), sqlitedb.InsertJobParams{
		ID:        job.ID,
		Kind:      string(job.Kind),
		Params:    string(job.Params),
		Status:    string(domain.JobStatusQueued),
		CreatedAt: job.CreatedAt,
	})
}

func (q *JobQueue) Claim() (*domain.Job, error) {
	now := q.now()
	row, err := q.queries.ClaimNextJob(context.Background(), &now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return jobFromRow(row), nil
}

func (q *JobQueue) Complete(jobID string, final domain.Progress) error {
	now := q.now()
	_, err := q.queries.CompleteJob(context.Background(), sqlitedb.CompleteJobParams{
		Percent:       int64(final.Percent),
		Indeterminate: final.Indeterminate,
		Artifact:      final.Artifact,
		Message:       final.Message,
		CompletedAt:   &now,
		ID:            jobID,
	})
	return err
}

func (q *JobQueue) Fail(jobID string, errMsg string) error {
	now := q.now()
	_, err := q.queries.FailJob(context.Background(), sqlitedb.FailJobParams{
		ErrorMessage: errMsg,
		CompletedAt:  &now,
		ID:           jobID,
	})
	return err
}

func (q *JobQueue) Cancel(jobID string, errMsg string) error {
	now := q.now()
	n, err := q.queries.CancelJob(context.Background(), sqlitedb.CancelJobParams{
		ErrorMessage: errMsg,
		CompletedAt:  &now,
		ID:           jobID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResetStalled requeues jobs left running by a previous process.
func (q *JobQueue) ResetStalled() error {
	return q.queries.ResetStalledJobs(context.Background())
}

var _ port.JobQueue = (*JobQueue)(nil)
