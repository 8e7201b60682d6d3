package port

import "github.com/bnema/vidpipe/internal/domain"

// JobQueue hands out queued jobs in creation order. Claim returns nil, nil
// when nothing is queued. Complete and Fail only apply to running jobs;
// Cancel applies to queued or running jobs and returns domain.ErrNotFound
// when there is none with that id.
type JobQueue interface {
	Enqueue(job *domain.Job) error
	Claim() (*domain.Job, error)
	Complete(jobID string, final domain.Progress) error
	Fail(jobID string, errMsg string) error
	Cancel(jobID string, errMsg string) error
	ResetStalled() error
}
