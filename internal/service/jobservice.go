package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/port"
)

// ErrJobFinished is returned when cancelling a job that already ended.
var ErrJobFinished = errors.New("job already finished")

type JobCanceller interface {
	Cancel(jobID string) error
}

// JobService accepts job submissions and answers queries about them.
type JobService struct {
	queue     port.JobQueue
	store     port.JobStore
	canceller JobCanceller
}

func NewJobService(queue port.JobQueue, store port.JobStore, canceller JobCanceller) *JobService {
	return &JobService{
		queue:     queue,
		store:     store,
		canceller: canceller,
	}
}

type validator interface {
	Validate() error
}

func requestFor(kind domain.JobKind) (validator, error) {
	switch kind {
	case domain.JobKindExtractFrames:
		return &domain.ExtractRequest{}, nil
	case domain.JobKindMergeFrames:
		return &domain.MergeRequest{}, nil
	case domain.JobKindTranscode:
		return &domain.TranscodeRequest{}, nil
	case domain.JobKindAnalyze:
		return &domain.AnalyzeRequest{}, nil
	case domain.JobKindStabilize, domain.JobKindAnalyzeStabilize:
		return &domain.StabilizeRequest{}, nil
	}
	return nil, fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidRequest, kind)
}

// Submit validates params for kind and queues a job. An extraction without
// a job id is keyed by the new job's id.
func (s *JobService) Submit(kind domain.JobKind, params json.RawMessage) (*domain.Job, error) {
	req, err := requestFor(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, req); err != nil {
		return nil, fmt.Errorf("%w: decode %s params: %w", domain.ErrInvalidRequest, kind, err)
	}

	job, err := domain.NewJob(kind, req)
	if err != nil {
		return nil, err
	}
	if extract, ok := req.(*domain.ExtractRequest); ok && extract.JobID == "" {
		extract.JobID = job.ID
		if job.Params, err = json.Marshal(extract); err != nil {
			return nil, err
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(job); err != nil {
		return nil, fmt.Errorf("enqueue %s job: %w", kind, err)
	}
	return job, nil
}

func (s *JobService) Get(id string) (*domain.Job, error) {
	return s.store.Get(id)
}

func (s *JobService) List() ([]*domain.Job, error) {
	return s.store.List()
}

// Cancel stops a queued or running job.
func (s *JobService) Cancel(id string) error {
	job, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return ErrJobFinished
	}
	if err := s.canceller.Cancel(id); err != nil {
		// The job ended between the lookup and the cancel.
		if errors.Is(err, domain.ErrNotFound) {
			return ErrJobFinished
		}
		return err
	}
	return nil
}
