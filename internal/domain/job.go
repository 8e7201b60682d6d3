package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobKindExtractFrames JobKind = "extract-frames"
	JobKindMergeFrames   JobKind = "merge-frames"
	JobKindTranscode     JobKind = "transcode"
	JobKindAnalyze       JobKind = "analyze"
	JobKindStabilize     JobKind = "stabilize"
	// JobKindAnalyzeStabilize chains an analyze job and a stabilize job.
	JobKindAnalyzeStabilize JobKind = "analyze-stabilize"
)

// Valid reports whether k names a kind the worker can run.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindExtractFrames, JobKindMergeFrames, JobKindTranscode,
		JobKindAnalyze, JobKindStabilize, JobKindAnalyzeStabilize:
		return true
	}
	return false
}

// HasUnitCount reports whether progress for k can be expressed as a percentage.
func (k JobKind) HasUnitCount() bool {
	return k == JobKindExtractFrames || k == JobKindMergeFrames
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether s is a final status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusCancelled
}

// Job is the persisted record of a queued engine job. Params holds the JSON
// encoded request for Kind.
type Job struct {
	ID            string          `json:"id"`
	Kind          JobKind         `json:"kind"`
	Params        json.RawMessage `json:"params"`
	Status        JobStatus       `json:"status"`
	Percent       int             `json:"percent"`
	Indeterminate bool            `json:"indeterminate"`
	Artifact      string          `json:"artifact"`
	Message       string          `json:"message"`
	ErrorMessage  string          `json:"error_message"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

func NewJobID() string {
	return uuid.NewString()
}

// NewJob builds a queued job for kind with the given request encoded as params.
func NewJob(kind JobKind, request any) (*Job, error) {
	params, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:        NewJobID(),
		Kind:      kind,
		Params:    params,
		Status:    JobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ApplyProgress records the latest progress snapshot on the job.
func (j *Job) ApplyProgress(p Progress) {
	j.Percent = p.Percent
	j.Indeterminate = p.Indeterminate
	if p.Artifact != "" {
		j.Artifact = p.Artifact
	}
	if p.Message != "" {
		j.Message = p.Message
	}
}
