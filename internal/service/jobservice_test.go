package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/port/mocks"
)

type cancelFunc func(jobID string) error

func (f cancelFunc) Cancel(jobID string) error {
	return f(jobID)
}

func TestJobService_SubmitQueuesJob(t *testing.T) {
	queue := mocks.NewJobQueueMock(t)
	svc := NewJobService(queue, mocks.NewJobStoreMock(t), nil)

	var queued *domain.Job
	queue.EXPECT().Enqueue(mock.AnythingOfType("*domain.Job")).Run(func(job *domain.Job) { queued = job }).Return(nil).Once()

	job, err := svc.Submit(domain.JobKindTranscode, json.RawMessage(`{"source":"/in.mp4","destination":"/out.mp4"}`))
	require.NoError(t, err)
	assert.Same(t, queued, job)
	assert.Equal(t, domain.JobKindTranscode, job.Kind)
	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.JSONEq(t, `{"source":"/in.mp4","destination":"/out.mp4"}`, string(job.Params))
}

func TestJobService_SubmitExtractDefaultsJobID(t *testing.T) {
	queue := mocks.NewJobQueueMock(t)
	svc := NewJobService(queue, mocks.NewJobStoreMock(t), nil)
	queue.EXPECT().Enqueue(mock.Anything).Return(nil).Once()

	job, err := svc.Submit(domain.JobKindExtractFrames, json.RawMessage(`{"source":"/in.mp4","frame_times":["0.5"]}`))
	require.NoError(t, err)

	var req domain.ExtractRequest
	require.NoError(t, json.Unmarshal(job.Params, &req))
	assert.Equal(t, job.ID, req.JobID)
}

func TestJobService_SubmitRejectsInvalid(t *testing.T) {
	svc := NewJobService(mocks.NewJobQueueMock(t), mocks.NewJobStoreMock(t), nil)

	tests := []struct {
		name   string
		kind   domain.JobKind
		params string
	}{
		{"unknown kind", "resize", `{}`},
		{"malformed json", domain.JobKindTranscode, `{"source":`},
		{"missing destination", domain.JobKindTranscode, `{"source":"/in.mp4"}`},
		{"no frame times", domain.JobKindExtractFrames, `{"source":"/in.mp4"}`},
		{"merge without frame rate", domain.JobKindMergeFrames, `{"frame_dir":"/f","destination":"/o.mp4"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(tt.kind, json.RawMessage(tt.params))
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestJobService_Cancel(t *testing.T) {
	store := mocks.NewJobStoreMock(t)
	var cancelled []string
	svc := NewJobService(mocks.NewJobQueueMock(t), store, cancelFunc(func(id string) error {
		cancelled = append(cancelled, id)
		if id == "raced" {
			return domain.ErrNotFound
		}
		return nil
	}))

	store.EXPECT().Get("running").Return(&domain.Job{ID: "running", Status: domain.JobStatusRunning}, nil).Once()
	store.EXPECT().Get("done").Return(&domain.Job{ID: "done", Status: domain.JobStatusSucceeded}, nil).Once()
	store.EXPECT().Get("raced").Return(&domain.Job{ID: "raced", Status: domain.JobStatusQueued}, nil).Once()
	store.EXPECT().Get("missing").Return(nil, domain.ErrNotFound).Once()

	assert.NoError(t, svc.Cancel("running"))
	assert.ErrorIs(t, svc.Cancel("done"), ErrJobFinished)
	assert.ErrorIs(t, svc.Cancel("raced"), ErrJobFinished)
	assert.ErrorIs(t, svc.Cancel("missing"), domain.ErrNotFound)
	assert.Equal(t, []string{"running", "raced"}, cancelled)
}
