package service

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/vidpipe/internal/command"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/workspace"
)

// Transcoder is the public entry point for every job kind. Each method
// returns a cold Stream; invalid requests yield a stream that fails on
// subscribe without touching the engine.
type Transcoder struct {
	runner    *Runner
	workspace *workspace.Manager
}

func NewTranscoder(handle *EngineHandle, ws *workspace.Manager, builder *command.Builder) *Transcoder {
	return &Transcoder{
		runner:    NewRunner(handle, ws, builder),
		workspace: ws,
	}
}

func (t *Transcoder) ExtractFrames(req domain.ExtractRequest) *Stream {
	if err := req.Validate(); err != nil {
		return failedStream(err)
	}
	return t.runner.stream(t.runner.extractPlan(req))
}

func (t *Transcoder) MergeFrames(req domain.MergeRequest) *Stream {
	if err := req.Validate(); err != nil {
		return failedStream(err)
	}
	return t.runner.stream(t.runner.mergePlan(req))
}

func (t *Transcoder) Transcode(req domain.TranscodeRequest) *Stream {
	if err := req.Validate(); err != nil {
		return failedStream(err)
	}
	return t.runner.stream(t.runner.transcodePlan(req))
}

func (t *Transcoder) Analyze(req domain.AnalyzeRequest) *Stream {
	if err := req.Validate(); err != nil {
		return failedStream(err)
	}
	return t.runner.stream(t.runner.analyzePlan(req))
}

func (t *Transcoder) Stabilize(req domain.StabilizeRequest) *Stream {
	if err := req.Validate(); err != nil {
		return failedStream(err)
	}
	return t.runner.stream(t.runner.stabilizePlan(req))
}

// AnalyzeAndStabilize analyzes the source, then stabilizes it with the
// transform file the analysis wrote.
func (t *Transcoder) AnalyzeAndStabilize(req domain.StabilizeRequest) *Stream {
	if err := req.Validate(); err != nil {
		return failedStream(err)
	}
	return Chain(
		t.Analyze(domain.AnalyzeRequest{Source: req.Source}),
		t.Stabilize(req),
	)
}

// DeleteAllProcessFiles removes every managed workspace.
func (t *Transcoder) DeleteAllProcessFiles() bool {
	return t.workspace.DeleteAll()
}

// DeleteExtractedFrameFolder removes a frame directory produced by
// ExtractFrames. Directories outside the managed workspaces are left alone.
func (t *Transcoder) DeleteExtractedFrameFolder(path string) bool {
	return t.workspace.DeleteFrameFolder(path)
}

func (t *Transcoder) TransformFile() string {
	return t.workspace.TransformFile()
}

// StreamFor decodes the params of a queued job and returns its stream.
func (t *Transcoder) StreamFor(job *domain.Job) (*Stream, error) {
	switch job.Kind {
	case domain.JobKindExtractFrames:
		var req domain.ExtractRequest
		if err := decodeParams(job, &req); err != nil {
			return nil, err
		}
		if req.JobID == "" {
			req.JobID = job.ID
		}
		return t.ExtractFrames(req), nil
	case domain.JobKindMergeFrames:
		var req domain.MergeRequest
		if err := decodeParams(job, &req); err != nil {
			return nil, err
		}
		return t.MergeFrames(req), nil
	case domain.JobKindTranscode:
		var req domain.TranscodeRequest
		if err := decodeParams(job, &req); err != nil {
			return nil, err
		}
		return t.Transcode(req), nil
	case domain.JobKindAnalyze:
		var req domain.AnalyzeRequest
		if err := decodeParams(job, &req); err != nil {
			return nil, err
		}
		return t.Analyze(req), nil
	case domain.JobKindStabilize:
		var req domain.StabilizeRequest
		if err := decodeParams(job, &req); err != nil {
			return nil, err
		}
		return t.Stabilize(req), nil
	case domain.JobKindAnalyzeStabilize:
		var req domain.StabilizeRequest
		if err := decodeParams(job, &req); err != nil {
			return nil, err
		}
		return t.AnalyzeAndStabilize(req), nil
	default:
		return nil, fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidRequest, job.Kind)
	}
}

func decodeParams(job *domain.Job, v any) error {
	if err := json.Unmarshal(job.Params, v); err != nil {
		return fmt.Errorf("%w: decode %s params: %w", domain.ErrInvalidRequest, job.Kind, err)
	}
	return nil
}
