package service

import (
	"fmt"
	"os"
	"time"

	"github.com/bnema/vidpipe/internal/command"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/workspace"
)

func (r *Runner) extractPlan(req domain.ExtractRequest) planFunc {
	return func(start time.Time) (*jobPlan, error) {
		dir := r.workspace.Resolve(req.JobID, req.OutputDir, start)
		created, err := r.workspace.Prepare(dir)
		if err != nil {
			return nil, err
		}

		p := &jobPlan{
			kind:         domain.JobKindExtractFrames,
			args:         r.builder.ExtractFrames(req.Source, dir, req.FrameTimes, req.PhotoQuality()),
			artifact:     dir,
			totalUnits:   len(req.FrameTimes),
			cancelDetail: fmt.Sprintf("extracting %d frames from %s", len(req.FrameTimes), req.Source),
		}
		// An existing override directory belongs to the caller.
		if created {
			p.createdDirs = []string{dir}
		}
		return p, nil
	}
}

func (r *Runner) mergePlan(req domain.MergeRequest) planFunc {
	return func(time.Time) (*jobPlan, error) {
		if err := workspace.CheckOutputFile(req.Destination); err != nil {
			return nil, err
		}
		p := &jobPlan{
			kind:         domain.JobKindMergeFrames,
			args:         r.builder.MergeFrames(req.FrameDir, req.Destination, req.Config),
			artifact:     req.Destination,
			totalUnits:   countFrames(req.FrameDir),
			outputs:      []string{req.Destination},
			cancelDetail: fmt.Sprintf("merging %s into %s", req.FrameDir, req.Destination),
		}
		// Only frames extracted into a managed workspace are ours to delete.
		if req.DeleteFrames() {
			if r.workspace.Managed(req.FrameDir) {
				p.cleanupOnSuccess = []string{req.FrameDir}
			} else {
				logger.Debug.Printf("keeping frames in unmanaged %s", logger.SanitizeForLog(req.FrameDir))
			}
		}
		return p, nil
	}
}

func (r *Runner) transcodePlan(req domain.TranscodeRequest) planFunc {
	return func(time.Time) (*jobPlan, error) {
		if err := workspace.CheckOutputFile(req.Destination); err != nil {
			return nil, err
		}
		return &jobPlan{
			kind:         domain.JobKindTranscode,
			args:         r.builder.Transcode(req.Source, req.Destination),
			artifact:     req.Destination,
			outputs:      []string{req.Destination},
			cancelDetail: fmt.Sprintf("transcoding %s", req.Source),
		}, nil
	}
}

func (r *Runner) analyzePlan(req domain.AnalyzeRequest) planFunc {
	return func(time.Time) (*jobPlan, error) {
		if err := r.workspace.PrepareCache(); err != nil {
			return nil, err
		}
		trf := r.workspace.TransformFile()
		return &jobPlan{
			kind:         domain.JobKindAnalyze,
			args:         r.builder.Analyze(req.Source, trf),
			artifact:     trf,
			outputs:      []string{trf},
			cancelDetail: fmt.Sprintf("analyzing %s", req.Source),
		}, nil
	}
}

func (r *Runner) stabilizePlan(req domain.StabilizeRequest) planFunc {
	return func(time.Time) (*jobPlan, error) {
		if err := workspace.CheckOutputFile(req.Destination); err != nil {
			return nil, err
		}
		return &jobPlan{
			kind:         domain.JobKindStabilize,
			args:         r.builder.Stabilize(req.Source, req.Destination, r.workspace.TransformFile()),
			artifact:     req.Destination,
			outputs:      []string{req.Destination},
			cancelDetail: fmt.Sprintf("stabilizing %s", req.Source),
		}, nil
	}
}

// countFrames returns the number of extracted frame files in dir, or 0 when
// it cannot be read.
func countFrames(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && command.IsFrameName(e.Name()) {
			n++
		}
	}
	return n
}
