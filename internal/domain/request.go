package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultPhotoQuality is the JPEG qscale used when a request leaves it unset.
	DefaultPhotoQuality = 5
	MinPhotoQuality     = 1
	MaxPhotoQuality     = 31
)

// frameTimePattern accepts plain decimal seconds. The value is copied into
// the engine's select expression, so nothing else may pass.
var frameTimePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ExtractRequest selects frames at FrameTimes (seconds, e.g. "1.023") from
// Source into a workspace directory. OutputDir overrides the managed
// workspace. Quality is the JPEG qscale, lower is better.
type ExtractRequest struct {
	JobID      string   `json:"job_id"`
	FrameTimes []string `json:"frame_times"`
	Source     string   `json:"source"`
	OutputDir  string   `json:"output_dir,omitempty"`
	Quality    int      `json:"quality,omitempty"`
}

func (r *ExtractRequest) Validate() error {
	if err := validatePath("source", r.Source); err != nil {
		return err
	}
	if r.OutputDir != "" {
		if err := validatePath("output dir", r.OutputDir); err != nil {
			return err
		}
	}
	if r.JobID == "" || strings.ContainsAny(r.JobID, `/\`) || r.JobID == "." || r.JobID == ".." {
		return fmt.Errorf("%w: job id %q", ErrInvalidRequest, r.JobID)
	}
	if len(r.FrameTimes) == 0 {
		return fmt.Errorf("%w: no frame times", ErrInvalidRequest)
	}
	for _, ft := range r.FrameTimes {
		if !frameTimePattern.MatchString(ft) {
			return fmt.Errorf("%w: frame time %q", ErrInvalidRequest, ft)
		}
	}
	if r.Quality != 0 && (r.Quality < MinPhotoQuality || r.Quality > MaxPhotoQuality) {
		return fmt.Errorf("%w: quality %d outside [%d,%d]", ErrInvalidRequest, r.Quality, MinPhotoQuality, MaxPhotoQuality)
	}
	return nil
}

// PhotoQuality returns the requested quality or the default.
func (r *ExtractRequest) PhotoQuality() int {
	if r.Quality == 0 {
		return DefaultPhotoQuality
	}
	return r.Quality
}

// MergeRequest encodes the frame sequence in FrameDir into Destination.
// DeleteFramesOnComplete defaults to true when unset.
type MergeRequest struct {
	FrameDir               string         `json:"frame_dir"`
	Destination            string         `json:"destination"`
	Config                 EncodingConfig `json:"config"`
	DeleteFramesOnComplete *bool          `json:"delete_frames_on_complete,omitempty"`
}

func (r *MergeRequest) Validate() error {
	if err := validatePath("frame dir", r.FrameDir); err != nil {
		return err
	}
	if err := validatePath("destination", r.Destination); err != nil {
		return err
	}
	if r.Config.OutputFrameRate <= 0 {
		return fmt.Errorf("%w: output frame rate must be positive", ErrInvalidRequest)
	}
	if r.Config.KeyInt <= 0 {
		return fmt.Errorf("%w: key frame interval must be positive", ErrInvalidRequest)
	}
	return nil
}

func (r *MergeRequest) DeleteFrames() bool {
	return r.DeleteFramesOnComplete == nil || *r.DeleteFramesOnComplete
}

// TranscodeRequest de-shakes Source into Destination.
type TranscodeRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (r *TranscodeRequest) Validate() error {
	if err := validatePath("source", r.Source); err != nil {
		return err
	}
	return validatePath("destination", r.Destination)
}

// AnalyzeRequest runs motion detection on Source and writes the transform file.
type AnalyzeRequest struct {
	Source string `json:"source"`
}

func (r *AnalyzeRequest) Validate() error {
	return validatePath("source", r.Source)
}

// StabilizeRequest applies the transform file to Source, writing Destination.
type StabilizeRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (r *StabilizeRequest) Validate() error {
	if err := validatePath("source", r.Source); err != nil {
		return err
	}
	return validatePath("destination", r.Destination)
}

func validatePath(name, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidRequest, name)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("%w: %s contains null byte", ErrInvalidRequest, name)
	}
	return nil
}
