// Package command builds engine argument lists for each job kind. Builders
// are pure: they never touch the filesystem and never validate domain
// ranges, which is the caller's job.
package command

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bnema/vidpipe/internal/domain"
)

// FramePattern names extracted frames. Extraction writes it and merging
// reads it, so both sides must use this constant.
const FramePattern = "image_%03d.jpg"

var framePrefix, frameSuffix, _ = strings.Cut(FramePattern, "%03d")

// IsFrameName reports whether name is a file written through FramePattern.
func IsFrameName(name string) bool {
	digits, ok := strings.CutPrefix(name, framePrefix)
	if !ok {
		return false
	}
	digits, ok = strings.CutSuffix(digits, frameSuffix)
	if !ok || len(digits) < 3 {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

const (
	defaultEncoding    = "libx264"
	defaultPixelFormat = "yuv420p"
	stabilizedFPS      = 30
)

// Builder assembles argument lists. Threads is passed to every invocation
// as the -threads hint.
type Builder struct {
	Threads int
}

// NewBuilder returns a Builder using threads, or the available parallelism
// when threads is not positive.
func NewBuilder(threads int) *Builder {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &Builder{Threads: threads}
}

func (b *Builder) threads() string {
	return strconv.Itoa(b.Threads)
}

// SelectExpression returns the frame selection predicate: one clause per
// timestamp, each true only for the first frame at or after that time.
func SelectExpression(frameTimes []string) string {
	clauses := make([]string, len(frameTimes))
	for i, t := range frameTimes {
		clauses[i] = fmt.Sprintf(`lt(prev_pts*TB\,%s)*gte(pts*TB\,%s)`, t, t)
	}
	return strings.Join(clauses, "+")
}

// ExtractFrames selects the frames at frameTimes from source and writes them
// as JPEGs into outputDir.
func (b *Builder) ExtractFrames(source, outputDir string, frameTimes []string, quality int) []string {
	return []string{
		"-threads", b.threads(),
		"-i", source,
		"-qscale:v", strconv.Itoa(quality),
		"-filter:v", "select='" + SelectExpression(frameTimes) + "'",
		"-vsync", "0",
		filepath.Join(outputDir, FramePattern),
	}
}

// MergeFrames encodes the frame sequence in frameDir into destination.
// Optional configuration fields only appear when set.
func (b *Builder) MergeFrames(frameDir, destination string, cfg domain.EncodingConfig) []string {
	args := make([]string, 0, 32)

	args = append(args, "-y")

	if cfg.SourceFrameRate != nil {
		args = append(args, "-framerate", strconv.Itoa(*cfg.SourceFrameRate))
	}

	args = append(args,
		"-threads", b.threads(),
		"-i", filepath.Join(frameDir, FramePattern),
		"-r", strconv.Itoa(cfg.OutputFrameRate),
	)

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = defaultEncoding
	}
	minKeyInt := cfg.MinKeyInt
	if minKeyInt <= 0 {
		minKeyInt = cfg.KeyInt
	}
	args = append(args,
		"-c:v", encoding,
		"-x264opts", fmt.Sprintf("keyint=%d:min-keyint=%d:no-scenecut", cfg.KeyInt, minKeyInt),
	)

	if cfg.GOPValue != nil {
		args = append(args, "-g", strconv.Itoa(*cfg.GOPValue))
	}
	if cfg.VideoQuality != nil {
		args = append(args, "-crf", strconv.Itoa(*cfg.VideoQuality))
	}
	if cfg.MaxRate != nil {
		args = append(args, "-maxrate:v", strconv.Itoa(*cfg.MaxRate)+"k")
	}
	if cfg.BufSize != nil {
		args = append(args, "-bufsize:v", strconv.Itoa(*cfg.BufSize)+"k")
	}

	pixelFormat := cfg.PixelFormat
	if pixelFormat == "" {
		pixelFormat = defaultPixelFormat
	}
	args = append(args, "-pix_fmt", pixelFormat)

	if cfg.Preset != nil {
		args = append(args, "-preset", *cfg.Preset)
	}

	return append(args, destination)
}

// Transcode de-shakes the video stream and copies audio.
func (b *Builder) Transcode(source, destination string) []string {
	return []string{
		"-y",
		"-threads", b.threads(),
		"-i", source,
		"-vf", "deshake",
		"-c:a", "copy",
		destination,
	}
}

// Analyze runs motion detection and writes the transforms to transformFile.
// There is no visual output.
func (b *Builder) Analyze(source, transformFile string) []string {
	graph := "[in]deflicker,dejudder[p0];" +
		"[p0]vidstabdetect=stepsize=32:shakiness=10:accuracy=15:result=" + transformFile + "[out]"
	return []string{
		"-i", source,
		"-threads", b.threads(),
		"-vf", graph,
		"-f", "null", "-",
	}
}

// Stabilize applies the transforms in transformFile to source.
func (b *Builder) Stabilize(source, destination, transformFile string) []string {
	graph := "[in]deflicker,dejudder[p0];" +
		"[p0]vidstabtransform=input=" + transformFile + ":zoom=0:smoothing=10,unsharp=5:5:0.8:3:3:0.4[p1];" +
		"[p1]fps=" + strconv.Itoa(stabilizedFPS) + "[out]"
	return []string{
		"-y",
		"-i", source,
		"-threads", b.threads(),
		"-vf", graph,
		destination,
	}
}
