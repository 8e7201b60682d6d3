package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/vidpipe/internal/port"
)

const maxScannerBuffer = 1024 * 1024

// progressBatch accumulates the key=value lines ffmpeg writes for one
// -progress report.
type progressBatch struct {
	stats    port.Statistics
	frameSet bool
}

// parseProgress reads ffmpeg -progress output. Reports are groups of
// key=value lines closed by progress=continue or progress=end; every closed
// group that carried a frame counter is passed to emit.
func parseProgress(r io.Reader, emit func(port.Statistics)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)

	var batch progressBatch
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "progress" {
			if batch.frameSet {
				emit(batch.stats)
			}
			batch = progressBatch{}
			continue
		}
		batch.apply(key, value)
	}
	return scanner.Err()
}

func (b *progressBatch) apply(key, value string) {
	switch key {
	case "frame":
		if frame, err := strconv.Atoi(value); err == nil && frame >= 0 {
			b.stats.VideoFrameNumber = frame
			b.frameSet = true
		}
	case "fps":
		if fps, err := strconv.ParseFloat(value, 64); err == nil && fps >= 0 {
			b.stats.FPS = fps
		}
	case "total_size":
		if size, err := strconv.ParseInt(value, 10, 64); err == nil && size >= 0 {
			b.stats.Size = size
		}
	// out_time_ms is reported in microseconds as well.
	case "out_time_us", "out_time_ms":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			b.stats.Time = time.Duration(us) * time.Microsecond
		}
	case "bitrate":
		if value != "N/A" {
			b.stats.Bitrate = value
		}
	case "speed":
		if speed, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil && speed >= 0 {
			b.stats.Speed = speed
		}
	}
}
