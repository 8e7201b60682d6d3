package ffmpeg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/vidpipe/internal/port"
)

func collect(t *testing.T, input string) []port.Statistics {
	t.Helper()
	var got []port.Statistics
	require.NoError(t, parseProgress(strings.NewReader(input), func(s port.Statistics) {
		got = append(got, s)
	}))
	return got
}

func TestParseProgress(t *testing.T) {
	input := `frame=120
fps=29.97
stream_0_0_q=28.0
bitrate=1048.6kbits/s
total_size=1048576
out_time_us=4000000
out_time=00:00:04.000000
dup_frames=0
drop_frames=0
speed=1.93x
progress=continue
frame=240
fps=30.00
bitrate=N/A
out_time_ms=8000000
speed=2.01x
progress=end
`
	got := collect(t, input)
	require.Len(t, got, 2)

	assert.Equal(t, port.Statistics{
		VideoFrameNumber: 120,
		FPS:              29.97,
		Size:             1048576,
		Time:             4 * time.Second,
		Bitrate:          "1048.6kbits/s",
		Speed:            1.93,
	}, got[0])

	assert.Equal(t, 240, got[1].VideoFrameNumber)
	assert.Equal(t, 8*time.Second, got[1].Time)
	assert.Empty(t, got[1].Bitrate, "N/A is dropped")
	assert.Zero(t, got[1].Size, "fields reset between reports")
}

func TestParseProgress_SkipsReportsWithoutFrame(t *testing.T) {
	input := "total_size=10\nout_time_us=100\nprogress=continue\n"
	assert.Empty(t, collect(t, input))
}

func TestParseProgress_IgnoresNoise(t *testing.T) {
	input := "garbage line\nframe=abc\nframe=7\n  speed = 0.5x \nprogress=end\n"
	got := collect(t, input)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].VideoFrameNumber)
	assert.Equal(t, 0.5, got[0].Speed)
}

func TestParseProgress_UnterminatedReportDropped(t *testing.T) {
	assert.Empty(t, collect(t, "frame=3\nfps=1\n"))
}

func TestOutputTail(t *testing.T) {
	tail := newOutputTail(3)
	for _, l := range []string{"a", "b", "c", "d"} {
		tail.add(l)
	}
	assert.Equal(t, "b\nc\nd", tail.String())

	tail.reset()
	assert.Empty(t, tail.String())
}
