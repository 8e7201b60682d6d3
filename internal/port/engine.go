package port

import "time"

// Statistics is one engine progress report.
type Statistics struct {
	VideoFrameNumber int
	FPS              float64
	Size             int64
	Time             time.Duration
	Bitrate          string
	Speed            float64
}

type StatisticsCallback func(Statistics)

type LogCallback func(text string)

// Engine is the external transcoding tool. It runs one invocation at a time:
// Execute blocks until the invocation returns a terminal code (see
// domain.ReturnCodeSuccess and domain.ReturnCodeCancel). Callbacks run on the
// engine's own goroutine and are never invoked concurrently with each other.
//
// Cancel while idle is remembered: the next Execute returns
// domain.ReturnCodeCancel without starting. ClearCancel forgets it.
type Engine interface {
	Execute(args []string) int
	SetStatisticsCallback(cb StatisticsCallback)
	SetLogCallback(cb LogCallback)
	Cancel()
	ClearCancel()
	LastOutput() string
}
