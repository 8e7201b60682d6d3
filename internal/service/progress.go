package service

import (
	"time"

	"github.com/bnema/vidpipe/internal/domain"
)

// Percent returns ceil(100*seen/total) clamped to [0,100]. It returns -1
// when total is unknown so callers can keep their last value.
func Percent(seen, total int) int {
	if total <= 0 {
		return -1
	}
	if seen <= 0 {
		return 0
	}
	p := (100*seen + total - 1) / total
	if p > 100 {
		return 100
	}
	return p
}

// normalizer turns engine frame counters into progress events for one job.
// Percent never goes down within a job.
type normalizer struct {
	total    int
	artifact string
	start    time.Time
	now      func() time.Time
	percent  int
}

func newNormalizer(total int, artifact string, start time.Time, now func() time.Time) *normalizer {
	return &normalizer{
		total:    total,
		artifact: artifact,
		start:    start,
		now:      now,
	}
}

// Tick records unitsSeen and returns the event for it.
func (n *normalizer) Tick(unitsSeen int) domain.Progress {
	if p := Percent(unitsSeen, n.total); p > n.percent {
		n.percent = p
	}
	return n.event("")
}

// Final returns the success event carrying message.
func (n *normalizer) Final(message string) domain.Progress {
	return n.event(message)
}

func (n *normalizer) event(message string) domain.Progress {
	return domain.Progress{
		Artifact:      n.artifact,
		Message:       message,
		Percent:       n.percent,
		Indeterminate: n.total <= 0,
		Elapsed:       n.now().Sub(n.start),
	}
}
