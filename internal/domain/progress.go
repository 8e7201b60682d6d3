package domain

import "time"

// Progress is one immutable snapshot of a running job.
//
// Artifact is the output the job is producing (a frame directory or a file)
// and is empty for jobs with no discrete output. Message is empty on every
// event except the final success event, which describes the invocation.
// Indeterminate is set for jobs without a unit count; their Percent stays 0
// until completion.
type Progress struct {
	Artifact      string        `json:"artifact"`
	Message       string        `json:"message"`
	Percent       int           `json:"percent"`
	Indeterminate bool          `json:"indeterminate"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Final reports whether p is the success event of a job.
func (p Progress) Final() bool {
	return p.Message != ""
}
