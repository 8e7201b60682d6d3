// Package templates renders HTML fragments for job status polling.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bnema/vidpipe/internal/domain"
)

// JobStatus renders a self-contained status block for job. Running jobs
// without a unit count get an indeterminate progress bar.
func JobStatus(job *domain.Job) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div id="job-%s" class="job job-%s">`,
			templ.EscapeString(job.ID), templ.EscapeString(string(job.Status))); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<span class="job-kind">%s</span><span class="job-status">%s</span>`,
			templ.EscapeString(string(job.Kind)), templ.EscapeString(string(job.Status))); err != nil {
			return err
		}
		if err := progressBar(w, job); err != nil {
			return err
		}
		switch job.Status {
		case domain.JobStatusSucceeded:
			if job.Artifact != "" {
				if _, err := fmt.Fprintf(w, `<p class="job-artifact">%s</p>`, templ.EscapeString(job.Artifact)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, `<p class="job-message">%s</p>`, templ.EscapeString(job.Message)); err != nil {
				return err
			}
		case domain.JobStatusFailed, domain.JobStatusCancelled:
			if _, err := fmt.Fprintf(w, `<p class="job-error">%s</p>`, templ.EscapeString(job.ErrorMessage)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func progressBar(w io.Writer, job *domain.Job) error {
	if job.Status == domain.JobStatusRunning && job.Indeterminate {
		_, err := io.WriteString(w, `<progress max="100"></progress>`)
		return err
	}
	_, err := fmt.Fprintf(w, `<progress max="100" value="%d">%d%%</progress>`, job.Percent, job.Percent)
	return err
}
