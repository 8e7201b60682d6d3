package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/service"
)

const keepAliveInterval = 15 * time.Second

type SSEHandler struct {
	eventBus  *service.EventBus
	jobs      JobService
	keepAlive time.Duration
}

func NewSSEHandler(eventBus *service.EventBus, jobs JobService) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		jobs:      jobs,
		keepAlive: keepAliveInterval,
	}
}

// sseWrite writes an SSE event, handling multi-line data correctly.
func sseWrite(w http.ResponseWriter, eventName string, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\n", eventName)
	for _, line := range strings.Split(data, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// sendKeepAlive writes an SSE comment to keep the connection active.
func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// snapshotEvent describes the stored state of job as an event.
func snapshotEvent(job *domain.Job) service.Event {
	ev := service.Event{
		Type:   service.EventProgress,
		Status: job.Status,
		Progress: domain.Progress{
			Artifact:      job.Artifact,
			Message:       job.Message,
			Percent:       job.Percent,
			Indeterminate: job.Indeterminate,
		},
	}
	switch job.Status {
	case domain.JobStatusSucceeded:
		ev.Type = service.EventDone
	case domain.JobStatusFailed, domain.JobStatusCancelled:
		ev.Type = service.EventFailed
		ev.Error = job.ErrorMessage
	}
	return ev
}

// streamState is what a client was last sent.
type streamState struct {
	sent     bool
	status   domain.JobStatus
	percent  int
	artifact string
}

// send writes ev unless it would tell the client nothing new. Elapsed time
// alone does not count as a change.
func send(w http.ResponseWriter, ev service.Event, state *streamState) error {
	if !ev.Terminal() && state.sent &&
		state.status == ev.Status &&
		state.percent == ev.Progress.Percent &&
		state.artifact == ev.Progress.Artifact {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	sseWrite(w, ev.Type, string(data))
	*state = streamState{
		sent:     true,
		status:   ev.Status,
		percent:  ev.Progress.Percent,
		artifact: ev.Progress.Artifact,
	}
	return nil
}

func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		// Subscribe before reading the job so no event falls in between.
		ch := h.eventBus.Subscribe(id)
		defer h.eventBus.Unsubscribe(id, ch)

		job, err := h.jobs.Get(id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			logger.Error.Printf("sse get job %s: %v", logger.SanitizeForLog(id), err)
			writeError(w, http.StatusInternalServerError, "failed to load job")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		var state streamState
		first := snapshotEvent(job)
		if err := send(w, first, &state); err != nil {
			logger.Error.Printf("sse send: %v", err)
			return
		}
		if first.Terminal() {
			return
		}

		ctx := r.Context()
		keepAlive := time.NewTicker(h.keepAlive)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case event, ok := <-ch:
				if !ok {
					return
				}
				if err := send(w, event, &state); err != nil {
					logger.Error.Printf("sse send: %v", err)
					return
				}
				if event.Terminal() {
					return
				}
			}
		}
	}
}
