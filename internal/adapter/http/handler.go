package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bnema/vidpipe/internal/adapter/http/templates"
	"github.com/bnema/vidpipe/internal/adapter/http/validation"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/service"
)

// maxRequestBytes bounds a job submission body.
const maxRequestBytes = 1 << 20

type JobService interface {
	Submit(kind domain.JobKind, params json.RawMessage) (*domain.Job, error)
	Get(id string) (*domain.Job, error)
	List() ([]*domain.Job, error)
	Cancel(id string) error
}

type Handlers struct {
	jobs JobService
}

func NewHandlers(jobs JobService) *Handlers {
	return &Handlers{jobs: jobs}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// inputPaths are the request fields pointing at files the engine reads.
type inputPaths struct {
	Source      string `json:"source"`
	FrameDir    string `json:"frame_dir"`
	Destination string `json:"destination"`
}

// checkInputs rejects submissions whose inputs are missing or are not
// videos. The engine would fail on them anyway, after the job was queued.
func checkInputs(body []byte) error {
	var in inputPaths
	if err := json.Unmarshal(body, &in); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if in.Source != "" {
		if _, err := validation.ValidateVideoFile(in.Source); err != nil {
			return fmt.Errorf("source: %w", err)
		}
	}
	if in.FrameDir != "" {
		info, err := os.Stat(in.FrameDir)
		if err != nil {
			return fmt.Errorf("frame dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("frame dir: %s is not a directory", in.FrameDir)
		}
	}
	if in.Destination != "" {
		if info, err := os.Stat(in.Destination); err == nil && info.IsDir() {
			return fmt.Errorf("destination: %s is a directory", in.Destination)
		}
	}
	return nil
}

func (h *Handlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := domain.JobKind(r.PathValue("kind"))
		if !kind.Valid() {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown job kind %q", kind))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		if err := checkInputs(body); err != nil {
			if errors.Is(err, domain.ErrInvalidRequest) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		job, err := h.jobs.Submit(kind, body)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRequest) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error.Printf("submit %s job: %v", kind, err)
			writeError(w, http.StatusInternalServerError, "failed to queue job")
			return
		}

		logger.Info.Printf("queued %s job %s", kind, job.ID)
		writeJSON(w, http.StatusAccepted, job)
	}
}

func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := h.jobs.List()
		if err != nil {
			logger.Error.Printf("list jobs: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list jobs")
			return
		}
		if jobs == nil {
			jobs = []*domain.Job{}
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

// lookup loads the job named in the path, writing the error response
// itself when there is none.
func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	id := r.PathValue("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return nil, false
		}
		logger.Error.Printf("get job %s: %v", logger.SanitizeForLog(id), err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return nil, false
	}
	return job, true
}

func (h *Handlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := h.lookup(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// Status returns an HTML fragment for polling clients.
func (h *Handlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := h.lookup(w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.JobStatus(job).Render(r.Context(), w)
	}
}

// Artifact downloads the output file of a finished job.
func (h *Handlers) Artifact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := h.lookup(w, r)
		if !ok {
			return
		}
		if job.Status != domain.JobStatusSucceeded || job.Artifact == "" {
			writeError(w, http.StatusNotFound, "artifact not available")
			return
		}
		info, err := os.Stat(job.Artifact)
		if err != nil || !info.Mode().IsRegular() {
			writeError(w, http.StatusNotFound, "artifact not available")
			return
		}

		w.Header().Set("Content-Disposition", validation.ArtifactDisposition(job.Artifact))
		http.ServeFile(w, r, job.Artifact)
	}
}

func (h *Handlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		err := h.jobs.Cancel(id)
		switch {
		case err == nil:
			logger.Info.Printf("cancel requested for job %s", logger.SanitizeForLog(id))
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, service.ErrJobFinished):
			writeError(w, http.StatusConflict, err.Error())
		default:
			logger.Error.Printf("cancel job %s: %v", logger.SanitizeForLog(id), err)
			writeError(w, http.StatusInternalServerError, "failed to cancel job")
		}
	}
}

func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	}
}
