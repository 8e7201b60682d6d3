package port

import "github.com/bnema/vidpipe/internal/domain"

type JobStore interface {
	Get(id string) (*domain.Job, error)
	List() ([]*domain.Job, error)
	UpdateProgress(id string, p domain.Progress) error
}
