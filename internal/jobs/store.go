package jobs

import (
	"context"
	"errors"

	"github.com/dharmasatrya/flightscan/internal/models"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobExists   = errors.New("job already exists")
)

// Store keeps job records. Get returns a private copy; Update applies fn to
// a copy of the current record and publishes the result as a whole, so
// readers never observe a half-applied change. fn may run more than once.
type Store interface {
	Create(ctx context.Context, job *models.SearchJob) error
	Get(ctx context.Context, id string) (*models.SearchJob, error)
	Update(ctx context.Context, id string, fn func(*models.SearchJob)) error
	Delete(ctx context.Context, id string) error
	Close() error
}
