package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightscan/internal/metrics"
	"github.com/dharmasatrya/flightscan/internal/models"
	"github.com/dharmasatrya/flightscan/internal/search"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var ErrQueueFull = errors.New("search queue is full")

type Searcher interface {
	Run(ctx context.Context, req *models.SearchRequest, progress search.ProgressFunc) (*models.SearchResult, error)
}

type Config struct {
	Workers int
}

func DefaultConfig() Config {
	return Config{Workers: 8}
}

// Registry starts async searches on a bounded pool and answers status polls.
type Registry struct {
	store    Store
	searcher Searcher
	pool     *ants.Pool
	logger   *zap.Logger
	now      func() time.Time
}

func NewRegistry(store Store, searcher Searcher, cfg Config, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}

	pool, err := ants.NewPool(cfg.Workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("search worker panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Registry{
		store:    store,
		searcher: searcher,
		pool:     pool,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Submit records a pending job and schedules it. req must already be validated.
func (r *Registry) Submit(ctx context.Context, req *models.SearchRequest) (string, error) {
	job := &models.SearchJob{
		ID:        uuid.NewString(),
		Status:    models.JobPending,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	reqCopy := *req
	if err := r.pool.Submit(func() { r.execute(job.ID, &reqCopy) }); err != nil {
		_ = r.store.Delete(ctx, job.ID)
		if errors.Is(err, ants.ErrPoolOverload) {
			return "", ErrQueueFull
		}
		return "", fmt.Errorf("failed to schedule job: %w", err)
	}

	r.logger.Info("search job accepted",
		zap.String("job_id", job.ID),
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
	)
	return job.ID, nil
}

// Status returns the job's progress and, once completed, the options window
// [offset, offset+limit). offset is floored at 0 and limit clamped to [1, MaxPageSize].
func (r *Registry) Status(ctx context.Context, id string, offset, limit int) (*models.JobStatusResponse, error) {
	job, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &models.JobStatusResponse{
		JobID:  job.ID,
		Status: job.Status,
		Progress: models.JobProgress{
			DonePairs:    job.DonePairs,
			TotalPairs:   job.TotalPairs,
			TotalResults: job.TotalResults,
		},
		Results: []models.FlightOption{},
		Error:   job.Error,
	}

	if job.Status == models.JobCompleted && job.Result != nil {
		resp.Results = window(job.Result.Options, offset, limit)
	}
	return resp, nil
}

// Running reports how many jobs are executing right now.
func (r *Registry) Running() int {
	return r.pool.Running()
}

// Close waits up to timeout for running jobs, then stops the pool.
func (r *Registry) Close(timeout time.Duration) error {
	return r.pool.ReleaseTimeout(timeout)
}

func (r *Registry) execute(id string, req *models.SearchRequest) {
	ctx := context.Background()
	log := r.logger.With(zap.String("job_id", id))

	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	defer func() {
		if p := recover(); p != nil {
			log.Error("search job panicked", zap.Any("panic", p))
			r.finish(ctx, id, nil, fmt.Errorf("internal error: %v", p))
		}
	}()

	if err := r.store.Update(ctx, id, func(j *models.SearchJob) {
		j.Status = models.JobRunning
	}); err != nil {
		log.Error("failed to mark job running", zap.Error(err))
		r.finish(ctx, id, nil, fmt.Errorf("failed to start search: %w", err))
		return
	}

	result, err := r.searcher.Run(ctx, req, func(done, total, collected int) {
		err := r.store.Update(ctx, id, func(j *models.SearchJob) {
			j.DonePairs = max(j.DonePairs, done)
			j.TotalPairs = total
			j.TotalResults = max(j.TotalResults, collected)
		})
		if err != nil {
			log.Warn("failed to record job progress", zap.Error(err))
		}
	})
	if err == nil && result == nil {
		err = errors.New("search returned no result")
	}
	r.finish(ctx, id, result, err)
}

func (r *Registry) finish(ctx context.Context, id string, result *models.SearchResult, runErr error) {
	finished := r.now().UTC()
	err := r.store.Update(ctx, id, func(j *models.SearchJob) {
		j.FinishedAt = &finished
		if runErr != nil {
			msg := runErr.Error()
			j.Status = models.JobFailed
			j.Error = &msg
			return
		}
		j.Status = models.JobCompleted
		j.Result = result
		j.TotalPairs = result.TotalPairs
		j.DonePairs = result.DonePairs
		j.TotalResults = len(result.Options)
	})
	if err != nil {
		r.logger.Error("failed to record job result", zap.String("job_id", id), zap.Error(err))
		return
	}

	if runErr != nil {
		r.logger.Warn("search job failed", zap.String("job_id", id), zap.Error(runErr))
	} else {
		r.logger.Info("search job completed", zap.String("job_id", id), zap.Int("results", len(result.Options)))
	}
}

func window(options []models.FlightOption, offset, limit int) []models.FlightOption {
	start := max(0, offset)
	size := max(1, min(limit, MaxPageSize))
	if start >= len(options) {
		return []models.FlightOption{}
	}
	end := min(start+size, len(options))
	return options[start:end]
}
