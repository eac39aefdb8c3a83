package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/dharmasatrya/flightscan/internal/cache"
	"github.com/dharmasatrya/flightscan/internal/datepairs"
	"github.com/dharmasatrya/flightscan/internal/dedupe"
	"github.com/dharmasatrya/flightscan/internal/filter"
	"github.com/dharmasatrya/flightscan/internal/mapper"
	"github.com/dharmasatrya/flightscan/internal/metrics"
	"github.com/dharmasatrya/flightscan/internal/models"
	"github.com/dharmasatrya/flightscan/internal/providers"
	"github.com/dharmasatrya/flightscan/internal/ranking"
	"github.com/dharmasatrya/flightscan/internal/ratelimit"
)

// ProgressFunc receives pairs finished so far, total pairs and raw offers
// collected so far. With PairConcurrency above 1 it may be called from
// several goroutines.
type ProgressFunc func(donePairs, totalPairs, collected int)

type Config struct {
	Tuning Tuning
	// TimeBudget is checked before each pair is started; zero disables it.
	TimeBudget      time.Duration
	PairConcurrency int
	MaxRetries      int
	RetryDelays     []time.Duration
	RateLimiter     *ratelimit.ProviderLimiter
	Cache           cache.Cache
}

func DefaultConfig() Config {
	return Config{
		Tuning:          DefaultTuning(),
		TimeBudget:      60 * time.Second,
		PairConcurrency: 1,
		MaxRetries:      1,
		RetryDelays:     []time.Duration{500 * time.Millisecond},
	}
}

type Orchestrator struct {
	provider providers.OfferProvider
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrchestrator(provider providers.OfferProvider, config Config, logger *zap.Logger) *Orchestrator {
	if config.PairConcurrency < 1 {
		config.PairConcurrency = 1
	}
	if config.Cache == nil {
		config.Cache = cache.NewNoOpCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		provider: provider,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one search. Provider failures are skipped pair by pair; the
// returned error is non-nil only when ctx itself was cancelled.
func (o *Orchestrator) Run(ctx context.Context, req *models.SearchRequest, progress ProgressFunc) (*models.SearchResult, error) {
	start := o.now()
	result, err := o.run(ctx, req, progress, start)
	if err != nil {
		return nil, err
	}

	elapsed := o.now().Sub(start)
	metrics.SearchesTotal.WithLabelValues(result.Source).Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())
	o.logger.Info("search finished",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.String("source", result.Source),
		zap.Int("pairs", result.TotalPairs),
		zap.Int("done_pairs", result.DonePairs),
		zap.Int("offers", result.TotalOffers),
		zap.Int("results", len(result.Options)),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req *models.SearchRequest, progress ProgressFunc, start time.Time) (*models.SearchResult, error) {
	if !o.provider.Configured() {
		return &models.SearchResult{
			Status:  models.StatusError,
			Source:  models.SourceNotConfigured,
			Options: []models.FlightOption{},
		}, nil
	}

	limits := o.config.Tuning.Resolve(req)
	pairs := datepairs.ForRequest(req, limits.Pairs)
	if len(pairs) == 0 {
		return &models.SearchResult{
			Status:  models.StatusOK,
			Source:  models.SourceNoDatePairs,
			Options: []models.FlightOption{},
		}, nil
	}

	var deadline time.Time
	if o.config.TimeBudget > 0 {
		deadline = start.Add(o.config.TimeBudget)
	}

	perPair, done := o.collect(ctx, req, pairs, limits, deadline, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []dedupe.Candidate
	for i, offers := range perPair {
		for _, offer := range offers {
			candidates = append(candidates, dedupe.Candidate{
				Offer:  offer,
				Option: mapper.Map(offer, pairs[i]),
				Cabin:  req.Cabin,
			})
		}
	}

	result := &models.SearchResult{
		Status:      models.StatusOK,
		TotalPairs:  len(pairs),
		DonePairs:   done,
		TotalOffers: len(candidates),
	}
	if len(candidates) == 0 {
		result.Source = models.SourceNoResults
		result.Options = []models.FlightOption{}
		return result, nil
	}

	options := dedupe.Options(dedupe.Dedupe(candidates))
	filtered := filter.Apply(options, req.MaxPrice, req.StopsFilter)
	balanced := ranking.Balance(filtered, min(limits.Total, len(filtered)))

	result.Source = models.SourceProvider
	result.Options = ranking.CalculateScores(balanced)
	return result, nil
}

// collect walks pairs in order and returns the raw offers of each pair plus
// the number of pairs attempted. The offer budget is reserved before a pair
// starts and the unused part handed back when it finishes, so the total never
// exceeds limits.Total even with pairs in flight.
func (o *Orchestrator) collect(
	ctx context.Context,
	req *models.SearchRequest,
	pairs []models.DatePair,
	limits Limits,
	deadline time.Time,
	progress ProgressFunc,
) ([][]models.RawOffer, int) {
	results := make([][]models.RawOffer, len(pairs))
	sem := semaphore.NewWeighted(int64(o.config.PairConcurrency))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		reserved  int
		collected int
		done      int
		attempted int
	)

	for i, pair := range pairs {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		if !deadline.IsZero() && o.now().After(deadline) {
			sem.Release(1)
			o.logger.Info("search time budget exhausted",
				zap.Int("done_pairs", attempted),
				zap.Int("total_pairs", len(pairs)),
			)
			metrics.PairsTotal.WithLabelValues(metrics.PairSkipped).Add(float64(len(pairs) - i))
			break
		}

		mu.Lock()
		want := min(limits.PerPair, limits.Total-reserved)
		if want <= 0 {
			mu.Unlock()
			sem.Release(1)
			metrics.PairsTotal.WithLabelValues(metrics.PairSkipped).Add(float64(len(pairs) - i))
			break
		}
		reserved += want
		mu.Unlock()

		attempted++
		wg.Add(1)
		go func(i int, pair models.DatePair, want int) {
			defer wg.Done()
			defer sem.Release(1)

			offers := o.fetchPair(ctx, req, pair, want)
			if len(offers) > want {
				offers = offers[:want]
			}

			mu.Lock()
			results[i] = offers
			reserved -= want - len(offers)
			collected += len(offers)
			done++
			d, c := done, collected
			mu.Unlock()

			if progress != nil {
				progress(d, len(pairs), c)
			}
		}(i, pair, want)
	}

	wg.Wait()
	return results, attempted
}

func (o *Orchestrator) fetchPair(ctx context.Context, req *models.SearchRequest, pair models.DatePair, limit int) []models.RawOffer {
	key := cache.KeyFor(req, pair, limit)
	if offers, ok := o.config.Cache.Get(ctx, key); ok {
		metrics.PairsTotal.WithLabelValues(metrics.PairCached).Inc()
		return offers
	}

	offers, err := o.fetchWithRetry(ctx, req, pair, limit)
	if err != nil {
		metrics.PairsTotal.WithLabelValues(metrics.PairError).Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(providers.KindLabel(err)).Inc()
		o.logger.Warn("pair search failed, skipping",
			zap.String("provider", o.provider.Name()),
			zap.String("origin", req.Origin),
			zap.String("destination", req.Destination),
			zap.String("departure", pair.DepartureDate()),
			zap.String("return", pair.ReturnDate()),
			zap.Int("stay_days", pair.StayDays()),
			zap.Error(err),
		)
		return nil
	}

	metrics.PairsTotal.WithLabelValues(metrics.PairOK).Inc()
	if err := o.config.Cache.Set(ctx, key, offers); err != nil {
		o.logger.Debug("offer cache write failed", zap.Error(err))
	}
	return offers
}

func (o *Orchestrator) fetchWithRetry(ctx context.Context, req *models.SearchRequest, pair models.DatePair, limit int) ([]models.RawOffer, error) {
	var lastErr error

	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, o.retryDelay(attempt)); err != nil {
				return nil, lastErr
			}
		}

		offers, err := o.fetchOnce(ctx, req, pair, limit)
		if err == nil {
			return offers, nil
		}

		lastErr = err
		if !providers.Retryable(err) {
			break
		}
		o.logger.Debug("provider attempt failed",
			zap.String("provider", o.provider.Name()),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

func (o *Orchestrator) fetchOnce(ctx context.Context, req *models.SearchRequest, pair models.DatePair, limit int) ([]models.RawOffer, error) {
	name := o.provider.Name()

	if err := o.config.RateLimiter.Wait(ctx, name); err != nil {
		return nil, providers.NewProviderError(name, providers.ErrProviderFailed, err)
	}
	id, err := o.provider.CreateOfferRequest(ctx, providers.RoundTrip(req.Origin, req.Destination, pair, req.Passengers, req.Cabin))
	if err != nil {
		return nil, err
	}

	if err := o.config.RateLimiter.Wait(ctx, name); err != nil {
		return nil, providers.NewProviderError(name, providers.ErrProviderFailed, err)
	}
	return o.provider.ListOffers(ctx, id, limit)
}

func (o *Orchestrator) retryDelay(attempt int) time.Duration {
	if len(o.config.RetryDelays) == 0 {
		return 0
	}
	idx := min(attempt-1, len(o.config.RetryDelays)-1)
	return o.config.RetryDelays[idx]
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
