package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightscan/internal/cache"
	"github.com/dharmasatrya/flightscan/internal/models"
	"github.com/dharmasatrya/flightscan/internal/providers"
)

type fakeProvider struct {
	unconfigured bool
	// offers returns the page for one departure/return date pair.
	offers func(dep, ret string, limit int) ([]models.RawOffer, error)
	onList func()

	creates  atomic.Int32
	lists    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32

	mu     sync.Mutex
	limits []int
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) Configured() bool { return !f.unconfigured }

func (f *fakeProvider) CreateOfferRequest(ctx context.Context, req providers.OfferRequest) (string, error) {
	f.creates.Add(1)
	return req.Slices[0].DepartureDate + "|" + req.Slices[1].DepartureDate, nil
}

func (f *fakeProvider) ListOffers(ctx context.Context, id string, limit int) ([]models.RawOffer, error) {
	f.lists.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.limits = append(f.limits, limit)
	f.mu.Unlock()

	if f.onList != nil {
		f.onList()
	}
	dep, ret, _ := strings.Cut(id, "|")
	return f.offers(dep, ret, limit)
}

// page builds n distinct BA itineraries departing on dep, priced from base upward.
func page(dep string, n int, base float64) []models.RawOffer {
	out := make([]models.RawOffer, n)
	for i := range out {
		out[i] = itinerary(fmt.Sprintf("off_%s_%03d", dep, i), fmt.Sprintf("%.2f", base+float64(i)), "BA",
			fmt.Sprintf("%sT%02d:%02d:00", dep, 6+i/60, i%60),
			fmt.Sprintf("%sT%02d:%02d:00", dep, 11+i/60, i%60))
	}
	return out
}

func itinerary(id, amount, carrier, depart, arrive string) models.RawOffer {
	return models.RawOffer{
		ID:            id,
		TotalAmount:   amount,
		TotalCurrency: "GBP",
		Owner:         models.Carrier{IATACode: carrier},
		Slices: []models.Slice{{Segments: []models.Segment{{
			Origin:      models.Place{IATACode: "LHR"},
			Destination: models.Place{IATACode: "TLV"},
			DepartingAt: depart,
			ArrivingAt:  arrive,
		}}}},
	}
}

func fullPage(dep, ret string, limit int) ([]models.RawOffer, error) {
	return page(dep, limit, 400), nil
}

func request(t *testing.T, earliest, latest string, minStay, maxStay int) *models.SearchRequest {
	t.Helper()
	req := &models.SearchRequest{
		Origin:            "lhr",
		Destination:       "tlv",
		EarliestDeparture: earliest,
		LatestDeparture:   latest,
		MinStayDays:       minStay,
		MaxStayDays:       maxStay,
	}
	require.NoError(t, req.Validate())
	return req
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelays = nil
	return cfg
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestRun_ProviderNotConfigured(t *testing.T) {
	p := &fakeProvider{unconfigured: true, offers: fullPage}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-10", 2, 4), nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusError, res.Status)
	assert.Equal(t, models.SourceNotConfigured, res.Source)
	assert.NotNil(t, res.Options)
	assert.Empty(t, res.Options)
	assert.Zero(t, p.creates.Load())
	assert.Zero(t, p.lists.Load())
}

func TestRun_NoDatePairs(t *testing.T) {
	p := &fakeProvider{offers: fullPage}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-02", 5, 7), nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, res.Status)
	assert.Equal(t, models.SourceNoDatePairs, res.Source)
	assert.Empty(t, res.Options)
	assert.Zero(t, p.creates.Load())
}

func TestRun_SinglePairWindow(t *testing.T) {
	var seen []string
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		seen = append(seen, dep+"/"+ret)
		return page(dep, 3, 500), nil
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-03", 2, 2), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-01/2025-06-03"}, seen)
	assert.Equal(t, 1, res.TotalPairs)
	assert.Equal(t, 1, res.DonePairs)
	assert.Equal(t, models.SourceProvider, res.Source)
	require.Len(t, res.Options, 3)
	assert.Equal(t, "2025-06-01", res.Options[0].DepartureDate)
	assert.Equal(t, "2025-06-03", res.Options[0].ReturnDate)
	assert.Equal(t, "British Airways", res.Options[0].Airline)
	assert.NotZero(t, res.Options[0].BestValueScore)
}

func TestRun_KeepsCheapestFareForSameItinerary(t *testing.T) {
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		return []models.RawOffer{
			itinerary("off_flex", "500.00", "BA", dep+"T08:00:00", dep+"T15:00:00"),
			itinerary("off_light", "450.00", "BA", dep+"T08:00:00", dep+"T15:00:00"),
		}, nil
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-03", 2, 2), nil)

	require.NoError(t, err)
	require.Len(t, res.Options, 1)
	assert.Equal(t, "off_light", res.Options[0].ID)
	assert.Equal(t, 450.0, res.Options[0].Price)
	assert.Equal(t, 2, res.TotalOffers)
}

func TestRun_PriceCeilingEmptiesResult(t *testing.T) {
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		return page(dep, 5, 450), nil
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	req := request(t, "2025-06-01", "2025-06-03", 2, 2)
	ceiling := 400.0
	req.MaxPrice = &ceiling

	res, err := o.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, res.Status)
	assert.Equal(t, models.SourceProvider, res.Source)
	assert.NotNil(t, res.Options)
	assert.Empty(t, res.Options)
}

func TestRun_NothingCollected(t *testing.T) {
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		return nil, nil
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-04", 2, 2), nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, res.Status)
	assert.Equal(t, models.SourceNoResults, res.Source)
	assert.Empty(t, res.Options)
	assert.Equal(t, 2, res.TotalPairs)
	assert.Equal(t, 2, res.DonePairs)
}

func TestRun_SkipsFailedPairs(t *testing.T) {
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		if dep == "2025-06-02" {
			return nil, &providers.ProviderError{Provider: "fake", Kind: providers.ErrProviderRejected, StatusCode: 422}
		}
		return page(dep, 2, 600), nil
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	type call struct{ done, total, collected int }
	var calls []call
	progress := func(done, total, collected int) {
		calls = append(calls, call{done, total, collected})
	}

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-05", 2, 2), progress)

	require.NoError(t, err)
	assert.Equal(t, models.SourceProvider, res.Source)
	assert.Len(t, res.Options, 4)
	assert.Equal(t, 3, res.TotalPairs)
	assert.Equal(t, 3, res.DonePairs)
	assert.Equal(t, []call{{1, 3, 2}, {2, 3, 2}, {3, 3, 4}}, calls)
	assert.Equal(t, int32(3), p.lists.Load())
}

func TestRun_RetriesOnlyPlainFailures(t *testing.T) {
	tests := []struct {
		name      string
		kind      error
		wantLists int32
		wantOpts  int
	}{
		{"failed is retried", providers.ErrProviderFailed, 2, 2},
		{"rejected is not retried", providers.ErrProviderRejected, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n atomic.Int32
			p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
				if n.Add(1) == 1 {
					return nil, providers.NewProviderError("fake", tt.kind, nil)
				}
				return page(dep, 2, 500), nil
			}}
			o := NewOrchestrator(p, testConfig(), zap.NewNop())

			res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-03", 2, 2), nil)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLists, p.lists.Load())
			assert.Len(t, res.Options, tt.wantOpts)
		})
	}
}

func TestRun_TimeoutIsNotRetried(t *testing.T) {
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		return nil, providers.NewProviderError("fake", providers.ErrProviderFailed, context.DeadlineExceeded)
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-03", 2, 2), nil)

	require.NoError(t, err)
	assert.Equal(t, models.SourceNoResults, res.Source)
	assert.Equal(t, int32(1), p.lists.Load())
}

func TestRun_RespectsOfferBudget(t *testing.T) {
	p := &fakeProvider{offers: fullPage}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	req := request(t, "2025-06-01", "2025-06-05", 2, 2)
	req.MaxOffersPerPair = 60
	req.MaxOffersTotal = 100

	res, err := o.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{60, 40}, p.limits)
	assert.Equal(t, 100, res.TotalOffers)
	assert.Len(t, res.Options, 100)
	assert.Equal(t, 3, res.TotalPairs)
	assert.Equal(t, 2, res.DonePairs)
}

func TestRun_RespectsTimeBudget(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := &fakeProvider{
		offers: func(dep, ret string, limit int) ([]models.RawOffer, error) { return page(dep, 1, 500), nil },
		onList: func() { clk.Advance(40 * time.Second) },
	}
	cfg := testConfig()
	cfg.TimeBudget = 60 * time.Second
	o := NewOrchestrator(p, cfg, zap.NewNop())
	o.now = clk.Now

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-05", 2, 2), nil)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, res.Status)
	assert.Equal(t, 3, res.TotalPairs)
	assert.Equal(t, 2, res.DonePairs)
	assert.Len(t, res.Options, 2)
}

func TestRun_ConcurrentPairsStayWithinBudget(t *testing.T) {
	p := &fakeProvider{
		offers: fullPage,
		onList: func() { time.Sleep(5 * time.Millisecond) },
	}
	cfg := testConfig()
	cfg.PairConcurrency = 4
	o := NewOrchestrator(p, cfg, zap.NewNop())

	req := request(t, "2025-06-01", "2025-06-20", 2, 2)
	req.MaxOffersPerPair = 30
	req.MaxOffersTotal = 100

	var mu sync.Mutex
	maxDone := 0
	res, err := o.Run(context.Background(), req, func(done, total, collected int) {
		mu.Lock()
		maxDone = max(maxDone, done)
		mu.Unlock()
		assert.LessOrEqual(t, collected, 100)
	})

	require.NoError(t, err)
	assert.Equal(t, 100, res.TotalOffers)
	assert.Equal(t, int32(4), p.lists.Load())
	assert.LessOrEqual(t, p.peak.Load(), int32(4))
	assert.Equal(t, 4, maxDone)
	for i := 1; i < len(res.Options); i++ {
		assert.LessOrEqual(t, res.Options[i-1].Price, res.Options[i].Price)
	}
}

func TestRun_CachedPairsSkipProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		return page(dep, 3, 700), nil
	}}
	cfg := testConfig()
	cfg.Cache = cache.NewRedisCache(client, time.Minute)
	o := NewOrchestrator(p, cfg, zap.NewNop())

	first, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-04", 2, 2), nil)
	require.NoError(t, err)
	second, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-04", 2, 2), nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.lists.Load())
	assert.Equal(t, first.Options, second.Options)
}

func TestRun_CancelledContext(t *testing.T) {
	p := &fakeProvider{offers: fullPage}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, request(t, "2025-06-01", "2025-06-05", 2, 2), nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_NonFinitePriceDoesNotPoisonScores(t *testing.T) {
	p := &fakeProvider{offers: func(dep, ret string, limit int) ([]models.RawOffer, error) {
		return []models.RawOffer{
			itinerary("off_nan", "NaN", "BA", dep+"T06:00:00", dep+"T11:00:00"),
			itinerary("off_a", "450.00", "BA", dep+"T08:00:00", dep+"T13:00:00"),
			itinerary("off_b", "520.00", "LY", dep+"T09:00:00", dep+"T14:30:00"),
		}, nil
	}}
	o := NewOrchestrator(p, testConfig(), zap.NewNop())

	res, err := o.Run(context.Background(), request(t, "2025-06-01", "2025-06-08", 7, 7), nil)
	require.NoError(t, err)
	require.Len(t, res.Options, 3)

	for _, opt := range res.Options {
		assert.False(t, math.IsNaN(opt.Price), opt.ID)
		assert.False(t, math.IsNaN(opt.BestValueScore), opt.ID)
	}
	assert.Equal(t, "off_nan", res.Options[0].ID)
	assert.Zero(t, res.Options[0].Price)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}
