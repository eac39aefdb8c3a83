package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dharmasatrya/flightscan/internal/mapper"
	"github.com/dharmasatrya/flightscan/internal/models"
	"github.com/dharmasatrya/flightscan/internal/providers/data"
	"github.com/dharmasatrya/flightscan/internal/timeparse"
)

const fixtureTimeLayout = "2006-01-02T15:04:05"

var (
	fixtureOutbound = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fixtureReturn   = time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
)

// FixtureProvider serves the embedded sample offers for any route, shifted
// onto the requested dates. It needs no credentials.
type FixtureProvider struct {
	offers  []models.RawOffer
	latency time.Duration

	seq      atomic.Int64
	mu       sync.Mutex
	requests map[string]OfferRequest
}

func NewFixtureProvider(latency time.Duration) (*FixtureProvider, error) {
	var resp duffelOffersResponse
	if err := json.Unmarshal(data.Offers, &resp); err != nil {
		return nil, err
	}
	return &FixtureProvider{
		offers:   resp.Data,
		latency:  latency,
		requests: make(map[string]OfferRequest),
	}, nil
}

func (p *FixtureProvider) Name() string {
	return "fixture"
}

func (p *FixtureProvider) Configured() bool {
	return true
}

func (p *FixtureProvider) CreateOfferRequest(ctx context.Context, req OfferRequest) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	if len(req.Slices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Kind: ErrProviderRejected, Message: "no slices"}
	}
	for _, s := range req.Slices {
		if _, err := time.Parse(models.DateLayout, s.DepartureDate); err != nil {
			return "", &ProviderError{Provider: p.Name(), Kind: ErrProviderRejected, Message: "invalid departure_date", Err: err}
		}
	}

	id := fmt.Sprintf("orq_fixture_%d", p.seq.Add(1))
	p.mu.Lock()
	p.requests[id] = req
	p.mu.Unlock()
	return id, nil
}

func (p *FixtureProvider) ListOffers(ctx context.Context, offerRequestID string, limit int) ([]models.RawOffer, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	req, ok := p.requests[offerRequestID]
	delete(p.requests, offerRequestID)
	p.mu.Unlock()
	if !ok {
		return nil, &ProviderError{Provider: p.Name(), Kind: ErrProviderRejected, StatusCode: 404, Message: "unknown offer request " + offerRequestID}
	}

	out := make([]models.RawOffer, 0, len(p.offers))
	for _, o := range p.offers {
		out = append(out, p.redate(o, req, offerRequestID))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return mapper.ParsePrice(out[i].TotalAmount) < mapper.ParsePrice(out[j].TotalAmount)
	})

	limit = min(limit, MaxOffersPerPage)
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *FixtureProvider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return NewProviderError(p.Name(), ErrProviderFailed, err)
		}
		return nil
	}
	select {
	case <-time.After(p.latency):
		return nil
	case <-ctx.Done():
		return NewProviderError(p.Name(), ErrProviderFailed, ctx.Err())
	}
}

func (p *FixtureProvider) redate(o models.RawOffer, req OfferRequest, requestID string) models.RawOffer {
	passengers := max(1, req.Passengers)
	out := models.RawOffer{
		ID:            o.ID + "_" + requestID,
		TotalAmount:   strconv.FormatFloat(mapper.ParsePrice(o.TotalAmount)*float64(passengers), 'f', 2, 64),
		TotalCurrency: o.TotalCurrency,
		Owner:         o.Owner,
	}

	bases := []time.Time{fixtureOutbound, fixtureReturn}
	for i, s := range req.Slices {
		if i >= len(o.Slices) || i >= len(bases) {
			break
		}
		day, _ := time.Parse(models.DateLayout, s.DepartureDate)
		shift := day.Sub(bases[i])

		segs := make([]models.Segment, len(o.Slices[i].Segments))
		copy(segs, o.Slices[i].Segments)
		for j := range segs {
			segs[j].DepartingAt = shiftTimestamp(segs[j].DepartingAt, shift)
			segs[j].ArrivingAt = shiftTimestamp(segs[j].ArrivingAt, shift)
		}
		if len(segs) > 0 {
			relabel(&segs[0].Origin, s.Origin)
			relabel(&segs[len(segs)-1].Destination, s.Destination)
		}
		out.Slices = append(out.Slices, models.Slice{Segments: segs})
	}
	return out
}

func shiftTimestamp(ts string, d time.Duration) string {
	t, err := timeparse.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Add(d).Format(fixtureTimeLayout)
}

func relabel(p *models.Place, code string) {
	if code == "" || p.IATACode == code {
		return
	}
	p.IATACode = code
	p.Name = ""
}
