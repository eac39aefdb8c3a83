package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dharmasatrya/flightscan/internal/models"
)

// MaxOffersPerPage is the largest page the offers endpoint will return.
const MaxOffersPerPage = 300

type DuffelConfig struct {
	AccessToken string
	BaseURL     string
	Version     string
	Timeout     time.Duration
}

func DefaultDuffelConfig() DuffelConfig {
	return DuffelConfig{
		BaseURL: "https://api.duffel.com",
		Version: "v2",
		Timeout: 30 * time.Second,
	}
}

type DuffelProvider struct {
	cfg    DuffelConfig
	client *http.Client
}

func NewDuffelProvider(cfg DuffelConfig) *DuffelProvider {
	def := DefaultDuffelConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &DuffelProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *DuffelProvider) Name() string {
	return "duffel"
}

func (p *DuffelProvider) Configured() bool {
	return p.cfg.AccessToken != ""
}

type duffelPassenger struct {
	Type string `json:"type"`
}

type duffelOfferRequest struct {
	Data struct {
		Slices     []SliceRequest    `json:"slices"`
		Passengers []duffelPassenger `json:"passengers"`
		CabinClass string            `json:"cabin_class"`
	} `json:"data"`
}

type duffelOffersResponse struct {
	Data []models.RawOffer `json:"data"`
}

func (p *DuffelProvider) CreateOfferRequest(ctx context.Context, req OfferRequest) (string, error) {
	if !p.Configured() {
		return "", NewProviderError(p.Name(), ErrProviderUnavailable, nil)
	}

	var payload duffelOfferRequest
	payload.Data.Slices = req.Slices
	payload.Data.Passengers = make([]duffelPassenger, max(1, req.Passengers))
	for i := range payload.Data.Passengers {
		payload.Data.Passengers[i].Type = "adult"
	}
	payload.Data.CabinClass = strings.ToLower(req.Cabin)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal offer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/air/offer_requests?return_offers=false", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	respBody, err := p.do(httpReq)
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(respBody, "data.id").String()
	if id == "" {
		return "", &ProviderError{
			Provider: p.Name(),
			Kind:     ErrProviderFailed,
			Message:  "offer request id missing from response",
		}
	}
	return id, nil
}

func (p *DuffelProvider) ListOffers(ctx context.Context, offerRequestID string, limit int) ([]models.RawOffer, error) {
	if !p.Configured() {
		return nil, NewProviderError(p.Name(), ErrProviderUnavailable, nil)
	}
	if limit <= 0 {
		return []models.RawOffer{}, nil
	}

	q := url.Values{}
	q.Set("offer_request_id", offerRequestID)
	q.Set("limit", strconv.Itoa(min(limit, MaxOffersPerPage)))
	q.Set("sort", "total_amount")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/air/offers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respBody, err := p.do(httpReq)
	if err != nil {
		return nil, err
	}

	var resp duffelOffersResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, NewProviderError(p.Name(), ErrProviderFailed, fmt.Errorf("failed to decode offers: %w", err))
	}
	if len(resp.Data) > limit {
		resp.Data = resp.Data[:limit]
	}
	return resp.Data, nil
}

func (p *DuffelProvider) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Duffel-Version", p.cfg.Version)
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewProviderError(p.Name(), ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(p.Name(), ErrProviderFailed, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		kind := ErrProviderFailed
		if resp.StatusCode < http.StatusInternalServerError {
			kind = ErrProviderRejected
		}
		return nil, &ProviderError{
			Provider:   p.Name(),
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "errors.0.message").String(); msg != "" {
		return msg
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
