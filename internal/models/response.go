package models

const (
	StatusOK    = "ok"
	StatusError = "error"
)

const (
	SourceNotConfigured = "duffel_not_configured"
	SourceNoDatePairs   = "no_date_pairs"
	SourceNoResults     = "duffel_no_results"
	SourceProvider      = "duffel"
)

type SearchResult struct {
	Status      string         `json:"status"`
	Source      string         `json:"source"`
	Options     []FlightOption `json:"options"`
	TotalPairs  int            `json:"totalPairs"`
	DonePairs   int            `json:"donePairs"`
	TotalOffers int            `json:"totalOffers"`
}

type JobProgress struct {
	DonePairs    int `json:"donePairs"`
	TotalPairs   int `json:"totalPairs"`
	TotalResults int `json:"totalResults"`
}

type JobStatusResponse struct {
	JobID    string         `json:"jobId"`
	Status   JobStatus      `json:"status"`
	Progress JobProgress    `json:"progress"`
	Results  []FlightOption `json:"results"`
	Error    *string        `json:"error"`
}

type JobAcceptedResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// OfferSummary is the trimmed offer shape returned by the provider check route.
type OfferSummary struct {
	ID          string  `json:"id"`
	Airline     string  `json:"airline"`
	AirlineCode string  `json:"airlineCode"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
}

type ProviderCheckResponse struct {
	Status string         `json:"status"`
	Source string         `json:"source"`
	Offers []OfferSummary `json:"offers"`
}
