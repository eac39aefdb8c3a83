package models

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type SearchRequest struct {
	Origin            string   `json:"origin"`
	Destination       string   `json:"destination"`
	EarliestDeparture string   `json:"earliestDeparture"`
	LatestDeparture   string   `json:"latestDeparture"`
	MinStayDays       int      `json:"minStayDays"`
	MaxStayDays       int      `json:"maxStayDays"`
	MaxPrice          *float64 `json:"maxPrice,omitempty"`
	Cabin             string   `json:"cabin,omitempty"`
	Passengers        int      `json:"passengers,omitempty"`
	// 3 in StopsFilter means "3 or more stops".
	StopsFilter []int `json:"stopsFilter,omitempty"`

	// Tuning overrides; zero means "use the server default".
	MaxOffersPerPair int `json:"maxOffersPerPair,omitempty"`
	MaxOffersTotal   int `json:"maxOffersTotal,omitempty"`
	MaxDatePairs     int `json:"maxDatePairs,omitempty"`

	earliest time.Time
	latest   time.Time
}

func (r *SearchRequest) Validate() error {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.EarliestDeparture == "" || r.LatestDeparture == "" {
		return ErrMissingWindow
	}

	earliest, err := time.Parse(DateLayout, r.EarliestDeparture)
	if err != nil {
		return ErrInvalidDate
	}
	latest, err := time.Parse(DateLayout, r.LatestDeparture)
	if err != nil {
		return ErrInvalidDate
	}
	r.earliest = earliest
	r.latest = latest

	if r.MinStayDays < 1 {
		r.MinStayDays = 1
	}
	if r.MaxStayDays < r.MinStayDays {
		r.MaxStayDays = r.MinStayDays
	}
	if r.Passengers <= 0 {
		r.Passengers = 1
	}
	if r.Cabin == "" {
		r.Cabin = "BUSINESS"
	}
	return nil
}

// Window returns the parsed departure window. Validate must have succeeded.
func (r *SearchRequest) Window() (time.Time, time.Time) {
	if r.earliest.IsZero() || r.latest.IsZero() {
		r.earliest, _ = time.Parse(DateLayout, r.EarliestDeparture)
		r.latest, _ = time.Parse(DateLayout, r.LatestDeparture)
	}
	return r.earliest, r.latest
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin      ValidationError = "origin is required"
	ErrMissingDestination ValidationError = "destination is required"
	ErrMissingWindow      ValidationError = "earliestDeparture and latestDeparture are required"
	ErrInvalidDate        ValidationError = "dates must use the YYYY-MM-DD format"
)
