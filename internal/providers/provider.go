package providers

import (
	"context"

	"github.com/dharmasatrya/flightscan/internal/models"
)

// OfferProvider is the two-step fare source: create an offer request for a
// set of slices, then list the offers it produced.
type OfferProvider interface {
	Name() string
	// Configured reports whether the provider has the credentials it needs.
	Configured() bool
	CreateOfferRequest(ctx context.Context, req OfferRequest) (string, error)
	ListOffers(ctx context.Context, offerRequestID string, limit int) ([]models.RawOffer, error)
}

type SliceRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type OfferRequest struct {
	Slices     []SliceRequest
	Passengers int
	Cabin      string
}

// RoundTrip builds the outbound and return slices for one date pair.
func RoundTrip(origin, destination string, pair models.DatePair, passengers int, cabin string) OfferRequest {
	return OfferRequest{
		Slices: []SliceRequest{
			{Origin: origin, Destination: destination, DepartureDate: pair.DepartureDate()},
			{Origin: destination, Destination: origin, DepartureDate: pair.ReturnDate()},
		},
		Passengers: passengers,
		Cabin:      cabin,
	}
}

// OneWay builds a single outbound slice.
func OneWay(origin, destination, departureDate string, passengers int, cabin string) OfferRequest {
	return OfferRequest{
		Slices:     []SliceRequest{{Origin: origin, Destination: destination, DepartureDate: departureDate}},
		Passengers: passengers,
		Cabin:      cabin,
	}
}
