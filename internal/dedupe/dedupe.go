package dedupe

import (
	"sort"

	"github.com/dharmasatrya/flightscan/internal/mapper"
	"github.com/dharmasatrya/flightscan/internal/models"
)

// Key identifies one physical itinerary. Fare brands of the same flights
// share a Key.
type Key struct {
	AirlineCode      string
	OutboundDepartAt string
	OutboundArriveAt string
	OutboundStops    int
	Cabin            string
	DepartureDate    string
	ReturnDate       string
}

type Candidate struct {
	Offer  models.RawOffer
	Option models.FlightOption
	Cabin  string
}

func KeyOf(c Candidate) Key {
	k := Key{
		AirlineCode:   c.Option.AirlineCode,
		OutboundStops: mapper.StopCount(c.Offer.OutboundSegments()),
		Cabin:         c.Cabin,
		DepartureDate: c.Option.DepartureDate,
		ReturnDate:    c.Option.ReturnDate,
	}
	if k.AirlineCode == "" {
		k.AirlineCode = c.Option.Airline
	}
	if seg := c.Offer.OutboundSegments(); len(seg) > 0 {
		k.OutboundDepartAt = seg[0].DepartingAt
		k.OutboundArriveAt = seg[len(seg)-1].ArrivingAt
	}
	return k
}

// Dedupe keeps the cheapest option per Key. Equal prices resolve to the
// smaller option ID so the result does not depend on input order.
func Dedupe(candidates []Candidate) map[Key]models.FlightOption {
	best := make(map[Key]models.FlightOption, len(candidates))
	for _, c := range candidates {
		k := KeyOf(c)
		cur, ok := best[k]
		if !ok || cheaper(c.Option, cur) {
			best[k] = c.Option
		}
	}
	return best
}

// Options flattens a deduplicated set into a slice ordered by price, then ID.
func Options(best map[Key]models.FlightOption) []models.FlightOption {
	out := make([]models.FlightOption, 0, len(best))
	for _, o := range best {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cheaper(a, b models.FlightOption) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.ID < b.ID
}
