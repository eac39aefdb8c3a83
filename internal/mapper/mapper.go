package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dharmasatrya/flightscan/internal/airlines"
	"github.com/dharmasatrya/flightscan/internal/models"
	"github.com/dharmasatrya/flightscan/internal/timeparse"
	"github.com/dharmasatrya/flightscan/pkg/currency"
)

// Map normalizes a provider offer for the given date pair. It never fails:
// unparseable prices become 0 and unparseable timestamps give a 0 duration.
func Map(offer models.RawOffer, pair models.DatePair) models.FlightOption {
	price := ParsePrice(offer.TotalAmount)
	code := strings.TrimSpace(offer.TotalCurrency)
	if code == "" {
		code = currency.DefaultCode
	}

	airlineCode := strings.TrimSpace(offer.Owner.IATACode)
	bookingURL := airlines.BookingURL(airlineCode)

	outbound := offer.OutboundSegments()
	opt := models.FlightOption{
		ID:             offer.ID,
		Airline:        airlines.DisplayName(airlineCode, offer.Owner.Name),
		AirlineCode:    airlineCode,
		Price:          price,
		Currency:       code,
		FormattedPrice: currency.Format(price, code),
		DepartureDate:  pair.DepartureDate(),
		ReturnDate:     pair.ReturnDate(),
		Stops:          StopCount(outbound),
		BookingURL:     bookingURL,
		URL:            bookingURL,
	}

	if len(outbound) > 0 {
		first, last := outbound[0], outbound[len(outbound)-1]
		opt.Origin = first.Origin.IATACode
		opt.OriginAirport = first.Origin.Name
		opt.Destination = last.Destination.IATACode
		opt.DestinationAirport = last.Destination.Name
		opt.DurationMinutes = OutboundMinutes(outbound)
	}
	opt.TotalDurationMinutes = opt.DurationMinutes
	opt.Duration = ISODuration(opt.DurationMinutes)

	return opt
}

// ParsePrice reads a decimal amount string. Malformed or non-finite input yields 0.
func ParsePrice(amount string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func StopCount(segments []models.Segment) int {
	return max(0, len(segments)-1)
}

// OutboundMinutes is the time from the first segment's departure to the last
// segment's arrival. Missing or malformed timestamps give 0.
func OutboundMinutes(segments []models.Segment) int {
	if len(segments) == 0 {
		return 0
	}
	m, ok := timeparse.MinutesBetween(segments[0].DepartingAt, segments[len(segments)-1].ArrivingAt)
	if !ok || m < 0 {
		return 0
	}
	return m
}

// ISODuration renders minutes as an ISO-8601 duration such as PT4H30M.
func ISODuration(minutes int) string {
	if minutes <= 0 {
		return "PT0M"
	}
	hours, mins := minutes/60, minutes%60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("PT%dH%dM", hours, mins)
	case hours > 0:
		return fmt.Sprintf("PT%dH", hours)
	default:
		return fmt.Sprintf("PT%dM", mins)
	}
}
