package models

import "time"

type DatePair struct {
	Departure time.Time
	Return    time.Time
}

func (p DatePair) DepartureDate() string {
	return p.Departure.Format(DateLayout)
}

func (p DatePair) ReturnDate() string {
	return p.Return.Format(DateLayout)
}

func (p DatePair) StayDays() int {
	return int(p.Return.Sub(p.Departure).Hours() / 24)
}

// RawOffer mirrors the provider's offer document. It is read-only once decoded.
type RawOffer struct {
	ID            string  `json:"id"`
	TotalAmount   string  `json:"total_amount"`
	TotalCurrency string  `json:"total_currency"`
	Owner         Carrier `json:"owner"`
	Slices        []Slice `json:"slices"`
}

type Carrier struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
}

type Slice struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Origin      Place  `json:"origin"`
	Destination Place  `json:"destination"`
	DepartingAt string `json:"departing_at"`
	ArrivingAt  string `json:"arriving_at"`
}

type Place struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
}

// OutboundSegments returns the segments of the first slice, or nil.
func (o RawOffer) OutboundSegments() []Segment {
	if len(o.Slices) == 0 {
		return nil
	}
	return o.Slices[0].Segments
}

type FlightOption struct {
	ID          string  `json:"id"`
	Airline     string  `json:"airline"`
	AirlineCode string  `json:"airlineCode,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	// FormattedPrice is a display string such as "GBP 1,250.00".
	FormattedPrice string `json:"formattedPrice,omitempty"`
	DepartureDate  string `json:"departureDate"`
	ReturnDate     string `json:"returnDate"`
	Stops          int    `json:"stops"`

	DurationMinutes int `json:"durationMinutes"`
	// TotalDurationMinutes duplicates DurationMinutes for older clients.
	TotalDurationMinutes int    `json:"totalDurationMinutes"`
	Duration             string `json:"duration,omitempty"`

	Origin             string `json:"origin,omitempty"`
	Destination        string `json:"destination,omitempty"`
	OriginAirport      string `json:"originAirport,omitempty"`
	DestinationAirport string `json:"destinationAirport,omitempty"`

	BookingURL *string `json:"bookingUrl"`
	URL        *string `json:"url"`

	BestValueScore float64 `json:"bestValueScore,omitempty"`
}
