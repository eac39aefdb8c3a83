package filter

import (
	"sort"

	"github.com/dharmasatrya/flightscan/internal/models"
)

// ManyStops in a stops allow-list admits every option with that many stops or more.
const ManyStops = 3

// Apply keeps options under the price ceiling and within the stops allow-list,
// then sorts by price ascending. Equal prices keep their input order.
// A nil or non-positive ceiling and an empty allow-list disable their filter.
func Apply(options []models.FlightOption, maxPrice *float64, stops []int) []models.FlightOption {
	allowed := allowedStops(stops)

	result := make([]models.FlightOption, 0, len(options))
	for _, o := range options {
		if !withinPrice(o, maxPrice) {
			continue
		}
		if !matchesStops(o, allowed) {
			continue
		}
		result = append(result, o)
	}

	SortByPrice(result)
	return result
}

func SortByPrice(options []models.FlightOption) {
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Price < options[j].Price
	})
}

func withinPrice(o models.FlightOption, maxPrice *float64) bool {
	if maxPrice == nil || *maxPrice <= 0 {
		return true
	}
	return o.Price <= *maxPrice
}

func allowedStops(stops []int) map[int]bool {
	if len(stops) == 0 {
		return nil
	}
	allowed := make(map[int]bool, len(stops))
	for _, s := range stops {
		allowed[s] = true
	}
	return allowed
}

func matchesStops(o models.FlightOption, allowed map[int]bool) bool {
	if allowed == nil {
		return true
	}
	if allowed[o.Stops] {
		return true
	}
	return allowed[ManyStops] && o.Stops >= ManyStops
}
