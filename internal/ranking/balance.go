package ranking

import (
	"sort"

	"github.com/dharmasatrya/flightscan/internal/filter"
	"github.com/dharmasatrya/flightscan/internal/models"
)

const (
	softCapBonus = 5
	minSoftCap   = 20
	maxSoftCap   = 200
)

// GroupKey is the airline identity used for fairness: code, then name, then "Unknown".
func GroupKey(o models.FlightOption) string {
	switch {
	case o.AirlineCode != "":
		return o.AirlineCode
	case o.Airline != "":
		return o.Airline
	default:
		return "Unknown"
	}
}

// SoftCap is the per-airline share enforced during the round-robin phase.
func SoftCap(maxTotal, numAirlines int) int {
	base := maxTotal
	if numAirlines > 0 {
		base = maxTotal / numAirlines
	}
	return min(maxSoftCap, max(minSoftCap, base+softCapBonus))
}

// Balance picks up to maxTotal options so that no airline dominates.
// Airlines take turns contributing their cheapest remaining option until each
// reaches the soft cap or runs out; leftover room is then filled with the
// cheapest remaining options regardless of airline. The result is sorted by
// price ascending.
func Balance(options []models.FlightOption, maxTotal int) []models.FlightOption {
	if len(options) == 0 || maxTotal <= 0 {
		return []models.FlightOption{}
	}

	groups := make(map[string][]models.FlightOption)
	var order []string
	for _, o := range options {
		k := GroupKey(o)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}
	for _, k := range order {
		filter.SortByPrice(groups[k])
	}

	softCap := SoftCap(maxTotal, len(order))
	taken := make(map[string]int, len(order))
	selected := make([]models.FlightOption, 0, min(maxTotal, len(options)))

	for len(selected) < maxTotal {
		progressed := false
		for _, k := range order {
			if taken[k] >= len(groups[k]) || taken[k] >= softCap {
				continue
			}
			selected = append(selected, groups[k][taken[k]])
			taken[k]++
			progressed = true
			if len(selected) >= maxTotal {
				break
			}
		}
		if !progressed {
			break
		}
	}

	if len(selected) < maxTotal {
		var remaining []models.FlightOption
		for _, k := range order {
			remaining = append(remaining, groups[k][taken[k]:]...)
		}
		filter.SortByPrice(remaining)
		for _, o := range remaining {
			if len(selected) >= maxTotal {
				break
			}
			selected = append(selected, o)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Price < selected[j].Price
	})
	if len(selected) > maxTotal {
		selected = selected[:maxTotal]
	}
	return selected
}
