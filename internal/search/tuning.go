package search

import "github.com/dharmasatrya/flightscan/internal/models"

type Limits struct {
	PerPair int
	Total   int
	Pairs   int
}

// Tuning bounds the client-supplied limits. Zero means "not supplied";
// anything else is clamped into [Floors, HardCaps].
type Tuning struct {
	Defaults Limits
	Floors   Limits
	HardCaps Limits
}

func DefaultTuning() Tuning {
	return Tuning{
		Defaults: Limits{PerPair: 50, Total: 5000, Pairs: 20},
		Floors:   Limits{PerPair: 10, Total: 100, Pairs: 1},
		HardCaps: Limits{PerPair: 300, Total: 15000, Pairs: 60},
	}
}

func (t Tuning) Resolve(req *models.SearchRequest) Limits {
	return Limits{
		PerPair: resolve(req.MaxOffersPerPair, t.Defaults.PerPair, t.Floors.PerPair, t.HardCaps.PerPair),
		Total:   resolve(req.MaxOffersTotal, t.Defaults.Total, t.Floors.Total, t.HardCaps.Total),
		Pairs:   resolve(req.MaxDatePairs, t.Defaults.Pairs, t.Floors.Pairs, t.HardCaps.Pairs),
	}
}

func resolve(v, def, floor, hardCap int) int {
	if v == 0 {
		v = def
	}
	return max(floor, min(v, hardCap))
}
