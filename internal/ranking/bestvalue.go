package ranking

import (
	"math"

	"github.com/dharmasatrya/flightscan/internal/models"
)

// Weights blend the normalized price, outbound duration and stop count into
// one best-value score. Lower scores are better.
type Weights struct {
	Price    float64
	Duration float64
	Stops    float64
	// StopPenalty is the raw points charged per stop before weighting.
	StopPenalty float64
}

var DefaultWeights = Weights{Price: 0.5, Duration: 0.3, Stops: 0.2, StopPenalty: 15}

// CalculateScores annotates a copy of options with DefaultWeights scores.
// Order is never changed; the list stays sorted by price.
func CalculateScores(options []models.FlightOption) []models.FlightOption {
	return DefaultWeights.Annotate(options)
}

func (w Weights) Annotate(options []models.FlightOption) []models.FlightOption {
	if len(options) == 0 {
		return options
	}

	var maxPrice, maxDuration float64
	for _, o := range options {
		maxPrice = math.Max(maxPrice, o.Price)
		maxDuration = math.Max(maxDuration, float64(o.DurationMinutes))
	}

	out := make([]models.FlightOption, len(options))
	for i, o := range options {
		o.BestValueScore = w.Score(o, maxPrice, maxDuration)
		out[i] = o
	}
	return out
}

// Score rates one option against the list maxima.
func (w Weights) Score(option models.FlightOption, maxPrice, maxDuration float64) float64 {
	score := w.Price*percentOf(option.Price, maxPrice) +
		w.Duration*percentOf(float64(option.DurationMinutes), maxDuration) +
		w.Stops*float64(option.Stops)*w.StopPenalty

	return math.Round(score*100) / 100
}

func percentOf(v, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return v / ceiling * 100
}
