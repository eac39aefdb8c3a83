package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightscan/internal/models"
)

func opts(code string, n int, base float64) []models.FlightOption {
	out := make([]models.FlightOption, n)
	for i := range out {
		out[i] = models.FlightOption{
			ID:          fmt.Sprintf("%s-%03d", code, i),
			AirlineCode: code,
			Price:       base + float64(i),
		}
	}
	return out
}

func countByAirline(options []models.FlightOption) map[string]int {
	counts := make(map[string]int)
	for _, o := range options {
		counts[GroupKey(o)]++
	}
	return counts
}

func TestSoftCap(t *testing.T) {
	tests := []struct {
		maxTotal, airlines, want int
	}{
		{5000, 1, 200},
		{100, 10, 20},
		{300, 2, 155},
		{50, 0, 55},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SoftCap(tt.maxTotal, tt.airlines), "maxTotal=%d airlines=%d", tt.maxTotal, tt.airlines)
	}
}

func TestBalance_RespectsMaxTotal(t *testing.T) {
	in := append(opts("BA", 10, 100), opts("LY", 10, 150)...)

	got := Balance(in, 5)

	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Price, got[i].Price)
	}
}

func TestBalance_GivesMinorityAirlineAShare(t *testing.T) {
	in := append(opts("BA", 100, 100), opts("LY", 5, 1000)...)

	got := Balance(in, 30)

	require.Len(t, got, 30)
	counts := countByAirline(got)
	assert.Equal(t, 5, counts["LY"])
	assert.Equal(t, 25, counts["BA"])
	assert.Equal(t, "BA-000", got[0].ID)
	assert.Equal(t, 1000.0, got[25].Price)
}

func TestBalance_BackfillsCheapestPastSoftCap(t *testing.T) {
	in := opts("BA", 50, 100)

	got := Balance(in, 40)

	require.Len(t, got, 40)
	assert.Equal(t, "BA-039", got[39].ID)
}

func TestBalance_FewerOptionsThanCap(t *testing.T) {
	in := append(opts("BA", 3, 300), opts("VS", 2, 200)...)

	got := Balance(in, 100)

	require.Len(t, got, 5)
	assert.Equal(t, "VS-000", got[0].ID)
	assert.Equal(t, "BA-002", got[4].ID)
}

func TestBalance_GroupsByNameWhenCodeMissing(t *testing.T) {
	in := []models.FlightOption{
		{ID: "a", Airline: "Mystery Air", Price: 10},
		{ID: "b", Price: 20},
	}

	got := Balance(in, 10)

	require.Len(t, got, 2)
	counts := countByAirline(got)
	assert.Equal(t, 1, counts["Mystery Air"])
	assert.Equal(t, 1, counts["Unknown"])
}

func TestBalance_Empty(t *testing.T) {
	assert.Empty(t, Balance(nil, 10))
	assert.Empty(t, Balance(opts("BA", 3, 100), 0))
}

func TestBalance_DeepSupplyStaysUnderSoftCap(t *testing.T) {
	tests := []struct {
		name     string
		airlines []string
		maxTotal int
	}{
		{"four airlines", []string{"BA", "LH", "AF", "LY"}, 60},
		{"three airlines", []string{"BA", "TK", "VS"}, 90},
		{"two airlines large total", []string{"BA", "LY"}, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in []models.FlightOption
			for i, code := range tt.airlines {
				// BA is always cheapest, so a plain price cut would keep only BA.
				in = append(in, opts(code, 250, 100+float64(i)*500)...)
			}

			got := Balance(in, tt.maxTotal)
			require.Len(t, got, tt.maxTotal)

			softCap := SoftCap(tt.maxTotal, len(tt.airlines))
			counts := countByAirline(got)
			require.Len(t, counts, len(tt.airlines))
			for _, code := range tt.airlines {
				assert.LessOrEqual(t, counts[code], softCap, code)
				assert.Equal(t, tt.maxTotal/len(tt.airlines), counts[code], code)
			}
		})
	}
}
