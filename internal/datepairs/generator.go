package datepairs

import (
	"time"

	"github.com/dharmasatrya/flightscan/internal/models"
)

// Generate enumerates (departure, return) pairs in the window [earliest, latest].
// Departures advance one day at a time; for each departure, stays are tried in
// increasing order. Generation stops as soon as maxPairs pairs exist, which may
// cut off longer stays for the last admitted departure.
func Generate(earliest, latest time.Time, minStay, maxStay, maxPairs int) []models.DatePair {
	if minStay < 1 {
		minStay = 1
	}
	if maxStay < minStay {
		maxStay = minStay
	}
	if maxPairs <= 0 || latest.Before(earliest) {
		return nil
	}

	earliest = truncateDay(earliest)
	latest = truncateDay(latest)

	pairs := make([]models.DatePair, 0, min(maxPairs, 64))
	for dep := earliest; !dep.After(latest); dep = dep.AddDate(0, 0, 1) {
		for stay := minStay; stay <= maxStay; stay++ {
			ret := dep.AddDate(0, 0, stay)
			if ret.After(latest) {
				break
			}
			pairs = append(pairs, models.DatePair{Departure: dep, Return: ret})
			if len(pairs) >= maxPairs {
				return pairs
			}
		}
	}
	return pairs
}

// ForRequest generates pairs for a validated request.
func ForRequest(req *models.SearchRequest, maxPairs int) []models.DatePair {
	earliest, latest := req.Window()
	return Generate(earliest, latest, req.MinStayDays, req.MaxStayDays, maxPairs)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
