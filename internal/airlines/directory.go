package airlines

import "strings"

type Entry struct {
	Name       string
	BookingURL string
}

var directory = map[string]Entry{
	// Europe
	"BA": {"British Airways", "https://www.britishairways.com"},
	"VS": {"Virgin Atlantic", "https://www.virginatlantic.com"},
	"AF": {"Air France", "https://www.airfrance.com"},
	"KL": {"KLM", "https://www.klm.com"},
	"LH": {"Lufthansa", "https://www.lufthansa.com"},
	"LX": {"SWISS", "https://www.swiss.com"},
	"OS": {"Austrian Airlines", "https://www.austrian.com"},
	"SN": {"Brussels Airlines", "https://www.brusselsairlines.com"},
	"IB": {"Iberia", "https://www.iberia.com"},
	"AZ": {"ITA Airways", "https://www.ita-airways.com"},
	"TP": {"TAP Air Portugal", "https://www.flytap.com"},
	"SK": {"SAS", "https://www.flysas.com"},
	"AY": {"Finnair", "https://www.finnair.com"},
	"EI": {"Aer Lingus", "https://www.aerlingus.com"},
	"LO": {"LOT Polish Airlines", "https://www.lot.com"},
	"TK": {"Turkish Airlines", "https://www.turkishairlines.com"},
	"A3": {"Aegean Airlines", "https://en.aegeanair.com"},
	"LY": {"El Al", "https://www.elal.com"},

	// Middle East
	"EK": {"Emirates", "https://www.emirates.com"},
	"QR": {"Qatar Airways", "https://www.qatarairways.com"},
	"EY": {"Etihad Airways", "https://www.etihad.com"},
	"GF": {"Gulf Air", "https://www.gulfair.com"},
	"WY": {"Oman Air", "https://www.omanair.com"},
	"SV": {"Saudia", "https://www.saudia.com"},
	"RJ": {"Royal Jordanian", "https://www.rj.com"},

	// Americas
	"AA": {"American Airlines", "https://www.aa.com"},
	"DL": {"Delta Air Lines", "https://www.delta.com"},
	"UA": {"United Airlines", "https://www.united.com"},
	"AC": {"Air Canada", "https://www.aircanada.com"},
	"B6": {"JetBlue", "https://www.jetblue.com"},
	"LA": {"LATAM Airlines", "https://www.latamairlines.com"},

	// Asia Pacific
	"SQ": {"Singapore Airlines", "https://www.singaporeair.com"},
	"CX": {"Cathay Pacific", "https://www.cathaypacific.com"},
	"NH": {"ANA", "https://www.ana.co.jp"},
	"JL": {"Japan Airlines", "https://www.jal.com"},
	"QF": {"Qantas", "https://www.qantas.com"},
	"AI": {"Air India", "https://www.airindia.com"},
	"GA": {"Garuda Indonesia", "https://www.garuda-indonesia.com"},
	"MH": {"Malaysia Airlines", "https://www.malaysiaairlines.com"},
	"TG": {"Thai Airways", "https://www.thaiairways.com"},

	// Duffel's sandbox carrier
	"ZZ": {"Duffel Airways", ""},
}

// Lookup returns the directory entry for an IATA airline code.
func Lookup(code string) (Entry, bool) {
	e, ok := directory[strings.ToUpper(strings.TrimSpace(code))]
	return e, ok
}

// DisplayName prefers the directory name for code, then the provider-given
// name, then the code itself, then "Airline".
func DisplayName(code, providerName string) string {
	if e, ok := Lookup(code); ok && e.Name != "" {
		return e.Name
	}
	if providerName != "" {
		return providerName
	}
	if code != "" {
		return code
	}
	return "Airline"
}

// BookingURL returns nil for codes without a known booking site.
func BookingURL(code string) *string {
	e, ok := Lookup(code)
	if !ok || e.BookingURL == "" {
		return nil
	}
	u := e.BookingURL
	return &u
}
