package data

import _ "embed"

// Offers is a sample offers page dated on 2025-01-01 out, 2025-01-08 back.
//
//go:embed offers.json
var Offers []byte
