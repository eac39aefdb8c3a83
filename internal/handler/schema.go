package handler

import (
	"errors"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const searchRequestSchema = `{
  "type": "object",
  "required": ["origin", "destination", "earliestDeparture", "latestDeparture", "minStayDays", "maxStayDays"],
  "properties": {
    "origin":            {"type": "string", "minLength": 1},
    "destination":       {"type": "string", "minLength": 1},
    "earliestDeparture": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "latestDeparture":   {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "minStayDays":       {"type": "integer"},
    "maxStayDays":       {"type": "integer"},
    "maxPrice":          {"type": ["number", "null"]},
    "cabin":             {"type": "string"},
    "passengers":        {"type": "integer", "minimum": 1},
    "stopsFilter":       {"type": ["array", "null"], "items": {"type": "integer", "minimum": 0}},
    "maxOffersPerPair":  {"type": ["integer", "null"]},
    "maxOffersTotal":    {"type": ["integer", "null"]},
    "maxDatePairs":      {"type": ["integer", "null"]}
  }
}`

var searchSchema = mustSchema(searchRequestSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// validateBody checks raw JSON against the search request schema.
func validateBody(body []byte) error {
	result, err := searchSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	return errors.New(strings.Join(msgs, "; "))
}
