package timezone

import "strings"

// countryFallback maps well-known zone cities to a country hint for the
// announcement text. Anything else gets the generic hint.
var countryFallback = map[string]string{
	"Tokyo":       "Japan",
	"London":      "United Kingdom",
	"Paris":       "France",
	"Sydney":      "Australia",
	"New_York":    "USA",
	"Chicago":     "USA",
	"Los_Angeles": "USA",
	"Denver":      "USA",
	"Toronto":     "Canada",
	"Berlin":      "Germany",
	"Dubai":       "UAE",
	"Singapore":   "Singapore",
	"Delhi":       "India",
	"Mexico_City": "Mexico",
	"Sao_Paulo":   "Brazil",
}

// parseZone derives the display city and a country hint from a zone name
// like "America/New_York".
func parseZone(zone string) (city, countryHint string) {
	tail := zone
	if idx := strings.LastIndex(zone, "/"); idx >= 0 {
		tail = zone[idx+1:]
	}
	city = strings.ReplaceAll(tail, "_", " ")
	if country, ok := countryFallback[tail]; ok {
		return city, country
	}
	return city, "Earth"
}
