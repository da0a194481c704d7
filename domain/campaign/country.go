package campaign

import "strings"

// countryNames maps lower-cased free-text names to their ISO-2 code
var countryNames = map[string]string{
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"america":                  "US",
	"united kingdom":           "GB",
	"great britain":            "GB",
	"uk":                       "GB",
	"england":                  "GB",
	"scotland":                 "GB",
	"wales":                    "GB",
	"canada":                   "CA",
	"australia":                "AU",
	"new zealand":              "NZ",
	"germany":                  "DE",
	"deutschland":              "DE",
	"france":                   "FR",
	"netherlands":              "NL",
	"the netherlands":          "NL",
	"holland":                  "NL",
	"sweden":                   "SE",
	"italy":                    "IT",
	"spain":                    "ES",
	"denmark":                  "DK",
	"norway":                   "NO",
	"ireland":                  "IE",
	"switzerland":              "CH",
	"austria":                  "AT",
	"belgium":                  "BE",
	"luxembourg":               "LU",
	"mexico":                   "MX",
	"hong kong":                "HK",
	"singapore":                "SG",
	"japan":                    "JP",
}

// NormalizeCountry turns a country code or free-text country name into the key
// used by the rate tables. Two-letter codes are upper-cased; known names map to
// their code; anything else is returned trimmed so it falls back at lookup time.
func NormalizeCountry(country string) string {
	trimmed := strings.TrimSpace(country)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 2 {
		return strings.ToUpper(trimmed)
	}
	if code, ok := countryNames[strings.ToLower(trimmed)]; ok {
		return code
	}
	return trimmed
}
