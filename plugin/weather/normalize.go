package weather

import (
	"regexp"
	"strings"
)

var (
	usStateLike = regexp.MustCompile(`^([^,]+),\s?([A-Za-z]{2})$`)
	usZIP       = regexp.MustCompile(`^\s*(\d{5})(?:-\d{4})?\s*$`)
)

// Hawaiian island names mapped to their main towns (the OpenWeather geocoder
// does not resolve island names).
var hawaiianIslands = map[string]string{
	"maui":          "Kahului",
	"big island":    "Hilo",
	"hawaii island": "Hilo",
	"kauai":         "Lihue",
	"molokai":       "Kaunakakai",
	"lanai":         "Lanai City",
	"oahu":          "Honolulu",
}

// normalizeCityQuery rewrites "City, ST" inputs into the "City, ST, US" form
// the API expects, mapping Hawaiian island names to their main towns.
func normalizeCityQuery(city string) string {
	city = strings.TrimSpace(city)
	m := usStateLike.FindStringSubmatch(city)
	if m == nil {
		return city
	}
	cityPart := strings.TrimSpace(m[1])
	state := strings.ToUpper(m[2])
	if state == "HI" {
		if town, ok := hawaiianIslands[strings.ToLower(cityPart)]; ok {
			return town + ", HI, US"
		}
	}
	return cityPart + ", " + state + ", US"
}

// zipCode returns the 5-digit ZIP when the query looks like a US ZIP code.
func zipCode(city string) (string, bool) {
	m := usZIP.FindStringSubmatch(city)
	if m == nil {
		return "", false
	}
	return m[1], true
}
