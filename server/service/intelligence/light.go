package intelligence

import (
	"strings"

	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/store"
)

// LightAdjustmentFactor maps plant placement, light level and season to a
// watering frequency multiplier in the 0.6-1.3 range. Indoor plants under
// grow lights are flat 1.0 year round; dormant outdoor plants floor at 0.6.
func LightAdjustmentFactor(plant *store.Plant, current *weather.Current, seasonal *weather.Seasonal) float64 {
	location := plant.Location
	if location == "" {
		location = store.LocationIndoorPotted
	}
	light := plant.Light
	if light == "" {
		light = "bright_indirect"
	}

	season := seasonFrom(seasonal, current)

	if strings.Contains(strings.ToLower(location), "indoor") {
		if usesGrowLight(plant.Notes) {
			return 1.0
		}
		switch season {
		case "summer":
			return 1.1
		case "winter":
			return 0.9
		default:
			return 1.0
		}
	}

	if seasonal != nil && seasonal.IsDormancyPeriod {
		return 0.6
	}

	lightLower := strings.ToLower(light)
	switch {
	case strings.Contains(lightLower, "full") && strings.Contains(lightLower, "sun"):
		switch season {
		case "summer":
			return 1.3
		case "spring", "fall":
			return 1.1
		default:
			return 0.9
		}
	case strings.Contains(lightLower, "partial"):
		if season == "summer" {
			return 1.1
		}
		return 1.0
	case strings.Contains(lightLower, "shade"):
		if season == "summer" {
			return 0.8
		}
		return 0.7
	}

	return 1.0
}

func usesGrowLight(notes string) bool {
	n := strings.ToLower(notes)
	for _, term := range []string{"grow light", "led light", "artificial light", "lamp"} {
		if strings.Contains(n, term) {
			return true
		}
	}
	return false
}

// seasonFrom prefers the seasonal pattern, falls back to a temperature
// heuristic, and defaults to spring when neither is available.
func seasonFrom(seasonal *weather.Seasonal, current *weather.Current) string {
	if seasonal != nil && seasonal.Season != "" {
		return seasonal.Season
	}
	if current != nil {
		switch {
		case current.TempF > 75:
			return "summer"
		case current.TempF > 60:
			return "spring"
		case current.TempF > 45:
			return "fall"
		default:
			return "winter"
		}
	}
	return "spring"
}
