package weather

import (
	"context"
	"fmt"
	"time"
)

// PrecipitationForecast24h returns the expected precipitation in inches over
// the next 24 hours, summed from the 3-hourly forecast (rain plus snow).
func (c *Client) PrecipitationForecast24h(ctx context.Context, city string) (*float64, error) {
	items, err := c.forecastItems(ctx, city)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	cutoff := now.Add(24 * time.Hour)

	totalMM := 0.0
	for _, it := range items {
		ts := time.Unix(it.Dt, 0).UTC()
		if ts.Before(now) || ts.After(cutoff) {
			continue
		}
		totalMM += it.Rain.ThreeH + it.Snow.ThreeH
	}

	inches := round2(totalMM / mmPerInch)
	return &inches, nil
}

// TemperatureExtremes returns the min/max forecast temperatures over the next
// `hours` hours. FreezeRisk is set when the minimum reaches 32°F or below.
func (c *Client) TemperatureExtremes(ctx context.Context, city string, hours int) (*Extremes, error) {
	if hours <= 0 {
		hours = 48
	}

	items, err := c.forecastItems(ctx, city)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	cutoff := now.Add(time.Duration(hours) * time.Hour)

	var temps []float64
	for _, it := range items {
		ts := time.Unix(it.Dt, 0).UTC()
		if ts.Before(now) || ts.After(cutoff) {
			continue
		}
		temps = append(temps, it.Main.Temp)
	}
	if len(temps) == 0 {
		return nil, fmt.Errorf("no forecast data within %dh window", hours)
	}

	minC, maxC := temps[0], temps[0]
	for _, t := range temps[1:] {
		if t < minC {
			minC = t
		}
		if t > maxC {
			maxC = t
		}
	}

	minF, maxF := cToF(minC), cToF(maxC)
	return &Extremes{
		TempMinF:   round1(minF),
		TempMaxF:   round1(maxF),
		TempMinC:   round1(minC),
		TempMaxC:   round1(maxC),
		FreezeRisk: minF <= 32,
	}, nil
}

// SeasonalPattern determines the current season for a city.
//
// Hybrid approach: derive the season from current weather plus the 48h
// forecast when available, otherwise fall back to calendar-based seasons
// (hemisphere aware). Dormancy windows and frost risk are flagged either way.
func (c *Client) SeasonalPattern(ctx context.Context, city string) (*Seasonal, error) {
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}

	current, currentErr := c.CurrentForCity(ctx, city)
	var extremes *Extremes
	if currentErr == nil {
		extremes, _ = c.TemperatureExtremes(ctx, city, 48)
	}

	southern := current != nil && current.Lat < 0
	month := int(c.now().Month())
	calendar := calendarSeason(month, southern)

	if current == nil || extremes == nil {
		return &Seasonal{
			Season:           calendar,
			IsDormancyPeriod: (calendar == "winter" || calendar == "fall") && inMonths(month, 11, 12, 1, 2),
			FrostRisk:        calendar == "winter",
			Method:           "calendar",
		}, nil
	}

	// Estimate average temperature from current conditions plus forecast extremes.
	avgTemp := (current.TempF + extremes.TempMinF + extremes.TempMaxF) / 3

	var season string
	switch {
	case avgTemp >= 75:
		season = "summer"
	case avgTemp >= 55:
		if inMonths(month, 3, 4, 5, 6) {
			season = "spring"
		} else {
			season = "fall"
		}
	case avgTemp >= 40:
		if inMonths(month, 3, 4) {
			season = "spring"
		} else {
			season = "fall"
		}
	default:
		season = "winter"
	}

	isDormancy := season == "winter" || (avgTemp < 45 && inMonths(month, 11, 12, 1, 2, 3))

	return &Seasonal{
		Season:           season,
		IsDormancyPeriod: isDormancy,
		AvgTempF:         round1(avgTemp),
		FrostRisk:        extremes.FreezeRisk,
		Method:           "weather",
	}, nil
}

// calendarSeason returns the meteorological season for a month,
// flipped for the Southern Hemisphere.
func calendarSeason(month int, southern bool) string {
	var season string
	switch {
	case inMonths(month, 12, 1, 2):
		season = "winter"
	case inMonths(month, 3, 4, 5):
		season = "spring"
	case inMonths(month, 6, 7, 8):
		season = "summer"
	default:
		season = "fall"
	}

	if southern {
		flip := map[string]string{
			"winter": "summer",
			"summer": "winter",
			"spring": "fall",
			"fall":   "spring",
		}
		return flip[season]
	}
	return season
}

func inMonths(month int, months ...int) bool {
	for _, m := range months {
		if month == m {
			return true
		}
	}
	return false
}

// HardinessZone approximates the USDA hardiness zone from city latitude.
// This is a simplified latitude lookup, not the official USDA dataset.
func (c *Client) HardinessZone(ctx context.Context, city string) (string, error) {
	lat, err := c.Latitude(ctx, city)
	if err != nil {
		return "", err
	}
	return hardinessZoneForLatitude(lat), nil
}

func hardinessZoneForLatitude(lat float64) string {
	switch {
	case lat >= 49:
		return "3b"
	case lat >= 48:
		return "4a"
	case lat >= 45:
		return "5a"
	case lat >= 42:
		return "6a"
	case lat >= 39:
		return "7a"
	case lat >= 37.5:
		return "7b"
	case lat >= 36:
		return "8a"
	case lat >= 33:
		return "8b"
	case lat >= 31.5:
		return "9a"
	case lat >= 30:
		return "9b"
	case lat >= 27:
		return "10a"
	case lat >= 24:
		return "10b"
	default:
		return "11a"
	}
}
