// Package weather wraps the OpenWeather API for plant-care decisions.
//
// All lookups are best-effort: a missing API key, an unknown city, or a
// network failure yields a nil result and an error. Callers must treat a nil
// result as "weather unavailable", never as zero/default weather.
//
// Responses are cached in-process (free tier: 60 requests per minute; a
// 10-minute TTL per city keeps us well under the limit) and outbound calls
// are paced through a token-bucket limiter.
package weather

import "math"

// Current is the current observed weather for a city.
type Current struct {
	City       string  `json:"city"`
	TempC      float64 `json:"temp_c"`
	TempF      float64 `json:"temp_f"`
	Humidity   int     `json:"humidity"`
	Conditions string  `json:"conditions"`
	WindMPS    float64 `json:"wind_mps"`
	WindMPH    float64 `json:"wind_mph"`
	DewpointF  float64 `json:"dewpoint_f"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Extremes holds forecast temperature extremes over a window.
type Extremes struct {
	TempMinF   float64 `json:"temp_min_f"`
	TempMaxF   float64 `json:"temp_max_f"`
	TempMinC   float64 `json:"temp_min_c"`
	TempMaxC   float64 `json:"temp_max_c"`
	FreezeRisk bool    `json:"freeze_risk"`
}

// Seasonal describes the current season for a location.
type Seasonal struct {
	// Season is one of winter, spring, summer, fall.
	Season string `json:"season"`
	// IsDormancyPeriod is true during winter and cold late-fall/early-spring windows.
	IsDormancyPeriod bool `json:"is_dormancy_period"`
	// AvgTempF is the estimated average temperature, 0 when unknown.
	AvgTempF float64 `json:"avg_temp_f"`
	// FrostRisk is true if freezing temperatures are in the forecast.
	FrostRisk bool `json:"frost_risk"`
	// Method is "weather" or "calendar" depending on the data source used.
	Method string `json:"method"`
}

func cToF(c float64) float64 {
	return c*9/5 + 32
}

func mpsToMPH(mps float64) float64 {
	return mps * 2.23694
}

const mmPerInch = 25.4

// dewpointF approximates the dewpoint from temperature and relative humidity
// using the Magnus formula.
func dewpointF(tempC float64, humidity int) float64 {
	if humidity <= 0 {
		humidity = 1
	}
	const a, b = 17.62, 243.12
	gamma := a*tempC/(b+tempC) + math.Log(float64(humidity)/100)
	dpC := b * gamma / (a - gamma)
	return cToF(dpC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
