// Package watering scores environmental watering stress and answers ad-hoc
// "should I water?" questions independently of the reminder schedule.
package watering

import (
	"fmt"
	"strings"

	"github.com/verdanthq/verdant/plugin/weather"
)

// Plant type values used by the stress model.
const (
	TypeHouseplant = "houseplant"
	TypeShrub      = "outdoor_shrub"
	TypeWildflower = "outdoor_wildflower"
)

// minHoursBetweenWaterings is a hard floor; a high stress score never
// overrides it.
const minHoursBetweenWaterings = 48

// StressResult is the additive stress score with its contributing factors.
type StressResult struct {
	TotalScore int
	Factors    []string
	Breakdown  map[string]int
}

// Recommendation is the full answer returned by Recommend.
type Recommendation struct {
	ShouldWater       bool
	Recommendation    string
	Reason            string
	StressScore       int
	StressFactors     []string
	Eligible          bool
	EligibilityReason string
}

// EligibilityInput carries the timing and rain state for the gate.
type EligibilityInput struct {
	// HoursSinceWatered is nil when the plant has never been watered.
	HoursSinceWatered *float64
	// RecentRain is true when >=0.25in fell in the past 48h.
	RecentRain bool
	// RainExpected is true when >=0.25in is expected today or tonight.
	RainExpected bool
	// InSkipWindow is true during the 48h post-rain skip window.
	InSkipWindow bool
}

// CheckEligibility gates watering on the 48h minimum and rain conditions.
// It returns false with a human-readable reason when watering should wait.
func CheckEligibility(in EligibilityInput) (bool, string) {
	if in.HoursSinceWatered == nil {
		return true, ""
	}

	hours := *in.HoursSinceWatered
	if hours < minHoursBetweenWaterings {
		remaining := minHoursBetweenWaterings - hours
		return false, fmt.Sprintf("Last watered %.1fh ago (wait %.1fh more)", hours, remaining)
	}

	if in.RecentRain {
		return false, `Recent rain (>=0.25" in past 48h)`
	}
	if in.RainExpected {
		return false, "Rain expected today/tonight"
	}
	if in.InSkipWindow {
		return false, "In post-rain skip window"
	}

	return true, ""
}

// StressInput carries the environment for the stress score.
type StressInput struct {
	Weather *weather.Current
	// HoursSinceRain is hours since the last >=0.25in rain; nil when unknown.
	HoursSinceRain *float64
	PlantType      string
	// PlantAgeWeeks is nil when unknown; drives germination bonuses.
	PlantAgeWeeks *int
}

// StressScore computes the additive environmental stress score across heat,
// wind, dry-spell, air-dryness and sun dimensions.
func StressScore(in StressInput) StressResult {
	result := StressResult{
		Factors: []string{},
		Breakdown: map[string]int{
			"heat":        0,
			"wind":        0,
			"dry_spell":   0,
			"air_dryness": 0,
			"sun_et":      0,
		},
	}

	tempF, humidity, windMPH, dewpoint := 70.0, 50, 0.0, 50.0
	conditions := ""
	if in.Weather != nil {
		tempF = in.Weather.TempF
		humidity = in.Weather.Humidity
		windMPH = in.Weather.WindMPH
		dewpoint = in.Weather.DewpointF
		conditions = strings.ToLower(in.Weather.Conditions)
	}

	isClear := strings.Contains(conditions, "clear") || strings.Contains(conditions, "sunny")
	isOutdoor := strings.HasPrefix(in.PlantType, "outdoor")
	isWildflower := in.PlantType == TypeWildflower
	isGermination := isWildflower && in.PlantAgeWeeks != nil && *in.PlantAgeWeeks <= 4

	add := func(category string, points int, factor string) {
		result.TotalScore += points
		result.Breakdown[category] += points
		result.Factors = append(result.Factors, factor)
	}

	// Heat stress; wildflowers score one point higher on the upper rungs.
	switch {
	case tempF >= 92:
		points := 3
		if isWildflower {
			points = 4
		}
		add("heat", points, fmt.Sprintf("very hot (%.0f°F)", tempF))
	case tempF >= 88:
		points := 2
		if isWildflower {
			points = 3
		}
		add("heat", points, fmt.Sprintf("hot (%.0f°F)", tempF))
	case tempF >= 82:
		add("heat", 1, fmt.Sprintf("warm (%.0f°F)", tempF))
	}

	// Wind stress, outdoor plants only.
	if isOutdoor {
		switch {
		case windMPH > 30:
			add("wind", 3, fmt.Sprintf("very windy (%.0fmph)", windMPH))
		case windMPH >= 25:
			add("wind", 2, fmt.Sprintf("windy (%.0fmph)", windMPH))
		case windMPH >= 20:
			add("wind", 1, fmt.Sprintf("breezy (%.0fmph)", windMPH))
		}
		if isGermination && windMPH > 15 {
			add("wind", 1, "germination + wind")
		}
	}

	// Dry spell, outdoor plants with rain tracking.
	if isOutdoor && in.HoursSinceRain != nil {
		hours := *in.HoursSinceRain
		days := int(hours / 24)
		switch {
		case hours >= 240:
			add("dry_spell", 3, fmt.Sprintf("long dry spell (%dd no rain)", days))
		case hours >= 168:
			add("dry_spell", 2, fmt.Sprintf("dry spell (%dd no rain)", days))
		case hours >= 120:
			add("dry_spell", 1, fmt.Sprintf("no recent rain (%dd)", days))
		}
	}

	// Air dryness: dewpoint and humidity contribute independently.
	switch {
	case dewpoint < 35:
		add("air_dryness", 2, fmt.Sprintf("very dry air (dewpoint %.0f°F)", dewpoint))
	case dewpoint < 45:
		add("air_dryness", 1, fmt.Sprintf("dry air (dewpoint %.0f°F)", dewpoint))
	}
	switch {
	case humidity < 15:
		add("air_dryness", 2, fmt.Sprintf("extremely low humidity (%d%%)", humidity))
	case humidity < 25:
		add("air_dryness", 1, fmt.Sprintf("low humidity (%d%%)", humidity))
	}

	// Sun / evapotranspiration boost on clear days.
	if isClear {
		switch {
		case tempF >= 92:
			add("sun_et", 3, "intense sun + heat")
		case tempF >= 88:
			add("sun_et", 2, "strong sun + heat")
		case tempF >= 82:
			add("sun_et", 1, "sunny + warm")
		}
		if isGermination {
			add("sun_et", 1, "germination + sun exposure")
		}
	}

	return result
}

// RecommendWatering maps a stress score to a water/wait decision per plant
// type. Wildflowers get a lower threshold while germinating.
func RecommendWatering(stressScore int, plantType string, plantAgeWeeks *int) (bool, string) {
	threshold := 2
	label := "houseplant"
	switch plantType {
	case TypeWildflower:
		label = "wildflower"
		threshold = 3
		if plantAgeWeeks != nil && *plantAgeWeeks <= 3 {
			threshold = 2
		}
	case TypeShrub:
		label = "shrub"
	}
	return stressScore >= threshold, fmt.Sprintf("%s threshold: %d", label, threshold)
}

// RecommendInput carries everything Recommend needs for one plant.
type RecommendInput struct {
	PlantName         string
	HoursSinceWatered *float64
	Weather           *weather.Current
	PlantType         string
	PlantAgeWeeks     *int
	HoursSinceRain    *float64
	RecentRain        bool
	RainExpected      bool
}

// Recommend is the main entry point: eligibility gate first, then the stress
// score, with a simple time-based fallback when weather is unavailable.
func Recommend(in RecommendInput) Recommendation {
	eligible, reason := CheckEligibility(EligibilityInput{
		HoursSinceWatered: in.HoursSinceWatered,
		RecentRain:        in.RecentRain,
		RainExpected:      in.RainExpected,
	})
	if !eligible {
		return Recommendation{
			ShouldWater:       false,
			Recommendation:    fmt.Sprintf("%s: NOT YET", in.PlantName),
			Reason:            reason,
			StressFactors:     []string{},
			Eligible:          false,
			EligibilityReason: reason,
		}
	}

	if in.Weather == nil {
		return recommendWithoutWeather(in)
	}

	stress := StressScore(StressInput{
		Weather:        in.Weather,
		HoursSinceRain: in.HoursSinceRain,
		PlantType:      in.PlantType,
		PlantAgeWeeks:  in.PlantAgeWeeks,
	})

	shouldWater, thresholdExplanation := RecommendWatering(stress.TotalScore, in.PlantType, in.PlantAgeWeeks)

	rec := Recommendation{
		ShouldWater:   shouldWater,
		StressScore:   stress.TotalScore,
		StressFactors: stress.Factors,
		Eligible:      true,
	}
	if shouldWater {
		top := stress.Factors
		if len(top) > 2 {
			top = top[:2]
		}
		factorsText := "multiple factors"
		if len(top) > 0 {
			factorsText = strings.Join(top, ", ")
		}
		rec.Recommendation = fmt.Sprintf("%s: YES — %s", in.PlantName, factorsText)
		rec.Reason = fmt.Sprintf("Stress score %d (threshold met: %s)", stress.TotalScore, thresholdExplanation)
	} else {
		rec.Recommendation = fmt.Sprintf("%s: NOT YET", in.PlantName)
		if stress.TotalScore == 0 {
			rec.Reason = "Favorable conditions - no stress detected"
		} else {
			rec.Reason = fmt.Sprintf("Stress score %d (below threshold: %s)", stress.TotalScore, thresholdExplanation)
		}
	}
	return rec
}

func recommendWithoutWeather(in RecommendInput) Recommendation {
	if in.HoursSinceWatered == nil {
		return Recommendation{
			ShouldWater:    true,
			Recommendation: fmt.Sprintf("%s: CHECK SOIL", in.PlantName),
			Reason:         "Never watered - check soil moisture",
			StressFactors:  []string{"no watering history"},
			Eligible:       true,
		}
	}
	days := int(*in.HoursSinceWatered / 24)
	if *in.HoursSinceWatered >= 168 {
		return Recommendation{
			ShouldWater:    true,
			Recommendation: fmt.Sprintf("%s: LIKELY YES", in.PlantName),
			Reason:         fmt.Sprintf("Last watered %d days ago", days),
			StressFactors:  []string{"long time since watering"},
			Eligible:       true,
		}
	}
	return Recommendation{
		ShouldWater:    false,
		Recommendation: fmt.Sprintf("%s: PROBABLY NOT", in.PlantName),
		Reason:         fmt.Sprintf("Watered %d days ago - check soil", days),
		StressFactors:  []string{},
		Eligible:       true,
	}
}

// Instructions returns watering technique guidance per plant type, with
// wind and dewpoint addenda for wildflowers.
func Instructions(plantType string, current *weather.Current) string {
	switch plantType {
	case TypeHouseplant:
		return `Water thoroughly until drainage, then allow top 1-2" to dry before next watering.`
	case TypeWildflower:
		base := "AM: 5-10 min fine soak at soil level. PM: 2-5 min only if windy/hot."
		if current != nil {
			if current.WindMPH >= 12 {
				base += " PM mulch check & 2-3 min root-zone top-off recommended."
			}
			if current.DewpointF >= 65 {
				base += " Check for 'pinched' seedlings; let surface dry between waterings."
			}
		}
		return base
	case TypeShrub:
		return `Deep soak: 3/4-1" water penetration (~1-2 gal per plant). Focus on root zone, not foliage.`
	}
	return "Water at soil level until moisture penetrates root zone."
}
