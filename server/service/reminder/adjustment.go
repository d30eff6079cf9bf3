package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/server/service/intelligence"
	"github.com/verdanthq/verdant/store"
)

// WeatherProvider is the forecast surface the evaluator consumes. A nil
// result from any call means "cannot adjust", never zero weather.
type WeatherProvider interface {
	CurrentForCity(ctx context.Context, city string) (*weather.Current, error)
	PrecipitationForecast24h(ctx context.Context, city string) (*float64, error)
	TemperatureExtremes(ctx context.Context, city string, hours int) (*weather.Extremes, error)
	SeasonalPattern(ctx context.Context, city string) (*weather.Seasonal, error)
	HardinessZone(ctx context.Context, city string) (string, error)
}

// CharacteristicsProvider infers plant characteristics; it always returns a
// well-formed profile, falling back to defaults internally.
type CharacteristicsProvider interface {
	Infer(ctx context.Context, plant *store.Plant, userCity, hardinessZone string) *intelligence.Characteristics
}

// AdjustmentConfig carries the runtime-overridable thresholds.
type AdjustmentConfig struct {
	Enabled           bool
	RainHeavyInches   float64
	RainLightInches   float64
	ExtremeHeatF      float64
	FreezeWindowHours int
}

// DefaultAdjustmentConfig returns the stock thresholds.
func DefaultAdjustmentConfig() AdjustmentConfig {
	return AdjustmentConfig{
		Enabled:           true,
		RainHeavyInches:   0.5,
		RainLightInches:   0.25,
		ExtremeHeatF:      95,
		FreezeWindowHours: 48,
	}
}

// Evaluator decides whether a reminder should be adjusted. It generates at
// most one candidate per rule family and returns the lowest-priority-number
// winner, or the inert none recommendation.
type Evaluator struct {
	weather WeatherProvider
	chars   CharacteristicsProvider
	cfg     AdjustmentConfig
	now     func() time.Time
}

// NewEvaluator creates an Evaluator. chars may be nil; the default profile
// is then used for every plant.
func NewEvaluator(w WeatherProvider, chars CharacteristicsProvider, cfg AdjustmentConfig) *Evaluator {
	return &Evaluator{
		weather: w,
		chars:   chars,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetNow overrides the clock. Intended for tests.
func (e *Evaluator) SetNow(now func() time.Time) {
	e.now = now
}

func (e *Evaluator) today() time.Time {
	n := e.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Evaluate consumes a reminder, its plant and the owner's city, and produces
// zero-or-one adjustment recommendation.
//
// Outdoor plants are subject to all rule families; indoor plants only to
// seasonal dormancy and light. Preconditions short-circuit to none: global
// disable, per-reminder opt-out, an adjustment already pointing at a future
// date, or a reminder type outside watering/misting.
func (e *Evaluator) Evaluate(ctx context.Context, rem *store.Reminder, plant *store.Plant, city string) *Recommendation {
	if !e.cfg.Enabled {
		return None()
	}
	if rem.SkipWeatherAdjustment {
		return None()
	}

	// Re-evaluation is allowed only once the adjusted date has arrived;
	// conditions may have changed since the adjustment was written.
	if adjusted, ok, err := rem.ParseAdjustedDue(); err == nil && ok {
		if adjusted.After(e.today()) {
			return None()
		}
	}

	if rem.ReminderType != store.TypeWatering && rem.ReminderType != store.TypeMisting {
		return None()
	}

	if city == "" {
		return None()
	}
	current, err := e.weather.CurrentForCity(ctx, city)
	if err != nil || current == nil {
		return None()
	}

	// Forecast inputs degrade independently; a missing forecast just means
	// the rules that need it produce no candidate.
	precip, _ := e.weather.PrecipitationForecast24h(ctx, city)
	extremes, _ := e.weather.TemperatureExtremes(ctx, city, e.cfg.FreezeWindowHours)
	seasonal, _ := e.weather.SeasonalPattern(ctx, city)

	zone, _ := e.weather.HardinessZone(ctx, city)
	chars := intelligence.Default()
	if e.chars != nil {
		chars = e.chars.Infer(ctx, plant, city, zone)
	}

	lightFactor := intelligence.LightAdjustmentFactor(plant, current, seasonal)

	isOutdoor := plant.IsOutdoor()
	var candidates []*Recommendation

	if isOutdoor {
		if c := e.freezeCandidate(rem, extremes); c != nil {
			candidates = append(candidates, c)
		}
		if c := e.extremeHeatCandidate(current, chars); c != nil {
			candidates = append(candidates, c)
		}
		if c := e.precipitationCandidate(precip); c != nil {
			candidates = append(candidates, c)
		}
		if c := e.stressCandidate(current, chars); c != nil {
			candidates = append(candidates, c)
		}
	}

	if c := e.seasonalCandidate(seasonal, chars); c != nil {
		candidates = append(candidates, c)
	}
	if c := e.lightCandidate(lightFactor); c != nil {
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return None()
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})
	return candidates[0]
}

// freezeCandidate postpones watering ahead of a forecast freeze. Watering
// before a freeze can damage roots, so this is automatic and top priority.
func (e *Evaluator) freezeCandidate(rem *store.Reminder, extremes *weather.Extremes) *Recommendation {
	if extremes == nil || !extremes.FreezeRisk {
		return nil
	}
	if rem.ReminderType != store.TypeWatering {
		return nil
	}
	return &Recommendation{
		Action:   ActionPostpone,
		Mode:     ModeAutomatic,
		Days:     2,
		Reason:   fmt.Sprintf("Freeze warning: Low of %.0f°F expected. Avoid watering before freeze.", extremes.TempMinF),
		Priority: PrioritySafety,
		Details: map[string]any{
			"weather_condition": "freeze_warning",
			"temp_min_f":        extremes.TempMinF,
			"freeze_risk":       true,
		},
	}
}

// extremeHeatCandidate suggests earlier watering for tender plants in
// extreme heat. Suggestion only; advancing automatically could waste water.
func (e *Evaluator) extremeHeatCandidate(current *weather.Current, chars *intelligence.Characteristics) *Recommendation {
	if current.TempF <= e.cfg.ExtremeHeatF {
		return nil
	}
	if chars.ColdTolerance != "tender" {
		return nil
	}
	return &Recommendation{
		Action:   ActionAdvance,
		Mode:     ModeSuggestion,
		Days:     -1,
		Reason:   fmt.Sprintf("Extreme heat (%.0f°F). Tender plants may need extra water.", current.TempF),
		Priority: PrioritySafety,
		Details: map[string]any{
			"weather_condition": "extreme_heat",
			"temp_f":            current.TempF,
			"plant_tolerance":   "tender",
		},
	}
}

func (e *Evaluator) precipitationCandidate(precip *float64) *Recommendation {
	if precip == nil || *precip <= 0 {
		return nil
	}
	switch {
	case *precip >= e.cfg.RainHeavyInches:
		return &Recommendation{
			Action:   ActionPostpone,
			Mode:     ModeAutomatic,
			Days:     2,
			Reason:   fmt.Sprintf("Heavy rain expected (%.1f inches). Soil will be saturated.", *precip),
			Priority: PriorityPrecipitation,
			Details: map[string]any{
				"weather_condition":    "heavy_rain",
				"precipitation_inches": *precip,
			},
		}
	case *precip >= e.cfg.RainLightInches:
		return &Recommendation{
			Action:   ActionPostpone,
			Mode:     ModeSuggestion,
			Days:     1,
			Reason:   fmt.Sprintf("Light rain expected (%.1f inches). May be able to skip watering.", *precip),
			Priority: PriorityPrecipitation,
			Details: map[string]any{
				"weather_condition":    "light_rain",
				"precipitation_inches": *precip,
			},
		}
	}
	return nil
}

// stressCandidate matches inferred water needs against current conditions.
// Both directions are suggestions; water needs are a model-based guess.
func (e *Evaluator) stressCandidate(current *weather.Current, chars *intelligence.Characteristics) *Recommendation {
	if chars.WaterNeeds == "high" && current.TempF > 85 && current.Humidity < 40 {
		return &Recommendation{
			Action:   ActionAdvance,
			Mode:     ModeSuggestion,
			Days:     -1,
			Reason:   fmt.Sprintf("Hot, dry weather (%.0f°F, %d%% humidity). High-water plant may need earlier watering.", current.TempF, current.Humidity),
			Priority: PriorityPlantStress,
			Details: map[string]any{
				"weather_condition": "hot_dry",
				"temp_f":            current.TempF,
				"humidity":          current.Humidity,
				"water_needs":       "high",
			},
		}
	}
	if chars.WaterNeeds == "low" && current.TempF < 65 && current.Humidity > 60 {
		return &Recommendation{
			Action:   ActionPostpone,
			Mode:     ModeSuggestion,
			Days:     1,
			Reason:   fmt.Sprintf("Cool, humid weather (%.0f°F, %d%% humidity). Low-water plant can wait.", current.TempF, current.Humidity),
			Priority: PriorityPlantStress,
			Details: map[string]any{
				"weather_condition": "cool_humid",
				"temp_f":            current.TempF,
				"humidity":          current.Humidity,
				"water_needs":       "low",
			},
		}
	}
	return nil
}

func (e *Evaluator) seasonalCandidate(seasonal *weather.Seasonal, chars *intelligence.Characteristics) *Recommendation {
	if seasonal == nil || !seasonal.IsDormancyPeriod {
		return nil
	}
	if chars.Lifecycle != "perennial" {
		return nil
	}
	return &Recommendation{
		Action:   ActionPostpone,
		Mode:     ModeSuggestion,
		Days:     2,
		Reason:   fmt.Sprintf("Plant is in dormancy period (%s). Reduce watering frequency.", seasonal.Season),
		Priority: PrioritySeasonal,
		Details: map[string]any{
			"weather_condition": "dormancy",
			"season":            seasonal.Season,
			"lifecycle":         chars.Lifecycle,
		},
	}
}

// lightCandidate only fires outside the [0.8, 1.2] dead zone; tiny factor
// deviations would produce noisy one-day churn.
func (e *Evaluator) lightCandidate(factor float64) *Recommendation {
	if factor < 0.8 {
		return &Recommendation{
			Action:   ActionPostpone,
			Mode:     ModeSuggestion,
			Days:     1,
			Reason:   fmt.Sprintf("Reduced light levels. Plant needs %d%% less water.", int((1-factor)*100)),
			Priority: PriorityLight,
			Details: map[string]any{
				"weather_condition": "reduced_light",
				"light_factor":      factor,
			},
		}
	}
	if factor > 1.2 {
		return &Recommendation{
			Action:   ActionAdvance,
			Mode:     ModeSuggestion,
			Days:     -1,
			Reason:   fmt.Sprintf("High light levels. Plant may need %d%% more water.", int((factor-1)*100)),
			Priority: PriorityLight,
			Details: map[string]any{
				"weather_condition": "high_light",
				"light_factor":      factor,
			},
		}
	}
	return nil
}

// ReminderTypeLabel returns the display name for a reminder type.
func ReminderTypeLabel(reminderType string) string {
	labels := map[string]string{
		store.TypeWatering:    "Watering",
		store.TypeFertilizing: "Fertilizing",
		store.TypeMisting:     "Misting",
		store.TypePruning:     "Pruning",
		store.TypeRepotting:   "Repotting",
		store.TypeInspection:  "Inspection",
		store.TypeCustom:      "Custom Care",
	}
	if label, ok := labels[reminderType]; ok {
		return label
	}
	return reminderType
}
