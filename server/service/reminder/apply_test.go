package reminder

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/server/service/intelligence"
	"github.com/verdanthq/verdant/store"
)

// recordingStore captures reminder updates.
type recordingStore struct {
	updates []*store.UpdateReminder
	fail    bool
}

func (r *recordingStore) UpdateReminder(_ context.Context, update *store.UpdateReminder) error {
	if r.fail {
		return errors.New("db unavailable")
	}
	r.updates = append(r.updates, update)
	return nil
}

func TestApplyAutomatic(t *testing.T) {
	ctx := context.Background()

	t.Run("HeavyRainPostponesAndExcludes", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{}

		rem := outdoorWateringReminder()
		plants := map[int32]*store.Plant{1: outdoorPlant()}

		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{rem}, plants, "Portland")
		require.Equal(t, 1, applied)
		require.Empty(t, due, "postponed reminder is no longer due today")

		require.Len(t, rs.updates, 1)
		update := rs.updates[0]
		require.Equal(t, rem.ID, update.ID)
		require.NotNil(t, update.WeatherAdjustedDue)
		require.Equal(t, "2025-12-05", *update.WeatherAdjustedDue)
		require.NotNil(t, update.WeatherAdjustmentReason)
		require.Contains(t, *update.WeatherAdjustmentReason, "Heavy rain expected")
	})

	t.Run("OptedOutPassesThrough", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{}

		rem := outdoorWateringReminder()
		rem.SkipWeatherAdjustment = true
		plants := map[int32]*store.Plant{1: outdoorPlant()}

		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{rem}, plants, "Portland")
		require.Zero(t, applied)
		require.Len(t, due, 1)
		require.Nil(t, due[0].Adjustment)
		require.Empty(t, rs.updates)
	})

	t.Run("SuggestionNeverPersisted", func(t *testing.T) {
		w := mildWeather()
		light := 0.3
		w.precip = &light
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{}

		plants := map[int32]*store.Plant{1: outdoorPlant()}
		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{outdoorWateringReminder()}, plants, "Portland")
		require.Zero(t, applied)
		require.Len(t, due, 1)
		require.Empty(t, rs.updates)
	})

	t.Run("PostponeClampsToTomorrow", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{}

		// Overdue by a week; a 2-day bump would still land in the past.
		rem := outdoorWateringReminder()
		rem.NextDue = "2025-11-26"
		plants := map[int32]*store.Plant{1: outdoorPlant()}

		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{rem}, plants, "Portland")
		require.Equal(t, 1, applied)
		require.Empty(t, due)
		require.Len(t, rs.updates, 1)
		require.Equal(t, "2025-12-04", *rs.updates[0].WeatherAdjustedDue)
	})

	t.Run("MissingPlantPassesThrough", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{}

		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{outdoorWateringReminder()}, map[int32]*store.Plant{}, "Portland")
		require.Zero(t, applied)
		require.Len(t, due, 1)
	})

	t.Run("PersistFailureStillAdjustsView", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{fail: true}

		plants := map[int32]*store.Plant{1: outdoorPlant()}
		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{outdoorWateringReminder()}, plants, "Portland")
		require.Equal(t, 1, applied)
		require.Empty(t, due)
	})

	t.Run("SecondRunIsIdempotent", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)
		rs := &recordingStore{}

		rem := outdoorWateringReminder()
		plants := map[int32]*store.Plant{1: outdoorPlant()}
		_, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{rem}, plants, "Portland")
		require.Equal(t, 1, applied)

		// Simulate the persisted adjustment and re-run.
		rem.WeatherAdjustedDue = rs.updates[0].WeatherAdjustedDue
		due, applied := e.ApplyAutomatic(ctx, rs, []*store.Reminder{rem}, plants, "Portland")
		require.Zero(t, applied)
		require.Empty(t, due, "future-adjusted reminder stays out of the due list")
		require.Len(t, rs.updates, 1)
	})
}

func TestCollectSuggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("LightRainSuggestion", func(t *testing.T) {
		w := mildWeather()
		light := 0.3
		w.precip = &light
		e := newTestEvaluator(t, w, nil)

		rem := outdoorWateringReminder()
		plant := outdoorPlant()
		plant.Nickname = "Cherry"
		plants := map[int32]*store.Plant{1: plant}

		suggestions := e.CollectSuggestions(ctx, []*store.Reminder{rem}, plants, "Portland")
		require.Len(t, suggestions, 1)

		s := suggestions[0]
		require.Equal(t, rem.ID, s.ReminderID)
		require.Equal(t, "Cherry", s.PlantName)
		require.Equal(t, "postpone_watering", s.SuggestionType)
		require.Contains(t, s.Message, "Consider postponing watering by 1 day.")
		require.Equal(t, "Postpone 1 day", s.ActionLabel)
		require.Equal(t, 1, s.Days)
	})

	t.Run("AdvanceWording", func(t *testing.T) {
		w := &fakeWeather{current: &weather.Current{TempF: 90, Humidity: 30}}
		chars := intelligence.Default()
		chars.WaterNeeds = "high"
		e := newTestEvaluator(t, w, &fakeChars{chars: chars})

		plant := outdoorPlant()
		plant.Light = "partial_shade"
		plants := map[int32]*store.Plant{1: plant}

		suggestions := e.CollectSuggestions(ctx, []*store.Reminder{outdoorWateringReminder()}, plants, "Portland")
		require.Len(t, suggestions, 1)
		require.Equal(t, "advance_watering", suggestions[0].SuggestionType)
		require.Equal(t, "Advance 1 day", suggestions[0].ActionLabel)
		require.Contains(t, suggestions[0].Message, "Consider advancing watering by 1 day.")
	})

	t.Run("AutomaticExcluded", func(t *testing.T) {
		w := mildWeather()
		heavy := 0.8
		w.precip = &heavy
		e := newTestEvaluator(t, w, nil)

		plants := map[int32]*store.Plant{1: outdoorPlant()}
		suggestions := e.CollectSuggestions(ctx, []*store.Reminder{outdoorWateringReminder()}, plants, "Portland")
		require.Empty(t, suggestions)
	})
}
