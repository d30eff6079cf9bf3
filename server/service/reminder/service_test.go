package reminder

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/profile"
	"github.com/verdanthq/verdant/store"
)

// fakeDriver is an in-memory store.Driver for service tests.
type fakeDriver struct {
	users     []*store.User
	plants    []*store.Plant
	reminders []*store.Reminder
	journal   []*store.JournalEntry
	nextID    int32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{nextID: 1}
}

func (d *fakeDriver) id() int32 {
	id := d.nextID
	d.nextID++
	return id
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }
func (d *fakeDriver) Close() error   { return nil }

func (d *fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }
func (d *fakeDriver) Migrate(context.Context) error               { return nil }

func (d *fakeDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	create.ID = d.id()
	create.RowStatus = store.Normal
	d.users = append(d.users, create)
	return create, nil
}

func (d *fakeDriver) ListUsers(_ context.Context, find *store.FindUser) ([]*store.User, error) {
	var out []*store.User
	for _, u := range d.users {
		if find.ID != nil && u.ID != *find.ID {
			continue
		}
		if find.Email != nil && u.Email != *find.Email {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (d *fakeDriver) UpdateUser(_ context.Context, update *store.UpdateUser) (*store.User, error) {
	for _, u := range d.users {
		if u.ID != update.ID {
			continue
		}
		if update.Nickname != nil {
			u.Nickname = *update.Nickname
		}
		if update.City != nil {
			u.City = *update.City
		}
		return u, nil
	}
	return nil, nil
}

func (d *fakeDriver) DeleteUser(context.Context, *store.DeleteUser) error { return nil }

func (d *fakeDriver) CreatePlant(_ context.Context, create *store.Plant) (*store.Plant, error) {
	create.ID = d.id()
	create.RowStatus = store.Normal
	d.plants = append(d.plants, create)
	return create, nil
}

func (d *fakeDriver) ListPlants(_ context.Context, find *store.FindPlant) ([]*store.Plant, error) {
	var out []*store.Plant
	for _, p := range d.plants {
		if find.ID != nil && p.ID != *find.ID {
			continue
		}
		if find.CreatorID != nil && p.CreatorID != *find.CreatorID {
			continue
		}
		if find.RowStatus != nil && p.RowStatus != *find.RowStatus {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *fakeDriver) UpdatePlant(context.Context, *store.UpdatePlant) error { return nil }
func (d *fakeDriver) DeletePlant(context.Context, *store.DeletePlant) error { return nil }

func (d *fakeDriver) CreateReminder(_ context.Context, create *store.Reminder) (*store.Reminder, error) {
	create.ID = d.id()
	create.RowStatus = store.Normal
	d.reminders = append(d.reminders, create)
	return create, nil
}

func (d *fakeDriver) ListReminders(_ context.Context, find *store.FindReminder) ([]*store.Reminder, error) {
	var out []*store.Reminder
	for _, r := range d.reminders {
		if find.ID != nil && r.ID != *find.ID {
			continue
		}
		if find.CreatorID != nil && r.CreatorID != *find.CreatorID {
			continue
		}
		if find.PlantID != nil && r.PlantID != *find.PlantID {
			continue
		}
		if find.RowStatus != nil && r.RowStatus != *find.RowStatus {
			continue
		}
		if find.ReminderType != nil && r.ReminderType != *find.ReminderType {
			continue
		}
		if find.DueOnOrBefore != nil && r.EffectiveDue() > *find.DueOnOrBefore {
			continue
		}
		if find.DueAfter != nil && r.EffectiveDue() <= *find.DueAfter {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (d *fakeDriver) UpdateReminder(_ context.Context, update *store.UpdateReminder) error {
	for _, r := range d.reminders {
		if r.ID != update.ID {
			continue
		}
		if update.CreatorID != nil && r.CreatorID != *update.CreatorID {
			continue
		}
		if update.RowStatus != nil {
			r.RowStatus = *update.RowStatus
		}
		if update.NextDue != nil {
			r.NextDue = *update.NextDue
		}
		if update.LastCompletedTs != nil {
			r.LastCompletedTs = update.LastCompletedTs
		}
		if update.ClearWeatherAdjustment {
			r.WeatherAdjustedDue = nil
			r.WeatherAdjustmentReason = nil
		} else {
			if update.WeatherAdjustedDue != nil {
				r.WeatherAdjustedDue = update.WeatherAdjustedDue
			}
			if update.WeatherAdjustmentReason != nil {
				r.WeatherAdjustmentReason = update.WeatherAdjustmentReason
			}
		}
	}
	return nil
}

func (d *fakeDriver) DeleteReminder(context.Context, *store.DeleteReminder) error { return nil }

func (d *fakeDriver) ListUsersWithActiveReminders(context.Context) ([]int32, error) {
	seen := map[int32]bool{}
	var out []int32
	for _, r := range d.reminders {
		if r.RowStatus != store.Normal || seen[r.CreatorID] {
			continue
		}
		seen[r.CreatorID] = true
		out = append(out, r.CreatorID)
	}
	return out, nil
}

func (d *fakeDriver) CreateJournalEntry(_ context.Context, create *store.JournalEntry) (*store.JournalEntry, error) {
	create.ID = d.id()
	d.journal = append(d.journal, create)
	return create, nil
}

func (d *fakeDriver) ListJournalEntries(_ context.Context, find *store.FindJournalEntry) ([]*store.JournalEntry, error) {
	var out []*store.JournalEntry
	for _, e := range d.journal {
		if find.CreatorID != nil && e.CreatorID != *find.CreatorID {
			continue
		}
		if find.PlantID != nil && e.PlantID != *find.PlantID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *fakeDriver) UpdateJournalEntry(context.Context, *store.UpdateJournalEntry) error {
	return nil
}

func newTestService(t *testing.T, driver *fakeDriver, w WeatherProvider) *Service {
	t.Helper()
	s := store.New(driver, &profile.Profile{Mode: "dev"})
	if w == nil {
		w = &fakeWeather{}
	}
	svc := NewService(s, NewEvaluator(w, nil, DefaultAdjustmentConfig()))
	svc.SetNow(fixedClock(t, "2025-12-03"))
	return svc
}

func seedPlantAndUser(t *testing.T, ctx context.Context, driver *fakeDriver, city string) (*store.User, *store.Plant) {
	t.Helper()
	s := store.New(driver, &profile.Profile{Mode: "dev"})
	user, err := s.CreateUser(ctx, &store.User{Email: "gardener@example.com", City: city})
	require.NoError(t, err)
	plant, err := s.CreatePlant(ctx, &store.Plant{
		UID:       "p-1",
		CreatorID: user.ID,
		Name:      "Tomato",
		Location:  store.LocationOutdoorBed,
		Light:     "partial_shade",
	})
	require.NoError(t, err)
	return user, plant
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("WeeklySchedule", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		rem, err := svc.Create(ctx, &CreateRequest{
			CreatorID:    user.ID,
			PlantID:      plant.ID,
			ReminderType: store.TypeWatering,
			Title:        "Water the tomato",
			Frequency:    "weekly",
		})
		require.NoError(t, err)
		require.Equal(t, "2025-12-10", rem.NextDue)
		require.True(t, rem.IsRecurring)
		require.NotEmpty(t, rem.UID)
	})

	t.Run("OneTimeDueToday", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		rem, err := svc.Create(ctx, &CreateRequest{
			CreatorID:    user.ID,
			PlantID:      plant.ID,
			ReminderType: store.TypeRepotting,
			Frequency:    "one_time",
		})
		require.NoError(t, err)
		require.Equal(t, "2025-12-03", rem.NextDue)
		require.False(t, rem.IsRecurring)
	})

	t.Run("CustomRequiresInterval", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)

		_, err := svc.Create(ctx, &CreateRequest{CreatorID: 1, PlantID: 1, Frequency: "custom"})
		require.Error(t, err)

		interval := 5
		rem, err := svc.Create(ctx, &CreateRequest{
			CreatorID:          1,
			PlantID:            1,
			ReminderType:       store.TypeWatering,
			Frequency:          "custom",
			CustomIntervalDays: &interval,
		})
		require.NoError(t, err)
		require.Equal(t, "2025-12-08", rem.NextDue)
	})

	t.Run("InvalidFrequency", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)

		_, err := svc.Create(ctx, &CreateRequest{CreatorID: 1, PlantID: 1, Frequency: "fortnightly"})
		require.Error(t, err)
	})
}

func TestServiceDueToday(t *testing.T) {
	ctx := context.Background()

	t.Run("NoCityRawPassThrough", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		driver.reminders = append(driver.reminders, &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
		})

		due, suggestions, err := svc.DueToday(ctx, user)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.Nil(t, due[0].Adjustment)
		require.Empty(t, suggestions)
	})

	t.Run("HeavyRainRemovesFromDue", func(t *testing.T) {
		driver := newFakeDriver()
		heavy := 0.8
		w := &fakeWeather{
			current: mildWeather().current,
			precip:  &heavy,
		}
		svc := newTestService(t, driver, w)
		user, plant := seedPlantAndUser(t, ctx, driver, "Portland")

		driver.reminders = append(driver.reminders, &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
		})

		due, _, err := svc.DueToday(ctx, user)
		require.NoError(t, err)
		require.Empty(t, due)

		// The adjustment was persisted.
		rem := driver.reminders[0]
		require.NotNil(t, rem.WeatherAdjustedDue)
		require.Equal(t, "2025-12-05", *rem.WeatherAdjustedDue)
	})

	t.Run("LightRainYieldsSuggestion", func(t *testing.T) {
		driver := newFakeDriver()
		light := 0.3
		w := &fakeWeather{
			current: mildWeather().current,
			precip:  &light,
		}
		svc := newTestService(t, driver, w)
		user, plant := seedPlantAndUser(t, ctx, driver, "Portland")

		driver.reminders = append(driver.reminders, &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
		})

		due, suggestions, err := svc.DueToday(ctx, user)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.Len(t, suggestions, 1)
		require.Equal(t, "postpone_watering", suggestions[0].SuggestionType)
	})
}

func TestServiceComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("RecurringAdvancesSchedule", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		rem := &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
		}
		driver.reminders = append(driver.reminders, rem)

		require.NoError(t, svc.Complete(ctx, rem.ID, user.ID))
		require.Equal(t, "2025-12-10", rem.NextDue)
		require.NotNil(t, rem.LastCompletedTs)

		require.Len(t, driver.journal, 1)
		require.Equal(t, store.ActionWatered, driver.journal[0].Action)
		require.Empty(t, driver.journal[0].Note)
	})

	t.Run("WeatherAdjustmentClearedAndJournaled", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		adjusted := "2025-12-05"
		reason := "Heavy rain expected (0.8 inches). Soil will be saturated."
		rem := &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
			WeatherAdjustedDue: &adjusted, WeatherAdjustmentReason: &reason,
		}
		driver.reminders = append(driver.reminders, rem)

		require.NoError(t, svc.Complete(ctx, rem.ID, user.ID))
		require.Nil(t, rem.WeatherAdjustedDue)
		require.Nil(t, rem.WeatherAdjustmentReason)

		require.Len(t, driver.journal, 1)
		require.Contains(t, driver.journal[0].Note, "Weather-adjusted from original schedule")
		require.Contains(t, driver.journal[0].Note, "Heavy rain expected")
	})

	t.Run("OneTimeArchives", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		rem := &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeRepotting, Frequency: "one_time", NextDue: "2025-12-03",
		}
		driver.reminders = append(driver.reminders, rem)

		require.NoError(t, svc.Complete(ctx, rem.ID, user.ID))
		require.Equal(t, store.Archived, rem.RowStatus)
	})

	t.Run("NotOwned", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		rem := &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
		}
		driver.reminders = append(driver.reminders, rem)

		require.Error(t, svc.Complete(ctx, rem.ID, user.ID+1))
	})
}

func TestServiceSnoozeAndAdjust(t *testing.T) {
	ctx := context.Background()

	seedReminder := func(t *testing.T) (*fakeDriver, *Service, *store.User, *store.Reminder) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")
		adjusted := "2025-12-04"
		rem := &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03", IsRecurring: true,
			WeatherAdjustedDue: &adjusted,
		}
		driver.reminders = append(driver.reminders, rem)
		return driver, svc, user, rem
	}

	t.Run("SnoozeReschedulesAndClears", func(t *testing.T) {
		_, svc, user, rem := seedReminder(t)
		require.NoError(t, svc.Snooze(ctx, rem.ID, user.ID, 3))
		require.Equal(t, "2025-12-06", rem.NextDue)
		require.Nil(t, rem.WeatherAdjustedDue)
	})

	t.Run("SnoozeRange", func(t *testing.T) {
		_, svc, user, rem := seedReminder(t)
		require.Error(t, svc.Snooze(ctx, rem.ID, user.ID, 0))
		require.Error(t, svc.Snooze(ctx, rem.ID, user.ID, 31))
	})

	t.Run("AdjustByDaysSetsOverride", func(t *testing.T) {
		_, svc, user, rem := seedReminder(t)
		require.NoError(t, svc.AdjustByDays(ctx, rem.ID, user.ID, 2, ""))
		require.NotNil(t, rem.WeatherAdjustedDue)
		require.Equal(t, "2025-12-05", *rem.WeatherAdjustedDue)
		require.Equal(t, "Postponed by 2 day(s)", *rem.WeatherAdjustmentReason)
	})

	t.Run("AdjustByDaysAdvance", func(t *testing.T) {
		_, svc, user, rem := seedReminder(t)
		require.NoError(t, svc.AdjustByDays(ctx, rem.ID, user.ID, -2, ""))
		require.Equal(t, "2025-12-01", *rem.WeatherAdjustedDue)
		require.Equal(t, "Advanced by 2 day(s)", *rem.WeatherAdjustmentReason)
	})

	t.Run("AdjustByDaysRange", func(t *testing.T) {
		_, svc, user, rem := seedReminder(t)
		require.Error(t, svc.AdjustByDays(ctx, rem.ID, user.ID, 0, ""))
		require.Error(t, svc.AdjustByDays(ctx, rem.ID, user.ID, -8, ""))
		require.Error(t, svc.AdjustByDays(ctx, rem.ID, user.ID, 31, ""))
	})

	t.Run("ClearWeatherAdjustment", func(t *testing.T) {
		_, svc, user, rem := seedReminder(t)
		require.NoError(t, svc.ClearWeatherAdjustment(ctx, rem.ID, user.ID))
		require.Nil(t, rem.WeatherAdjustedDue)
	})
}

func TestServiceToggleAndStats(t *testing.T) {
	ctx := context.Background()

	t.Run("ToggleArchivesThenReactivatesToTomorrow", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		rem := &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-11-20", IsRecurring: true,
		}
		driver.reminders = append(driver.reminders, rem)

		require.NoError(t, svc.ToggleActive(ctx, rem.ID, user.ID))
		require.Equal(t, store.Archived, rem.RowStatus)

		require.NoError(t, svc.ToggleActive(ctx, rem.ID, user.ID))
		require.Equal(t, store.Normal, rem.RowStatus)
		require.Equal(t, "2025-12-04", rem.NextDue)
	})

	t.Run("Stats", func(t *testing.T) {
		driver := newFakeDriver()
		svc := newTestService(t, driver, nil)
		user, plant := seedPlantAndUser(t, ctx, driver, "")

		completed := fixedClock(t, "2025-12-03")().Unix() - 3600
		adjusted := "2025-12-09"
		driver.reminders = append(driver.reminders,
			&store.Reminder{
				ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
				ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: "2025-12-03",
				IsRecurring: true, LastCompletedTs: &completed,
			},
			&store.Reminder{
				ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
				ReminderType: store.TypeMisting, Frequency: "daily", NextDue: "2025-12-20",
				IsRecurring: true, WeatherAdjustedDue: &adjusted,
			},
			&store.Reminder{
				ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Archived,
				ReminderType: store.TypePruning, Frequency: "monthly", NextDue: "2025-12-15",
				IsRecurring: true,
			},
		)

		stats, err := svc.GetStats(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 3, stats.TotalReminders)
		require.Equal(t, 2, stats.ActiveReminders)
		require.Equal(t, 1, stats.DueToday)
		require.Equal(t, 1, stats.Upcoming7Days, "weather-adjusted date decides the bucket")
		require.Equal(t, 1, stats.CompletedThisWeek)
	})
}

func TestServiceUpcomingAndMonth(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	svc := newTestService(t, driver, nil)
	user, plant := seedPlantAndUser(t, ctx, driver, "")

	add := func(due string) {
		driver.reminders = append(driver.reminders, &store.Reminder{
			ID: driver.id(), CreatorID: user.ID, PlantID: plant.ID, RowStatus: store.Normal,
			ReminderType: store.TypeWatering, Frequency: "weekly", NextDue: due, IsRecurring: true,
		})
	}
	add("2025-12-03") // today: excluded from upcoming
	add("2025-12-05")
	add("2025-12-10")
	add("2025-12-11") // outside the 7-day window
	add("2026-01-02") // next month

	t.Run("Upcoming", func(t *testing.T) {
		got, err := svc.Upcoming(ctx, user.ID, 7)
		require.NoError(t, err)
		require.Len(t, got, 2)
	})

	t.Run("Month", func(t *testing.T) {
		got, err := svc.Month(ctx, user.ID, 2025, 12)
		require.NoError(t, err)
		require.Len(t, got, 4)

		_, err = svc.Month(ctx, user.ID, 2025, 13)
		require.Error(t, err)
	})
}
