package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/server/service/reminder"
	"github.com/verdanthq/verdant/store"
)

type createReminderRequest struct {
	PlantID               int32  `json:"plant_id"`
	ReminderType          string `json:"reminder_type"`
	Title                 string `json:"title"`
	Frequency             string `json:"frequency"`
	CustomIntervalDays    *int   `json:"custom_interval_days"`
	SkipWeatherAdjustment bool   `json:"skip_weather_adjustment"`
}

type snoozeRequest struct {
	Days int `json:"days"`
}

type adjustRequest struct {
	Days   int    `json:"days"`
	Reason string `json:"reason"`
}

type dueReminderView struct {
	Reminder   *store.Reminder             `json:"reminder"`
	Adjustment *reminder.AppliedAdjustment `json:"adjustment,omitempty"`
}

func (s *APIV1Service) listReminders(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	var plantID *int32
	if raw := c.QueryParam("plant_id"); raw != "" {
		id64, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid plant_id")
		}
		id := int32(id64)
		plantID = &id
	}
	activeOnly := c.QueryParam("include_inactive") != "true"

	reminders, err := s.Reminders.List(c.Request().Context(), user.ID, plantID, activeOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reminders")
	}
	return c.JSON(http.StatusOK, reminders)
}

func (s *APIV1Service) createReminder(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	var req createReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	plant, err := s.Store.GetPlant(c.Request().Context(), &store.FindPlant{ID: &req.PlantID, CreatorID: &user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load plant")
	}
	if plant == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "plant not found")
	}

	rem, err := s.Reminders.Create(c.Request().Context(), &reminder.CreateRequest{
		CreatorID:             user.ID,
		PlantID:               req.PlantID,
		ReminderType:          req.ReminderType,
		Title:                 req.Title,
		Frequency:             req.Frequency,
		CustomIntervalDays:    req.CustomIntervalDays,
		SkipWeatherAdjustment: req.SkipWeatherAdjustment,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rem)
}

// dueReminders returns due reminders with automatic weather adjustments
// applied plus pending suggestions for user review.
func (s *APIV1Service) dueReminders(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	due, suggestions, err := s.Reminders.DueToday(c.Request().Context(), user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load due reminders")
	}

	views := make([]*dueReminderView, 0, len(due))
	for _, d := range due {
		views = append(views, &dueReminderView{Reminder: d.Reminder, Adjustment: d.Adjustment})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"reminders":   views,
		"suggestions": suggestions,
	})
}

func (s *APIV1Service) upcomingReminders(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			days = v
		}
	}
	reminders, err := s.Reminders.Upcoming(c.Request().Context(), user.ID, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load upcoming reminders")
	}
	return c.JSON(http.StatusOK, reminders)
}

func (s *APIV1Service) monthReminders(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
	}
	reminders, err := s.Reminders.Month(c.Request().Context(), user.ID, year, month)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, reminders)
}

func (s *APIV1Service) reminderStats(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	stats, err := s.Reminders.GetStats(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *APIV1Service) completeReminder(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.Reminders.Complete(c.Request().Context(), id, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIV1Service) snoozeReminder(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	req := snoozeRequest{Days: 1}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.Reminders.Snooze(c.Request().Context(), id, user.ID, req.Days); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIV1Service) adjustReminder(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.Reminders.AdjustByDays(c.Request().Context(), id, user.ID, req.Days, req.Reason); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIV1Service) clearAdjustment(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.Reminders.ClearWeatherAdjustment(c.Request().Context(), id, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIV1Service) toggleReminder(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.Reminders.ToggleActive(c.Request().Context(), id, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIV1Service) deleteReminder(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.Reminders.Delete(c.Request().Context(), id, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
