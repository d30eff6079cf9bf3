package v1

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/server/service/watering"
	"github.com/verdanthq/verdant/store"
)

type createPlantRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Species  string `json:"species"`
	Location string `json:"location"`
	Light    string `json:"light"`
	Notes    string `json:"notes"`
	PhotoURL string `json:"photo_url"`
}

type updatePlantRequest struct {
	Name     *string `json:"name"`
	Nickname *string `json:"nickname"`
	Species  *string `json:"species"`
	Location *string `json:"location"`
	Light    *string `json:"light"`
	Notes    *string `json:"notes"`
	PhotoURL *string `json:"photo_url"`
}

func (s *APIV1Service) listPlants(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	normal := store.Normal
	plants, err := s.Store.ListPlants(c.Request().Context(), &store.FindPlant{
		CreatorID: &user.ID,
		RowStatus: &normal,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list plants")
	}
	return c.JSON(http.StatusOK, plants)
}

func (s *APIV1Service) createPlant(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	var req createPlantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Location == "" {
		req.Location = store.LocationIndoorPotted
	}

	plant, err := s.Store.CreatePlant(c.Request().Context(), &store.Plant{
		UID:       uuid.NewString(),
		CreatorID: user.ID,
		Name:      req.Name,
		Nickname:  req.Nickname,
		Species:   req.Species,
		Location:  req.Location,
		Light:     req.Light,
		Notes:     req.Notes,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create plant")
	}
	return c.JSON(http.StatusOK, plant)
}

func (s *APIV1Service) getPlant(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	plant, err := s.Store.GetPlant(c.Request().Context(), &store.FindPlant{ID: &id, CreatorID: &user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load plant")
	}
	if plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}
	return c.JSON(http.StatusOK, plant)
}

func (s *APIV1Service) updatePlant(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	plant, err := s.Store.GetPlant(c.Request().Context(), &store.FindPlant{ID: &id, CreatorID: &user.ID})
	if err != nil || plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}

	var req updatePlantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.Store.UpdatePlant(c.Request().Context(), &store.UpdatePlant{
		ID:       id,
		Name:     req.Name,
		Nickname: req.Nickname,
		Species:  req.Species,
		Location: req.Location,
		Light:    req.Light,
		Notes:    req.Notes,
		PhotoURL: req.PhotoURL,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update plant")
	}

	updated, err := s.Store.GetPlant(c.Request().Context(), &store.FindPlant{ID: &id})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load plant")
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *APIV1Service) deletePlant(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	plant, err := s.Store.GetPlant(c.Request().Context(), &store.FindPlant{ID: &id, CreatorID: &user.ID})
	if err != nil || plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}
	archived := store.Archived
	if err := s.Store.UpdatePlant(c.Request().Context(), &store.UpdatePlant{ID: id, RowStatus: &archived}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete plant")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

type createJournalRequest struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

func (s *APIV1Service) createJournal(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	plant, err := s.Store.GetPlant(c.Request().Context(), &store.FindPlant{ID: &id, CreatorID: &user.ID})
	if err != nil || plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}

	var req createJournalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	switch req.Action {
	case store.ActionWatered, store.ActionMisted, store.ActionFertilized,
		store.ActionPruned, store.ActionRepotted, store.ActionNote:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid action")
	}

	entry, err := s.Store.CreateJournalEntry(c.Request().Context(), &store.JournalEntry{
		CreatorID: user.ID,
		PlantID:   id,
		Action:    req.Action,
		Note:      req.Note,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create journal entry")
	}
	return c.JSON(http.StatusOK, entry)
}

func (s *APIV1Service) listJournal(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	entries, err := s.Store.ListJournalEntries(c.Request().Context(), &store.FindJournalEntry{
		CreatorID: &user.ID,
		PlantID:   &id,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list journal entries")
	}
	return c.JSON(http.StatusOK, entries)
}

// wateringAdvice answers the ad-hoc "should I water?" question for a plant,
// combining the last watering journal entry with current weather.
func (s *APIV1Service) wateringAdvice(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	plant, err := s.Store.GetPlant(ctx, &store.FindPlant{ID: &id, CreatorID: &user.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load plant")
	}
	if plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}

	var hoursSinceWatered *float64
	watered := store.ActionWatered
	limit := 1
	entries, err := s.Store.ListJournalEntries(ctx, &store.FindJournalEntry{
		CreatorID: &user.ID,
		PlantID:   &id,
		Action:    &watered,
		Limit:     &limit,
	})
	if err == nil && len(entries) > 0 {
		h := time.Since(time.Unix(entries[0].CreatedTs, 0)).Hours()
		hoursSinceWatered = &h
	}

	var current *weather.Current
	if user.City != "" && s.Weather != nil {
		current, _ = s.Weather.CurrentForCity(ctx, user.City)
	}

	plantType := watering.TypeHouseplant
	if plant.IsOutdoor() {
		plantType = watering.TypeShrub
	}

	rec := watering.Recommend(watering.RecommendInput{
		PlantName:         plant.DisplayName(),
		HoursSinceWatered: hoursSinceWatered,
		Weather:           current,
		PlantType:         plantType,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"should_water":       rec.ShouldWater,
		"recommendation":     rec.Recommendation,
		"reason":             rec.Reason,
		"stress_score":       rec.StressScore,
		"stress_factors":     rec.StressFactors,
		"eligible":           rec.Eligible,
		"eligibility_reason": rec.EligibilityReason,
		"instructions":       watering.Instructions(plantType, current),
	})
}
