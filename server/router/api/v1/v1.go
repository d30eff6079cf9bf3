// Package v1 exposes the JSON API. Handlers are thin glue between HTTP and
// the service layer; authentication is an external collaborator, a user id
// header binding stands in for it.
package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/profile"
	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/server/service/intelligence"
	"github.com/verdanthq/verdant/server/service/reminder"
	"github.com/verdanthq/verdant/store"
)

// userIDHeader carries the authenticated user id, injected by the fronting
// auth proxy.
const userIDHeader = "X-User-ID"

type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Reminders *reminder.Service
	Weather   *weather.Client
	Inferrer  *intelligence.Inferrer
}

func NewAPIV1Service(profile *profile.Profile, s *store.Store, reminders *reminder.Service, w *weather.Client, inferrer *intelligence.Inferrer) *APIV1Service {
	return &APIV1Service{
		Profile:   profile,
		Store:     s,
		Reminders: reminders,
		Weather:   w,
		Inferrer:  inferrer,
	}
}

// Register mounts all v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/health", s.health)

	g.POST("/users", s.createUser)
	g.GET("/users/me", s.getMe)
	g.PATCH("/users/me", s.updateMe)

	g.GET("/plants", s.listPlants)
	g.POST("/plants", s.createPlant)
	g.GET("/plants/:id", s.getPlant)
	g.PATCH("/plants/:id", s.updatePlant)
	g.DELETE("/plants/:id", s.deletePlant)
	g.GET("/plants/:id/watering-advice", s.wateringAdvice)
	g.GET("/plants/:id/journal", s.listJournal)
	g.POST("/plants/:id/journal", s.createJournal)

	g.GET("/reminders", s.listReminders)
	g.POST("/reminders", s.createReminder)
	g.GET("/reminders/due", s.dueReminders)
	g.GET("/reminders/upcoming", s.upcomingReminders)
	g.GET("/reminders/month", s.monthReminders)
	g.GET("/reminders/stats", s.reminderStats)
	g.POST("/reminders/:id/complete", s.completeReminder)
	g.POST("/reminders/:id/snooze", s.snoozeReminder)
	g.POST("/reminders/:id/adjust", s.adjustReminder)
	g.POST("/reminders/:id/clear-adjustment", s.clearAdjustment)
	g.POST("/reminders/:id/toggle", s.toggleReminder)
	g.DELETE("/reminders/:id", s.deleteReminder)
}

func (s *APIV1Service) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": s.Profile.Version})
}

// currentUser resolves the caller from the user id header.
func (s *APIV1Service) currentUser(c echo.Context) (*store.User, error) {
	raw := c.Request().Header.Get(userIDHeader)
	if raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}
	id64, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
	}
	id := int32(id64)
	user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{ID: &id})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return user, nil
}

func pathID(c echo.Context) (int32, error) {
	id64, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return int32(id64), nil
}
