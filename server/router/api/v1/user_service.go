package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/store"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	City     string `json:"city"`
}

type updateUserRequest struct {
	Nickname *string `json:"nickname"`
	City     *string `json:"city"`
}

func (s *APIV1Service) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	existing, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{Email: &req.Email})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check email")
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}

	user, err := s.Store.CreateUser(c.Request().Context(), &store.User{
		Email:    req.Email,
		Nickname: req.Nickname,
		City:     req.City,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}
	return c.JSON(http.StatusOK, user)
}

func (s *APIV1Service) getMe(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// updateMe lets the caller change their nickname and profile city. Clearing
// the city opts the account out of all weather features.
func (s *APIV1Service) updateMe(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	now := time.Now().Unix()
	updated, err := s.Store.UpdateUser(c.Request().Context(), &store.UpdateUser{
		ID:        user.ID,
		UpdatedTs: &now,
		Nickname:  req.Nickname,
		City:      req.City,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user")
	}
	return c.JSON(http.StatusOK, updated)
}
