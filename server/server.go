// Package server wires the HTTP API, services and background runners.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/verdanthq/verdant/internal/profile"
	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/server/ai"
	apiv1 "github.com/verdanthq/verdant/server/router/api/v1"
	"github.com/verdanthq/verdant/server/runner/weatheradjust"
	"github.com/verdanthq/verdant/server/service/intelligence"
	"github.com/verdanthq/verdant/server/service/reminder"
	"github.com/verdanthq/verdant/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	runner     *weatheradjust.Runner
}

func NewServer(ctx context.Context, profile *profile.Profile, s *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(30)))

	var weatherClient *weather.Client
	if profile.OpenWeatherAPIKey != "" {
		cfg := weather.DefaultConfig(profile.OpenWeatherAPIKey)
		cfg.CacheTTL = time.Duration(profile.WeatherCacheTTL) * time.Second
		weatherClient = weather.NewClient(cfg)
	}

	var chat ai.ChatCompleter
	if profile.IsAIEnabled() {
		provider, err := ai.NewProvider(&ai.Config{
			BaseURL:   profile.AIOpenAIBaseURL,
			APIKey:    profile.AIOpenAIAPIKey,
			ChatModel: profile.AIChatModel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AI provider")
		}
		chat = provider
	}
	inferrer := intelligence.NewInferrer(chat, time.Duration(profile.AIInferenceCacheHrs)*time.Hour, profile.IsAIEnabled())

	evaluator := reminder.NewEvaluator(weatherClient, inferrer, reminder.AdjustmentConfig{
		Enabled:           profile.AdjustmentsEnabled && weatherClient != nil,
		RainHeavyInches:   profile.RainThresholdHeavyIn,
		RainLightInches:   profile.RainThresholdLightIn,
		ExtremeHeatF:      profile.ExtremeHeatThresholdF,
		FreezeWindowHours: 48,
	})
	reminderService := reminder.NewService(s, evaluator)

	apiService := apiv1.NewAPIV1Service(profile, s, reminderService, weatherClient, inferrer)
	apiService.Register(e)

	server := &Server{
		Profile:    profile,
		Store:      s,
		echoServer: e,
	}
	if profile.AdjustmentsEnabled && weatherClient != nil {
		server.runner = weatheradjust.NewRunner(s, evaluator)
	}

	return server, nil
}

// Start launches the background runner and the HTTP listener.
func (s *Server) Start(ctx context.Context) error {
	if s.runner != nil {
		go s.runner.Run(ctx)
	}
	return s.echoServer.Start(fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port))
}

// Shutdown gracefully stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	return s.Store.Close()
}
