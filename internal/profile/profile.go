package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where verdant stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Weather configuration
	OpenWeatherAPIKey string // VERDANT_OPENWEATHER_API_KEY
	WeatherCacheTTL   int    // VERDANT_WEATHER_CACHE_TTL_SECONDS (default: 600)

	// Weather-aware reminder adjustments
	AdjustmentsEnabled    bool    // VERDANT_WEATHER_ADJUSTMENTS_ENABLED (default: true)
	RainThresholdHeavyIn  float64 // VERDANT_RAIN_THRESHOLD_HEAVY_INCHES (default: 0.5)
	RainThresholdLightIn  float64 // VERDANT_RAIN_THRESHOLD_LIGHT_INCHES (default: 0.25)
	ExtremeHeatThresholdF float64 // VERDANT_EXTREME_HEAT_THRESHOLD_F (default: 95)

	// AI configuration
	AIEnabled           bool   // VERDANT_AI_ENABLED
	AIOpenAIAPIKey      string // VERDANT_AI_OPENAI_API_KEY
	AIOpenAIBaseURL     string // VERDANT_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel         string // VERDANT_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIInferenceCacheHrs int    // VERDANT_AI_INFERENCE_CACHE_HOURS (default: 168)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI inference is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIOpenAIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.OpenWeatherAPIKey = getEnvOrDefault("VERDANT_OPENWEATHER_API_KEY", p.OpenWeatherAPIKey)
	p.WeatherCacheTTL = getIntEnv("VERDANT_WEATHER_CACHE_TTL_SECONDS", 600)

	p.AdjustmentsEnabled = getBoolEnv("VERDANT_WEATHER_ADJUSTMENTS_ENABLED", true)
	p.RainThresholdHeavyIn = getFloatEnv("VERDANT_RAIN_THRESHOLD_HEAVY_INCHES", 0.5)
	p.RainThresholdLightIn = getFloatEnv("VERDANT_RAIN_THRESHOLD_LIGHT_INCHES", 0.25)
	p.ExtremeHeatThresholdF = getFloatEnv("VERDANT_EXTREME_HEAT_THRESHOLD_F", 95)

	p.AIEnabled = getBoolEnv("VERDANT_AI_ENABLED", false)
	p.AIOpenAIAPIKey = getEnvOrDefault("VERDANT_AI_OPENAI_API_KEY", p.AIOpenAIAPIKey)
	p.AIOpenAIBaseURL = getEnvOrDefault("VERDANT_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvOrDefault("VERDANT_AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIInferenceCacheHrs = getIntEnv("VERDANT_AI_INFERENCE_CACHE_HOURS", 168)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/verdant"
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("verdant_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.WeatherCacheTTL <= 0 {
		p.WeatherCacheTTL = 600
	}
	if p.AIInferenceCacheHrs <= 0 {
		p.AIInferenceCacheHrs = 168
	}

	return nil
}
