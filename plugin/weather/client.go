package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/verdanthq/verdant/plugin/cache"
)

// Config holds the weather client configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	CacheTTL  time.Duration
	CacheSize int
	// RPS and Burst size the outbound rate limiter.
	RPS   float64
	Burst int
}

// DefaultConfig returns the default configuration, sized for the
// OpenWeather free tier (60 requests per minute).
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		BaseURL:   "https://api.openweathermap.org/data/2.5",
		CacheTTL:  10 * time.Minute,
		CacheSize: 64,
		RPS:       1,
		Burst:     5,
	}
}

// Client fetches weather data from OpenWeather.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.LRU
	limiter    *rate.Limiter
	cacheTTL   time.Duration
	now        func() time.Time
}

// NewClient creates a new weather client.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.NewLRU(cfg.CacheSize, cfg.CacheTTL),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cacheTTL:   cfg.CacheTTL,
		now:        time.Now,
	}
}

// ClearCache drops all cached responses. Useful for testing.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Timezone int `json:"timezone"`
}

type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		ThreeH float64 `json:"3h"`
	} `json:"snow"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

// CurrentForCity returns current weather for a city name or US ZIP code.
func (c *Client) CurrentForCity(ctx context.Context, city string) (*Current, error) {
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather API key not configured")
	}

	cacheKey := "current:" + city
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.(*Current), nil
	}

	resp, err := c.fetchCurrent(ctx, city)
	if err != nil {
		return nil, err
	}

	conditions := ""
	if len(resp.Weather) > 0 {
		conditions = resp.Weather[0].Description
	}

	current := &Current{
		City:       resp.Name,
		TempC:      round1(resp.Main.Temp),
		TempF:      round1(cToF(resp.Main.Temp)),
		Humidity:   resp.Main.Humidity,
		Conditions: conditions,
		WindMPS:    resp.Wind.Speed,
		WindMPH:    round1(mpsToMPH(resp.Wind.Speed)),
		DewpointF:  round1(dewpointF(resp.Main.Temp, resp.Main.Humidity)),
		Lat:        resp.Coord.Lat,
		Lon:        resp.Coord.Lon,
	}
	if current.City == "" {
		current.City = city
	}

	c.cache.Set(cacheKey, current, 0)
	return current, nil
}

// Latitude returns the latitude for a city, used for hemisphere detection.
func (c *Client) Latitude(ctx context.Context, city string) (float64, error) {
	current, err := c.CurrentForCity(ctx, city)
	if err != nil {
		return 0, err
	}
	return current.Lat, nil
}

// fetchCurrent resolves the city query against the current-weather endpoint,
// retrying with the raw query when the normalized form is unknown.
func (c *Client) fetchCurrent(ctx context.Context, city string) (*currentResponse, error) {
	var resp *currentResponse
	var err error

	if zip, ok := zipCode(city); ok {
		resp, err = c.callCurrent(ctx, url.Values{"zip": {zip + ",US"}})
		if err == nil {
			return resp, nil
		}
	}

	resp, err = c.callCurrent(ctx, url.Values{"q": {normalizeCityQuery(city)}})
	if err != nil {
		// Retry with the raw query; normalization can over-correct.
		resp, err = c.callCurrent(ctx, url.Values{"q": {city}})
	}
	return resp, err
}

func (c *Client) callCurrent(ctx context.Context, params url.Values) (*currentResponse, error) {
	var resp currentResponse
	if err := c.get(ctx, "/weather", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// forecastItems returns the 3-hourly forecast list for a city, cached.
func (c *Client) forecastItems(ctx context.Context, city string) ([]forecastItem, error) {
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather API key not configured")
	}

	cacheKey := "forecast:" + city
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.([]forecastItem), nil
	}

	current, err := c.fetchCurrent(ctx, city)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"lat": {fmt.Sprintf("%.4f", current.Coord.Lat)},
		"lon": {fmt.Sprintf("%.4f", current.Coord.Lon)},
	}
	var resp forecastResponse
	if err := c.get(ctx, "/forecast", params, &resp); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, resp.List, 0)
	return resp.List, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
