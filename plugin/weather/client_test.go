package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		RPS:     1000,
		Burst:   1000,
	})
	return client, server
}

func fixedNow() time.Time {
	return time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)
}

func currentJSON() string {
	return `{
		"name": "Portland",
		"main": {"temp": 20.0, "humidity": 50},
		"wind": {"speed": 5.0},
		"weather": [{"id": 800, "main": "Clear", "description": "clear sky"}],
		"coord": {"lat": 45.52, "lon": -122.68}
	}`
}

func TestCurrentForCity(t *testing.T) {
	ctx := context.Background()

	t.Run("ParsesAndConverts", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/weather", r.URL.Path)
			require.Equal(t, "test-key", r.URL.Query().Get("appid"))
			require.Equal(t, "metric", r.URL.Query().Get("units"))
			fmt.Fprint(w, currentJSON())
		}))

		current, err := client.CurrentForCity(ctx, "Portland")
		require.NoError(t, err)
		require.Equal(t, "Portland", current.City)
		require.Equal(t, 20.0, current.TempC)
		require.Equal(t, 68.0, current.TempF)
		require.Equal(t, 50, current.Humidity)
		require.Equal(t, "clear sky", current.Conditions)
		require.Equal(t, 11.2, current.WindMPH)
		require.InDelta(t, 48.9, current.DewpointF, 0.5)
		require.Equal(t, 45.52, current.Lat)
	})

	t.Run("CachesByCity", func(t *testing.T) {
		var calls int64
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt64(&calls, 1)
			fmt.Fprint(w, currentJSON())
		}))

		_, err := client.CurrentForCity(ctx, "Portland")
		require.NoError(t, err)
		_, err = client.CurrentForCity(ctx, "Portland")
		require.NoError(t, err)
		require.EqualValues(t, 1, atomic.LoadInt64(&calls))

		client.ClearCache()
		_, err = client.CurrentForCity(ctx, "Portland")
		require.NoError(t, err)
		require.EqualValues(t, 2, atomic.LoadInt64(&calls))
	})

	t.Run("ZIPQuery", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "97201,US", r.URL.Query().Get("zip"))
			fmt.Fprint(w, currentJSON())
		}))

		current, err := client.CurrentForCity(ctx, "97201")
		require.NoError(t, err)
		require.Equal(t, "Portland", current.City)
	})

	t.Run("APIError", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"cod":"404","message":"city not found"}`)
		}))

		_, err := client.CurrentForCity(ctx, "Nowhere")
		require.Error(t, err)
		require.Contains(t, err.Error(), "404")
	})

	t.Run("MissingCity", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		_, err := client.CurrentForCity(ctx, "")
		require.Error(t, err)
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		client := NewClient(&Config{})
		_, err := client.CurrentForCity(ctx, "Portland")
		require.Error(t, err)
		require.Contains(t, err.Error(), "API key")
	})
}

func forecastHandler(t *testing.T, items string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/weather":
			fmt.Fprint(w, currentJSON())
		case "/forecast":
			fmt.Fprintf(w, `{"list": [%s]}`, items)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func TestPrecipitationForecast24h(t *testing.T) {
	ctx := context.Background()
	now := fixedNow()

	items := fmt.Sprintf(`
		{"dt": %d, "main": {"temp": 10, "humidity": 80}, "rain": {"3h": 6.35}},
		{"dt": %d, "main": {"temp": 9, "humidity": 85}, "rain": {"3h": 3.175}, "snow": {"3h": 3.175}},
		{"dt": %d, "main": {"temp": 8, "humidity": 85}, "rain": {"3h": 100.0}}`,
		now.Add(3*time.Hour).Unix(),
		now.Add(6*time.Hour).Unix(),
		now.Add(30*time.Hour).Unix())

	client, _ := newTestClient(t, forecastHandler(t, items))
	client.now = fixedNow

	precip, err := client.PrecipitationForecast24h(ctx, "Portland")
	require.NoError(t, err)
	require.NotNil(t, precip)
	// 12.7mm inside the window is exactly half an inch; the 30h item is out.
	require.Equal(t, 0.5, *precip)
}

func TestTemperatureExtremes(t *testing.T) {
	ctx := context.Background()
	now := fixedNow()

	t.Run("FreezeRisk", func(t *testing.T) {
		items := fmt.Sprintf(`
			{"dt": %d, "main": {"temp": 5, "humidity": 80}},
			{"dt": %d, "main": {"temp": -2, "humidity": 85}},
			{"dt": %d, "main": {"temp": 8, "humidity": 70}}`,
			now.Add(6*time.Hour).Unix(),
			now.Add(24*time.Hour).Unix(),
			now.Add(40*time.Hour).Unix())

		client, _ := newTestClient(t, forecastHandler(t, items))
		client.now = fixedNow

		extremes, err := client.TemperatureExtremes(ctx, "Portland", 48)
		require.NoError(t, err)
		require.Equal(t, -2.0, extremes.TempMinC)
		require.Equal(t, 28.4, extremes.TempMinF)
		require.Equal(t, 46.4, extremes.TempMaxF)
		require.True(t, extremes.FreezeRisk)
	})

	t.Run("WindowFilters", func(t *testing.T) {
		items := fmt.Sprintf(`
			{"dt": %d, "main": {"temp": 10, "humidity": 80}},
			{"dt": %d, "main": {"temp": -5, "humidity": 85}}`,
			now.Add(6*time.Hour).Unix(),
			now.Add(72*time.Hour).Unix())

		client, _ := newTestClient(t, forecastHandler(t, items))
		client.now = fixedNow

		extremes, err := client.TemperatureExtremes(ctx, "Portland", 24)
		require.NoError(t, err)
		require.False(t, extremes.FreezeRisk, "the cold snap is outside the window")
	})

	t.Run("EmptyWindow", func(t *testing.T) {
		items := fmt.Sprintf(`{"dt": %d, "main": {"temp": 10, "humidity": 80}}`,
			now.Add(72*time.Hour).Unix())

		client, _ := newTestClient(t, forecastHandler(t, items))
		client.now = fixedNow

		_, err := client.TemperatureExtremes(ctx, "Portland", 24)
		require.Error(t, err)
	})
}

func TestSeasonalPattern(t *testing.T) {
	ctx := context.Background()
	now := fixedNow() // December 3rd

	t.Run("WeatherBasedWinter", func(t *testing.T) {
		items := fmt.Sprintf(`
			{"dt": %d, "main": {"temp": 0, "humidity": 80}},
			{"dt": %d, "main": {"temp": 4, "humidity": 85}}`,
			now.Add(6*time.Hour).Unix(),
			now.Add(12*time.Hour).Unix())

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/weather":
				fmt.Fprint(w, `{
					"name": "Portland",
					"main": {"temp": 0.0, "humidity": 80},
					"wind": {"speed": 2.0},
					"weather": [{"description": "light snow"}],
					"coord": {"lat": 45.52, "lon": -122.68}
				}`)
			case "/forecast":
				fmt.Fprintf(w, `{"list": [%s]}`, items)
			}
		}))
		client.now = fixedNow

		seasonal, err := client.SeasonalPattern(ctx, "Portland")
		require.NoError(t, err)
		require.Equal(t, "weather", seasonal.Method)
		require.Equal(t, "winter", seasonal.Season)
		require.True(t, seasonal.IsDormancyPeriod)
		require.True(t, seasonal.FrostRisk)
	})

	t.Run("CalendarFallback", func(t *testing.T) {
		// Forecast endpoint fails; current weather succeeds.
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/weather" {
				fmt.Fprint(w, currentJSON())
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		client.now = fixedNow

		seasonal, err := client.SeasonalPattern(ctx, "Portland")
		require.NoError(t, err)
		require.Equal(t, "calendar", seasonal.Method)
		require.Equal(t, "winter", seasonal.Season)
	})

	t.Run("MissingCity", func(t *testing.T) {
		client := NewClient(&Config{APIKey: "k"})
		_, err := client.SeasonalPattern(ctx, "")
		require.Error(t, err)
	})
}

func TestHardinessZone(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, currentJSON())
	}))

	zone, err := client.HardinessZone(context.Background(), "Portland")
	require.NoError(t, err)
	require.Equal(t, "5a", zone, "lat 45.52 maps to 5a")
}

func TestHardinessZoneForLatitude(t *testing.T) {
	tests := []struct {
		lat  float64
		want string
	}{
		{50, "3b"},
		{48.5, "4a"},
		{45.52, "5a"},
		{40, "7a"},
		{34, "8b"},
		{25, "10b"},
		{20, "11a"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, hardinessZoneForLatitude(tt.lat), "lat %.1f", tt.lat)
	}
}
