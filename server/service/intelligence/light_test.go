package intelligence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/plugin/weather"
	"github.com/verdanthq/verdant/store"
)

func TestLightAdjustmentFactor(t *testing.T) {
	summer := &weather.Seasonal{Season: "summer"}
	winter := &weather.Seasonal{Season: "winter"}
	spring := &weather.Seasonal{Season: "spring"}
	dormant := &weather.Seasonal{Season: "winter", IsDormancyPeriod: true}

	tests := []struct {
		name     string
		plant    *store.Plant
		seasonal *weather.Seasonal
		want     float64
	}{
		{
			"grow light flat year round",
			&store.Plant{Location: store.LocationIndoorPotted, Notes: "under a grow light on a timer"},
			winter,
			1.0,
		},
		{
			"indoor summer",
			&store.Plant{Location: store.LocationIndoorPotted, Light: "bright_indirect"},
			summer,
			1.1,
		},
		{
			"indoor winter",
			&store.Plant{Location: store.LocationIndoorPotted, Light: "bright_indirect"},
			winter,
			0.9,
		},
		{
			"indoor spring",
			&store.Plant{Location: store.LocationIndoorPotted, Light: "bright_indirect"},
			spring,
			1.0,
		},
		{
			"dormant outdoor floor",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "full_sun"},
			dormant,
			0.6,
		},
		{
			"full sun summer",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "full_sun"},
			summer,
			1.3,
		},
		{
			"full sun spring",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "full_sun"},
			spring,
			1.1,
		},
		{
			"full sun winter",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "full_sun"},
			winter,
			0.9,
		},
		{
			"partial summer",
			&store.Plant{Location: store.LocationOutdoorPotted, Light: "partial_shade"},
			summer,
			1.1,
		},
		{
			"partial off season",
			&store.Plant{Location: store.LocationOutdoorPotted, Light: "partial_shade"},
			winter,
			1.0,
		},
		{
			"shade summer",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "shade"},
			summer,
			0.8,
		},
		{
			"shade off season",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "shade"},
			winter,
			0.7,
		},
		{
			"unknown light neutral",
			&store.Plant{Location: store.LocationOutdoorBed, Light: "dappled"},
			summer,
			1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LightAdjustmentFactor(tt.plant, nil, tt.seasonal)
			require.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestSeasonFrom(t *testing.T) {
	t.Run("SeasonalWins", func(t *testing.T) {
		got := seasonFrom(&weather.Seasonal{Season: "fall"}, &weather.Current{TempF: 90})
		require.Equal(t, "fall", got)
	})

	t.Run("TemperatureHeuristic", func(t *testing.T) {
		require.Equal(t, "summer", seasonFrom(nil, &weather.Current{TempF: 80}))
		require.Equal(t, "spring", seasonFrom(nil, &weather.Current{TempF: 65}))
		require.Equal(t, "fall", seasonFrom(nil, &weather.Current{TempF: 50}))
		require.Equal(t, "winter", seasonFrom(nil, &weather.Current{TempF: 40}))
	})

	t.Run("NothingAvailable", func(t *testing.T) {
		require.Equal(t, "spring", seasonFrom(nil, nil))
	})
}
