package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMetric(t *testing.T) {
	info, ok := LookupMetric("temperature")
	require.True(t, ok)
	assert.Equal(t, FamilyWeather, info.Family)

	info, ok = LookupMetric("temp")
	require.True(t, ok)
	assert.Equal(t, FamilyWatchdog, info.Family)

	info, ok = LookupMetric("rctemp")
	require.True(t, ok)
	assert.Equal(t, FamilyRivercity, info.Family)

	info, ok = LookupMetric("imFreezerOneTemp")
	require.True(t, ok)
	assert.Equal(t, FamilyImpriMed, info.Family)
	assert.Equal(t, "0080E1150618C9DE", info.DevEUI)

	_, ok = LookupMetric("nonsense")
	assert.False(t, ok)
}

func TestImpriMedMetricsShareDeviceEUI(t *testing.T) {
	temp, ok := LookupMetric("imFridgeTwoTemp")
	require.True(t, ok)
	hum, ok := LookupMetric("imFridgeTwoHum")
	require.True(t, ok)

	assert.Equal(t, temp.DevEUI, hum.DevEUI)
}

func TestIsTempMetric(t *testing.T) {
	assert.True(t, IsTempMetric("imFreezerOneTemp"))
	assert.True(t, IsTempMetric("imIncubatorTwoTemp"))
	assert.False(t, IsTempMetric("imFreezerOneHum"))
	assert.False(t, IsTempMetric("humidity"))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		metric string
		value  float64
		want   string
	}{
		{"temperature", 95, "95°F"},
		{"temperature", 95.5, "95.5°F"},
		{"percent_humidity", 40, "40%"},
		{"wind_speed", 3.2, "3.2 MPH"},
		{"rain_15_min_inches", 0.25, "0.25 inches"},
		{"soil_moisture", 12, "12 centibars"},
		{"leaf_wetness", 7, "7 out of 15"},
		{"imFreezerOneTemp", -18.5, "-18.5°C"},
		{"unknown_metric", 5, "5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.metric, tt.value), "metric %s", tt.metric)
	}
}

func TestThresholdRecipients(t *testing.T) {
	th := Threshold{
		Phone: "+15551234567, +15559876543",
		Email: " ops@example.com ,",
	}

	assert.Equal(t, []string{"+15551234567", "+15559876543"}, th.Phones())
	assert.Equal(t, []string{"ops@example.com"}, th.Emails())

	empty := Threshold{}
	assert.Nil(t, empty.Phones())
	assert.Nil(t, empty.Emails())
}
