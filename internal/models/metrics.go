// internal/models/metrics.go

package models

import (
	"strconv"
	"strings"
)

// MetricFamily identifies which upstream table holds a metric's readings.
type MetricFamily int

const (
	FamilyWeather MetricFamily = iota
	FamilyWatchdog
	FamilyRivercity
	FamilyImpriMed
)

func (f MetricFamily) String() string {
	switch f {
	case FamilyWeather:
		return "weather"
	case FamilyWatchdog:
		return "watchdog"
	case FamilyRivercity:
		return "rivercity"
	case FamilyImpriMed:
		return "imprimed"
	default:
		return "unknown"
	}
}

// MetricInfo is the static registration for one metric: its read path,
// device binding and display unit.
type MetricInfo struct {
	Family   MetricFamily
	DevEUI   string // ImpriMed metrics only
	Label    string
	AddSpace bool // space between value and label when formatting
}

var metricRegistry = map[string]MetricInfo{
	// Weather station
	"temperature":        {Family: FamilyWeather, Label: "°F"},
	"percent_humidity":   {Family: FamilyWeather, Label: "%"},
	"wind_speed":         {Family: FamilyWeather, Label: "MPH", AddSpace: true},
	"rain_15_min_inches": {Family: FamilyWeather, Label: "inches", AddSpace: true},
	"soil_moisture":      {Family: FamilyWeather, Label: "centibars", AddSpace: true},
	"leaf_wetness":       {Family: FamilyWeather, Label: "out of 15", AddSpace: true},

	// Watchdog unit
	"temp": {Family: FamilyWatchdog, Label: "°F"},
	"hum":  {Family: FamilyWatchdog, Label: "%"},

	// Rivercity water sensors
	"rctemp":   {Family: FamilyRivercity, Label: "°F"},
	"humidity": {Family: FamilyRivercity, Label: "%"},

	// ImpriMed cold-storage devices, each bound to a fixed device EUI
	"imFreezerOneTemp":   {Family: FamilyImpriMed, DevEUI: "0080E1150618C9DE", Label: "°C"},
	"imFreezerOneHum":    {Family: FamilyImpriMed, DevEUI: "0080E1150618C9DE", Label: "%"},
	"imFreezerTwoTemp":   {Family: FamilyImpriMed, DevEUI: "0080E115054FC6DF", Label: "°C"},
	"imFreezerTwoHum":    {Family: FamilyImpriMed, DevEUI: "0080E115054FC6DF", Label: "%"},
	"imFreezerThreeTemp": {Family: FamilyImpriMed, DevEUI: "0080E1150618B549", Label: "°C"},
	"imFreezerThreeHum":  {Family: FamilyImpriMed, DevEUI: "0080E1150618B549", Label: "%"},
	"imFridgeOneTemp":    {Family: FamilyImpriMed, DevEUI: "0080E1150619155F", Label: "°C"},
	"imFridgeOneHum":     {Family: FamilyImpriMed, DevEUI: "0080E1150619155F", Label: "%"},
	"imFridgeTwoTemp":    {Family: FamilyImpriMed, DevEUI: "0080E115061924EA", Label: "°C"},
	"imFridgeTwoHum":     {Family: FamilyImpriMed, DevEUI: "0080E115061924EA", Label: "%"},
	"imIncubatorOneTemp": {Family: FamilyImpriMed, DevEUI: "0080E115054FF1DC", Label: "°C"},
	"imIncubatorOneHum":  {Family: FamilyImpriMed, DevEUI: "0080E115054FF1DC", Label: "%"},
	"imIncubatorTwoTemp": {Family: FamilyImpriMed, DevEUI: "0080E1150618B45F", Label: "°C"},
	"imIncubatorTwoHum":  {Family: FamilyImpriMed, DevEUI: "0080E1150618B45F", Label: "%"},
}

// LookupMetric resolves a metric name to its registration.
func LookupMetric(name string) (MetricInfo, bool) {
	info, ok := metricRegistry[name]
	return info, ok
}

// IsTempMetric reports whether an ImpriMed metric reads the temperature
// column rather than humidity.
func IsTempMetric(name string) bool {
	return strings.HasSuffix(name, "Temp")
}

// FormatValue renders a value with the metric's unit suffix, e.g. "95°F"
// or "3.2 MPH". Unknown metrics get no suffix.
func FormatValue(metric string, value float64) string {
	formatted := strconv.FormatFloat(value, 'f', -1, 64)

	info, ok := metricRegistry[metric]
	if !ok {
		return formatted
	}

	if info.AddSpace {
		return formatted + " " + info.Label
	}
	return formatted + info.Label
}
