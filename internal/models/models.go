// internal/models/models.go

package models

import (
	"strings"
	"time"
)

// Threshold is one version of the alerting configuration for a metric.
// Rows are append-only: a configuration or pause change inserts a new row,
// and only the most-recently-timestamped row per metric is authoritative.
type Threshold struct {
	ID              int        `json:"id" db:"id"`
	Metric          string     `json:"metric" db:"metric"`
	High            *float64   `json:"high" db:"high"`
	Low             *float64   `json:"low" db:"low"`
	Phone           string     `json:"phone" db:"phone"`
	Email           string     `json:"email" db:"email"`
	Timestamp       time.Time  `json:"timestamp" db:"timestamp"`
	ThreshKill      bool       `json:"thresh_kill" db:"thresh_kill"`
	Timeframe       *string    `json:"timeframe" db:"timeframe"`
	AlertInterval   *int       `json:"alert_interval" db:"alert_interval"`
	TimeOfLastAlert *time.Time `json:"time_of_last_alert" db:"time_of_last_alert"`
}

// Phones returns the trimmed phone recipient list.
func (t *Threshold) Phones() []string {
	return splitRecipients(t.Phone)
}

// Emails returns the trimmed email recipient list.
func (t *Threshold) Emails() []string {
	return splitRecipients(t.Email)
}

// Interval returns the minimum spacing between alerts for this threshold,
// falling back to the given default when unset.
func (t *Threshold) Interval(fallback time.Duration) time.Duration {
	if t.AlertInterval == nil || *t.AlertInterval <= 0 {
		return fallback
	}
	return time.Duration(*t.AlertInterval) * time.Minute
}

func splitRecipients(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Admin holds per-admin contact info and the global kill switch. An admin
// with ThreshKill set suppresses every threshold whose recipient list
// includes the admin's email or phone.
type Admin struct {
	ID         int    `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Email      string `json:"email" db:"email"`
	Phone      string `json:"phone" db:"phone"`
	ThreshKill bool   `json:"thresh_kill" db:"thresh_kill"`
}

// Alert is the immutable audit record of one dispatched notification event.
type Alert struct {
	ID        int       `json:"id" db:"id"`
	Metric    string    `json:"metric" db:"metric"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Chart maps a metric to its human-readable sensor location, used when
// composing alert messages.
type Chart struct {
	ID       int    `json:"id" db:"id"`
	Metric   string `json:"metric" db:"metric"`
	Location string `json:"location" db:"location"`
}

// Reading is the latest observed value for a metric. Value is nil when the
// upstream row exists but the column is null.
type Reading struct {
	Metric    string    `json:"metric"`
	Value     *float64  `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Customer ties a dashboard account to the metrics it monitors, for the
// weekly recap job.
type Customer struct {
	ID      int    `json:"id" db:"id"`
	Email   string `json:"email" db:"email"`
	Metrics string `json:"metrics" db:"metrics"`
}

// MetricList returns the customer's assigned metrics.
func (c *Customer) MetricList() []string {
	return splitRecipients(c.Metrics)
}

// WeeklyRecap is one computed recap row per customer and metric.
type WeeklyRecap struct {
	ID            int       `json:"id" db:"id"`
	UserEmail     string    `json:"user_email" db:"user_email"`
	Metric        string    `json:"metric" db:"metric"`
	WeekStartDate time.Time `json:"week_start_date" db:"week_start_date"`
	High          *float64  `json:"high" db:"high"`
	Low           *float64  `json:"low" db:"low"`
	Avg           *float64  `json:"avg" db:"avg"`
	AlertCount    int       `json:"alert_count" db:"alert_count"`
}

// MetricStats holds a weekly aggregate for one metric.
type MetricStats struct {
	High *float64 `json:"high"`
	Low  *float64 `json:"low"`
	Avg  *float64 `json:"avg"`
}

type CreateThresholdRequest struct {
	Metric        string   `json:"metric"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	ThreshKill    bool     `json:"thresh_kill"`
	Timeframe     *string  `json:"timeframe"`
	AlertInterval *int     `json:"alert_interval"`
}

type CreateAlertRequest struct {
	Metric    string     `json:"metric"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp"`
}

type UpdateAdminRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	ThreshKill *bool   `json:"thresh_kill"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// WeatherRow mirrors one row of the weather_data table.
type WeatherRow struct {
	StationID       int       `json:"stationid"`
	Temperature     *float64  `json:"temperature"`
	PercentHumidity *float64  `json:"percent_humidity"`
	WindSpeed       *float64  `json:"wind_speed"`
	Rain15MinInches *float64  `json:"rain_15_min_inches"`
	SoilMoisture    *float64  `json:"soil_moisture"`
	LeafWetness     *float64  `json:"leaf_wetness"`
	TS              time.Time `json:"ts"`
}

// WatchdogRow mirrors one row of the watchdog_data table.
type WatchdogRow struct {
	Temp *float64  `json:"temp"`
	Hum  *float64  `json:"hum"`
	TS   time.Time `json:"ts"`
}

// RivercityRow mirrors one row of the rivercity_data table. ImpriMed
// devices share this table, keyed by device EUI.
type RivercityRow struct {
	RCTemp      *float64  `json:"rctemp"`
	Humidity    *float64  `json:"humidity"`
	DevEUI      string    `json:"deveui"`
	PublishedAt time.Time `json:"publishedat"`
}
