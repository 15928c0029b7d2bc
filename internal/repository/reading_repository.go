package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FieldMonitorAPI/internal/models"
)

// IReadingRepository is the read path to the heterogeneous sensor tables.
// Metric names are resolved through the metric registry, so the column
// interpolation below only ever sees registered names.
type IReadingRepository interface {
	LatestReading(ctx context.Context, metric string) (*models.Reading, error)
	RecentWeather(ctx context.Context, limit int) ([]models.WeatherRow, error)
	RecentWatchdog(ctx context.Context, limit int) ([]models.WatchdogRow, error)
	RecentRivercity(ctx context.Context, limit int) ([]models.RivercityRow, error)
	RecentImpriMed(ctx context.Context, devEUI string, limit int) ([]models.RivercityRow, error)
	WeeklyStats(ctx context.Context, metric string, since time.Time) (*models.MetricStats, error)
}

type ReadingRepository struct {
	db        *sql.DB
	stationID int
}

func NewReadingRepository(db *sql.DB, stationID int) *ReadingRepository {
	return &ReadingRepository{db: db, stationID: stationID}
}

// LatestReading fetches the single most recent value for a metric from
// whichever table its family lives in. ImpriMed metrics read the shared
// rivercity table filtered by device EUI, with the generic column renamed
// to the metric key so callers see a uniform shape.
func (r *ReadingRepository) LatestReading(ctx context.Context, metric string) (*models.Reading, error) {
	info, ok := models.LookupMetric(metric)
	if !ok {
		return nil, fmt.Errorf("unrecognized metric %q", metric)
	}

	switch info.Family {
	case models.FamilyWeather:
		return r.latestColumn(ctx, metric,
			fmt.Sprintf(`SELECT %s, ts FROM weather_data WHERE stationid = $1 ORDER BY ts DESC LIMIT 1`, metric),
			r.stationID)

	case models.FamilyWatchdog:
		return r.latestColumn(ctx, metric,
			fmt.Sprintf(`SELECT %s, ts FROM watchdog_data ORDER BY ts DESC LIMIT 1`, metric))

	case models.FamilyRivercity:
		return r.latestColumn(ctx, metric,
			fmt.Sprintf(`SELECT %s, publishedat FROM rivercity_data ORDER BY publishedat DESC LIMIT 1`, metric))

	case models.FamilyImpriMed:
		return r.latestImpriMed(ctx, metric, info.DevEUI)

	default:
		return nil, fmt.Errorf("metric %q has no read path", metric)
	}
}

func (r *ReadingRepository) latestColumn(ctx context.Context, metric, query string, args ...interface{}) (*models.Reading, error) {
	var value sql.NullFloat64
	var ts time.Time

	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest %s reading: %w", metric, err)
	}

	reading := &models.Reading{Metric: metric, Timestamp: ts}
	if value.Valid {
		reading.Value = &value.Float64
	}
	return reading, nil
}

func (r *ReadingRepository) latestImpriMed(ctx context.Context, metric, devEUI string) (*models.Reading, error) {
	query := `
		SELECT rctemp, humidity, publishedat
		FROM rivercity_data
		WHERE deveui = $1
		ORDER BY publishedat DESC
		LIMIT 1
	`

	var rctemp, humidity sql.NullFloat64
	var ts time.Time

	err := r.db.QueryRowContext(ctx, query, devEUI).Scan(&rctemp, &humidity, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest %s reading: %w", metric, err)
	}

	// Rename the generic column to the metric-specific key.
	value := humidity
	if models.IsTempMetric(metric) {
		value = rctemp
	}

	reading := &models.Reading{Metric: metric, Timestamp: ts}
	if value.Valid {
		reading.Value = &value.Float64
	}
	return reading, nil
}

func (r *ReadingRepository) RecentWeather(ctx context.Context, limit int) ([]models.WeatherRow, error) {
	query := `
		SELECT stationid, temperature, percent_humidity, wind_speed, rain_15_min_inches, soil_moisture, leaf_wetness, ts
		FROM weather_data
		WHERE stationid = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, r.stationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather data: %w", err)
	}
	defer rows.Close()

	var out []models.WeatherRow
	for rows.Next() {
		var w models.WeatherRow
		var temp, hum, wind, rain, soil, leaf sql.NullFloat64
		if err := rows.Scan(&w.StationID, &temp, &hum, &wind, &rain, &soil, &leaf, &w.TS); err != nil {
			return nil, err
		}
		w.Temperature = nullFloat(temp)
		w.PercentHumidity = nullFloat(hum)
		w.WindSpeed = nullFloat(wind)
		w.Rain15MinInches = nullFloat(rain)
		w.SoilMoisture = nullFloat(soil)
		w.LeafWetness = nullFloat(leaf)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *ReadingRepository) RecentWatchdog(ctx context.Context, limit int) ([]models.WatchdogRow, error) {
	query := `
		SELECT temp, hum, ts
		FROM watchdog_data
		ORDER BY ts DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchdog data: %w", err)
	}
	defer rows.Close()

	var out []models.WatchdogRow
	for rows.Next() {
		var w models.WatchdogRow
		var temp, hum sql.NullFloat64
		if err := rows.Scan(&temp, &hum, &w.TS); err != nil {
			return nil, err
		}
		w.Temp = nullFloat(temp)
		w.Hum = nullFloat(hum)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *ReadingRepository) RecentRivercity(ctx context.Context, limit int) ([]models.RivercityRow, error) {
	query := `
		SELECT rctemp, humidity, deveui, publishedat
		FROM rivercity_data
		ORDER BY publishedat DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rivercity data: %w", err)
	}
	defer rows.Close()

	return scanRivercityRows(rows)
}

func (r *ReadingRepository) RecentImpriMed(ctx context.Context, devEUI string, limit int) ([]models.RivercityRow, error) {
	query := `
		SELECT rctemp, humidity, deveui, publishedat
		FROM rivercity_data
		WHERE deveui = $1
		ORDER BY publishedat DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, devEUI, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ImpriMed data for %s: %w", devEUI, err)
	}
	defer rows.Close()

	return scanRivercityRows(rows)
}

// WeeklyStats computes high/low/avg for a weather or watchdog metric over
// the recap window. Other families are not part of the weekly recap.
func (r *ReadingRepository) WeeklyStats(ctx context.Context, metric string, since time.Time) (*models.MetricStats, error) {
	info, ok := models.LookupMetric(metric)
	if !ok {
		return nil, fmt.Errorf("unrecognized metric %q", metric)
	}

	var query string
	var args []interface{}

	switch info.Family {
	case models.FamilyWeather:
		query = fmt.Sprintf(`SELECT MAX(%s), MIN(%s), AVG(%s) FROM weather_data WHERE stationid = $1 AND ts >= $2`, metric, metric, metric)
		args = []interface{}{r.stationID, since}
	case models.FamilyWatchdog:
		query = fmt.Sprintf(`SELECT MAX(%s), MIN(%s), AVG(%s) FROM watchdog_data WHERE ts >= $1`, metric, metric, metric)
		args = []interface{}{since}
	default:
		return nil, fmt.Errorf("metric %q is not part of the weekly recap", metric)
	}

	var high, low, avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&high, &low, &avg); err != nil {
		return nil, fmt.Errorf("failed to compute weekly stats for %s: %w", metric, err)
	}

	return &models.MetricStats{
		High: nullFloat(high),
		Low:  nullFloat(low),
		Avg:  nullFloat(avg),
	}, nil
}

func scanRivercityRows(rows *sql.Rows) ([]models.RivercityRow, error) {
	var out []models.RivercityRow
	for rows.Next() {
		var row models.RivercityRow
		var rctemp, humidity sql.NullFloat64
		if err := rows.Scan(&rctemp, &humidity, &row.DevEUI, &row.PublishedAt); err != nil {
			return nil, err
		}
		row.RCTemp = nullFloat(rctemp)
		row.Humidity = nullFloat(humidity)
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
