package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FieldMonitorAPI/internal/models"
)

// IThresholdRepository manages the append-only threshold version log.
type IThresholdRepository interface {
	GetAll(ctx context.Context) ([]models.Threshold, error)
	GetLatestPerMetric(ctx context.Context) ([]models.Threshold, error)
	GetByID(ctx context.Context, id int) (*models.Threshold, error)
	Create(ctx context.Context, t *models.Threshold) error
	GetLastAlertTime(ctx context.Context, id int) (*time.Time, error)
	UpdateLastAlertTime(ctx context.Context, id int, ts time.Time) error
}

type ThresholdRepository struct {
	db *sql.DB
}

func NewThresholdRepository(db *sql.DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

const thresholdColumns = `id, metric, high, low, phone, email, timestamp, thresh_kill, timeframe, alert_interval, time_of_last_alert`

// GetAll returns every threshold version, newest first.
func (r *ThresholdRepository) GetAll(ctx context.Context) ([]models.Threshold, error) {
	query := `
		SELECT ` + thresholdColumns + `
		FROM thresholds
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query thresholds: %w", err)
	}
	defer rows.Close()

	return scanThresholds(rows)
}

// GetLatestPerMetric returns only the authoritative (most recent) version
// for each metric.
func (r *ThresholdRepository) GetLatestPerMetric(ctx context.Context) ([]models.Threshold, error) {
	query := `
		SELECT DISTINCT ON (metric) ` + thresholdColumns + `
		FROM thresholds
		ORDER BY metric, timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest thresholds: %w", err)
	}
	defer rows.Close()

	return scanThresholds(rows)
}

// GetByID retrieves a single threshold version.
func (r *ThresholdRepository) GetByID(ctx context.Context, id int) (*models.Threshold, error) {
	query := `
		SELECT ` + thresholdColumns + `
		FROM thresholds
		WHERE id = $1
	`

	t := &models.Threshold{}
	var high, low sql.NullFloat64
	var timeframe sql.NullString
	var interval sql.NullInt64
	var lastAlert sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Metric, &high, &low, &t.Phone, &t.Email,
		&t.Timestamp, &t.ThreshKill, &timeframe, &interval, &lastAlert,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get threshold %d: %w", id, err)
	}

	applyThresholdNulls(t, high, low, timeframe, interval, lastAlert)
	return t, nil
}

// Create inserts a new threshold version and fills in the generated ID.
func (r *ThresholdRepository) Create(ctx context.Context, t *models.Threshold) error {
	query := `
		INSERT INTO thresholds (metric, high, low, phone, email, timestamp, thresh_kill, timeframe, alert_interval)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	err := r.db.QueryRowContext(
		ctx, query,
		t.Metric,
		t.High,
		t.Low,
		t.Phone,
		t.Email,
		t.Timestamp,
		t.ThreshKill,
		t.Timeframe,
		t.AlertInterval,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create threshold for %s: %w", t.Metric, err)
	}

	return nil
}

// GetLastAlertTime fetches time_of_last_alert for a threshold id.
func (r *ThresholdRepository) GetLastAlertTime(ctx context.Context, id int) (*time.Time, error) {
	query := `SELECT time_of_last_alert FROM thresholds WHERE id = $1`

	var ts sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("threshold %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last alert time for threshold %d: %w", id, err)
	}

	if !ts.Valid {
		return nil, nil
	}
	return &ts.Time, nil
}

// UpdateLastAlertTime advances the interval throttle for a threshold id.
func (r *ThresholdRepository) UpdateLastAlertTime(ctx context.Context, id int, ts time.Time) error {
	query := `UPDATE thresholds SET time_of_last_alert = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to update last alert time for threshold %d: %w", id, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("threshold %d not found", id)
	}

	return nil
}

func scanThresholds(rows *sql.Rows) ([]models.Threshold, error) {
	var thresholds []models.Threshold
	for rows.Next() {
		var t models.Threshold
		var high, low sql.NullFloat64
		var timeframe sql.NullString
		var interval sql.NullInt64
		var lastAlert sql.NullTime

		err := rows.Scan(
			&t.ID, &t.Metric, &high, &low, &t.Phone, &t.Email,
			&t.Timestamp, &t.ThreshKill, &timeframe, &interval, &lastAlert,
		)
		if err != nil {
			return nil, err
		}

		applyThresholdNulls(&t, high, low, timeframe, interval, lastAlert)
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}

func applyThresholdNulls(t *models.Threshold, high, low sql.NullFloat64, timeframe sql.NullString, interval sql.NullInt64, lastAlert sql.NullTime) {
	if high.Valid {
		t.High = &high.Float64
	}
	if low.Valid {
		t.Low = &low.Float64
	}
	if timeframe.Valid {
		t.Timeframe = &timeframe.String
	}
	if interval.Valid {
		v := int(interval.Int64)
		t.AlertInterval = &v
	}
	if lastAlert.Valid {
		t.TimeOfLastAlert = &lastAlert.Time
	}
}
