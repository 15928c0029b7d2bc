package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FieldMonitorAPI/internal/models"
)

// IAlertRepository manages the immutable alert audit trail.
type IAlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetAll(ctx context.Context, limit, offset int) ([]models.Alert, error)
	GetByMetric(ctx context.Context, metric string, limit int) ([]models.Alert, error)
	Delete(ctx context.Context, id int) error
	CountSince(ctx context.Context, metric string, since time.Time) (int, error)
}

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert record and returns the generated ID.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (metric, message, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	err := r.db.QueryRowContext(ctx, query, alert.Metric, alert.Message, alert.Timestamp).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// GetAll returns a paginated list of alerts, newest first.
func (r *AlertRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	query := `
		SELECT id, metric, message, timestamp
		FROM alerts
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetByMetric returns recent alerts for one metric.
func (r *AlertRepository) GetByMetric(ctx context.Context, metric string, limit int) ([]models.Alert, error) {
	query := `
		SELECT id, metric, message, timestamp
		FROM alerts
		WHERE metric = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, metric, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for %s: %w", metric, err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// Delete removes an alert record. Only explicit user action reaches this.
func (r *AlertRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM alerts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert %d: %w", id, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %d not found", id)
	}

	return nil
}

// CountSince counts alerts for a metric after the given instant, used by
// the weekly recap.
func (r *AlertRepository) CountSince(ctx context.Context, metric string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM alerts WHERE metric = $1 AND timestamp >= $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, metric, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts for %s: %w", metric, err)
	}

	return count, nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Metric, &a.Message, &a.Timestamp); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
