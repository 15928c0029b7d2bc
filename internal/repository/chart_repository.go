package repository

import (
	"context"
	"database/sql"
	"fmt"

	"FieldMonitorAPI/internal/models"
)

// IChartRepository resolves metrics to human-readable sensor locations.
type IChartRepository interface {
	GetAll(ctx context.Context) ([]models.Chart, error)
	GetLocationByMetric(ctx context.Context, metric string) (string, error)
}

type ChartRepository struct {
	db *sql.DB
}

func NewChartRepository(db *sql.DB) *ChartRepository {
	return &ChartRepository{db: db}
}

func (r *ChartRepository) GetAll(ctx context.Context) ([]models.Chart, error) {
	query := `SELECT id, metric, location FROM charts ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query charts: %w", err)
	}
	defer rows.Close()

	var charts []models.Chart
	for rows.Next() {
		var c models.Chart
		if err := rows.Scan(&c.ID, &c.Metric, &c.Location); err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

// GetLocationByMetric returns the configured location for a metric, or an
// empty string when none is configured.
func (r *ChartRepository) GetLocationByMetric(ctx context.Context, metric string) (string, error) {
	query := `SELECT location FROM charts WHERE metric = $1 LIMIT 1`

	var location string
	err := r.db.QueryRowContext(ctx, query, metric).Scan(&location)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get location for %s: %w", metric, err)
	}

	return location, nil
}
