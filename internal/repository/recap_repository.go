package repository

import (
	"context"
	"database/sql"
	"fmt"

	"FieldMonitorAPI/internal/models"
)

// IRecapRepository persists weekly recap rows and lists the customers the
// recap job iterates over.
type IRecapRepository interface {
	GetCustomers(ctx context.Context) ([]models.Customer, error)
	Create(ctx context.Context, recap *models.WeeklyRecap) error
	GetByUserEmail(ctx context.Context, email string, limit int) ([]models.WeeklyRecap, error)
}

type RecapRepository struct {
	db *sql.DB
}

func NewRecapRepository(db *sql.DB) *RecapRepository {
	return &RecapRepository{db: db}
}

func (r *RecapRepository) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	query := `SELECT id, email, metrics FROM customers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.Metrics); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *RecapRepository) Create(ctx context.Context, recap *models.WeeklyRecap) error {
	query := `
		INSERT INTO weekly_recap (user_email, metric, week_start_date, high, low, avg, alert_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		recap.UserEmail,
		recap.Metric,
		recap.WeekStartDate,
		recap.High,
		recap.Low,
		recap.Avg,
		recap.AlertCount,
	).Scan(&recap.ID)

	if err != nil {
		return fmt.Errorf("failed to create weekly recap for %s/%s: %w", recap.UserEmail, recap.Metric, err)
	}

	return nil
}

func (r *RecapRepository) GetByUserEmail(ctx context.Context, email string, limit int) ([]models.WeeklyRecap, error) {
	query := `
		SELECT id, user_email, metric, week_start_date, high, low, avg, alert_count
		FROM weekly_recap
		WHERE user_email = $1
		ORDER BY week_start_date DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly recaps for %s: %w", email, err)
	}
	defer rows.Close()

	var recaps []models.WeeklyRecap
	for rows.Next() {
		var rec models.WeeklyRecap
		var high, low, avg sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.UserEmail, &rec.Metric, &rec.WeekStartDate, &high, &low, &avg, &rec.AlertCount); err != nil {
			return nil, err
		}
		rec.High = nullFloat(high)
		rec.Low = nullFloat(low)
		rec.Avg = nullFloat(avg)
		recaps = append(recaps, rec)
	}
	return recaps, rows.Err()
}
