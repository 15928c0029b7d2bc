package repository

import (
	"context"
	"database/sql"
	"fmt"

	"FieldMonitorAPI/internal/models"
)

// IAdminRepository reads and updates admin contact records. Admins are
// created out of band; the service only lists and flips their kill switch.
type IAdminRepository interface {
	GetAll(ctx context.Context) ([]models.Admin, error)
	GetByID(ctx context.Context, id int) (*models.Admin, error)
	Update(ctx context.Context, id int, req *models.UpdateAdminRequest) (*models.Admin, error)
	SetThreshKill(ctx context.Context, id int, kill bool) error
}

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetAll(ctx context.Context) ([]models.Admin, error) {
	query := `
		SELECT id, name, email, phone, thresh_kill
		FROM admins
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ThreshKill); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *AdminRepository) GetByID(ctx context.Context, id int) (*models.Admin, error) {
	query := `SELECT id, name, email, phone, thresh_kill FROM admins WHERE id = $1`

	a := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ThreshKill)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin %d: %w", id, err)
	}

	return a, nil
}

// Update applies the non-nil fields of the request and returns the updated row.
func (r *AdminRepository) Update(ctx context.Context, id int, req *models.UpdateAdminRequest) (*models.Admin, error) {
	query := `
		UPDATE admins SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			phone = COALESCE($3, phone),
			thresh_kill = COALESCE($4, thresh_kill)
		WHERE id = $5
		RETURNING id, name, email, phone, thresh_kill
	`

	a := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Email, req.Phone, req.ThreshKill, id).
		Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ThreshKill)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("admin %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update admin %d: %w", id, err)
	}

	return a, nil
}

// SetThreshKill flips the admin-level kill switch. This is the target of
// the "disable all my alerts" deep link.
func (r *AdminRepository) SetThreshKill(ctx context.Context, id int, kill bool) error {
	query := `UPDATE admins SET thresh_kill = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, kill, id)
	if err != nil {
		return fmt.Errorf("failed to set thresh_kill for admin %d: %w", id, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("admin %d not found", id)
	}

	return nil
}
