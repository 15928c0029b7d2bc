package service

import (
	"context"
	"fmt"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/repository"
)

// IAdminService manages admin contacts and the global kill switch.
type IAdminService interface {
	ListAdmins(ctx context.Context) ([]models.Admin, error)
	GetAdmin(ctx context.Context, id int) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, id int, req *models.UpdateAdminRequest) (*models.Admin, error)
	DisableAlerts(ctx context.Context, id int) error
}

type AdminService struct {
	repo repository.IAdminRepository
	log  *logger.Logger
}

func NewAdminService(repo repository.IAdminRepository, log *logger.Logger) *AdminService {
	return &AdminService{repo: repo, log: log}
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	return s.repo.GetAll(ctx)
}

func (s *AdminService) GetAdmin(ctx context.Context, id int) (*models.Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, fmt.Errorf("admin %d not found", id)
	}
	return admin, nil
}

func (s *AdminService) UpdateAdmin(ctx context.Context, id int, req *models.UpdateAdminRequest) (*models.Admin, error) {
	return s.repo.Update(ctx, id, req)
}

// DisableAlerts flips the admin-level kill switch on, silencing every
// threshold that lists the admin as a recipient. Target of the
// "disable all your alerts" deep link.
func (s *AdminService) DisableAlerts(ctx context.Context, id int) error {
	if err := s.repo.SetThreshKill(ctx, id, true); err != nil {
		return err
	}

	s.log.Info("All alerts disabled for admin %d", id)
	return nil
}
