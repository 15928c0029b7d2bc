package service

import (
	"context"
	"fmt"
	"time"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/repository"
	"FieldMonitorAPI/internal/websocket"
)

// IAlertService exposes the alert audit trail and the live feed.
type IAlertService interface {
	RecordAlert(ctx context.Context, metric, message string, ts time.Time) error
	GetAlerts(ctx context.Context, limit, offset int) ([]models.Alert, error)
	GetAlertsByMetric(ctx context.Context, metric string, limit int) ([]models.Alert, error)
	CreateAlert(ctx context.Context, req *models.CreateAlertRequest) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id int) error
}

type AlertService struct {
	repo repository.IAlertRepository
	hub  *websocket.Hub
	log  *logger.Logger
}

func NewAlertService(repo repository.IAlertRepository, hub *websocket.Hub, log *logger.Logger) *AlertService {
	return &AlertService{repo: repo, hub: hub, log: log}
}

// RecordAlert persists the audit row for a dispatched notification and
// pushes it to connected dashboard clients.
func (s *AlertService) RecordAlert(ctx context.Context, metric, message string, ts time.Time) error {
	alert := &models.Alert{Metric: metric, Message: message, Timestamp: ts}

	if err := s.repo.Create(ctx, alert); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.Broadcast("ALERT", alert)
	}

	return nil
}

func (s *AlertService) GetAlerts(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetAll(ctx, limit, offset)
}

func (s *AlertService) GetAlertsByMetric(ctx context.Context, metric string, limit int) ([]models.Alert, error) {
	if _, ok := models.LookupMetric(metric); !ok {
		return nil, fmt.Errorf("unrecognized metric %q", metric)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.GetByMetric(ctx, metric, limit)
}

// CreateAlert records a manually submitted alert row.
func (s *AlertService) CreateAlert(ctx context.Context, req *models.CreateAlertRequest) (*models.Alert, error) {
	if req.Metric == "" || req.Message == "" {
		return nil, fmt.Errorf("metric and message are required")
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	alert := &models.Alert{Metric: req.Metric, Message: req.Message, Timestamp: ts}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	return alert, nil
}

func (s *AlertService) DeleteAlert(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
