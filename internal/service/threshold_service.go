package service

import (
	"context"
	"fmt"
	"time"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/repository"
)

// IThresholdService manages the append-only threshold log.
type IThresholdService interface {
	ListThresholds(ctx context.Context) ([]models.Threshold, error)
	ListLatestThresholds(ctx context.Context) ([]models.Threshold, error)
	CreateThreshold(ctx context.Context, req *models.CreateThresholdRequest) (*models.Threshold, error)
	DisableThreshold(ctx context.Context, id int, threshKill bool, timeframe string) (*models.Threshold, error)
	GetLastAlertTime(ctx context.Context, id int) (*time.Time, error)
	UpdateLastAlertTime(ctx context.Context, id int, ts time.Time) error
}

type ThresholdService struct {
	repo repository.IThresholdRepository
	log  *logger.Logger
}

func NewThresholdService(repo repository.IThresholdRepository, log *logger.Logger) *ThresholdService {
	return &ThresholdService{repo: repo, log: log}
}

func (s *ThresholdService) ListThresholds(ctx context.Context) ([]models.Threshold, error) {
	return s.repo.GetAll(ctx)
}

func (s *ThresholdService) ListLatestThresholds(ctx context.Context) ([]models.Threshold, error) {
	return s.repo.GetLatestPerMetric(ctx)
}

// CreateThreshold validates and inserts a new threshold version. Updates
// are expressed as inserts; the checker only reads the latest row per
// metric.
func (s *ThresholdService) CreateThreshold(ctx context.Context, req *models.CreateThresholdRequest) (*models.Threshold, error) {
	if _, ok := models.LookupMetric(req.Metric); !ok {
		return nil, fmt.Errorf("unrecognized metric %q", req.Metric)
	}

	if req.High == nil && req.Low == nil {
		return nil, fmt.Errorf("at least one of high or low must be set")
	}

	if req.High != nil && req.Low != nil && *req.High <= *req.Low {
		return nil, fmt.Errorf("high threshold must be greater than low threshold")
	}

	if req.Timeframe != nil {
		if _, err := models.ParseTimeframe(*req.Timeframe); err != nil {
			return nil, fmt.Errorf("invalid timeframe: %w", err)
		}
	}

	t := &models.Threshold{
		Metric:        req.Metric,
		High:          req.High,
		Low:           req.Low,
		Phone:         req.Phone,
		Email:         req.Email,
		Timestamp:     time.Now(),
		ThreshKill:    req.ThreshKill,
		Timeframe:     req.Timeframe,
		AlertInterval: req.AlertInterval,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info("Threshold created for %s (id %d)", t.Metric, t.ID)
	return t, nil
}

// DisableThreshold serves the deep link embedded in alert messages. It
// copies the referenced version into a new row with the requested pause
// state, preserving the append-only history.
func (s *ThresholdService) DisableThreshold(ctx context.Context, id int, threshKill bool, timeframe string) (*models.Threshold, error) {
	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("threshold %d not found", id)
	}

	var tf *string
	if timeframe != "" {
		if _, err := models.ParseTimeframe(timeframe); err != nil {
			return nil, fmt.Errorf("invalid timeframe: %w", err)
		}
		tf = &timeframe
	}

	next := &models.Threshold{
		Metric:        prev.Metric,
		High:          prev.High,
		Low:           prev.Low,
		Phone:         prev.Phone,
		Email:         prev.Email,
		Timestamp:     time.Now(),
		ThreshKill:    threshKill,
		Timeframe:     tf,
		AlertInterval: prev.AlertInterval,
	}

	if err := s.repo.Create(ctx, next); err != nil {
		return nil, err
	}

	s.log.Info("Threshold %d for %s updated via link: thresh_kill=%t timeframe=%q (new id %d)",
		id, prev.Metric, threshKill, timeframe, next.ID)
	return next, nil
}

func (s *ThresholdService) GetLastAlertTime(ctx context.Context, id int) (*time.Time, error) {
	return s.repo.GetLastAlertTime(ctx, id)
}

func (s *ThresholdService) UpdateLastAlertTime(ctx context.Context, id int, ts time.Time) error {
	return s.repo.UpdateLastAlertTime(ctx, id, ts)
}
