package service

import (
	"context"
	"fmt"

	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/repository"
)

// IDataService is the dashboard read path over the sensor tables.
type IDataService interface {
	RecentWeather(ctx context.Context, limit int) ([]models.WeatherRow, error)
	RecentWatchdog(ctx context.Context, limit int) ([]models.WatchdogRow, error)
	RecentRivercity(ctx context.Context, limit int) ([]models.RivercityRow, error)
	RecentImpriMed(ctx context.Context, devEUI string, limit int) ([]models.RivercityRow, error)
	ListCharts(ctx context.Context) ([]models.Chart, error)
	RecapsForUser(ctx context.Context, email string, limit int) ([]models.WeeklyRecap, error)
}

type DataService struct {
	readings repository.IReadingRepository
	charts   repository.IChartRepository
	recaps   repository.IRecapRepository
}

func NewDataService(readings repository.IReadingRepository, charts repository.IChartRepository, recaps repository.IRecapRepository) *DataService {
	return &DataService{readings: readings, charts: charts, recaps: recaps}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func (s *DataService) RecentWeather(ctx context.Context, limit int) ([]models.WeatherRow, error) {
	return s.readings.RecentWeather(ctx, clampLimit(limit))
}

func (s *DataService) RecentWatchdog(ctx context.Context, limit int) ([]models.WatchdogRow, error) {
	return s.readings.RecentWatchdog(ctx, clampLimit(limit))
}

func (s *DataService) RecentRivercity(ctx context.Context, limit int) ([]models.RivercityRow, error) {
	return s.readings.RecentRivercity(ctx, clampLimit(limit))
}

func (s *DataService) RecentImpriMed(ctx context.Context, devEUI string, limit int) ([]models.RivercityRow, error) {
	if devEUI == "" {
		return nil, fmt.Errorf("deveui is required")
	}
	return s.readings.RecentImpriMed(ctx, devEUI, clampLimit(limit))
}

func (s *DataService) ListCharts(ctx context.Context) ([]models.Chart, error) {
	return s.charts.GetAll(ctx)
}

func (s *DataService) RecapsForUser(ctx context.Context, email string, limit int) ([]models.WeeklyRecap, error) {
	if email == "" {
		return nil, fmt.Errorf("user_email is required")
	}
	return s.recaps.GetByUserEmail(ctx, email, clampLimit(limit))
}
