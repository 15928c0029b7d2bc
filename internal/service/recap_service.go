package service

import (
	"context"
	"time"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/repository"
)

// IRecapService computes and persists weekly per-customer metric summaries.
type IRecapService interface {
	GenerateWeeklyRecap(ctx context.Context) error
}

type RecapService struct {
	recaps   repository.IRecapRepository
	readings repository.IReadingRepository
	alerts   repository.IAlertRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewRecapService(recaps repository.IRecapRepository, readings repository.IReadingRepository, alerts repository.IAlertRepository, log *logger.Logger) *RecapService {
	return &RecapService{
		recaps:   recaps,
		readings: readings,
		alerts:   alerts,
		log:      log,
		now:      time.Now,
	}
}

// GenerateWeeklyRecap writes one recap row per customer and assigned
// metric, covering the seven days before the run. Metrics without a weekly
// read path (rivercity and ImpriMed families) are skipped.
func (s *RecapService) GenerateWeeklyRecap(ctx context.Context) error {
	customers, err := s.recaps.GetCustomers(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	weekStart := now.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	s.log.Info("Generating weekly recap for %d customers, week starting %s",
		len(customers), weekStart.Format("2006-01-02"))

	for _, customer := range customers {
		for _, metric := range customer.MetricList() {
			info, ok := models.LookupMetric(metric)
			if !ok {
				s.log.Warn("Skipping unrecognized metric %q for %s", metric, customer.Email)
				continue
			}
			if info.Family != models.FamilyWeather && info.Family != models.FamilyWatchdog {
				continue
			}

			stats, err := s.readings.WeeklyStats(ctx, metric, weekStart)
			if err != nil {
				s.log.Error("Error computing weekly stats for %s/%s: %v", customer.Email, metric, err)
				continue
			}

			alertCount, err := s.alerts.CountSince(ctx, metric, weekStart)
			if err != nil {
				s.log.Error("Error counting alerts for %s/%s: %v", customer.Email, metric, err)
				continue
			}

			recap := &models.WeeklyRecap{
				UserEmail:     customer.Email,
				Metric:        metric,
				WeekStartDate: weekStart,
				High:          stats.High,
				Low:           stats.Low,
				Avg:           stats.Avg,
				AlertCount:    alertCount,
			}

			if err := s.recaps.Create(ctx, recap); err != nil {
				s.log.Error("Error saving weekly recap for %s/%s: %v", customer.Email, metric, err)
			}
		}
	}

	s.log.Info("Weekly recap generation complete")
	return nil
}
