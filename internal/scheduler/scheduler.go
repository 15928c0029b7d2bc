package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FieldMonitorAPI/internal/config"
	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the periodic threshold check and the weekly recap job.
type Scheduler struct {
	cron    *cron.Cron
	checker *service.ThresholdChecker
	recap   service.IRecapService
	cfg     *config.AlertingConfig
	log     *logger.Logger
}

func New(checker *service.ThresholdChecker, recap service.IRecapService, cfg *config.AlertingConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		checker: checker,
		recap:   recap,
		cfg:     cfg,
		log:     log,
	}
}

// Start registers the jobs and launches the cron loop. An immediate check
// cycle runs on startup so a restart does not wait a full interval.
func (s *Scheduler) Start() error {
	checkSpec := fmt.Sprintf("@every %dm", s.cfg.CheckIntervalMinutes)
	if _, err := s.cron.AddFunc(checkSpec, s.runCheck); err != nil {
		return fmt.Errorf("failed to schedule threshold check: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.RecapSchedule, s.runRecap); err != nil {
		return fmt.Errorf("failed to schedule weekly recap: %w", err)
	}

	s.cron.Start()
	s.log.Info("Scheduler started: checks %s, recap %q", checkSpec, s.cfg.RecapSchedule)

	go s.runCheck()
	return nil
}

// Stop halts the cron loop and waits for running jobs to drain.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CycleTimeout)
	defer cancel()

	if err := s.checker.RunCycle(ctx); err != nil {
		if errors.Is(err, service.ErrCycleRunning) {
			s.log.Warn("Skipping scheduled check, previous cycle still running")
			return
		}
		s.log.Error("Threshold check cycle failed: %v", err)
	}
}

func (s *Scheduler) runRecap() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.recap.GenerateWeeklyRecap(ctx); err != nil {
		s.log.Error("Weekly recap job failed: %v", err)
	}
}
