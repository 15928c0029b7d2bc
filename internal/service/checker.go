package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"FieldMonitorAPI/internal/config"
	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/notify"
	"FieldMonitorAPI/internal/repository"

	"github.com/google/uuid"
)

// ErrCycleRunning is returned when a check cycle is requested while one is
// already in flight. Cycles are serialized: the scheduler and the HTTP
// trigger share a single-flight guard.
var ErrCycleRunning = errors.New("threshold check cycle already running")

// ImpriMed device clocks report 300 minutes behind; corrected before
// stoppage detection.
const impriMedClockOffset = 300 * time.Minute

type breachKind int

const (
	breachHigh breachKind = iota
	breachLow
)

// ThresholdChecker runs one evaluation cycle over every configured
// threshold: suppression, latest-reading fetch, breach detection,
// notification dispatch and audit.
type ThresholdChecker struct {
	thresholds repository.IThresholdRepository
	admins     repository.IAdminRepository
	readings   repository.IReadingRepository
	charts     repository.IChartRepository
	alerts     IAlertService
	sms        notify.SMSSender
	email      notify.EmailSender
	policy     *SuppressionPolicy
	cfg        *config.AlertingConfig
	log        *logger.Logger

	debounce         *DebounceMap
	stoppageDebounce *DebounceMap
	loc              *time.Location
	running          atomic.Bool
	now              func() time.Time
}

func NewThresholdChecker(
	thresholds repository.IThresholdRepository,
	admins repository.IAdminRepository,
	readings repository.IReadingRepository,
	charts repository.IChartRepository,
	alerts IAlertService,
	sms notify.SMSSender,
	email notify.EmailSender,
	cfg *config.AlertingConfig,
	log *logger.Logger,
) *ThresholdChecker {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("Invalid alert timezone %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	return &ThresholdChecker{
		thresholds:       thresholds,
		admins:           admins,
		readings:         readings,
		charts:           charts,
		alerts:           alerts,
		sms:              sms,
		email:            email,
		policy:           NewSuppressionPolicy(cfg.DefaultAlertInterval, cfg.DebounceWindow, log),
		cfg:              cfg,
		log:              log,
		debounce:         NewDebounceMap(),
		stoppageDebounce: NewDebounceMap(),
		loc:              loc,
		now:              time.Now,
	}
}

// RunCycle evaluates every latest threshold version once. Per-threshold
// failures are logged and skipped; only failures to list admins or
// thresholds abort the cycle.
func (c *ThresholdChecker) RunCycle(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrCycleRunning
	}
	defer c.running.Store(false)

	runID := uuid.NewString()[:8]
	start := c.now()
	c.log.Info("[%s] Checking thresholds...", runID)

	admins, err := c.admins.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch admins: %w", err)
	}

	thresholds, err := c.thresholds.GetLatestPerMetric(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch thresholds: %w", err)
	}

	for i := range thresholds {
		c.checkThreshold(ctx, &thresholds[i], admins, runID)
	}

	c.log.Info("[%s] Threshold check complete: %d thresholds in %s",
		runID, len(thresholds), c.now().Sub(start).Round(time.Millisecond))
	return nil
}

func (c *ThresholdChecker) checkThreshold(ctx context.Context, t *models.Threshold, admins []models.Admin, runID string) {
	info, ok := models.LookupMetric(t.Metric)
	if !ok {
		c.log.Error("[%s] Invalid metric on threshold %d: %s", runID, t.ID, t.Metric)
		return
	}

	if c.policy.AdminKilled(t, admins) {
		c.log.Info("[%s] Skipping threshold check for %s due to admin-level thresh_kill", runID, t.Metric)
		return
	}

	now := c.now()

	switch decision, pauseEnd := c.policy.CheckPause(t, now); decision {
	case PauseActive:
		if pauseEnd.IsZero() {
			c.log.Info("[%s] Skipping threshold check for %s, paused indefinitely", runID, t.Metric)
		} else {
			c.log.Info("[%s] Skipping threshold check for %s, paused until %s", runID, t.Metric, c.formatDateTime(pauseEnd))
		}
		return
	case PauseExpired:
		c.log.Info("[%s] Threshold-level pause has expired for %s, resuming checks", runID, t.Metric)
		c.resumeThreshold(ctx, t, now, runID)
	}

	reading, err := c.readings.LatestReading(ctx, t.Metric)
	if err != nil {
		c.log.Error("[%s] Error fetching latest %s reading: %v", runID, t.Metric, err)
		return
	}
	if reading == nil || reading.Value == nil {
		c.log.Debug("[%s] No current value for %s, skipping", runID, t.Metric)
		return
	}

	if elapsed, silent := c.sensorSilent(info, reading, now); silent {
		c.log.Warn("[%s] %s sensor has not reported for %s", runID, t.Metric, elapsed.Round(time.Minute))
		if c.cfg.AlertSensorStoppage {
			c.dispatchStoppage(ctx, t, admins, elapsed, now, runID)
		}
	}

	lastAlert, err := c.thresholds.GetLastAlertTime(ctx, t.ID)
	if err != nil {
		c.log.Error("[%s] Error fetching last alert time for threshold %d: %v", runID, t.ID, err)
		lastAlert = t.TimeOfLastAlert
	}
	if c.policy.Throttled(t, lastAlert, now) {
		c.log.Info("[%s] Skipping alert for %s, within alert interval", runID, t.Metric)
		return
	}

	if c.debounce.Recent(t.ID, now, c.policy.DebounceWindow) {
		c.log.Info("[%s] Skipping alert for %s, recently alerted", runID, t.Metric)
		return
	}

	current := *reading.Value

	if t.High != nil && current > *t.High {
		c.log.Info("[%s] %s high threshold exceeded: current = %v, high = %v", runID, t.Metric, current, *t.High)
		c.dispatch(ctx, t, admins, breachHigh, current, *t.High, now, runID)
	}

	if t.Low != nil && current < *t.Low {
		c.log.Info("[%s] %s low threshold exceeded: current = %v, low = %v", runID, t.Metric, current, *t.Low)
		c.dispatch(ctx, t, admins, breachLow, current, *t.Low, now, runID)
	}
}

// resumeThreshold writes the pause-expiry rewrite: a new threshold version
// carrying the same bounds and recipients with the pause cleared. The
// original bounds still drive this cycle's evaluation.
func (c *ThresholdChecker) resumeThreshold(ctx context.Context, t *models.Threshold, now time.Time, runID string) {
	next := &models.Threshold{
		Metric:        t.Metric,
		High:          t.High,
		Low:           t.Low,
		Phone:         t.Phone,
		Email:         t.Email,
		Timestamp:     now,
		ThreshKill:    false,
		Timeframe:     nil,
		AlertInterval: t.AlertInterval,
	}

	if err := c.thresholds.Create(ctx, next); err != nil {
		c.log.Error("[%s] Error creating resumed threshold entry for %s: %v", runID, t.Metric, err)
		return
	}

	c.log.Info("[%s] New threshold entry created for %s with thresh_kill off and no timeframe", runID, t.Metric)
}

// sensorSilent reports how long the sensor feeding this metric has been
// quiet and whether it crossed the stoppage limit.
func (c *ThresholdChecker) sensorSilent(info models.MetricInfo, reading *models.Reading, now time.Time) (time.Duration, bool) {
	ts := reading.Timestamp
	if info.Family == models.FamilyImpriMed {
		ts = ts.Add(impriMedClockOffset)
	}

	elapsed := now.Sub(ts)
	return elapsed, elapsed > c.cfg.StoppageAfter
}

// dispatch sends one breach alert to every recipient and writes the audit
// trail. Recipient failures are logged individually; the audit write and
// the last-alert-time update proceed regardless.
func (c *ThresholdChecker) dispatch(ctx context.Context, t *models.Threshold, admins []models.Admin, kind breachKind, current, bound float64, now time.Time, runID string) {
	phones := t.Phones()
	emails := t.Emails()
	if len(phones) == 0 && len(emails) == 0 {
		return
	}

	location, err := c.charts.GetLocationByMetric(ctx, t.Metric)
	if err != nil {
		c.log.Error("[%s] Error getting location for %s: %v", runID, t.Metric, err)
	}

	message := c.buildAlertMessage(t.Metric, kind, current, bound, location, now)
	c.sendToRecipients(ctx, t, admins, message, runID)

	if err := c.alerts.RecordAlert(ctx, t.Metric, message, now); err != nil {
		c.log.Error("[%s] Error sending alert to database: %v", runID, err)
	}
	if err := c.thresholds.UpdateLastAlertTime(ctx, t.ID, now); err != nil {
		c.log.Error("[%s] Error updating last alert time for threshold %d: %v", runID, t.ID, err)
	}
	c.debounce.Mark(t.ID, now)
}

// dispatchStoppage notifies recipients that a sensor has gone silent. It
// shares recipients and links with breach alerts but keeps its own
// debounce and does not advance the interval throttle.
func (c *ThresholdChecker) dispatchStoppage(ctx context.Context, t *models.Threshold, admins []models.Admin, elapsed time.Duration, now time.Time, runID string) {
	if c.stoppageDebounce.Recent(t.ID, now, c.cfg.StoppageAfter) {
		return
	}

	message := fmt.Sprintf("Alert: The %s sensor has not reported a new reading in %s as of %s.",
		t.Metric, elapsed.Round(time.Minute), c.formatDateTime(now))
	c.sendToRecipients(ctx, t, admins, message, runID)

	if err := c.alerts.RecordAlert(ctx, t.Metric, message, now); err != nil {
		c.log.Error("[%s] Error sending stoppage alert to database: %v", runID, err)
	}
	c.stoppageDebounce.Mark(t.ID, now)
}

func (c *ThresholdChecker) sendToRecipients(ctx context.Context, t *models.Threshold, admins []models.Admin, message, runID string) {
	disableLink := c.thresholdDisableLink(t.ID)

	for _, phone := range t.Phones() {
		body := message + "\nDisable this threshold: " + disableLink
		if link := c.adminDisableLink(admins, "", phone); link != "" {
			body += "\nDisable all your alerts: " + link
		}
		if err := c.sms.SendSMS(ctx, phone, body); err != nil {
			c.log.Error("[%s] Error sending SMS to %s: %v", runID, phone, err)
		}
	}

	for _, email := range t.Emails() {
		body := message + "\nDisable this threshold: " + disableLink
		if link := c.adminDisableLink(admins, email, ""); link != "" {
			body += "\nDisable all your alerts: " + link
		}
		if err := c.email.SendEmail(ctx, email, "Threshold Alert", body); err != nil {
			c.log.Error("[%s] Error sending email to %s: %v", runID, email, err)
		}
	}
}

func (c *ThresholdChecker) buildAlertMessage(metric string, kind breachKind, current, bound float64, location string, now time.Time) string {
	var base string
	switch kind {
	case breachHigh:
		base = fmt.Sprintf("Alert: The %s value of %s exceeds the high threshold of %s",
			metric, models.FormatValue(metric, current), models.FormatValue(metric, bound))
	case breachLow:
		base = fmt.Sprintf("Alert: The %s value of %s is below the low threshold of %s",
			metric, models.FormatValue(metric, current), models.FormatValue(metric, bound))
	}

	message := fmt.Sprintf("%s at %s", base, c.formatDateTime(now))
	if location != "" {
		message += " for " + location
	}
	return message + "."
}

func (c *ThresholdChecker) formatDateTime(ts time.Time) string {
	return ts.In(c.loc).Format("January 2, 2006 3:04 PM")
}

// thresholdDisableLink builds the deep link that pauses one threshold
// indefinitely via the update_threshold endpoint.
func (c *ThresholdChecker) thresholdDisableLink(id int) string {
	q := url.Values{}
	q.Set("thresh_kill", "true")
	q.Set("timeframe", "99 days")
	return fmt.Sprintf("%s/api/v1/thresholds/update_threshold/%d?%s", c.baseURL(), id, q.Encode())
}

// adminDisableLink builds the admin-level disable link when the recipient
// is a registered admin.
func (c *ThresholdChecker) adminDisableLink(admins []models.Admin, email, phone string) string {
	for _, a := range admins {
		if (email != "" && a.Email == email) || (phone != "" && a.Phone == phone) {
			return fmt.Sprintf("%s/api/v1/admins/disable_alerts/%d", c.baseURL(), a.ID)
		}
	}
	return ""
}

func (c *ThresholdChecker) baseURL() string {
	return strings.TrimRight(c.cfg.PublicBaseURL, "/")
}
