package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"FieldMonitorAPI/internal/config"
	"FieldMonitorAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeThresholdRepo struct {
	latest    []models.Threshold
	byID      map[int]*models.Threshold
	created   []*models.Threshold
	lastAlert map[int]*time.Time
	updated   map[int]time.Time
	listErr   error
}

func newFakeThresholdRepo(latest ...models.Threshold) *fakeThresholdRepo {
	r := &fakeThresholdRepo{
		latest:    latest,
		byID:      make(map[int]*models.Threshold),
		lastAlert: make(map[int]*time.Time),
		updated:   make(map[int]time.Time),
	}
	for i := range latest {
		r.byID[latest[i].ID] = &latest[i]
	}
	return r
}

func (r *fakeThresholdRepo) GetAll(ctx context.Context) ([]models.Threshold, error) {
	return r.latest, nil
}

func (r *fakeThresholdRepo) GetLatestPerMetric(ctx context.Context) ([]models.Threshold, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.latest, nil
}

func (r *fakeThresholdRepo) GetByID(ctx context.Context, id int) (*models.Threshold, error) {
	return r.byID[id], nil
}

func (r *fakeThresholdRepo) Create(ctx context.Context, t *models.Threshold) error {
	t.ID = 1000 + len(r.created)
	r.created = append(r.created, t)
	return nil
}

func (r *fakeThresholdRepo) GetLastAlertTime(ctx context.Context, id int) (*time.Time, error) {
	return r.lastAlert[id], nil
}

func (r *fakeThresholdRepo) UpdateLastAlertTime(ctx context.Context, id int, ts time.Time) error {
	r.updated[id] = ts
	r.lastAlert[id] = &ts
	return nil
}

type fakeAdminRepo struct {
	admins []models.Admin
}

func (r *fakeAdminRepo) GetAll(ctx context.Context) ([]models.Admin, error) {
	return r.admins, nil
}

func (r *fakeAdminRepo) GetByID(ctx context.Context, id int) (*models.Admin, error) {
	return nil, nil
}

func (r *fakeAdminRepo) Update(ctx context.Context, id int, req *models.UpdateAdminRequest) (*models.Admin, error) {
	return nil, nil
}

func (r *fakeAdminRepo) SetThreshKill(ctx context.Context, id int, kill bool) error {
	return nil
}

type fakeReadingRepo struct {
	readings map[string]*models.Reading
	errs     map[string]error
	stats    map[string]*models.MetricStats
}

func (r *fakeReadingRepo) LatestReading(ctx context.Context, metric string) (*models.Reading, error) {
	if err := r.errs[metric]; err != nil {
		return nil, err
	}
	return r.readings[metric], nil
}

func (r *fakeReadingRepo) RecentWeather(ctx context.Context, limit int) ([]models.WeatherRow, error) {
	return nil, nil
}

func (r *fakeReadingRepo) RecentWatchdog(ctx context.Context, limit int) ([]models.WatchdogRow, error) {
	return nil, nil
}

func (r *fakeReadingRepo) RecentRivercity(ctx context.Context, limit int) ([]models.RivercityRow, error) {
	return nil, nil
}

func (r *fakeReadingRepo) RecentImpriMed(ctx context.Context, devEUI string, limit int) ([]models.RivercityRow, error) {
	return nil, nil
}

func (r *fakeReadingRepo) WeeklyStats(ctx context.Context, metric string, since time.Time) (*models.MetricStats, error) {
	if s, ok := r.stats[metric]; ok {
		return s, nil
	}
	return &models.MetricStats{}, nil
}

type fakeChartRepo struct {
	locations map[string]string
}

func (r *fakeChartRepo) GetAll(ctx context.Context) ([]models.Chart, error) {
	return nil, nil
}

func (r *fakeChartRepo) GetLocationByMetric(ctx context.Context, metric string) (string, error) {
	return r.locations[metric], nil
}

type recordedAlert struct {
	metric  string
	message string
}

type fakeAlertService struct {
	recorded []recordedAlert
}

func (s *fakeAlertService) RecordAlert(ctx context.Context, metric, message string, ts time.Time) error {
	s.recorded = append(s.recorded, recordedAlert{metric: metric, message: message})
	return nil
}

func (s *fakeAlertService) GetAlerts(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	return nil, nil
}

func (s *fakeAlertService) GetAlertsByMetric(ctx context.Context, metric string, limit int) ([]models.Alert, error) {
	return nil, nil
}

func (s *fakeAlertService) CreateAlert(ctx context.Context, req *models.CreateAlertRequest) (*models.Alert, error) {
	return nil, nil
}

func (s *fakeAlertService) DeleteAlert(ctx context.Context, id int) error {
	return nil
}

type sentSMS struct {
	to   string
	body string
}

type fakeSMSSender struct {
	sent []sentSMS
	err  error
}

func (s *fakeSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.sent = append(s.sent, sentSMS{to: to, body: body})
	return s.err
}

type sentEmail struct {
	to      string
	subject string
	message string
}

type fakeEmailSender struct {
	sent []sentEmail
	err  error
}

func (s *fakeEmailSender) SendEmail(ctx context.Context, to, subject, message string) error {
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, message: message})
	return s.err
}

// --- harness ---

type checkerFixture struct {
	checker    *ThresholdChecker
	thresholds *fakeThresholdRepo
	admins     *fakeAdminRepo
	readings   *fakeReadingRepo
	charts     *fakeChartRepo
	alerts     *fakeAlertService
	sms        *fakeSMSSender
	email      *fakeEmailSender
	now        time.Time
}

// fixedNow is 5:00 PM UTC, which is noon in America/Chicago during DST.
var fixedNow = time.Date(2026, 7, 15, 17, 0, 0, 0, time.UTC)

func newCheckerFixture(t *testing.T, thresholds ...models.Threshold) *checkerFixture {
	t.Helper()

	f := &checkerFixture{
		thresholds: newFakeThresholdRepo(thresholds...),
		admins:     &fakeAdminRepo{},
		readings:   &fakeReadingRepo{readings: make(map[string]*models.Reading), errs: make(map[string]error)},
		charts:     &fakeChartRepo{locations: make(map[string]string)},
		alerts:     &fakeAlertService{},
		sms:        &fakeSMSSender{},
		email:      &fakeEmailSender{},
		now:        fixedNow,
	}

	cfg := &config.AlertingConfig{
		PublicBaseURL:        "http://alerts.example.com",
		CheckIntervalMinutes: 10,
		CycleTimeout:         4 * time.Minute,
		DefaultAlertInterval: 10 * time.Minute,
		DebounceWindow:       5 * time.Minute,
		StoppageAfter:        30 * time.Minute,
		Timezone:             "America/Chicago",
	}

	f.checker = NewThresholdChecker(
		f.thresholds, f.admins, f.readings, f.charts,
		f.alerts, f.sms, f.email,
		cfg, testLogger(t),
	)
	f.checker.now = func() time.Time { return f.now }

	return f
}

func (f *checkerFixture) setReading(metric string, value float64, age time.Duration) {
	f.readings.readings[metric] = &models.Reading{
		Metric:    metric,
		Value:     &value,
		Timestamp: f.now.Add(-age),
	}
}

// --- tests ---

func TestRunCycleHighBreach(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
		Email:  "grower@example.com",
	})
	f.setReading("temperature", 95, time.Minute)
	f.charts.locations["temperature"] = "West Field"

	require.NoError(t, f.checker.RunCycle(context.Background()))

	want := "Alert: The temperature value of 95°F exceeds the high threshold of 90°F at July 15, 2026 12:00 PM for West Field."

	require.Len(t, f.alerts.recorded, 1)
	assert.Equal(t, "temperature", f.alerts.recorded[0].metric)
	assert.Equal(t, want, f.alerts.recorded[0].message)

	require.Len(t, f.sms.sent, 1)
	assert.Equal(t, "+15550001111", f.sms.sent[0].to)
	assert.Contains(t, f.sms.sent[0].body, want)
	assert.Contains(t, f.sms.sent[0].body,
		"http://alerts.example.com/api/v1/thresholds/update_threshold/1?thresh_kill=true&timeframe=99+days")

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "grower@example.com", f.email.sent[0].to)
	assert.Equal(t, "Threshold Alert", f.email.sent[0].subject)

	assert.Contains(t, f.thresholds.updated, 1)
	assert.Equal(t, fixedNow, f.thresholds.updated[1])
}

func TestRunCycleLowBreach(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     2,
		Metric: "imFreezerOneTemp",
		Low:    floatPtr(-15),
		Email:  "lab@example.com",
	})
	f.setReading("imFreezerOneTemp", -20, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.alerts.recorded, 1)
	assert.Equal(t,
		"Alert: The imFreezerOneTemp value of -20°C is below the low threshold of -15°C at July 15, 2026 12:00 PM.",
		f.alerts.recorded[0].message)
	assert.Empty(t, f.sms.sent)
	require.Len(t, f.email.sent, 1)
}

func TestRunCycleNoBreach(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Low:    floatPtr(30),
		Phone:  "+15550001111",
	})
	f.setReading("temperature", 72, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.sms.sent)
	assert.Empty(t, f.thresholds.updated)
}

func TestRunCycleAdminKill(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Email:  "alice@example.com",
	})
	f.admins.admins = []models.Admin{
		{ID: 1, Email: "alice@example.com", ThreshKill: true},
	}
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.email.sent)
}

func TestRunCycleIndefinitePause(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:         1,
		Metric:     "temperature",
		High:       floatPtr(90),
		Phone:      "+15550001111",
		ThreshKill: true,
		Timeframe:  strPtr("99 days"),
		Timestamp:  fixedNow.Add(-200 * 24 * time.Hour),
	})
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.sms.sent)
	assert.Empty(t, f.thresholds.created, "indefinite pause must never be rewritten")
}

func TestRunCycleExpiredPauseResumesAndEvaluates(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:            1,
		Metric:        "temperature",
		High:          floatPtr(90),
		Phone:         "+15550001111",
		ThreshKill:    true,
		Timeframe:     strPtr("1 day, 0:00:00"),
		Timestamp:     fixedNow.Add(-25 * time.Hour),
		AlertInterval: intPtr(15),
	})
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.thresholds.created, 1)
	resumed := f.thresholds.created[0]
	assert.Equal(t, "temperature", resumed.Metric)
	assert.False(t, resumed.ThreshKill)
	assert.Nil(t, resumed.Timeframe)
	assert.Equal(t, floatPtr(90), resumed.High)
	assert.Equal(t, "+15550001111", resumed.Phone)
	assert.Equal(t, intPtr(15), resumed.AlertInterval)
	assert.Equal(t, fixedNow, resumed.Timestamp)

	// Same cycle still evaluates with the original bounds.
	require.Len(t, f.alerts.recorded, 1)
	require.Len(t, f.sms.sent, 1)
}

func TestRunCycleActivePause(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:         1,
		Metric:     "temperature",
		High:       floatPtr(90),
		Phone:      "+15550001111",
		ThreshKill: true,
		Timeframe:  strPtr("1 day, 0:00:00"),
		Timestamp:  fixedNow.Add(-2 * time.Hour),
	})
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.thresholds.created)
}

func TestRunCycleThrottleSkips(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})
	f.setReading("temperature", 95, time.Minute)
	f.thresholds.lastAlert[1] = timePtr(fixedNow.Add(-5 * time.Minute))

	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.sms.sent)
}

func TestRunCycleRerunIsIdempotentWithinWindow(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))
	require.Len(t, f.sms.sent, 1)

	// Second run two minutes later, still breaching.
	f.now = f.now.Add(2 * time.Minute)
	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Len(t, f.sms.sent, 1, "no duplicate alert inside the interval")
	assert.Len(t, f.alerts.recorded, 1)
}

func TestRunCycleAlertsAgainAfterInterval(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))
	require.Len(t, f.sms.sent, 1)

	f.now = f.now.Add(11 * time.Minute)
	f.setReading("temperature", 95, time.Minute)
	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Len(t, f.sms.sent, 2)
}

func TestRunCycleRecipientFailureStillAudits(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
		Email:  "grower@example.com",
	})
	f.setReading("temperature", 95, time.Minute)
	f.sms.err = errors.New("twilio is down")

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.email.sent, 1, "email still goes out when SMS fails")
	require.Len(t, f.alerts.recorded, 1)
	assert.Contains(t, f.thresholds.updated, 1)
}

func TestRunCycleSkipsUnknownMetric(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "bogus_metric",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})

	require.NoError(t, f.checker.RunCycle(context.Background()))
	assert.Empty(t, f.alerts.recorded)
}

func TestRunCycleMissingReading(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})

	require.NoError(t, f.checker.RunCycle(context.Background()))
	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.sms.sent)
}

func TestRunCycleReadErrorDoesNotAbortCycle(t *testing.T) {
	f := newCheckerFixture(t,
		models.Threshold{ID: 1, Metric: "temperature", High: floatPtr(90), Phone: "+15550001111"},
		models.Threshold{ID: 2, Metric: "hum", High: floatPtr(80), Phone: "+15550002222"},
	)
	f.readings.errs["temperature"] = errors.New("connection refused")
	f.setReading("hum", 85, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.alerts.recorded, 1)
	assert.Equal(t, "hum", f.alerts.recorded[0].metric)
}

func TestRunCycleAdminDisableLink(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})
	f.admins.admins = []models.Admin{
		{ID: 4, Phone: "+15550001111", ThreshKill: false},
	}
	f.setReading("temperature", 95, time.Minute)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.sms.sent, 1)
	assert.Contains(t, f.sms.sent[0].body, "http://alerts.example.com/api/v1/admins/disable_alerts/4")
}

func TestRunCycleConcurrentGuard(t *testing.T) {
	f := newCheckerFixture(t)

	f.checker.running.Store(true)
	err := f.checker.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrCycleRunning)

	f.checker.running.Store(false)
	assert.NoError(t, f.checker.RunCycle(context.Background()))
}

func TestRunCycleStoppageDispatchDisabledByDefault(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})
	// Stale but within bounds: no alert of any kind.
	f.setReading("temperature", 72, 2*time.Hour)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	assert.Empty(t, f.alerts.recorded)
	assert.Empty(t, f.sms.sent)
}

func TestRunCycleStoppageDispatchWhenEnabled(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "temperature",
		High:   floatPtr(90),
		Phone:  "+15550001111",
	})
	f.checker.cfg.AlertSensorStoppage = true
	f.setReading("temperature", 72, 2*time.Hour)

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.alerts.recorded, 1)
	assert.Contains(t, f.alerts.recorded[0].message, "has not reported a new reading")
	require.Len(t, f.sms.sent, 1)
	assert.Empty(t, f.thresholds.updated, "stoppage alerts must not advance the breach throttle")

	// Immediate rerun is debounced.
	require.NoError(t, f.checker.RunCycle(context.Background()))
	assert.Len(t, f.sms.sent, 1)
}

func TestRunCycleImpriMedClockOffset(t *testing.T) {
	f := newCheckerFixture(t, models.Threshold{
		ID:     1,
		Metric: "imFreezerOneTemp",
		High:   floatPtr(0),
		Phone:  "+15550001111",
	})
	f.checker.cfg.AlertSensorStoppage = true

	// Raw timestamp 4h55m old; after the +300 minute correction the
	// reading is only 5 minutes stale, so no stoppage alert fires.
	value := 5.0
	f.readings.readings["imFreezerOneTemp"] = &models.Reading{
		Metric:    "imFreezerOneTemp",
		Value:     &value,
		Timestamp: fixedNow.Add(-4*time.Hour - 55*time.Minute),
	}

	require.NoError(t, f.checker.RunCycle(context.Background()))

	require.Len(t, f.alerts.recorded, 1, "only the breach alert")
	assert.Contains(t, f.alerts.recorded[0].message, "exceeds the high threshold")
}
