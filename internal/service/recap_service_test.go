package service

import (
	"context"
	"testing"
	"time"

	"FieldMonitorAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecapRepo struct {
	customers []models.Customer
	created   []*models.WeeklyRecap
}

func (r *fakeRecapRepo) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	return r.customers, nil
}

func (r *fakeRecapRepo) Create(ctx context.Context, recap *models.WeeklyRecap) error {
	r.created = append(r.created, recap)
	return nil
}

func (r *fakeRecapRepo) GetByUserEmail(ctx context.Context, email string, limit int) ([]models.WeeklyRecap, error) {
	return nil, nil
}

type fakeAlertRepo struct {
	counts map[string]int
}

func (r *fakeAlertRepo) Create(ctx context.Context, alert *models.Alert) error { return nil }

func (r *fakeAlertRepo) GetAll(ctx context.Context, limit, offset int) ([]models.Alert, error) {
	return nil, nil
}

func (r *fakeAlertRepo) GetByMetric(ctx context.Context, metric string, limit int) ([]models.Alert, error) {
	return nil, nil
}

func (r *fakeAlertRepo) Delete(ctx context.Context, id int) error { return nil }

func (r *fakeAlertRepo) CountSince(ctx context.Context, metric string, since time.Time) (int, error) {
	return r.counts[metric], nil
}

func TestGenerateWeeklyRecap(t *testing.T) {
	recaps := &fakeRecapRepo{
		customers: []models.Customer{
			{ID: 1, Email: "farm@example.com", Metrics: "temperature, hum, imFreezerOneTemp, bogus"},
		},
	}
	readings := &fakeReadingRepo{
		readings: make(map[string]*models.Reading),
		errs:     make(map[string]error),
		stats: map[string]*models.MetricStats{
			"temperature": {High: floatPtr(98.2), Low: floatPtr(61.4), Avg: floatPtr(79.9)},
			"hum":         {High: floatPtr(80), Low: floatPtr(30), Avg: floatPtr(55)},
		},
	}
	alerts := &fakeAlertRepo{counts: map[string]int{"temperature": 3}}

	svc := NewRecapService(recaps, readings, alerts, testLogger(t))
	svc.now = func() time.Time { return fixedNow }

	require.NoError(t, svc.GenerateWeeklyRecap(context.Background()))

	// ImpriMed and unknown metrics are skipped: only temperature and hum.
	require.Len(t, recaps.created, 2)

	byMetric := map[string]*models.WeeklyRecap{}
	for _, r := range recaps.created {
		byMetric[r.Metric] = r
	}

	temp := byMetric["temperature"]
	require.NotNil(t, temp)
	assert.Equal(t, "farm@example.com", temp.UserEmail)
	assert.Equal(t, 3, temp.AlertCount)
	require.NotNil(t, temp.High)
	assert.Equal(t, 98.2, *temp.High)

	hum := byMetric["hum"]
	require.NotNil(t, hum)
	assert.Equal(t, 0, hum.AlertCount)

	wantWeekStart := fixedNow.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	assert.Equal(t, wantWeekStart, temp.WeekStartDate)
}

func TestGenerateWeeklyRecapNoCustomers(t *testing.T) {
	recaps := &fakeRecapRepo{}
	readings := &fakeReadingRepo{readings: make(map[string]*models.Reading), errs: make(map[string]error)}
	alerts := &fakeAlertRepo{counts: map[string]int{}}

	svc := NewRecapService(recaps, readings, alerts, testLogger(t))

	require.NoError(t, svc.GenerateWeeklyRecap(context.Background()))
	assert.Empty(t, recaps.created)
}
