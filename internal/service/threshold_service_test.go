package service

import (
	"context"
	"testing"
	"time"

	"FieldMonitorAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThresholdValidation(t *testing.T) {
	repo := newFakeThresholdRepo()
	svc := NewThresholdService(repo, testLogger(t))
	ctx := context.Background()

	t.Run("unknown metric", func(t *testing.T) {
		_, err := svc.CreateThreshold(ctx, &models.CreateThresholdRequest{
			Metric: "bogus", High: floatPtr(1),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognized metric")
	})

	t.Run("no bounds", func(t *testing.T) {
		_, err := svc.CreateThreshold(ctx, &models.CreateThresholdRequest{Metric: "temperature"})
		require.Error(t, err)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := svc.CreateThreshold(ctx, &models.CreateThresholdRequest{
			Metric: "temperature", High: floatPtr(30), Low: floatPtr(90),
		})
		require.Error(t, err)
	})

	t.Run("bad timeframe", func(t *testing.T) {
		_, err := svc.CreateThreshold(ctx, &models.CreateThresholdRequest{
			Metric: "temperature", High: floatPtr(90), Timeframe: strPtr("whenever"),
		})
		require.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		th, err := svc.CreateThreshold(ctx, &models.CreateThresholdRequest{
			Metric: "temperature",
			High:   floatPtr(90),
			Phone:  "+15550001111",
		})
		require.NoError(t, err)
		assert.NotZero(t, th.ID)
		assert.False(t, th.Timestamp.IsZero())
		require.Len(t, repo.created, 1)
	})
}

func TestDisableThresholdAppendsNewVersion(t *testing.T) {
	existing := models.Threshold{
		ID:            1,
		Metric:        "temperature",
		High:          floatPtr(90),
		Low:           floatPtr(30),
		Phone:         "+15550001111",
		Email:         "grower@example.com",
		Timestamp:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		AlertInterval: intPtr(15),
	}
	repo := newFakeThresholdRepo(existing)
	svc := NewThresholdService(repo, testLogger(t))

	next, err := svc.DisableThreshold(context.Background(), 1, true, "99 days")
	require.NoError(t, err)

	require.Len(t, repo.created, 1, "disable must insert, never mutate")
	assert.NotEqual(t, existing.ID, next.ID)
	assert.Equal(t, existing.Metric, next.Metric)
	assert.Equal(t, existing.High, next.High)
	assert.Equal(t, existing.Low, next.Low)
	assert.Equal(t, existing.Phone, next.Phone)
	assert.Equal(t, existing.AlertInterval, next.AlertInterval)
	assert.True(t, next.ThreshKill)
	require.NotNil(t, next.Timeframe)
	assert.Equal(t, "99 days", *next.Timeframe)
	assert.True(t, next.Timestamp.After(existing.Timestamp))
}

func TestDisableThresholdErrors(t *testing.T) {
	repo := newFakeThresholdRepo()
	svc := NewThresholdService(repo, testLogger(t))

	_, err := svc.DisableThreshold(context.Background(), 404, true, "99 days")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	repo = newFakeThresholdRepo(models.Threshold{ID: 1, Metric: "temperature", High: floatPtr(90)})
	svc = NewThresholdService(repo, testLogger(t))

	_, err = svc.DisableThreshold(context.Background(), 1, true, "whenever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeframe")
	assert.Empty(t, repo.created)
}
