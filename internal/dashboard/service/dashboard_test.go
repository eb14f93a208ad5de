package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroflow/agroflow-backend/internal/dashboard/service"
	"github.com/agroflow/agroflow-backend/internal/prediction"
	"github.com/agroflow/agroflow-backend/internal/weather"
	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

type stubInventory struct {
	calls int
	err   error
}

func (s *stubInventory) CountActive(ctx context.Context) (int64, error) {
	s.calls++
	return 12, s.err
}

func (s *stubInventory) TotalValuation(ctx context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(15000), s.err
}

func (s *stubInventory) CountBelowThreshold(ctx context.Context) (int64, error) {
	return 3, s.err
}

type stubProduction struct{}

func (stubProduction) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return map[string]int64{"a_faire": 4, "en_cours": 2}, nil
}

func (stubProduction) CountOverdue(ctx context.Context) (int64, error) {
	return 1, nil
}

type stubHR struct{}

func (stubHR) CountActive(ctx context.Context) (int64, error) { return 8, nil }

func (stubHR) CountPending(ctx context.Context) (int64, error) { return 2, nil }

type stubWeather struct {
	err error
}

func (s stubWeather) Current(ctx context.Context) (*weather.Conditions, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &weather.Conditions{
		Temperature: decimal.NewFromInt(24),
		RiskLevel:   weather.RiskLow,
	}, nil
}

type stubPredictions struct{}

func (stubPredictions) Advisories(ctx context.Context) ([]prediction.Prediction, error) {
	return []prediction.Prediction{
		{Module: "inventaire", Title: "Reapprovisionnement", Priority: 1, Confidence: 0.9},
	}, nil
}

func newService(inv *stubInventory, wx stubWeather) *service.DashboardService {
	return service.NewDashboardService(
		inv, stubProduction{}, stubHR{}, wx, stubPredictions{},
		config.DashboardConfig{CacheTTL: time.Minute, CacheEntries: 16},
		logger.New("test", "test"),
	)
}

func TestGetSnapshotComposesAllSections(t *testing.T) {
	svc := newService(&stubInventory{}, stubWeather{})

	snapshot, err := svc.GetSnapshot(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, snapshot.Inventory.Available)
	assert.True(t, snapshot.Production.Available)
	assert.True(t, snapshot.HR.Available)
	assert.True(t, snapshot.Finance.Available)
	assert.True(t, snapshot.Weather.Available)
	assert.True(t, snapshot.Predictions.Available)

	inv := snapshot.Inventory.Data.(service.InventorySection)
	assert.Equal(t, int64(12), inv.ProductCount)
	assert.Equal(t, int64(3), inv.LowStockAlerts)
}

func TestGetSnapshotDegradedWhenCollaboratorFails(t *testing.T) {
	wx := stubWeather{err: errors.UpstreamUnavailable("weather", context.DeadlineExceeded)}
	svc := newService(&stubInventory{}, wx)

	snapshot, err := svc.GetSnapshot(context.Background(), "user-1")
	require.NoError(t, err)

	assert.False(t, snapshot.Weather.Available)
	assert.Nil(t, snapshot.Weather.Data)
	// The rest of the snapshot is untouched.
	assert.True(t, snapshot.Inventory.Available)
	assert.True(t, snapshot.Predictions.Available)
}

func TestGetSnapshotServedFromCacheInsideWindow(t *testing.T) {
	inv := &stubInventory{}
	svc := newService(inv, stubWeather{})

	first, err := svc.GetSnapshot(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := svc.GetSnapshot(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inv.calls)

	// A different user misses the cache.
	_, err = svc.GetSnapshot(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, 2, inv.calls)
}
