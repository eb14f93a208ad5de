package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/internal/prediction"
	"github.com/agroflow/agroflow-backend/internal/weather"
	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// InventoryStats supplies the inventory section counters
type InventoryStats interface {
	CountActive(ctx context.Context) (int64, error)
	TotalValuation(ctx context.Context) (decimal.Decimal, error)
	CountBelowThreshold(ctx context.Context) (int64, error)
}

// ProductionStats supplies the production section counters
type ProductionStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountOverdue(ctx context.Context) (int64, error)
}

// HRStats supplies the HR section counters
type HRStats interface {
	CountActive(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

// WeatherSource supplies current conditions
type WeatherSource interface {
	Current(ctx context.Context) (*weather.Conditions, error)
}

// PredictionSource supplies the advisory list
type PredictionSource interface {
	Advisories(ctx context.Context) ([]prediction.Prediction, error)
}

// Section wraps one dashboard section. Failed sections are returned with
// Available false instead of failing the whole snapshot.
type Section struct {
	Available bool        `json:"available"`
	Data      interface{} `json:"data,omitempty"`
}

// InventorySection summarizes the inventory module
type InventorySection struct {
	ProductCount   int64           `json:"product_count"`
	StockValuation decimal.Decimal `json:"stock_valuation"`
	LowStockAlerts int64           `json:"low_stock_alerts"`
}

// ProductionSection summarizes the production module
type ProductionSection struct {
	TasksByStatus map[string]int64 `json:"tasks_by_status"`
	OverdueCount  int64            `json:"overdue_count"`
}

// HRSection summarizes the HR module
type HRSection struct {
	ActiveEmployees int64 `json:"active_employees"`
	PendingLeaves   int64 `json:"pending_leaves"`
}

// FinanceSection summarizes stock-derived financials
type FinanceSection struct {
	StockValuation decimal.Decimal `json:"stock_valuation"`
}

// Snapshot is a full dashboard aggregation
type Snapshot struct {
	Inventory   Section   `json:"inventory"`
	Production  Section   `json:"production"`
	HR          Section   `json:"hr"`
	Finance     Section   `json:"finance"`
	Weather     Section   `json:"weather"`
	Predictions Section   `json:"predictions"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DashboardService composes per-module summaries into a snapshot
type DashboardService struct {
	inventory   InventoryStats
	production  ProductionStats
	hr          HRStats
	weather     WeatherSource
	predictions PredictionSource
	cache       *expirable.LRU[string, *Snapshot]
	cacheTTL    time.Duration
	logger      *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	inventory InventoryStats,
	production ProductionStats,
	hr HRStats,
	weatherSrc WeatherSource,
	predictions PredictionSource,
	cfg config.DashboardConfig,
	log *logger.Logger,
) *DashboardService {
	return &DashboardService{
		inventory:   inventory,
		production:  production,
		hr:          hr,
		weather:     weatherSrc,
		predictions: predictions,
		cache:       expirable.NewLRU[string, *Snapshot](cfg.CacheEntries, nil, cfg.CacheTTL),
		cacheTTL:    cfg.CacheTTL,
		logger:      log,
	}
}

// cacheKey buckets requests per user per TTL window, so a repeat request
// inside the window is served the identical snapshot.
func (s *DashboardService) cacheKey(userID string, now time.Time) string {
	bucket := now.Unix() / int64(s.cacheTTL.Seconds())
	return fmt.Sprintf("%s:%d", userID, bucket)
}

// GetSnapshot returns the dashboard snapshot for a user, cached per time
// bucket. A failing section is marked unavailable; the rest of the snapshot
// is still returned.
func (s *DashboardService) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	key := s.cacheKey(userID, time.Now())
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	snapshot := &Snapshot{GeneratedAt: time.Now()}

	snapshot.Inventory = s.inventorySection(ctx)
	snapshot.Production = s.productionSection(ctx)
	snapshot.HR = s.hrSection(ctx)
	snapshot.Finance = s.financeSection(ctx)
	snapshot.Weather = s.weatherSection(ctx)
	snapshot.Predictions = s.predictionsSection(ctx)

	s.cache.Add(key, snapshot)
	return snapshot, nil
}

func (s *DashboardService) inventorySection(ctx context.Context) Section {
	count, err := s.inventory.CountActive(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("inventory dashboard section unavailable")
		return Section{Available: false}
	}
	valuation, err := s.inventory.TotalValuation(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("inventory dashboard section unavailable")
		return Section{Available: false}
	}
	lowStock, err := s.inventory.CountBelowThreshold(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("inventory dashboard section unavailable")
		return Section{Available: false}
	}

	return Section{Available: true, Data: InventorySection{
		ProductCount:   count,
		StockValuation: valuation,
		LowStockAlerts: lowStock,
	}}
}

func (s *DashboardService) productionSection(ctx context.Context) Section {
	byStatus, err := s.production.CountByStatus(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("production dashboard section unavailable")
		return Section{Available: false}
	}
	overdue, err := s.production.CountOverdue(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("production dashboard section unavailable")
		return Section{Available: false}
	}

	return Section{Available: true, Data: ProductionSection{
		TasksByStatus: byStatus,
		OverdueCount:  overdue,
	}}
}

func (s *DashboardService) hrSection(ctx context.Context) Section {
	active, err := s.hr.CountActive(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("hr dashboard section unavailable")
		return Section{Available: false}
	}
	pending, err := s.hr.CountPending(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("hr dashboard section unavailable")
		return Section{Available: false}
	}

	return Section{Available: true, Data: HRSection{
		ActiveEmployees: active,
		PendingLeaves:   pending,
	}}
}

func (s *DashboardService) financeSection(ctx context.Context) Section {
	valuation, err := s.inventory.TotalValuation(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("finance dashboard section unavailable")
		return Section{Available: false}
	}

	return Section{Available: true, Data: FinanceSection{StockValuation: valuation}}
}

func (s *DashboardService) weatherSection(ctx context.Context) Section {
	conditions, err := s.weather.Current(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("weather dashboard section unavailable")
		return Section{Available: false}
	}

	return Section{Available: true, Data: conditions}
}

func (s *DashboardService) predictionsSection(ctx context.Context) Section {
	advisories, err := s.predictions.Advisories(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("predictions dashboard section unavailable")
		return Section{Available: false}
	}

	return Section{Available: true, Data: advisories}
}
