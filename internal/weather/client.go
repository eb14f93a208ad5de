// Package weather wraps the external weather station gateway.
package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// Risk levels reported by the gateway
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Conditions are the current observed weather conditions
type Conditions struct {
	Temperature   decimal.Decimal `json:"temperature"`
	Humidity      decimal.Decimal `json:"humidity"`
	Precipitation decimal.Decimal `json:"precipitation"`
	WindSpeed     decimal.Decimal `json:"wind_speed"`
	RiskLevel     string          `json:"risk_level"`
	ObservedAt    time.Time       `json:"observed_at"`
}

// Client pulls current conditions from the weather gateway
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

// NewClient creates a new weather client
func NewClient(cfg config.CollaboratorConfig, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	if cfg.APIKey != "" {
		http.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &Client{
		http:   http,
		logger: log,
	}
}

// Current fetches the current conditions. Transport and gateway failures
// surface as an upstream error, never as a domain error.
func (c *Client) Current(ctx context.Context) (*Conditions, error) {
	var conditions Conditions

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&conditions).
		Get("/api/v1/conditions/current")
	if err != nil {
		c.logger.Warn().Err(err).Msg("weather gateway unreachable")
		return nil, errors.UpstreamUnavailable("weather", err)
	}
	if resp.IsError() {
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("weather gateway returned an error")
		return nil, errors.UpstreamUnavailable("weather",
			fmt.Errorf("weather gateway returned status %d", resp.StatusCode()))
	}

	return &conditions, nil
}
