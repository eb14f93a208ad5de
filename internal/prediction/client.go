// Package prediction wraps the external predictive analytics service.
package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
)

// Prediction is a single advisory item produced by the prediction service.
// Priority runs 1 (urgent) to 3 (informational); confidence is in [0, 1].
type Prediction struct {
	Module     string  `json:"module"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Priority   int     `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// Client pulls predictive summaries from the prediction service
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

// NewClient creates a new prediction client
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

// Advisories fetches the current advisory list across modules
func (c *Client) Advisories(ctx context.Context) ([]Prediction, error) {
	var predictions []Prediction

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&predictions).
		Get("/api/v1/predictions")
	if err != nil {
		c.logger.Warn().Err(err).Msg("prediction service unreachable")
		return nil, errors.UpstreamUnavailable("prediction", err)
	}
	if resp.IsError() {
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("prediction service returned an error")
		return nil, errors.UpstreamUnavailable("prediction",
			fmt.Errorf("prediction service returned status %d", resp.StatusCode()))
	}

	return predictions, nil
}
