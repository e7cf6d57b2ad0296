// Package datalake is the client for the remote C3-style data lake that
// serves per-location daily metrics through its evalmetrics endpoint.
package datalake

import (
	"golang.org/x/time/rate"

	"github.com/wonny/impactlab/pkg/config"
	"github.com/wonny/impactlab/pkg/httputil"
	"github.com/wonny/impactlab/pkg/logger"
)

// Client talks to the data-lake API.
type Client struct {
	cfg     config.DatalakeConfig
	http    *httputil.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewClient creates a data-lake client. HTTP retries are disabled so a
// remote failure reaches the acquisition layer unmodified.
func NewClient(cfg config.DatalakeConfig, log *logger.Logger) *Client {
	httpClient := httputil.NewWithTimeout(log, cfg.Timeout).DisableRetry()

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log.WithModule("datalake"),
	}
}
