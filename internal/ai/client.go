package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tabforge/tabforge/internal/infrastructure/config"
	"github.com/tabforge/tabforge/internal/infrastructure/logging"
	"github.com/tabforge/tabforge/internal/infrastructure/monitoring"
	"github.com/tabforge/tabforge/internal/infrastructure/resilience"
	"github.com/tabforge/tabforge/internal/shared/types"
)

// Client talks to the AI collaborator service over HTTP with rate
// limiting, retries and circuit breaker protection. It satisfies the
// engine's Generator and Refiner contracts.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// refineRequest is the collaborator wire shape for a refinement round
type refineRequest struct {
	CurrentSource string                    `json:"current_source"`
	Instruction   string                    `json:"instruction"`
	Sources       []types.SourceAttribution `json:"sources,omitempty"`
}

// New creates a collaborator client from configuration
func New(cfg config.AIConfig, logger *logging.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = nil // Disable logging

	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "TabForge/1.0").
		SetTransport(retryClient.HTTPClient.Transport)

	breaker := resilience.New("ai-collaborator", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), int(cfg.RPS)+1)
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: breaker,
		logger:  logger.Named("ai"),
	}
}

// WithMetrics adds metrics tracking to the client
func (c *Client) WithMetrics(metrics *monitoring.Metrics) *Client {
	c.metrics = metrics
	return c
}

// Generate asks the collaborator to produce a new tab descriptor
func (c *Client) Generate(ctx context.Context, prompt string, extra map[string]string) (*types.TabDescriptor, error) {
	var descriptor types.TabDescriptor

	err := c.post(ctx, "generate", &types.GenerateRequest{Prompt: prompt, Context: extra}, &descriptor)
	if err != nil {
		return nil, err
	}

	c.logger.Info("tab generated",
		zap.String("title", descriptor.Title),
		zap.String("encoding", string(descriptor.Encoding)))
	return &descriptor, nil
}

// Refine asks the collaborator for a replacement dynamic source
func (c *Client) Refine(ctx context.Context, currentSource, instruction string, sources []types.SourceAttribution) (*types.Refinement, error) {
	var refinement types.Refinement

	req := &refineRequest{
		CurrentSource: currentSource,
		Instruction:   instruction,
		Sources:       sources,
	}
	if err := c.post(ctx, "refine", req, &refinement); err != nil {
		return nil, err
	}

	c.logger.Info("source refined", zap.String("summary", refinement.ChangeSummary))
	return &refinement, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// post runs one collaborator round trip through the rate limiter and
// circuit breaker, decoding the JSON reply into out.
func (c *Client) post(ctx context.Context, operation string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	var timer *monitoring.Timer
	if c.metrics != nil {
		timer = monitoring.NewTimer(c.metrics, operation)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(out).
			Post("/" + operation)
		if err != nil {
			return nil, err
		}
		// Error statuses count against the breaker too
		if resp.IsError() {
			return nil, fmt.Errorf("collaborator returned %s for %s", resp.Status(), operation)
		}
		return resp, nil
	})

	if err != nil {
		if timer != nil {
			timer.Stop("error")
		}
		c.logger.Error("collaborator call failed",
			zap.String("operation", operation),
			zap.Error(err))
		if err == resilience.ErrCircuitOpen {
			return fmt.Errorf("collaborator unavailable: %w", err)
		}
		return err
	}

	if timer != nil {
		timer.Stop("success")
	}
	return nil
}
