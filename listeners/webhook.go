package listeners

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/netresearch/chronos/core"
)

// WebhookConfig configures a Webhook listener, adapted from the teacher's
// WebhookConfig (preset/secret/variables trimmed — chronos posts a fixed
// JSON envelope rather than a templated preset body).
type WebhookConfig struct {
	Name        string        `default:"webhook"`
	URL         string
	Timeout     time.Duration `default:"10s"`
	RatePerSec  float64       `default:"5"`
	Burst       int           `default:"5"`
	MaxRetries  int           `default:"3"`
	CircuitName string        `default:"webhook"`
}

// webhookEnvelope is the JSON body posted to URL on job completion.
type webhookEnvelope struct {
	JobGroup  string `json:"job_group"`
	JobName   string `json:"job_name"`
	Trigger   string `json:"trigger_key"`
	FireID    string `json:"fire_instance_id"`
	FiredAt   string `json:"fired_at"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Recovered bool   `json:"recovering"`
}

// Webhook is a JobListener that POSTs a completion envelope to an external
// URL, rate-limited and circuit-broken, grounded on the teacher's
// middlewares/webhook.go HTTP-delivery shape.
type Webhook struct {
	cfg      WebhookConfig
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *core.CircuitBreaker
	retry    *core.RetryExecutor
	logger   core.Logger
}

// NewWebhook validates cfg.URL against SSRF rules and builds a Webhook
// listener. Returns an error if the URL targets a disallowed host.
func NewWebhook(cfg WebhookConfig, logger core.Logger) (*Webhook, error) {
	if err := ValidateWebhookURL(cfg.URL); err != nil {
		return nil, fmt.Errorf("webhook %q: %w", cfg.Name, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	return &Webhook{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		breaker: core.NewCircuitBreaker(cfg.CircuitName, 5, 30*time.Second),
		retry:   core.NewRetryExecutor(logger),
		logger:  logger,
	}, nil
}

// SetMetricsRecorder wires retry telemetry into metrics.
func (w *Webhook) SetMetricsRecorder(m core.MetricsRecorder) { w.retry.SetMetricsRecorder(m) }

// Name implements core.JobListener.
func (w *Webhook) Name() string { return "webhook:" + w.cfg.Name }

// JobToBeExecuted implements core.JobListener; webhook delivery only fires
// on completion, so this is a no-op.
func (w *Webhook) JobToBeExecuted(*core.JobExecutionContext) {}

// JobWasExecuted implements core.JobListener: posts the completion envelope.
func (w *Webhook) JobWasExecuted(jec *core.JobExecutionContext, jobErr error) {
	envelope := webhookEnvelope{
		JobGroup:  jec.JobDetail.Key.Group,
		JobName:   jec.JobDetail.Key.Name,
		Trigger:   jec.Trigger.TriggerKey().String(),
		FireID:    jec.FireInstanceID,
		FiredAt:   jec.FireTime.Format(time.RFC3339),
		Success:   jobErr == nil,
		Recovered: jec.Recovering,
	}
	if jobErr != nil {
		envelope.Error = jobErr.Error()
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		if w.logger != nil {
			w.logger.Errorf("webhook %s: marshal envelope: %v", w.cfg.Name, err)
		}
		return
	}

	deliverErr := w.retry.ExecuteWithRetry(w.cfg.Name, core.RetryConfig{
		MaxRetries:       w.cfg.MaxRetries,
		RetryDelayMs:     250,
		RetryExponential: true,
		RetryMaxDelayMs:  5000,
	}, func() error {
		return w.breaker.Execute(func() error {
			return w.post(jec, body)
		})
	})

	if deliverErr != nil && w.logger != nil {
		w.logger.Warningf("webhook %s: delivery failed for fire %s: %v", w.cfg.Name, jec.FireInstanceID, deliverErr)
	}
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook %s: rate limit wait: %w", w.cfg.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s: build request: %w", w.cfg.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chronos/"+core.Version)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: request: %w", w.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("webhook %s: server error %s", w.cfg.Name, resp.Status)
	}
	return nil
}
