package listeners

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/netresearch/chronos/core"
)

// SlackConfig configures a Slack listener, grounded on the teacher's
// middlewares/slack.go incoming-webhook POST.
type SlackConfig struct {
	Name       string `default:"slack"`
	WebhookURL string
	Channel    string
	Timeout    time.Duration `default:"10s"`
	OnlyErrors bool          `default:"true"`
}

type slackMessage struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// Slack is a JobListener posting a message to a Slack incoming webhook on
// job completion (or only on failure, when OnlyErrors is set).
type Slack struct {
	cfg    SlackConfig
	client *http.Client
	logger core.Logger
}

// NewSlack validates cfg.WebhookURL against SSRF rules and builds a Slack
// listener.
func NewSlack(cfg SlackConfig, logger core.Logger) (*Slack, error) {
	if err := ValidateWebhookURL(cfg.WebhookURL); err != nil {
		return nil, fmt.Errorf("slack %q: %w", cfg.Name, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Slack{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Name implements core.JobListener.
func (s *Slack) Name() string { return "slack:" + s.cfg.Name }

// JobToBeExecuted implements core.JobListener.
func (s *Slack) JobToBeExecuted(*core.JobExecutionContext) {}

// JobWasExecuted implements core.JobListener.
func (s *Slack) JobWasExecuted(jec *core.JobExecutionContext, jobErr error) {
	if s.cfg.OnlyErrors && jobErr == nil {
		return
	}

	status := "succeeded"
	if jobErr != nil {
		status = fmt.Sprintf("failed: %v", jobErr)
	}
	text := fmt.Sprintf("job `%s` (fire %s) %s", jec.JobDetail.Key.String(), jec.FireInstanceID, status)

	if err := s.post(jec, text); err != nil && s.logger != nil {
		s.logger.Warningf("slack %s: delivery failed: %v", s.cfg.Name, err)
	}
}

func (s *Slack) post(ctx context.Context, text string) error {
	body, err := json.Marshal(slackMessage{Channel: s.cfg.Channel, Text: text})
	if err != nil {
		return fmt.Errorf("slack %s: marshal message: %w", s.cfg.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack %s: build request: %w", s.cfg.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack %s: request: %w", s.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack %s: unexpected status %s", s.cfg.Name, resp.Status)
	}
	return nil
}
