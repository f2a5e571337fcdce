package notify

import (
	"context"
	"fmt"

	"srm-service/internal/service"
	"srm-service/pkg/config"

	"github.com/go-resty/resty/v2"
)

// Client posts lifecycle events to the external audit/notification
// collaborator over HTTP. The collaborator owns email/SMS fan-out; this
// client only delivers the event envelope.
type Client struct {
	http *resty.Client
}

// New returns a Client for cfg, or a nil Client when no BaseURL is
// configured. A nil *Client is a valid no-op Notifier.
func New(cfg *config.NotifyConfig) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: client}
}

// Notify delivers one lifecycle event. Non-2xx responses are errors so the
// caller can log the failed delivery.
func (c *Client) Notify(ctx context.Context, ev service.LifecycleEvent) error {
	if c == nil {
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ev).
		Post("/events/supplier")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("collaborator returned %s", resp.Status())
	}
	return nil
}
