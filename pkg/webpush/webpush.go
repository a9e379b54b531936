package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"pushcast-backend/pkg/push"
)

// Client sends VAPID web push messages. The stored push token is the
// browser's JSON-encoded PushSubscription.
type Client struct {
	subscriber      string
	vapidPublicKey  string
	vapidPrivateKey string
	ttl             int
	httpClient      *http.Client
}

func NewClient(subscriber, vapidPublicKey, vapidPrivateKey string) *Client {
	return &Client{
		subscriber:      subscriber,
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		ttl:             60,
	}
}

// WithHTTPClient overrides the transport used for push service requests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Send(ctx context.Context, msg push.Message) (push.Outcome, error) {
	sub := &webpush.Subscription{}
	if err := json.Unmarshal([]byte(msg.Token), sub); err != nil || sub.Endpoint == "" {
		return push.TransientFailure, fmt.Errorf("token is not a push subscription: %v", err)
	}

	payload, err := json.Marshal(msg.Data())
	if err != nil {
		return push.TransientFailure, err
	}

	opts := &webpush.Options{
		Subscriber:      c.subscriber,
		VAPIDPublicKey:  c.vapidPublicKey,
		VAPIDPrivateKey: c.vapidPrivateKey,
		TTL:             c.ttl,
		Urgency:         webpush.UrgencyHigh,
	}
	if c.httpClient != nil {
		opts.HTTPClient = c.httpClient
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, opts)
	if err != nil {
		return push.TransientFailure, fmt.Errorf("failed to send web push: %w", err)
	}
	defer resp.Body.Close()

	outcome := ClassifyStatus(resp.StatusCode)
	if outcome != push.Accepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return outcome, fmt.Errorf("push service returned %d: %s", resp.StatusCode, string(body))
	}
	return outcome, nil
}

// ClassifyStatus maps a push service response code onto an outcome.
// 404 and 410 mean the subscription expired or was revoked.
func ClassifyStatus(status int) push.Outcome {
	switch {
	case status >= 200 && status < 300:
		return push.Accepted
	case status == http.StatusNotFound || status == http.StatusGone:
		return push.PermanentFailure
	default:
		return push.TransientFailure
	}
}
