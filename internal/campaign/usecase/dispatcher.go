package usecase

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	audiencedomain "pushcast-backend/internal/audience/domain"
	"pushcast-backend/internal/campaign/domain"
	"pushcast-backend/pkg/metrics"
	"pushcast-backend/pkg/push"
)

const (
	defaultBatchSize = 50
	defaultIcon      = "/icon.png"
	trackClickPath   = "/api/track-click"
)

// Dispatcher fans a campaign out to its tokens through the push gateway,
// batchSize sends at a time.
type Dispatcher struct {
	gateway   push.Gateway
	baseURL   string
	batchSize int
}

func NewDispatcher(gateway push.Gateway, baseURL string, batchSize int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Dispatcher{
		gateway:   gateway,
		baseURL:   strings.TrimRight(baseURL, "/"),
		batchSize: batchSize,
	}
}

// Dispatch sends one message per token and classifies each answer. A failed
// token never stops the rest of the pass and is never retried within it.
func (d *Dispatcher) Dispatch(ctx context.Context, campaign *domain.Campaign, tokens []audiencedomain.Token) domain.DeliveryResult {
	began := time.Now()
	defer func() { metrics.DispatchDuration.Observe(time.Since(began).Seconds()) }()

	result := domain.DeliveryResult{TotalTargeted: len(tokens)}
	trackingURL := TrackingURL(d.baseURL, campaign)
	icon := campaign.Icon
	if icon == "" {
		icon = defaultIcon
	}

	outcomes := make([]push.Outcome, len(tokens))
	for lo := 0; lo < len(tokens); lo += d.batchSize {
		hi := min(lo+d.batchSize, len(tokens))

		var wg sync.WaitGroup
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tok := tokens[i]
				msg := push.Message{
					Token:      tok.PushToken,
					Title:      campaign.Title,
					Body:       campaign.Body,
					Icon:       icon,
					URL:        trackingURL,
					CampaignID: campaign.ID,
					DomainID:   tok.DomainHostname,
				}
				outcomes[i] = d.send(ctx, msg)
			}(i)
		}
		wg.Wait()
	}

	for i, outcome := range outcomes {
		metrics.Deliveries.WithLabelValues(outcome.String()).Inc()
		switch outcome {
		case push.Accepted:
			result.SentCount++
		case push.PermanentFailure:
			result.FailedCount++
			result.DeadTokenIDs = append(result.DeadTokenIDs, tokens[i].ID)
		default:
			result.FailedCount++
		}
	}

	log.Printf("[Dispatcher] Campaign %s: %d targeted, %d sent, %d failed, %d dead",
		campaign.ID, result.TotalTargeted, result.SentCount, result.FailedCount, len(result.DeadTokenIDs))
	return result
}

func (d *Dispatcher) send(ctx context.Context, msg push.Message) (outcome push.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Dispatcher] Gateway panic for %s...: %v", shortToken(msg.Token), r)
			outcome = push.TransientFailure
		}
	}()

	outcome, err := d.gateway.Send(ctx, msg)
	if err != nil {
		if outcome == push.Accepted {
			outcome = push.TransientFailure
		}
		log.Printf("[Dispatcher] Send error for %s... (%s): %v", shortToken(msg.Token), outcome, err)
	}
	return outcome
}

// TrackingURL returns the click-through URL embedded in a campaign's
// messages. An actionUrl that already points at the tracker is used as is.
func TrackingURL(baseURL string, campaign *domain.Campaign) string {
	target := campaign.ActionURL
	if strings.Contains(target, trackClickPath) {
		return target
	}
	if target == "" {
		target = "/"
	}
	q := url.Values{}
	q.Set("campaignId", campaign.ID)
	q.Set("targetUrl", target)
	return strings.TrimRight(baseURL, "/") + trackClickPath + "?" + q.Encode()
}

func shortToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
