package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"pushcast-backend/internal/campaign/repository"
	"pushcast-backend/pkg/metrics"
	"pushcast-backend/pkg/ratelimit"
)

// ClickTracker counts notification clicks. Counting never decides where the
// user ends up: Track always yields a redirect target.
type ClickTracker struct {
	statsRepo       repository.StatsRepository
	limiter         ratelimit.Limiter
	defaultRedirect string
	now             func() time.Time
}

// NewClickTracker creates a tracker. limiter may be nil.
func NewClickTracker(statsRepo repository.StatsRepository, limiter ratelimit.Limiter, defaultRedirect string) *ClickTracker {
	return &ClickTracker{
		statsRepo:       statsRepo,
		limiter:         limiter,
		defaultRedirect: defaultRedirect,
		now:             time.Now,
	}
}

// Track records one click for campaignID and returns where to send the user.
func (t *ClickTracker) Track(ctx context.Context, campaignID, targetURL, clientKey string) string {
	redirect := targetURL
	if redirect == "" {
		redirect = t.defaultRedirect
	}

	if campaignID == "" {
		log.Println("[Track-Click] No campaignId provided, skipping tracking")
		metrics.Clicks.WithLabelValues("skipped").Inc()
		return redirect
	}

	if t.limiter != nil {
		ok, err := t.limiter.Allow(ctx, clientKey)
		if err != nil {
			log.Printf("[Track-Click] Rate limiter error: %v", err)
		} else if !ok {
			log.Printf("[Track-Click] Rate limit hit for %s, not counting click on %s", clientKey, campaignID)
			metrics.Clicks.WithLabelValues("limited").Inc()
			return redirect
		}
	}

	if err := t.statsRepo.RecordClick(ctx, campaignID, t.now().UTC()); err != nil {
		log.Printf("[Track-Click] Failed to update stats for campaign %s: %v", campaignID, err)
		metrics.Clicks.WithLabelValues("error").Inc()
		return redirect
	}

	log.Printf("[Track-Click] Recorded click for campaign %s", campaignID)
	metrics.Clicks.WithLabelValues("recorded").Inc()
	return redirect
}

// TrackLegacy counts a click reported by older service workers, which post
// the campaign id instead of following the redirect. Global counters are not
// touched.
func (t *ClickTracker) TrackLegacy(ctx context.Context, campaignID string) error {
	if campaignID == "" {
		return ErrInvalidCampaign
	}
	err := t.statsRepo.RecordCampaignClick(ctx, campaignID, t.now().UTC())
	if errors.Is(err, repository.ErrCampaignMissing) {
		return ErrCampaignNotFound
	}
	return err
}
