package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pushcast-backend/internal/campaign/domain"
	"pushcast-backend/internal/campaign/repository"
	"pushcast-backend/internal/campaign/usecase"
	"pushcast-backend/pkg/metrics"
)

// RunDetail describes what one scheduler run did with one campaign
type RunDetail struct {
	ID     string        `json:"id"`
	Status domain.Status `json:"status"`
	Reason string        `json:"reason,omitempty"`
	Sent   int           `json:"sent"`
}

// RunReport is the result of one pass over due campaigns
type RunReport struct {
	Processed int         `json:"processed"`
	Details   []RunDetail `json:"details"`
}

// Runner processes every due scheduled campaign once.
type Runner interface {
	ProcessDue(ctx context.Context) (*RunReport, error)
}

// CampaignScheduler promotes due scheduled campaigns into the send pipeline.
// It can be driven by its own ticker, the cron endpoint or Pub/Sub.
type CampaignScheduler struct {
	campaignRepo repository.CampaignRepository
	pipeline     *usecase.Pipeline
	interval     time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
	now          func() time.Time
}

// NewCampaignScheduler creates a new scheduler. A non-positive interval
// disables the in-process ticker; ProcessDue still works.
func NewCampaignScheduler(campaignRepo repository.CampaignRepository, pipeline *usecase.Pipeline, interval time.Duration) *CampaignScheduler {
	return &CampaignScheduler{
		campaignRepo: campaignRepo,
		pipeline:     pipeline,
		interval:     interval,
		stopChan:     make(chan struct{}),
		now:          time.Now,
	}
}

// Start begins the ticker loop
func (s *CampaignScheduler) Start() {
	if s.interval <= 0 {
		log.Println("[Scheduler] No interval configured, in-process ticker disabled")
		return
	}

	log.Printf("[Scheduler] Starting campaign scheduler (interval: %s)", s.interval)

	go func() {
		s.tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *CampaignScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *CampaignScheduler) tick() {
	if _, err := s.ProcessDue(context.Background()); err != nil {
		log.Printf("[Scheduler] Run failed: %v", err)
	}
}

// ProcessDue runs every scheduled campaign whose time has come through the
// send pipeline. Campaigns are claimed first, so concurrent triggers never
// deliver the same campaign twice. One campaign failing does not stop the
// others.
func (s *CampaignScheduler) ProcessDue(ctx context.Context) (*RunReport, error) {
	metrics.SchedulerRuns.Inc()
	now := s.now().UTC()

	due, err := s.campaignRepo.FindDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due campaigns: %w", err)
	}

	report := &RunReport{Details: []RunDetail{}}
	if len(due) == 0 {
		return report, nil
	}
	log.Printf("[Scheduler] Found %d due campaigns", len(due))

	for i := range due {
		campaign := &due[i]

		claimed, err := s.campaignRepo.Claim(ctx, campaign.ID, domain.StatusScheduled)
		if err != nil {
			log.Printf("[Scheduler] Failed to claim campaign %s: %v", campaign.ID, err)
			continue
		}
		if !claimed {
			log.Printf("[Scheduler] Campaign %s already taken by another run", campaign.ID)
			continue
		}

		// A claimed campaign must reach a terminal state even if the
		// trigger's request or subscription goes away mid-run.
		report.Details = append(report.Details, s.runOne(context.WithoutCancel(ctx), campaign, now))
	}
	report.Processed = len(report.Details)
	return report, nil
}

func (s *CampaignScheduler) runOne(ctx context.Context, campaign *domain.Campaign, processedAt time.Time) (detail RunDetail) {
	detail = RunDetail{ID: campaign.ID}

	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("unexpected error: %v", r)
			log.Printf("[Scheduler] Campaign %s panicked: %v", campaign.ID, r)
			if err := s.campaignRepo.MarkFailed(ctx, campaign.ID, reason, &processedAt); err != nil {
				log.Printf("[Scheduler] Failed to mark campaign %s as failed: %v", campaign.ID, err)
			}
			detail.Status = domain.StatusFailed
			detail.Reason = reason
		}
	}()

	log.Printf("[Scheduler] Executing campaign %s (%q)", campaign.ID, campaign.Title)
	summary, status, err := s.pipeline.Run(ctx, campaign, &processedAt)
	detail.Status = status
	if err != nil {
		log.Printf("[Scheduler] Error processing %s: %v", campaign.ID, err)
		detail.Reason = err.Error()
		return detail
	}
	if summary.Total == 0 {
		detail.Reason = "No tokens"
	}
	detail.Sent = summary.Sent
	return detail
}
