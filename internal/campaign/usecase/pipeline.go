package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"pushcast-backend/internal/campaign/domain"
	"pushcast-backend/internal/campaign/repository"
)

// Pipeline runs resolve, dispatch, reap and reconcile for one campaign that
// has already been claimed for processing.
type Pipeline struct {
	campaignRepo repository.CampaignRepository
	resolver     *Resolver
	dispatcher   *Dispatcher
	reaper       *Reaper
	reconciler   *Reconciler
}

func NewPipeline(campaignRepo repository.CampaignRepository, resolver *Resolver, dispatcher *Dispatcher, reaper *Reaper, reconciler *Reconciler) *Pipeline {
	return &Pipeline{
		campaignRepo: campaignRepo,
		resolver:     resolver,
		dispatcher:   dispatcher,
		reaper:       reaper,
		reconciler:   reconciler,
	}
}

// Run delivers the campaign. processedAt is recorded when set. Any error
// before reconciliation leaves the campaign failed with the error as reason,
// so a claimed campaign never stays in processing.
func (p *Pipeline) Run(ctx context.Context, campaign *domain.Campaign, processedAt *time.Time) (*domain.SendSummary, domain.Status, error) {
	tokens, err := p.resolver.Resolve(ctx, campaign.OwnerID, campaign.Targeting)
	if err != nil {
		p.fail(ctx, campaign.ID, err, processedAt)
		return nil, domain.StatusFailed, err
	}

	var result domain.DeliveryResult
	if len(tokens) == 0 {
		log.Printf("[Campaign] Campaign %s has no matching tokens", campaign.ID)
	} else {
		result = p.dispatcher.Dispatch(ctx, campaign, tokens)
	}

	cleanedUp := p.reaper.Reap(ctx, result.DeadTokenIDs)

	status, err := p.reconciler.Reconcile(ctx, campaign.ID, result, processedAt)
	if err != nil {
		err = fmt.Errorf("failed to record delivery results: %w", err)
		p.fail(ctx, campaign.ID, err, processedAt)
		return nil, domain.StatusFailed, err
	}

	log.Printf("[Campaign] Campaign %s finished as %s: %d sent, %d failed, %d cleaned up",
		campaign.ID, status, result.SentCount, result.FailedCount, cleanedUp)
	return &domain.SendSummary{
		Total:     result.TotalTargeted,
		Sent:      result.SentCount,
		Failed:    result.FailedCount,
		CleanedUp: cleanedUp,
	}, status, nil
}

func (p *Pipeline) fail(ctx context.Context, campaignID string, cause error, processedAt *time.Time) {
	if err := p.campaignRepo.MarkFailed(context.WithoutCancel(ctx), campaignID, cause.Error(), processedAt); err != nil {
		log.Printf("[Campaign] Failed to mark campaign %s as failed: %v", campaignID, err)
	}
}
