package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	audiencedomain "pushcast-backend/internal/audience/domain"
	audiencerepo "pushcast-backend/internal/audience/repository"
	"pushcast-backend/internal/campaign/domain"
	"pushcast-backend/internal/campaign/repository"

	"github.com/google/uuid"
)

type campaignUsecase struct {
	campaignRepo repository.CampaignRepository
	siteRepo     audiencerepo.SiteRepository
	pipeline     *Pipeline
}

// NewCampaignUsecase creates a new instance of campaignUsecase
func NewCampaignUsecase(campaignRepo repository.CampaignRepository, siteRepo audiencerepo.SiteRepository, pipeline *Pipeline) CampaignUsecase {
	return &campaignUsecase{
		campaignRepo: campaignRepo,
		siteRepo:     siteRepo,
		pipeline:     pipeline,
	}
}

func (u *campaignUsecase) CreateCampaign(ctx context.Context, ownerID string, req CreateCampaignRequest) (*domain.Campaign, error) {
	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Message)
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: title and message are required", ErrInvalidCampaign)
	}

	status := domain.Status(req.Status)
	if status == "" {
		status = domain.StatusDraft
	}
	if status != domain.StatusDraft && status != domain.StatusScheduled {
		return nil, fmt.Errorf("%w: status must be draft or scheduled", ErrInvalidCampaign)
	}

	var scheduledAt *time.Time
	if req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scheduledAt must be RFC3339", ErrInvalidCampaign)
		}
		t = t.UTC().Truncate(time.Second)
		scheduledAt = &t
	}
	if status == domain.StatusScheduled && scheduledAt == nil {
		return nil, fmt.Errorf("%w: scheduledAt is required for scheduled campaigns", ErrInvalidCampaign)
	}

	targeting, err := u.normalizeTargeting(ctx, ownerID, req.Targeting)
	if err != nil {
		return nil, err
	}

	actionURL := strings.TrimSpace(req.ActionURL)
	if actionURL == "" {
		actionURL = "/"
	}
	campaign := &domain.Campaign{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Body:        body,
		Icon:        req.Icon,
		ActionURL:   actionURL,
		Targeting:   targeting,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		ScheduledAt: scheduledAt,
	}
	if err := u.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	log.Printf("[Campaign] Created %s campaign %s for owner %s", status, campaign.ID, ownerID)
	return campaign, nil
}

func (u *campaignUsecase) normalizeTargeting(ctx context.Context, ownerID string, t domain.Targeting) (domain.Targeting, error) {
	if t.DomainID == "" {
		t.DomainID = domain.SelectorAll
	}
	switch t.Platform {
	case "", domain.SelectorAll:
		t.Platform = domain.SelectorAll
	case string(audiencedomain.PlatformWeb), string(audiencedomain.PlatformAndroid), string(audiencedomain.PlatformIOS):
	default:
		return t, fmt.Errorf("%w: unknown platform %q", ErrInvalidCampaign, t.Platform)
	}

	if !t.AllDomains() {
		site, err := u.siteRepo.FindByID(ctx, t.DomainID)
		if err != nil {
			return t, err
		}
		if site != nil && site.OwnerID != ownerID {
			return t, ErrForbidden
		}
	}
	return t, nil
}

func (u *campaignUsecase) GetCampaigns(ctx context.Context, ownerID string) ([]domain.Campaign, error) {
	return u.campaignRepo.FindByOwner(ctx, ownerID)
}

func (u *campaignUsecase) GetCampaign(ctx context.Context, ownerID, id string) (*domain.Campaign, error) {
	campaign, err := u.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return campaign, nil
}

func (u *campaignUsecase) DeleteCampaign(ctx context.Context, ownerID, id string) error {
	if _, err := u.GetCampaign(ctx, ownerID, id); err != nil {
		return err
	}
	return u.campaignRepo.Delete(ctx, id)
}

func (u *campaignUsecase) SendCampaign(ctx context.Context, ownerID, id string) (*domain.SendSummary, error) {
	return u.deliver(ctx, ownerID, id, domain.StatusDraft, domain.StatusScheduled)
}

func (u *campaignUsecase) ResendCampaign(ctx context.Context, ownerID, id string) (*domain.SendSummary, error) {
	log.Printf("[Campaign] Resending campaign %s", id)
	return u.deliver(ctx, ownerID, id, domain.StatusSent, domain.StatusFailed)
}

func (u *campaignUsecase) deliver(ctx context.Context, ownerID, id string, from ...domain.Status) (*domain.SendSummary, error) {
	campaign, err := u.GetCampaign(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	claimed, err := u.campaignRepo.Claim(ctx, id, from...)
	if err != nil {
		return nil, err
	}
	if !claimed {
		current, err := u.campaignRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Status == domain.StatusProcessing {
			return nil, ErrCampaignBusy
		}
		return nil, ErrInvalidTransition
	}

	// A dispatch pass runs to completion even if the caller goes away.
	summary, _, err := u.pipeline.Run(context.WithoutCancel(ctx), campaign, nil)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
