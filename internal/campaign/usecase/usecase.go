package usecase

import (
	"context"
	"errors"

	"pushcast-backend/internal/campaign/domain"
)

var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidCampaign   = errors.New("invalid campaign")
	ErrCampaignBusy      = errors.New("campaign is already being processed")
	ErrInvalidTransition = errors.New("campaign cannot be sent from its current status")
)

// CampaignUsecase defines campaign management and the send entry points
type CampaignUsecase interface {
	// CreateCampaign stores a draft or scheduled campaign
	CreateCampaign(ctx context.Context, ownerID string, req CreateCampaignRequest) (*domain.Campaign, error)

	// GetCampaigns lists the owner's campaigns, newest first
	GetCampaigns(ctx context.Context, ownerID string) ([]domain.Campaign, error)

	// GetCampaign returns one campaign with an ownership check
	GetCampaign(ctx context.Context, ownerID, id string) (*domain.Campaign, error)

	// DeleteCampaign removes a campaign
	DeleteCampaign(ctx context.Context, ownerID, id string) error

	// SendCampaign delivers a draft or scheduled campaign now
	SendCampaign(ctx context.Context, ownerID, id string) (*domain.SendSummary, error)

	// ResendCampaign delivers a sent or failed campaign again to its
	// current audience. Send counters are replaced, not added to.
	ResendCampaign(ctx context.Context, ownerID, id string) (*domain.SendSummary, error)
}

// CreateCampaignRequest is the body of POST /api/campaigns
type CreateCampaignRequest struct {
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Icon        string           `json:"icon"`
	ActionURL   string           `json:"actionUrl"`
	Targeting   domain.Targeting `json:"targeting"`
	Status      string           `json:"status"`
	ScheduledAt string           `json:"scheduledAt"`
}
