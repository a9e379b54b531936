package repository

import (
	"context"
	"errors"
	"time"

	"pushcast-backend/internal/campaign/domain"

	"gorm.io/gorm"
)

// CampaignRepository defines the interface for campaign persistence
type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Campaign, error)
	Delete(ctx context.Context, id string) error

	// FindDue returns scheduled campaigns whose scheduledAt is not after now,
	// oldest first.
	FindDue(ctx context.Context, now time.Time) ([]domain.Campaign, error)

	// Claim moves the campaign to processing if its status is one of from.
	// It reports false when another caller got there first or the campaign
	// is in some other state.
	Claim(ctx context.Context, id string, from ...domain.Status) (bool, error)

	// MarkFailed ends a pass that could not run to completion.
	MarkFailed(ctx context.Context, id, reason string, processedAt *time.Time) error
}

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new instance of campaignRepository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepository) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Campaign{}).Error
}

func (r *campaignRepository) FindDue(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", domain.StatusScheduled, now.UTC()).
		Order("scheduled_at ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepository) Claim(ctx context.Context, id string, from ...domain.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Campaign{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", domain.StatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *campaignRepository) MarkFailed(ctx context.Context, id, reason string, processedAt *time.Time) error {
	updates := map[string]interface{}{
		"status": domain.StatusFailed,
		"error":  reason,
	}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}
	return r.db.WithContext(ctx).Model(&domain.Campaign{}).Where("id = ?", id).Updates(updates).Error
}
