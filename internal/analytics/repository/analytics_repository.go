package repository

import (
	"context"
	"time"

	"pushcast-backend/internal/analytics/domain"
	audiencedomain "pushcast-backend/internal/audience/domain"
	campaigndomain "pushcast-backend/internal/campaign/domain"

	"gorm.io/gorm"
)

// AnalyticsRepository reads aggregate counts scoped to one owner
type AnalyticsRepository interface {
	CountSites(ctx context.Context, ownerID string) (int64, error)
	CountTokens(ctx context.Context, ownerID string) (int64, error)
	CountTokensCreatedSince(ctx context.Context, ownerID string, since time.Time) (int64, error)
	CountCampaigns(ctx context.Context, ownerID string, status campaigndomain.Status) (int64, error)
	TokenCreationTimes(ctx context.Context, ownerID string, since time.Time) ([]time.Time, error)
	SentCampaignsSince(ctx context.Context, ownerID string, since time.Time) ([]domain.SentCampaign, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new instance of analyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountSites(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&audiencedomain.Site{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

func (r *analyticsRepository) CountTokens(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&audiencedomain.Token{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

func (r *analyticsRepository) CountTokensCreatedSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&audiencedomain.Token{}).
		Where("owner_id = ? AND created_at > ?", ownerID, since).
		Count(&n).Error
	return n, err
}

// CountCampaigns counts the owner's campaigns, narrowed to status unless it is empty.
func (r *analyticsRepository) CountCampaigns(ctx context.Context, ownerID string, status campaigndomain.Status) (int64, error) {
	query := r.db.WithContext(ctx).Model(&campaigndomain.Campaign{}).Where("owner_id = ?", ownerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

func (r *analyticsRepository) TokenCreationTimes(ctx context.Context, ownerID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&audiencedomain.Token{}).
		Where("owner_id = ? AND created_at >= ?", ownerID, since).
		Order("created_at").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *analyticsRepository) SentCampaignsSince(ctx context.Context, ownerID string, since time.Time) ([]domain.SentCampaign, error) {
	var campaigns []campaigndomain.Campaign
	err := r.db.WithContext(ctx).
		Select("sent_at", "stats_total_sent", "stats_total_clicks").
		Where("owner_id = ? AND sent_at IS NOT NULL AND sent_at >= ?", ownerID, since).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.SentCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, domain.SentCampaign{
			SentAt: *c.SentAt,
			Sent:   int64(c.Stats.TotalSent),
			Clicks: int64(c.Stats.TotalClicks),
		})
	}
	return out, nil
}
