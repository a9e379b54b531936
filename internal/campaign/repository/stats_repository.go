package repository

import (
	"context"
	"errors"
	"time"

	"pushcast-backend/internal/campaign/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCampaignMissing is returned when a counter update targets a campaign
// that does not exist.
var ErrCampaignMissing = errors.New("campaign does not exist")

// StatsRepository owns every write to delivery and click counters. Campaign
// and global counters are always changed together in one transaction.
type StatsRepository interface {
	// Global returns the singleton counters, zero valued if never written.
	Global(ctx context.Context) (*domain.GlobalStats, error)

	// ApplyOutcome writes a finished pass to the campaign and adds its sent
	// count to the global reach.
	ApplyOutcome(ctx context.Context, campaignID string, outcome domain.Outcome) error

	// RecordClick adds one click to the campaign and to the global counters.
	RecordClick(ctx context.Context, campaignID string, at time.Time) error

	// RecordCampaignClick adds one click to the campaign only.
	RecordCampaignClick(ctx context.Context, campaignID string, at time.Time) error
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new instance of statsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Global(ctx context.Context) (*domain.GlobalStats, error) {
	var stats domain.GlobalStats
	err := r.db.WithContext(ctx).Where("id = ?", domain.GlobalStatsID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.GlobalStats{ID: domain.GlobalStatsID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) ApplyOutcome(ctx context.Context, campaignID string, outcome domain.Outcome) error {
	res := outcome.Result
	updates := map[string]interface{}{
		"status":               res.Status(),
		"sent_at":              outcome.FinishedAt,
		"stats_total_targeted": res.TotalTargeted,
		"stats_total_sent":     res.SentCount,
		"stats_total_failed":   res.FailedCount,
		"error":                outcome.Reason,
	}
	if outcome.ProcessedAt != nil {
		updates["processed_at"] = *outcome.ProcessedAt
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&domain.Campaign{}).Where("id = ?", campaignID).Updates(updates)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrCampaignMissing
		}
		if res.SentCount > 0 {
			return incrementGlobal(tx, "total_reach", int64(res.SentCount))
		}
		return nil
	})
}

func (r *statsRepository) RecordClick(ctx context.Context, campaignID string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := incrementCampaignClicks(tx, campaignID, at); err != nil {
			return err
		}
		return incrementGlobal(tx, "total_clicks", 1)
	})
}

func (r *statsRepository) RecordCampaignClick(ctx context.Context, campaignID string, at time.Time) error {
	return incrementCampaignClicks(r.db.WithContext(ctx), campaignID, at)
}

func incrementCampaignClicks(db *gorm.DB, campaignID string, at time.Time) error {
	res := db.Model(&domain.Campaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]interface{}{
			"stats_total_clicks": gorm.Expr("stats_total_clicks + ?", 1),
			"last_clicked_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCampaignMissing
	}
	return nil
}

// incrementGlobal adds delta to one counter of the singleton row, creating the
// row first if needed. The increment is evaluated by the database.
func incrementGlobal(tx *gorm.DB, column string, delta int64) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.GlobalStats{ID: domain.GlobalStatsID}).Error
	if err != nil {
		return err
	}
	return tx.Model(&domain.GlobalStats{}).
		Where("id = ?", domain.GlobalStatsID).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", delta),
			"updated_at": time.Now(),
		}).Error
}
