package repository

import (
	"context"
	"errors"

	"pushcast-backend/internal/audience/domain"

	"gorm.io/gorm"
)

// SiteRepository defines the interface for registered site operations
type SiteRepository interface {
	Create(ctx context.Context, site *domain.Site) error
	FindByID(ctx context.Context, id string) (*domain.Site, error)
	FindByOwnerAndHostname(ctx context.Context, ownerID, hostname string) (*domain.Site, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Site, error)
	// Delete removes the site and every token collected under it.
	Delete(ctx context.Context, id string) (int64, error)
}

type siteRepository struct {
	db *gorm.DB
}

// NewSiteRepository creates a new instance of siteRepository
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(ctx context.Context, site *domain.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *siteRepository) FindByID(ctx context.Context, id string) (*domain.Site, error) {
	var site domain.Site
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) FindByOwnerAndHostname(ctx context.Context, ownerID, hostname string) (*domain.Site, error) {
	var site domain.Site
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND hostname = ?", ownerID, hostname).
		First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Site, error) {
	var sites []domain.Site
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&sites).Error
	if err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *siteRepository) Delete(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("domain_id = ?", id).Delete(&domain.Token{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Where("id = ?", id).Delete(&domain.Site{}).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
