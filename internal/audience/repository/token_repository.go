package repository

import (
	"context"
	"errors"

	"pushcast-backend/internal/audience/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository defines the interface for push token operations
type TokenRepository interface {
	// Save inserts a token, or refreshes the existing row for the same
	// subscriber on the same domain, or for the same push token.
	Save(ctx context.Context, token *domain.Token) error
	// Find returns tokens matching the query, most recently active first.
	Find(ctx context.Context, q domain.TokenQuery) ([]domain.Token, error)
	ListByOwner(ctx context.Context, ownerID, domainID string, platform domain.Platform) ([]domain.Token, error)
	CountByDomains(ctx context.Context, domainIDs []string) (map[string]int64, error)
	// DeleteByIDs removes tokens by row id in one statement and reports how
	// many rows were actually removed.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new instance of tokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

var refreshedColumns = []string{
	"push_token", "domain_id", "domain_hostname", "owner_id", "platform",
	"subscriber_id", "ip", "country", "country_code", "user_agent", "language", "last_active_at",
}

func (r *tokenRepository) Save(ctx context.Context, token *domain.Token) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if token.SubscriberID != nil && *token.SubscriberID != "" {
			var existing domain.Token
			err := tx.Where("subscriber_id = ? AND domain_id = ?", *token.SubscriberID, token.DomainID).
				First(&existing).Error
			if err == nil {
				token.ID = existing.ID
				token.CreatedAt = existing.CreatedAt
				return tx.Model(&existing).Select(refreshedColumns).Updates(token).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if token.ID == "" {
			token.ID = token.PushToken
		}
		// Atomic upsert: INSERT ... ON CONFLICT (id) DO UPDATE
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(refreshedColumns),
		}).Create(token).Error
	})
}

func (r *tokenRepository) Find(ctx context.Context, q domain.TokenQuery) ([]domain.Token, error) {
	if q.Empty() {
		return nil, nil
	}
	var tokens []domain.Token
	err := r.db.WithContext(ctx).
		Scopes(matching(q)).
		Order("last_active_at DESC, id").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func matching(q domain.TokenQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(q.Hostnames) > 0 {
			db = db.Where("domain_hostname IN ?", q.Hostnames)
		}
		if q.DomainID != "" {
			db = db.Where("domain_id = ?", q.DomainID)
		}
		if q.Platform != "" {
			db = db.Where("platform = ?", q.Platform)
		}
		return db
	}
}

func (r *tokenRepository) ListByOwner(ctx context.Context, ownerID, domainID string, platform domain.Platform) ([]domain.Token, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if domainID != "" {
		query = query.Where("domain_id = ?", domainID)
	}
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var tokens []domain.Token
	if err := query.Order("last_active_at DESC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) CountByDomains(ctx context.Context, domainIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(domainIDs))
	if len(domainIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DomainID string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Token{}).
		Select("domain_id, COUNT(*) AS total").
		Where("domain_id IN ?", domainIDs).
		Group("domain_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.DomainID] = row.Total
	}
	return counts, nil
}

func (r *tokenRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Token{})
	return res.RowsAffected, res.Error
}
