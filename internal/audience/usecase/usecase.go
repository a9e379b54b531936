package usecase

import (
	"context"
	"errors"

	"pushcast-backend/internal/audience/domain"
)

var (
	ErrSiteNotFound   = errors.New("site not found")
	ErrSiteExists     = errors.New("site already registered")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidSite    = errors.New("invalid domain")
	ErrOriginMismatch = errors.New("origin does not match registered domain")
	ErrMissingToken   = errors.New("token and domainId are required")
)

// AudienceUsecase defines the business logic for sites and their subscribers
type AudienceUsecase interface {
	// RegisterSite adds a hostname to the owner's account
	RegisterSite(ctx context.Context, ownerID string, req RegisterSiteRequest) (*domain.Site, error)

	// ListSites returns the owner's sites with their subscriber counts
	ListSites(ctx context.Context, ownerID string) ([]domain.SiteWithCount, error)

	// DeleteSite removes a site and all tokens collected under it
	DeleteSite(ctx context.Context, ownerID, siteID string) (int64, error)

	// ListTokens returns the owner's subscribers, optionally narrowed
	ListTokens(ctx context.Context, ownerID, siteID, platform string) ([]domain.Token, error)

	// Subscribe records a push token sent by a site's loader
	Subscribe(ctx context.Context, req SubscribeRequest) (*domain.Token, error)
}

// RegisterSiteRequest is the body of POST /api/domains
type RegisterSiteRequest struct {
	Domain      string `json:"domain" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubscribeRequest is what the embeddable loader posts on permission grant.
type SubscribeRequest struct {
	Token       string `json:"token"`
	DomainID    string `json:"domainId"`
	UserID      string `json:"userId"`
	Platform    string `json:"platform"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	UserAgent   string `json:"ua"`
	Language    string `json:"lang"`

	// Filled from the request, not the body
	Origin string `json:"-"`
	IP     string `json:"-"`
}
