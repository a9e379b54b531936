package usecase

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"pushcast-backend/internal/audience/domain"
	"pushcast-backend/internal/audience/repository"

	"github.com/google/uuid"
)

type audienceUsecase struct {
	siteRepo  repository.SiteRepository
	tokenRepo repository.TokenRepository
}

// NewAudienceUsecase creates a new instance of audienceUsecase
func NewAudienceUsecase(siteRepo repository.SiteRepository, tokenRepo repository.TokenRepository) AudienceUsecase {
	return &audienceUsecase{
		siteRepo:  siteRepo,
		tokenRepo: tokenRepo,
	}
}

func (u *audienceUsecase) RegisterSite(ctx context.Context, ownerID string, req RegisterSiteRequest) (*domain.Site, error) {
	hostname := NormalizeHostname(req.Domain)
	if hostname == "" || strings.ContainsAny(hostname, " /") {
		return nil, ErrInvalidSite
	}

	existing, err := u.siteRepo.FindByOwnerAndHostname(ctx, ownerID, hostname)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSiteExists
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = hostname
	}
	site := &domain.Site{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Hostname:    hostname,
		Name:        name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}
	log.Printf("[Audience] Registered site %s (%s) for owner %s", site.Hostname, site.ID, ownerID)
	return site, nil
}

func (u *audienceUsecase) ListSites(ctx context.Context, ownerID string) ([]domain.SiteWithCount, error) {
	sites, err := u.siteRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sites))
	for _, s := range sites {
		ids = append(ids, s.ID)
	}
	counts, err := u.tokenRepo.CountByDomains(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SiteWithCount, 0, len(sites))
	for _, s := range sites {
		result = append(result, domain.SiteWithCount{Site: s, SubscriberCount: counts[s.ID]})
	}
	return result, nil
}

func (u *audienceUsecase) DeleteSite(ctx context.Context, ownerID, siteID string) (int64, error) {
	site, err := u.ownedSite(ctx, ownerID, siteID)
	if err != nil {
		return 0, err
	}
	removed, err := u.siteRepo.Delete(ctx, site.ID)
	if err != nil {
		return 0, err
	}
	log.Printf("[Audience] Deleted site %s and %d tokens", site.Hostname, removed)
	return removed, nil
}

func (u *audienceUsecase) ListTokens(ctx context.Context, ownerID, siteID, platform string) ([]domain.Token, error) {
	if siteID != "" {
		if _, err := u.ownedSite(ctx, ownerID, siteID); err != nil {
			return nil, err
		}
	}
	var p domain.Platform
	if platform != "" && platform != "all" {
		p = domain.ParsePlatform(platform)
	}
	return u.tokenRepo.ListByOwner(ctx, ownerID, siteID, p)
}

func (u *audienceUsecase) Subscribe(ctx context.Context, req SubscribeRequest) (*domain.Token, error) {
	if req.Token == "" || req.DomainID == "" {
		return nil, ErrMissingToken
	}

	site, err := u.siteRepo.FindByID(ctx, req.DomainID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrSiteNotFound
	}
	if !OriginAllowed(req.Origin, site.Hostname) {
		log.Printf("[Audience] Rejected subscription for %s from origin %q", site.Hostname, req.Origin)
		return nil, ErrOriginMismatch
	}

	now := time.Now().UTC()
	token := &domain.Token{
		PushToken:      req.Token,
		DomainID:       site.ID,
		DomainHostname: site.Hostname,
		OwnerID:        site.OwnerID,
		Platform:       domain.ParsePlatform(req.Platform),
		IP:             req.IP,
		Country:        orDefault(req.Country, "Unknown"),
		CountryCode:    orDefault(req.CountryCode, "UN"),
		UserAgent:      req.UserAgent,
		Language:       req.Language,
		CreatedAt:      now,
		LastActiveAt:   now,
	}
	if req.UserID != "" {
		subscriber := req.UserID
		token.SubscriberID = &subscriber
	}

	if err := u.tokenRepo.Save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (u *audienceUsecase) ownedSite(ctx context.Context, ownerID, siteID string) (*domain.Site, error) {
	site, err := u.siteRepo.FindByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrSiteNotFound
	}
	if site.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return site, nil
}

// NormalizeHostname lowercases a user supplied domain and strips any scheme,
// path or port.
func NormalizeHostname(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Hostname(), ".")
}

// OriginAllowed reports whether a browser Origin belongs to the registered
// hostname or one of its subdomains. Requests without an Origin (native apps)
// and localhost origins are accepted.
func OriginAllowed(origin, hostname string) bool {
	if origin == "" {
		return true
	}
	host := NormalizeHostname(origin)
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	return host == hostname || strings.HasSuffix(host, "."+hostname)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
