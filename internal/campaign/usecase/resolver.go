package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"

	audiencedomain "pushcast-backend/internal/audience/domain"
	audiencerepo "pushcast-backend/internal/audience/repository"
	"pushcast-backend/internal/campaign/domain"
)

// hostnameBatchSize caps the values in one IN lookup. Larger owner domain
// sets are split and the passes unioned.
const hostnameBatchSize = 10

// Resolver turns a campaign's targeting into a deduplicated token list.
type Resolver struct {
	siteRepo  audiencerepo.SiteRepository
	tokenRepo audiencerepo.TokenRepository
}

func NewResolver(siteRepo audiencerepo.SiteRepository, tokenRepo audiencerepo.TokenRepository) *Resolver {
	return &Resolver{siteRepo: siteRepo, tokenRepo: tokenRepo}
}

// Queries builds the token predicates for a targeting rule. An owner without
// domains gets no queries at all.
func (r *Resolver) Queries(ctx context.Context, ownerID string, targeting domain.Targeting) ([]audiencedomain.TokenQuery, error) {
	var queries []audiencedomain.TokenQuery

	if !targeting.AllDomains() {
		site, err := r.siteRepo.FindByID(ctx, targeting.DomainID)
		if err != nil {
			return nil, fmt.Errorf("failed to load target domain: %w", err)
		}
		if site != nil {
			queries = append(queries, audiencedomain.ForHostnames(site.Hostname))
		} else {
			log.Printf("[Resolver] Domain %s not found, matching tokens by raw domain id", targeting.DomainID)
			queries = append(queries, audiencedomain.ForDomainID(targeting.DomainID))
		}
	} else {
		sites, err := r.siteRepo.FindByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load owner domains: %w", err)
		}
		hostnames := make([]string, 0, len(sites))
		for _, s := range sites {
			if s.Hostname != "" {
				hostnames = append(hostnames, s.Hostname)
			}
		}
		for start := 0; start < len(hostnames); start += hostnameBatchSize {
			end := min(start+hostnameBatchSize, len(hostnames))
			queries = append(queries, audiencedomain.ForHostnames(hostnames[start:end]...))
		}
	}

	for i := range queries {
		queries[i] = queries[i].OnPlatform(targeting.Platform)
	}
	return queries, nil
}

// Resolve runs every query and returns one token per push token string.
// An empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, ownerID string, targeting domain.Targeting) ([]audiencedomain.Token, error) {
	queries, err := r.Queries(ctx, ownerID, targeting)
	if err != nil {
		return nil, err
	}

	var all []audiencedomain.Token
	for _, q := range queries {
		tokens, err := r.tokenRepo.Find(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokens: %w", err)
		}
		all = append(all, tokens...)
	}

	unique := Dedupe(all)
	log.Printf("[Resolver] %d rows matched, %d unique tokens", len(all), len(unique))
	return unique, nil
}

// Dedupe collapses rows sharing a push token. The most recently active row
// survives, ties broken by the smaller row id.
func Dedupe(tokens []audiencedomain.Token) []audiencedomain.Token {
	best := make(map[string]audiencedomain.Token, len(tokens))
	for _, t := range tokens {
		if t.PushToken == "" {
			continue
		}
		cur, ok := best[t.PushToken]
		if !ok || newer(t, cur) {
			best[t.PushToken] = t
		}
	}

	out := make([]audiencedomain.Token, 0, len(best))
	for _, t := range best {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out
}

func newer(a, b audiencedomain.Token) bool {
	if !a.LastActiveAt.Equal(b.LastActiveAt) {
		return a.LastActiveAt.After(b.LastActiveAt)
	}
	return a.ID < b.ID
}
