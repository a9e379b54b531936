package repository

import (
	"context"
	"testing"
	"time"

	"pushcast-backend/internal/audience/domain"
	"pushcast-backend/pkg/database/dbtest"
)

func strPtr(s string) *string { return &s }

func seedToken(t *testing.T, repo TokenRepository, tok domain.Token) {
	t.Helper()
	if err := repo.Save(context.Background(), &tok); err != nil {
		t.Fatalf("Save(%s): %v", tok.PushToken, err)
	}
}

func TestTokenSaveRefreshesSameSubscriber(t *testing.T) {
	db := dbtest.Open(t, &domain.Site{}, &domain.Token{})
	repo := NewTokenRepository(db)
	ctx := context.Background()

	seedToken(t, repo, domain.Token{PushToken: "tok-1", DomainID: "d1", DomainHostname: "a.com", SubscriberID: strPtr("u1"), Platform: domain.PlatformWeb, LastActiveAt: time.Now()})
	seedToken(t, repo, domain.Token{PushToken: "tok-2", DomainID: "d1", DomainHostname: "a.com", SubscriberID: strPtr("u1"), Platform: domain.PlatformAndroid, LastActiveAt: time.Now()})

	tokens, err := repo.Find(ctx, domain.ForHostnames("a.com"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("len(tokens) = %d, want 1", len(tokens))
	}
	got := tokens[0]
	if got.ID != "tok-1" || got.PushToken != "tok-2" || got.Platform != domain.PlatformAndroid {
		t.Errorf("refreshed token = {ID:%s PushToken:%s Platform:%s}, want {tok-1 tok-2 android}", got.ID, got.PushToken, got.Platform)
	}
}

func TestTokenSaveUpsertsAnonymousByToken(t *testing.T) {
	db := dbtest.Open(t, &domain.Token{})
	repo := NewTokenRepository(db)
	ctx := context.Background()

	seedToken(t, repo, domain.Token{PushToken: "anon", DomainID: "d1", DomainHostname: "a.com", Language: "en", LastActiveAt: time.Now()})
	seedToken(t, repo, domain.Token{PushToken: "anon", DomainID: "d1", DomainHostname: "a.com", Language: "vi", LastActiveAt: time.Now()})

	tokens, err := repo.Find(ctx, domain.ForDomainID("d1"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Language != "vi" {
		t.Fatalf("tokens = %+v, want a single refreshed row", tokens)
	}
}

func TestTokenFindFilters(t *testing.T) {
	db := dbtest.Open(t, &domain.Token{})
	repo := NewTokenRepository(db)
	ctx := context.Background()

	seedToken(t, repo, domain.Token{PushToken: "w1", DomainID: "d1", DomainHostname: "a.com", Platform: domain.PlatformWeb})
	seedToken(t, repo, domain.Token{PushToken: "a1", DomainID: "d1", DomainHostname: "a.com", Platform: domain.PlatformAndroid})
	seedToken(t, repo, domain.Token{PushToken: "w2", DomainID: "d2", DomainHostname: "b.com", Platform: domain.PlatformWeb})

	tests := []struct {
		name  string
		query domain.TokenQuery
		want  int
	}{
		{"one hostname", domain.ForHostnames("a.com"), 2},
		{"two hostnames", domain.ForHostnames("a.com", "b.com"), 3},
		{"platform filter", domain.ForHostnames("a.com", "b.com").OnPlatform("web"), 2},
		{"unknown hostname", domain.ForHostnames("c.com"), 0},
		{"empty query", domain.TokenQuery{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := repo.Find(ctx, tt.query)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(tokens) != tt.want {
				t.Errorf("len = %d, want %d", len(tokens), tt.want)
			}
		})
	}
}

func TestTokenDeleteByIDsIsIdempotent(t *testing.T) {
	db := dbtest.Open(t, &domain.Token{})
	repo := NewTokenRepository(db)
	ctx := context.Background()

	seedToken(t, repo, domain.Token{PushToken: "x", DomainID: "d1", DomainHostname: "a.com"})
	seedToken(t, repo, domain.Token{PushToken: "y", DomainID: "d1", DomainHostname: "a.com"})

	n, err := repo.DeleteByIDs(ctx, []string{"x", "missing"})
	if err != nil || n != 1 {
		t.Fatalf("first DeleteByIDs = (%d, %v), want (1, nil)", n, err)
	}
	n, err = repo.DeleteByIDs(ctx, []string{"x", "missing"})
	if err != nil || n != 0 {
		t.Fatalf("second DeleteByIDs = (%d, %v), want (0, nil)", n, err)
	}
	n, err = repo.DeleteByIDs(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("empty DeleteByIDs = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSiteDeleteCascadesTokens(t *testing.T) {
	db := dbtest.Open(t, &domain.Site{}, &domain.Token{})
	sites := NewSiteRepository(db)
	tokens := NewTokenRepository(db)
	ctx := context.Background()

	if err := sites.Create(ctx, &domain.Site{ID: "d1", OwnerID: "owner", Hostname: "a.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedToken(t, tokens, domain.Token{PushToken: "x", DomainID: "d1", DomainHostname: "a.com"})
	seedToken(t, tokens, domain.Token{PushToken: "y", DomainID: "d1", DomainHostname: "a.com"})
	seedToken(t, tokens, domain.Token{PushToken: "z", DomainID: "d2", DomainHostname: "b.com"})

	removed, err := sites.Delete(ctx, "d1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	site, err := sites.FindByID(ctx, "d1")
	if err != nil || site != nil {
		t.Errorf("FindByID after delete = (%v, %v), want (nil, nil)", site, err)
	}
	counts, err := tokens.CountByDomains(ctx, []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("CountByDomains: %v", err)
	}
	if counts["d1"] != 0 || counts["d2"] != 1 {
		t.Errorf("counts = %v, want d1:0 d2:1", counts)
	}
}
