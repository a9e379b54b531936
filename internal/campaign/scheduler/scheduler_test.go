package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	audiencedomain "pushcast-backend/internal/audience/domain"
	audiencerepo "pushcast-backend/internal/audience/repository"
	"pushcast-backend/internal/campaign/domain"
	"pushcast-backend/internal/campaign/repository"
	"pushcast-backend/internal/campaign/usecase"
	"pushcast-backend/pkg/database/dbtest"
	"pushcast-backend/pkg/push"
)

type MockGateway struct {
	SendFunc func(ctx context.Context, msg push.Message) (push.Outcome, error)
}

func (m *MockGateway) Send(ctx context.Context, msg push.Message) (push.Outcome, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return push.Accepted, nil
}

// FaultyTokenRepository wraps a real repository and lets a test replace Find.
type FaultyTokenRepository struct {
	audiencerepo.TokenRepository
	FindFunc func(ctx context.Context, q audiencedomain.TokenQuery) ([]audiencedomain.Token, error)
}

func (f *FaultyTokenRepository) Find(ctx context.Context, q audiencedomain.TokenQuery) ([]audiencedomain.Token, error) {
	if f.FindFunc != nil {
		return f.FindFunc(ctx, q)
	}
	return f.TokenRepository.Find(ctx, q)
}

type schedulerEnv struct {
	scheduler *CampaignScheduler
	campaigns repository.CampaignRepository
	stats     repository.StatsRepository
	sites     audiencerepo.SiteRepository
	tokens    audiencerepo.TokenRepository
}

func newSchedulerEnv(t *testing.T, gateway push.Gateway, resolveTokens audiencerepo.TokenRepository) *schedulerEnv {
	t.Helper()
	db := dbtest.Open(t, &audiencedomain.Site{}, &audiencedomain.Token{}, &domain.Campaign{}, &domain.GlobalStats{})

	env := &schedulerEnv{
		sites:     audiencerepo.NewSiteRepository(db),
		tokens:    audiencerepo.NewTokenRepository(db),
		campaigns: repository.NewCampaignRepository(db),
		stats:     repository.NewStatsRepository(db),
	}
	if resolveTokens == nil {
		resolveTokens = env.tokens
	}
	if f, ok := resolveTokens.(*FaultyTokenRepository); ok && f.TokenRepository == nil {
		f.TokenRepository = env.tokens
	}
	pipeline := usecase.NewPipeline(
		env.campaigns,
		usecase.NewResolver(env.sites, resolveTokens),
		usecase.NewDispatcher(gateway, "https://push.example.com", 10),
		usecase.NewReaper(env.tokens),
		usecase.NewReconciler(env.stats),
	)
	env.scheduler = NewCampaignScheduler(env.campaigns, pipeline, 0)
	return env
}

func newScheduler(t *testing.T) (*CampaignScheduler, repository.CampaignRepository, audiencerepo.SiteRepository, audiencerepo.TokenRepository) {
	t.Helper()
	env := newSchedulerEnv(t, &MockGateway{}, nil)
	return env.scheduler, env.campaigns, env.sites, env.tokens
}

func (e *schedulerEnv) seedAudience(t *testing.T, tokens ...string) {
	t.Helper()
	ctx := context.Background()
	if err := e.sites.Create(ctx, &audiencedomain.Site{ID: "d1", OwnerID: "owner", Hostname: "a.com"}); err != nil {
		t.Fatalf("create site: %v", err)
	}
	for _, tok := range tokens {
		if err := e.tokens.Save(ctx, &audiencedomain.Token{PushToken: tok, DomainID: "d1", DomainHostname: "a.com", Platform: audiencedomain.PlatformWeb}); err != nil {
			t.Fatalf("save token: %v", err)
		}
	}
}

func scheduled(id string, at time.Time) *domain.Campaign {
	at = at.UTC().Truncate(time.Second)
	return &domain.Campaign{
		ID:          id,
		OwnerID:     "owner",
		Title:       "Hi",
		Body:        "There",
		ActionURL:   "/",
		Targeting:   domain.Targeting{DomainID: domain.SelectorAll, Platform: domain.SelectorAll},
		Status:      domain.StatusScheduled,
		ScheduledAt: &at,
	}
}

func TestProcessDue(t *testing.T) {
	s, campaigns, sites, tokens := newScheduler(t)
	ctx := context.Background()
	now := time.Now()

	if err := sites.Create(ctx, &audiencedomain.Site{ID: "d1", OwnerID: "owner", Hostname: "a.com"}); err != nil {
		t.Fatalf("create site: %v", err)
	}
	for _, tok := range []string{"t1", "t2"} {
		if err := tokens.Save(ctx, &audiencedomain.Token{PushToken: tok, DomainID: "d1", DomainHostname: "a.com", Platform: audiencedomain.PlatformWeb}); err != nil {
			t.Fatalf("save token: %v", err)
		}
	}

	withTokens := scheduled("due-with-tokens", now.Add(-10*time.Minute))
	noTokens := scheduled("due-no-tokens", now.Add(-time.Minute))
	noTokens.Targeting.Platform = string(audiencedomain.PlatformIOS)
	future := scheduled("future", now.Add(time.Hour))
	for _, c := range []*domain.Campaign{withTokens, noTokens, future} {
		if err := campaigns.Create(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}

	report, err := s.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("processed = %d, want 2 (details %+v)", report.Processed, report.Details)
	}
	if d := report.Details[0]; d.ID != "due-with-tokens" || d.Status != domain.StatusSent || d.Sent != 2 {
		t.Errorf("first detail = %+v", d)
	}
	if d := report.Details[1]; d.ID != "due-no-tokens" || d.Status != domain.StatusFailed || d.Reason != "No tokens" {
		t.Errorf("second detail = %+v", d)
	}

	got, _ := campaigns.FindByID(ctx, "due-with-tokens")
	if got.Status != domain.StatusSent || got.ProcessedAt == nil || got.Stats.TotalSent != 2 {
		t.Errorf("due-with-tokens = %+v", got)
	}
	got, _ = campaigns.FindByID(ctx, "due-no-tokens")
	if got.Status != domain.StatusFailed || got.Error != domain.NoSubscribersReason || got.Stats.TotalTargeted != 0 {
		t.Errorf("due-no-tokens = %+v", got)
	}
	got, _ = campaigns.FindByID(ctx, "future")
	if got.Status != domain.StatusScheduled || got.ProcessedAt != nil {
		t.Errorf("future campaign was touched: %+v", got)
	}

	report, err = s.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("second ProcessDue: %v", err)
	}
	if report.Processed != 0 {
		t.Errorf("second run processed = %d, want 0", report.Processed)
	}
}

func TestProcessDueUsesInjectedClock(t *testing.T) {
	s, campaigns, _, _ := newScheduler(t)
	ctx := context.Background()

	at := time.Now().Add(time.Hour)
	if err := campaigns.Create(ctx, scheduled("later", at)); err != nil {
		t.Fatalf("create: %v", err)
	}

	s.now = func() time.Time { return at.Add(time.Second) }
	report, err := s.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("processed = %d, want 1", report.Processed)
	}
}

func TestStartStopWithoutInterval(t *testing.T) {
	s, _, _, _ := newScheduler(t)
	s.Start()
	s.Stop()
	s.Stop()
}

func TestProcessDueFinishesClaimedCampaignAfterTriggerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway := &MockGateway{SendFunc: func(_ context.Context, msg push.Message) (push.Outcome, error) {
		// The cron caller disconnects while the pushes are in flight.
		cancel()
		return push.Accepted, nil
	}}
	env := newSchedulerEnv(t, gateway, nil)
	env.seedAudience(t, "t1")
	if err := env.campaigns.Create(context.Background(), scheduled("c1", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("create: %v", err)
	}

	report, err := env.scheduler.ProcessDue(ctx)
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if report.Processed != 1 || report.Details[0].Status != domain.StatusSent {
		t.Errorf("report = %+v, want c1 sent", report)
	}

	got, err := env.campaigns.FindByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != domain.StatusSent || got.Stats.TotalSent != 1 {
		t.Errorf("campaign = %+v, want sent with 1 delivery", got)
	}
	global, err := env.stats.Global(context.Background())
	if err != nil {
		t.Fatalf("Global: %v", err)
	}
	if global.TotalReach != 1 {
		t.Errorf("TotalReach = %d, want 1", global.TotalReach)
	}
}

func TestProcessDueIsolatesFailingCampaigns(t *testing.T) {
	faulty := &FaultyTokenRepository{}
	faulty.FindFunc = func(ctx context.Context, q audiencedomain.TokenQuery) ([]audiencedomain.Token, error) {
		switch q.DomainID {
		case "panics":
			panic("token store exploded")
		case "errors":
			return nil, errors.New("token store unavailable")
		}
		return faulty.TokenRepository.Find(ctx, q)
	}
	env := newSchedulerEnv(t, &MockGateway{}, faulty)
	env.seedAudience(t, "t1", "t2")

	now := time.Now()
	panicking := scheduled("panicking", now.Add(-3*time.Minute))
	panicking.Targeting.DomainID = "panics"
	failing := scheduled("failing", now.Add(-2*time.Minute))
	failing.Targeting.DomainID = "errors"
	healthy := scheduled("healthy", now.Add(-time.Minute))
	for _, c := range []*domain.Campaign{panicking, failing, healthy} {
		if err := env.campaigns.Create(context.Background(), c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}

	report, err := env.scheduler.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if report.Processed != 3 {
		t.Fatalf("processed = %d, want 3 (details %+v)", report.Processed, report.Details)
	}

	tests := []struct {
		id     string
		status domain.Status
		reason string
	}{
		{"panicking", domain.StatusFailed, "token store exploded"},
		{"failing", domain.StatusFailed, "token store unavailable"},
		{"healthy", domain.StatusSent, ""},
	}
	for i, tt := range tests {
		d := report.Details[i]
		if d.ID != tt.id || d.Status != tt.status || !strings.Contains(d.Reason, tt.reason) {
			t.Errorf("detail[%d] = %+v, want %s %s", i, d, tt.id, tt.status)
		}

		got, err := env.campaigns.FindByID(context.Background(), tt.id)
		if err != nil {
			t.Fatalf("FindByID(%s): %v", tt.id, err)
		}
		if got.Status != tt.status || !strings.Contains(got.Error, tt.reason) {
			t.Errorf("%s = status %s error %q, want %s containing %q", tt.id, got.Status, got.Error, tt.status, tt.reason)
		}
		if got.ProcessedAt == nil {
			t.Errorf("%s has no processedAt", tt.id)
		}
	}
	if report.Details[2].Sent != 2 {
		t.Errorf("healthy sent = %d, want 2", report.Details[2].Sent)
	}
}
