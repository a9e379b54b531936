package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pushcast-backend/internal/analytics/repository"
	audiencedomain "pushcast-backend/internal/audience/domain"
	campaigndomain "pushcast-backend/internal/campaign/domain"
	campaignrepo "pushcast-backend/internal/campaign/repository"
	"pushcast-backend/pkg/database/dbtest"

	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestUsecase(t *testing.T) (*analyticsUsecase, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t,
		&audiencedomain.Site{}, &audiencedomain.Token{},
		&campaigndomain.Campaign{}, &campaigndomain.GlobalStats{},
	)
	u := NewAnalyticsUsecase(repository.NewAnalyticsRepository(db), campaignrepo.NewStatsRepository(db)).(*analyticsUsecase)
	u.now = func() time.Time { return fixedNow }
	return u, db
}

func seedToken(t *testing.T, db *gorm.DB, owner string, n int, created time.Time) {
	t.Helper()
	id := fmt.Sprintf("%s-%d-%d", owner, n, created.Unix())
	tok := audiencedomain.Token{
		ID:             id,
		PushToken:      id,
		DomainID:       "site-" + owner,
		DomainHostname: "example.com",
		OwnerID:        owner,
		Platform:       audiencedomain.PlatformWeb,
		CreatedAt:      created,
		LastActiveAt:   created,
	}
	if err := db.Create(&tok).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func seedCampaign(t *testing.T, db *gorm.DB, c campaigndomain.Campaign) {
	t.Helper()
	if c.Title == "" {
		c.Title, c.Body = "Hi", "There"
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
}

func TestClickRate(t *testing.T) {
	tests := []struct {
		clicks, reach int64
		want          float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := ClickRate(tt.clicks, tt.reach); got != tt.want {
			t.Errorf("ClickRate(%d, %d) = %v, want %v", tt.clicks, tt.reach, got, tt.want)
		}
	}
}

func TestOverviewScopesToOwner(t *testing.T) {
	u, db := newTestUsecase(t)
	ctx := context.Background()

	for _, s := range []audiencedomain.Site{
		{ID: "site-alice", OwnerID: "alice", Hostname: "a.example.com"},
		{ID: "site-alice-2", OwnerID: "alice", Hostname: "b.example.com"},
		{ID: "site-bob", OwnerID: "bob", Hostname: "c.example.com"},
	} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed site: %v", err)
		}
	}
	seedToken(t, db, "alice", 1, fixedNow.Add(-48*time.Hour))
	seedToken(t, db, "alice", 2, fixedNow.Add(-time.Hour))
	seedToken(t, db, "bob", 1, fixedNow.Add(-time.Hour))

	seedCampaign(t, db, campaigndomain.Campaign{ID: "c1", OwnerID: "alice", Status: campaigndomain.StatusSent})
	seedCampaign(t, db, campaigndomain.Campaign{ID: "c2", OwnerID: "alice", Status: campaigndomain.StatusDraft})
	seedCampaign(t, db, campaigndomain.Campaign{ID: "c3", OwnerID: "bob", Status: campaigndomain.StatusSent})

	if err := db.Create(&campaigndomain.GlobalStats{ID: campaigndomain.GlobalStatsID, TotalReach: 8, TotalClicks: 3}).Error; err != nil {
		t.Fatalf("seed global: %v", err)
	}

	got, err := u.Overview(ctx, "alice")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if got.TotalDomains != 2 || got.TotalSubscribers != 2 || got.NewSubscribers24h != 1 {
		t.Errorf("audience counts = %+v", got)
	}
	if got.TotalCampaigns != 2 || got.CampaignsSent != 1 {
		t.Errorf("campaign counts = %+v", got)
	}
	if got.TotalReach != 8 || got.TotalClicks != 3 || got.DeliveredNotifications != 8 {
		t.Errorf("global counts = %+v", got)
	}
	if got.ClickRate != 37.5 {
		t.Errorf("ClickRate = %v, want 37.5", got.ClickRate)
	}
}

func TestOverviewEmpty(t *testing.T) {
	u, _ := newTestUsecase(t)

	got, err := u.Overview(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if got.TotalSubscribers != 0 || got.TotalReach != 0 || got.ClickRate != 0 {
		t.Errorf("Overview = %+v, want zeros", got)
	}
}

func TestHistory(t *testing.T) {
	u, db := newTestUsecase(t)
	today := fixedNow.Truncate(24 * time.Hour)

	// Before the window: counted in the running total only.
	seedToken(t, db, "alice", 1, today.AddDate(0, 0, -20))
	seedToken(t, db, "alice", 2, today.AddDate(0, 0, -3).Add(time.Hour))
	seedToken(t, db, "alice", 3, today.AddDate(0, 0, -3).Add(2*time.Hour))
	seedToken(t, db, "alice", 4, today.Add(time.Hour))
	seedToken(t, db, "bob", 1, today.Add(time.Hour))

	sentAt := today.AddDate(0, 0, -1).Add(10 * time.Hour)
	seedCampaign(t, db, campaigndomain.Campaign{
		ID: "c1", OwnerID: "alice", Status: campaigndomain.StatusSent, SentAt: &sentAt,
		Stats: campaigndomain.Stats{TotalSent: 5, TotalClicks: 2},
	})
	old := today.AddDate(0, 0, -30)
	seedCampaign(t, db, campaigndomain.Campaign{
		ID: "c2", OwnerID: "alice", Status: campaigndomain.StatusSent, SentAt: &old,
		Stats: campaigndomain.Stats{TotalSent: 100, TotalClicks: 50},
	})

	h, err := u.History(context.Background(), "alice")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Labels) != 10 {
		t.Fatalf("len(Labels) = %d, want 10", len(h.Labels))
	}
	if h.Labels[0] != "2026-03-01" || h.Labels[9] != "2026-03-10" {
		t.Errorf("Labels = %v", h.Labels)
	}

	wantNew := []int64{0, 0, 0, 0, 0, 0, 2, 0, 0, 1}
	wantTotal := []int64{1, 1, 1, 1, 1, 1, 3, 3, 3, 4}
	for i := range wantNew {
		if h.Datasets.NewSubscribers[i] != wantNew[i] {
			t.Errorf("NewSubscribers[%d] = %d, want %d", i, h.Datasets.NewSubscribers[i], wantNew[i])
		}
		if h.Datasets.TotalSubscribers[i] != wantTotal[i] {
			t.Errorf("TotalSubscribers[%d] = %d, want %d", i, h.Datasets.TotalSubscribers[i], wantTotal[i])
		}
	}
	if h.Datasets.TotalReach[8] != 5 || h.Datasets.TotalClicks[8] != 2 {
		t.Errorf("day 8 reach/clicks = %d/%d, want 5/2", h.Datasets.TotalReach[8], h.Datasets.TotalClicks[8])
	}
	var reach int64
	for _, v := range h.Datasets.TotalReach {
		reach += v
	}
	if reach != 5 {
		t.Errorf("window reach = %d, want 5", reach)
	}
}
