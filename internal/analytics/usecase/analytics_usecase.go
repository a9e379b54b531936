package usecase

import (
	"context"
	"math"
	"time"

	"pushcast-backend/internal/analytics/domain"
	"pushcast-backend/internal/analytics/repository"
	campaigndomain "pushcast-backend/internal/campaign/domain"
	campaignrepo "pushcast-backend/internal/campaign/repository"

	"golang.org/x/sync/errgroup"
)

// AnalyticsUsecase builds the dashboard overview and history charts
type AnalyticsUsecase interface {
	Overview(ctx context.Context, ownerID string) (*domain.Overview, error)
	History(ctx context.Context, ownerID string) (*domain.History, error)
}

type analyticsUsecase struct {
	analyticsRepo repository.AnalyticsRepository
	statsRepo     campaignrepo.StatsRepository
	now           func() time.Time
}

// NewAnalyticsUsecase creates a new instance of analyticsUsecase
func NewAnalyticsUsecase(analyticsRepo repository.AnalyticsRepository, statsRepo campaignrepo.StatsRepository) AnalyticsUsecase {
	return &analyticsUsecase{
		analyticsRepo: analyticsRepo,
		statsRepo:     statsRepo,
		now:           time.Now,
	}
}

func (u *analyticsUsecase) Overview(ctx context.Context, ownerID string) (*domain.Overview, error) {
	var out domain.Overview
	var global *campaigndomain.GlobalStats
	since := u.now().UTC().Add(-24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalDomains, err = u.analyticsRepo.CountSites(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		out.TotalSubscribers, err = u.analyticsRepo.CountTokens(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		out.NewSubscribers24h, err = u.analyticsRepo.CountTokensCreatedSince(gctx, ownerID, since)
		return err
	})
	g.Go(func() (err error) {
		out.TotalCampaigns, err = u.analyticsRepo.CountCampaigns(gctx, ownerID, "")
		return err
	})
	g.Go(func() (err error) {
		out.CampaignsSent, err = u.analyticsRepo.CountCampaigns(gctx, ownerID, campaigndomain.StatusSent)
		return err
	})
	g.Go(func() (err error) {
		global, err = u.statsRepo.Global(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalReach = global.TotalReach
	out.TotalClicks = global.TotalClicks
	out.DeliveredNotifications = global.TotalReach
	out.ClickRate = ClickRate(global.TotalClicks, global.TotalReach)
	return &out, nil
}

// ClickRate is clicks per hundred deliveries, rounded to one decimal.
func ClickRate(clicks, reach int64) float64 {
	if reach <= 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(reach)*1000) / 10
}

func (u *analyticsUsecase) History(ctx context.Context, ownerID string) (*domain.History, error) {
	today := u.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(domain.HistoryDays - 1))

	var (
		before    int64
		created   []time.Time
		campaigns []domain.SentCampaign
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err := u.analyticsRepo.CountTokens(gctx, ownerID)
		if err != nil {
			return err
		}
		recent, err := u.analyticsRepo.TokenCreationTimes(gctx, ownerID, start)
		if err != nil {
			return err
		}
		before, created = total-int64(len(recent)), recent
		return nil
	})
	g.Go(func() (err error) {
		campaigns, err = u.analyticsRepo.SentCampaignsSince(gctx, ownerID, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := &domain.History{
		Labels: make([]string, domain.HistoryDays),
		Datasets: domain.HistoryDatasets{
			TotalClicks:      make([]int64, domain.HistoryDays),
			TotalReach:       make([]int64, domain.HistoryDays),
			TotalSubscribers: make([]int64, domain.HistoryDays),
			NewSubscribers:   make([]int64, domain.HistoryDays),
		},
	}
	index := make(map[string]int, domain.HistoryDays)
	for i := 0; i < domain.HistoryDays; i++ {
		label := start.AddDate(0, 0, i).Format(time.DateOnly)
		h.Labels[i] = label
		index[label] = i
	}

	for _, t := range created {
		if i, ok := index[t.UTC().Format(time.DateOnly)]; ok {
			h.Datasets.NewSubscribers[i]++
		}
	}
	running := before
	for i := range h.Labels {
		running += h.Datasets.NewSubscribers[i]
		h.Datasets.TotalSubscribers[i] = running
	}

	for _, c := range campaigns {
		if i, ok := index[c.SentAt.UTC().Format(time.DateOnly)]; ok {
			h.Datasets.TotalClicks[i] += c.Clicks
			h.Datasets.TotalReach[i] += c.Sent
		}
	}
	return h, nil
}
