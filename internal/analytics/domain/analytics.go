package domain

import "time"

// Overview is the dashboard headline panel.
type Overview struct {
	TotalDomains           int64   `json:"totalDomains"`
	TotalSubscribers       int64   `json:"totalSubscribers"`
	TotalCampaigns         int64   `json:"totalCampaigns"`
	CampaignsSent          int64   `json:"campaignsSent"`
	DeliveredNotifications int64   `json:"deliveredNotifications"`
	TotalReach             int64   `json:"totalReach"`
	TotalClicks            int64   `json:"totalClicks"`
	ClickRate              float64 `json:"clickRate"`
	NewSubscribers24h      int64   `json:"newSubscribers24h"`
}

// History is a per-day series over the last HistoryDays UTC days.
type History struct {
	Labels   []string        `json:"labels"`
	Datasets HistoryDatasets `json:"datasets"`
}

type HistoryDatasets struct {
	TotalClicks      []int64 `json:"totalClicks"`
	TotalReach       []int64 `json:"totalReach"`
	TotalSubscribers []int64 `json:"totalSubscribers"`
	NewSubscribers   []int64 `json:"newSubscribers"`
}

const HistoryDays = 10

// SentCampaign is the slice of a campaign the history chart needs.
type SentCampaign struct {
	SentAt time.Time
	Sent   int64
	Clicks int64
}
