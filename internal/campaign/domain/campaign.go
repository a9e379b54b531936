package domain

import "time"

// Status is a campaign's position in its delivery lifecycle
type Status string

const (
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// SelectorAll matches every owned domain or every platform.
const SelectorAll = "all"

// Terminal reports whether the status ends a delivery pass.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Targeting selects which tokens receive a campaign.
type Targeting struct {
	DomainID string `json:"domainId"`
	Platform string `json:"platform"`
}

// AllDomains reports whether the campaign targets every domain of its owner.
func (t Targeting) AllDomains() bool {
	return t.DomainID == "" || t.DomainID == SelectorAll
}

// Stats are a campaign's delivery counters. Send counters hold the most
// recent pass; TotalClicks accumulates.
type Stats struct {
	TotalTargeted int `json:"totalTargeted"`
	TotalSent     int `json:"totalSent"`
	TotalFailed   int `json:"totalFailed"`
	TotalClicks   int `json:"totalClicks"`
}

type Campaign struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	OwnerID       string     `json:"userId" gorm:"index;not null"`
	Title         string     `json:"title" gorm:"not null"`
	Body          string     `json:"body" gorm:"not null"`
	Icon          string     `json:"icon,omitempty"`
	ActionURL     string     `json:"actionUrl"`
	Targeting     Targeting  `json:"targeting" gorm:"embedded;embeddedPrefix:target_"`
	Status        Status     `json:"status" gorm:"index;not null;default:draft"`
	Stats         Stats      `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ScheduledAt   *time.Time `json:"scheduledAt" gorm:"index"`
	SentAt        *time.Time `json:"sentAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	LastClickedAt *time.Time `json:"lastClickedAt,omitempty"`
}

// GlobalStatsID is the primary key of the singleton GlobalStats row.
const GlobalStatsID = "global"

// GlobalStats holds counters summed across every campaign. The row is created
// on first increment and only ever grows.
type GlobalStats struct {
	ID          string    `json:"-" gorm:"primaryKey"`
	TotalReach  int64     `json:"totalReach"`
	TotalClicks int64     `json:"totalClicks"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (GlobalStats) TableName() string { return "global_stats" }
