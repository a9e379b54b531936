package domain

import "time"

// Site is a website domain registered by an owner. Tokens collected by the
// site's loader are tagged with its hostname.
type Site struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	OwnerID     string    `json:"ownerId" gorm:"index;not null;uniqueIndex:idx_owner_hostname"`
	Hostname    string    `json:"domain" gorm:"not null;uniqueIndex:idx_owner_hostname"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Site) TableName() string { return "domains" }

// SiteWithCount is a Site annotated with its live subscriber count.
type SiteWithCount struct {
	Site
	SubscriberCount int64 `json:"subscriberCount"`
}
