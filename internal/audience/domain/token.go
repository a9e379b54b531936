package domain

import (
	"slices"
	"time"
)

// Platform identifies the client runtime that produced a push token
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// ParsePlatform coerces unknown values to web.
func ParsePlatform(p string) Platform {
	switch Platform(p) {
	case PlatformAndroid:
		return PlatformAndroid
	case PlatformIOS:
		return PlatformIOS
	default:
		return PlatformWeb
	}
}

// Token is one subscribed browser or device installation.
// ID starts out equal to PushToken, but a subscriber refreshing its token
// updates the existing row in place, so the two can diverge.
type Token struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	PushToken      string    `json:"token" gorm:"index;not null"`
	DomainID       string    `json:"domainId" gorm:"index;not null;uniqueIndex:idx_subscriber_domain"`
	DomainHostname string    `json:"domain" gorm:"index"`
	OwnerID        string    `json:"ownerId" gorm:"index"`
	Platform       Platform  `json:"platform" gorm:"index;default:web"`
	SubscriberID   *string   `json:"userId,omitempty" gorm:"uniqueIndex:idx_subscriber_domain"`
	IP             string    `json:"ip"`
	Country        string    `json:"country"`
	CountryCode    string    `json:"country_code"`
	UserAgent      string    `json:"ua"`
	Language       string    `json:"lang"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActiveAt   time.Time `json:"lastActive" gorm:"index"`
}

func (Token) TableName() string { return "push_tokens" }

// TokenQuery is a composable token predicate. Repositories translate it into
// a storage query; Matches evaluates it in memory.
type TokenQuery struct {
	Hostnames []string
	// DomainID matches the raw domain_id column. Only used when a targeted
	// site id no longer resolves to a hostname.
	DomainID string
	Platform Platform
}

// ForHostnames targets tokens collected on any of the given hostnames.
func ForHostnames(hostnames ...string) TokenQuery {
	return TokenQuery{Hostnames: hostnames}
}

// ForDomainID targets tokens by their raw domain id.
func ForDomainID(id string) TokenQuery {
	return TokenQuery{DomainID: id}
}

// OnPlatform narrows the query to one platform; "" or "all" leaves it open.
func (q TokenQuery) OnPlatform(p string) TokenQuery {
	if p == "" || p == "all" {
		q.Platform = ""
		return q
	}
	q.Platform = Platform(p)
	return q
}

// Empty reports whether the query has no domain predicate. Empty queries
// match nothing rather than the whole collection.
func (q TokenQuery) Empty() bool {
	return len(q.Hostnames) == 0 && q.DomainID == ""
}

func (q TokenQuery) Matches(t Token) bool {
	if q.Empty() {
		return false
	}
	if len(q.Hostnames) > 0 && !slices.Contains(q.Hostnames, t.DomainHostname) {
		return false
	}
	if q.DomainID != "" && t.DomainID != q.DomainID {
		return false
	}
	if q.Platform != "" && t.Platform != q.Platform {
		return false
	}
	return true
}
