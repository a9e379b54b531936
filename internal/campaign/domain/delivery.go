package domain

import "time"

// NoSubscribersReason is recorded on campaigns whose targeting matched no tokens.
const NoSubscribersReason = "No active subscribers found for criteria"

// DeliveryResult summarizes one dispatch pass. It is never persisted as is.
type DeliveryResult struct {
	TotalTargeted int
	SentCount     int
	FailedCount   int
	DeadTokenIDs  []string
}

// Status is the terminal status a pass produces: sent when at least one
// token accepted the message, failed otherwise.
func (r DeliveryResult) Status() Status {
	if r.SentCount > 0 {
		return StatusSent
	}
	return StatusFailed
}

// Outcome is what the reconciler writes back for one finished pass.
type Outcome struct {
	Result      DeliveryResult
	Reason      string
	FinishedAt  time.Time
	ProcessedAt *time.Time
}

// SendSummary is the dashboard-facing result of a send or resend.
type SendSummary struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	CleanedUp int `json:"cleanedUp"`
}
