package push

import "context"

// Outcome is the gateway-independent result of sending one message. The zero
// value is a transient failure, so only an explicit Accepted counts as sent.
type Outcome int

const (
	TransientFailure Outcome = iota
	Accepted
	PermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case PermanentFailure:
		return "permanent_failure"
	default:
		return "transient_failure"
	}
}

// Message is a data-only push payload addressed to a single token.
// Display is left to the client service worker, so no notification block is sent.
type Message struct {
	Token      string
	Title      string
	Body       string
	Icon       string
	URL        string
	CampaignID string
	DomainID   string
}

// Data returns the string map carried as the message data payload.
func (m Message) Data() map[string]string {
	return map[string]string{
		"title":      m.Title,
		"body":       m.Body,
		"icon":       m.Icon,
		"url":        m.URL,
		"campaignId": m.CampaignID,
		"domainId":   m.DomainID,
	}
}

// Gateway delivers one message. Implementations map their own error
// vocabulary onto Outcome; err is returned only for logging.
type Gateway interface {
	Send(ctx context.Context, msg Message) (Outcome, error)
}
