package scheduler

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// PubSubTrigger runs the scheduler once for every message received on a
// Pub/Sub subscription, typically fed by Cloud Scheduler.
type PubSubTrigger struct {
	client  *pubsub.Client
	subName string
	runner  Runner
}

func NewPubSubTrigger(ctx context.Context, projectID, subscription, credentialsFile string, runner Runner) (*PubSubTrigger, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &PubSubTrigger{
		client:  client,
		subName: subscription,
		runner:  runner,
	}, nil
}

// Start blocks receiving messages until ctx is cancelled.
func (t *PubSubTrigger) Start(ctx context.Context) {
	sub := t.client.Subscription(t.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}
	if !exists {
		log.Printf("[PubSub] Subscription %s does not exist, trigger disabled", t.subName)
		return
	}

	// One run at a time; ticks arriving during a run wait for it.
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	log.Printf("[PubSub] Listening for scheduler ticks on subscription: %s", t.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		t.handle(ctx, msg.ID)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (t *PubSubTrigger) handle(ctx context.Context, messageID string) {
	report, err := t.runner.ProcessDue(ctx)
	if err != nil {
		log.Printf("[PubSub] Scheduler run for message %s failed: %v", messageID, err)
		return
	}
	log.Printf("[PubSub] Scheduler run for message %s processed %d campaigns", messageID, report.Processed)
}

// Close releases the Pub/Sub client
func (t *PubSubTrigger) Close() error {
	return t.client.Close()
}
