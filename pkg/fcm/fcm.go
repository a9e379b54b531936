package fcm

import (
	"context"
	"fmt"
	"log"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"pushcast-backend/pkg/push"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
}

// NewApp initializes a Firebase app from an optional credentials file.
// The same app backs both messaging and ID-token verification.
func NewApp(ctx context.Context, credentialsFile, projectID string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// NewClient creates a new FCM client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// Send delivers a data-only message to a single device token.
func (c *Client) Send(ctx context.Context, msg push.Message) (push.Outcome, error) {
	message := &messaging.Message{
		Token: msg.Token,
		Data:  msg.Data(),
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	_, err := c.messagingClient.Send(ctx, message)
	outcome := Classify(err)
	if err != nil {
		return outcome, fmt.Errorf("failed to send FCM message: %w", err)
	}
	return outcome, nil
}

// Classify maps an FCM send error onto a delivery outcome. Only an
// unregistered token is permanent; payload, quota and transport errors
// must not cause the token to be deleted.
func Classify(err error) push.Outcome {
	if err == nil {
		return push.Accepted
	}
	if messaging.IsUnregistered(err) || strings.Contains(err.Error(), "registration-token-not-registered") {
		return push.PermanentFailure
	}
	return push.TransientFailure
}
