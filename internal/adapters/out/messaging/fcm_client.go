// internal/adapters/out/messaging/fcm_client.go
package messaging

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	fbmessaging "firebase.google.com/go/v4/messaging"
)

// FCMClient sends push notices through Firebase Cloud Messaging.
//
// Delivery is best-effort by contract: callers log failures and never let
// them propagate into the operation that triggered the notice.
type FCMClient struct {
	client *fbmessaging.Client
}

func NewFCMClient(ctx context.Context, app *firebase.App) (*FCMClient, error) {
	if app == nil {
		return nil, fmt.Errorf("fcm: firebase app is nil")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: messaging client: %w", err)
	}
	return &FCMClient{client: client}, nil
}

// Send delivers a single notification to a device token.
func (c *FCMClient) Send(ctx context.Context, deviceToken, title, body string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("fcm: client is nil")
	}
	if deviceToken == "" {
		return fmt.Errorf("fcm: device token is empty")
	}

	msg := &fbmessaging.Message{
		Token: deviceToken,
		Notification: &fbmessaging.Notification{
			Title: title,
			Body:  body,
		},
	}

	id, err := c.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm: send failed: %w", err)
	}

	log.Printf("[fcm] message sent id=%s title=%q", id, title)
	return nil
}
