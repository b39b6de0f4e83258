package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Config holds Firebase Cloud Messaging configuration.
type Config struct {
	ServerKey string
	ProjectID string
}

// Client sends push notifications via the FCM HTTP v1 API.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Message is one push to one device token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification *fcmNotification  `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
	Webpush      *fcmWebpush       `json:"webpush,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority     string                  `json:"priority,omitempty"`
	Notification *fcmAndroidNotification `json:"notification,omitempty"`
}

type fcmAndroidNotification struct {
	ClickAction string `json:"click_action,omitempty"`
	Color       string `json:"color,omitempty"`
}

type fcmWebpush struct {
	Notification *fcmWebpushNotification `json:"notification,omitempty"`
	FCMOptions   *fcmOptions             `json:"fcm_options,omitempty"`
}

type fcmWebpushNotification struct {
	Icon string `json:"icon,omitempty"`
}

type fcmOptions struct {
	Link string `json:"link,omitempty"`
}

// Send delivers one push message.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	request := fcmRequest{
		Message: fcmMessage{
			Token: msg.Token,
			Notification: &fcmNotification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
			Android: &fcmAndroid{
				Priority: "high",
				Notification: &fcmAndroidNotification{
					ClickAction: "FLUTTER_NOTIFICATION_CLICK",
					Color:       "#0d9e6e",
				},
			},
			Webpush: &fcmWebpush{
				Notification: &fcmWebpushNotification{
					Icon: "/icon-192.png",
				},
				FCMOptions: &fcmOptions{
					Link: msg.Data["link"],
				},
			},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal FCM request: %w", err)
	}

	url := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", c.config.ProjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send FCM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("FCM returned status %d", resp.StatusCode)
	}

	return nil
}
