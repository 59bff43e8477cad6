package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"campus-news-api/config"

	"go.uber.org/zap"
)

// FCMPusher posts notification payloads to the FCM HTTP endpoint.
type FCMPusher struct {
	cfg    config.PushConfig
	client *http.Client
	logger *zap.Logger
}

func NewFCMPusher(cfg config.PushConfig, logger *zap.Logger) *FCMPusher {
	return &FCMPusher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout.Std()},
		logger: logger,
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

type fcmPayload struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

func (p *FCMPusher) SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	if p.cfg.ServerKey == "" {
		return fmt.Errorf("fcm server key not configured")
	}

	payload := fcmPayload{
		To:       deviceToken,
		Priority: "high",
		Notification: fcmNotification{
			Title: title,
			Body:  body,
			Sound: "default",
		},
		Data: data,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key="+p.cfg.ServerKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Warn("fcm rejected push",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", msg))
		return fmt.Errorf("fcm status %d", resp.StatusCode)
	}

	return nil
}
