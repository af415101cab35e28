package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PushClient отправляет уведомления в OneSignal-совместимый шлюз.
type PushClient struct {
	url    string
	appId  string
	apiKey string
	client *http.Client
}

// NewPushClient создает новый экземпляр PushClient.
func NewPushClient(url, appId, apiKey string, timeout time.Duration) *PushClient {
	return &PushClient{
		url:    url,
		appId:  appId,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type pushRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
}

// Send публикует одно уведомление для набора устройств.
func (c *PushClient) Send(ctx context.Context, playerIds []string, title, body string) error {
	payload, err := json.Marshal(pushRequest{
		AppID:            c.appId,
		IncludePlayerIDs: playerIds,
		Headings:         map[string]string{"en": title},
		Contents:         map[string]string{"en": body},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
