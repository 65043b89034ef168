package toast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const secretHeader = "X-Resdesk-Secret"

// WebhookPayload is the JSON body posted for each toast
type WebhookPayload struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	DurationMs uint32 `json:"duration_ms"`
}

func payloadFor(t Toast) WebhookPayload {
	return WebhookPayload{
		Text:       t.Description,
		Title:      t.Title,
		DurationMs: uint32(t.Duration / time.Millisecond),
	}
}

// Webhook posts every toast to a URL, e.g. a chat incoming webhook
type Webhook struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhook(url, secret string) *Webhook {
	return &Webhook{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *Webhook) Show(t Toast) error {
	return post(context.Background(), w.client, w.url, w.secret, payloadFor(t))
}

func post(ctx context.Context, client *http.Client, url, secret string, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}
