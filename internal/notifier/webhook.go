package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Sender delivers a plain text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to string, body string) error
}

// WebhookSender posts {"to","body"} to an outbound messaging gateway.
type WebhookSender struct {
	url   string
	token string
	http  *http.Client
}

func NewWebhookSender(url string, token string) *WebhookSender {
	return &WebhookSender{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *WebhookSender) Send(ctx context.Context, to string, body string) error {
	if s.url == "" {
		return errors.New("notify webhook url not configured")
	}

	raw, err := json.Marshal(map[string]string{
		"to":   to,
		"body": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Notify texts the customer, skipping events they caused from the chat.
func (s *WebhookSender) Notify(ctx context.Context, ev Event) error {
	body := Message(ev)
	if body == "" || ev.Phone == "" || ev.Origin == OriginChat {
		return nil
	}
	return s.Send(ctx, ev.Phone, body)
}

type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string) error { return nil }
