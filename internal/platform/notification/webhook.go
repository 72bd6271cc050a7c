package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/reporting"
)

const (
	SignatureHeader = "X-Reminder-Signature"
	TimestampHeader = "X-Reminder-Timestamp"
)

// SignPayload returns the hex HMAC-SHA256 of payload under secret.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches payload under secret.
func VerifySignature(payload []byte, secret, signature string) bool {
	return hmac.Equal([]byte(SignPayload(payload, secret)), []byte(signature))
}

// WebhookOption configures a WebhookTransport.
type WebhookOption func(*WebhookTransport)

func WithHTTPClient(c *http.Client) WebhookOption {
	return func(t *WebhookTransport) { t.client = c }
}

// WithRetryDelays sets the wait before each retry; its length is the retry count.
func WithRetryDelays(delays ...time.Duration) WebhookOption {
	return func(t *WebhookTransport) { t.retryDelays = delays }
}

// DefaultRetryDelays keeps a fully failing delivery well inside one request
// deadline, since dispatch runs inline in POST /reminders/dispatch.
var DefaultRetryDelays = []time.Duration{200 * time.Millisecond, time.Second}

// WebhookTransport POSTs each reminder as a signed OutboxMessage to an
// SMS/e-mail gateway. 5xx responses and network errors are retried, 4xx are not.
// A retry whose wait would pass the context deadline is skipped.
type WebhookTransport struct {
	url         string
	secret      string
	client      *http.Client
	retryDelays []time.Duration
}

func NewWebhookTransport(rawURL, secret string, opts ...WebhookOption) (*WebhookTransport, error) {
	if err := validateWebhookURL(rawURL); err != nil {
		return nil, err
	}
	t := &WebhookTransport{
		url:         rawURL,
		secret:      secret,
		client:      &http.Client{Timeout: 5 * time.Second},
		retryDelays: DefaultRetryDelays,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

func validateWebhookURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("webhook url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("webhook url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

func (t *WebhookTransport) Deliver(ctx context.Context, channel reporting.Channel, destination, message string) error {
	payload, err := json.Marshal(OutboxMessage{
		ID:          uuid.New().String(),
		Channel:     channel,
		Destination: destination,
		Message:     message,
		QueuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= len(t.retryDelays); attempt++ {
		if attempt > 0 {
			delay := t.retryDelays[attempt-1]
			if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= delay {
				return lastErr
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		retry, err := t.post(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

// post sends one attempt and reports whether a failure is worth retrying.
func (t *WebhookTransport) post(ctx context.Context, payload []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TimestampHeader, time.Now().UTC().Format(time.RFC3339))
	if t.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+SignPayload(payload, t.secret))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	err = fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	return resp.StatusCode >= 500, err
}
