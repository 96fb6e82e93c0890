package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender is the outbound notification collaborator: a template id plus a
// flat string map. No retries; a failure surfaces once and the caller
// decides how soft it is.
type Sender interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

// EmailJSSender posts to an EmailJS-compatible REST endpoint.
type EmailJSSender struct {
	client    *http.Client
	endpoint  string
	serviceID string
	publicKey string
}

const defaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

func NewEmailJSSender(serviceID, publicKey string) *EmailJSSender {
	return &EmailJSSender{
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoint:  defaultEndpoint,
		serviceID: serviceID,
		publicKey: publicKey,
	}
}

// WithEndpoint overrides the API URL, for tests.
func (s *EmailJSSender) WithEndpoint(endpoint string) *EmailJSSender {
	s.endpoint = endpoint
	return s
}

type emailJSPayload struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (s *EmailJSSender) Send(ctx context.Context, templateID string, params map[string]string) error {
	body, err := json.Marshal(emailJSPayload{
		ServiceID:      s.serviceID,
		TemplateID:     templateID,
		UserID:         s.publicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("notify: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify: send failed: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// NopSender descarta todo; útil en desarrollo y tests.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, templateID string, params map[string]string) error {
	return nil
}
