// Package notify defines the outbound notification port used by the login
// protocol. Delivery is best-effort from the core's perspective, but sends
// are awaited so ordering against session materialization is preserved.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ssogate/internal/sentinel"
)

// Variable is a single template substitution passed to the mail relay.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Templates used by the login protocol.
const (
	TemplateNewLogin      = "new-login"
	TemplateNewGuestLogin = "new-guest-login"
	TemplateTwoFactorPin  = "2fa-pin"
)

// Notifier sends a templated notification to an address.
// Implementations must not block indefinitely; a bounded timeout is part of
// the contract.
type Notifier interface {
	Send(ctx context.Context, address, subject, templateKey string, vars []Variable) error
}

// HTTPRelay posts notifications to the platform mail relay.
type HTTPRelay struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRelay constructs a relay client with the given endpoint and timeout.
func NewHTTPRelay(endpoint string, timeout time.Duration) *HTTPRelay {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPRelay{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type relayPayload struct {
	Address   string     `json:"address"`
	Subject   string     `json:"subject"`
	Template  string     `json:"template"`
	Variables []Variable `json:"variables"`
}

// Send posts the notification to the relay endpoint.
func (r *HTTPRelay) Send(ctx context.Context, address, subject, templateKey string, vars []Variable) error {
	body, err := json.Marshal(relayPayload{
		Address:   address,
		Subject:   subject,
		Template:  templateKey,
		Variables: vars,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", sentinel.ErrUnavailable)
	}
	defer res.Body.Close() //nolint:errcheck // response body is not used

	if res.StatusCode >= 500 {
		return fmt.Errorf("mail relay returned %d: %w", res.StatusCode, sentinel.ErrUnavailable)
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("mail relay rejected notification: %d", res.StatusCode)
	}
	return nil
}
