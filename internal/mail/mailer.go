package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Skotchmaster/stores_api/internal/logging"
)

// Mailer delivers the two transactional emails the service sends. Delivery
// is fire-and-forget for the callers: a failed send never fails the request
// that triggered it.
type Mailer interface {
	SendRegistration(ctx context.Context, to, username string) error
	SendPasswordReset(ctx context.Context, to, username, resetURL string) error
}

// APIMailer posts to an HTTP transactional-email API.
type APIMailer struct {
	Endpoint string
	APIKey   string
	From     string
	Client   *http.Client
}

func NewAPIMailer(endpoint, apiKey, from string) *APIMailer {
	return &APIMailer{
		Endpoint: endpoint,
		APIKey:   apiKey,
		From:     from,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type address struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
}

type message struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	Subject string    `json:"subject"`
	Plain   string    `json:"plain"`
}

func (m *APIMailer) send(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api: %s: %s", resp.Status, b)
	}
	return nil
}

func (m *APIMailer) SendRegistration(ctx context.Context, to, username string) error {
	return m.send(ctx, message{
		From:    address{Address: m.From, DisplayName: "STORES API"},
		To:      []address{{Address: to, DisplayName: username}},
		Subject: "Successfully signed up",
		Plain:   fmt.Sprintf("Hi %s! You have successfully signed up to the Stores REST API.", username),
	})
}

func (m *APIMailer) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	return m.send(ctx, message{
		From:    address{Address: m.From, DisplayName: "STORES API"},
		To:      []address{{Address: to, DisplayName: username}},
		Subject: "Reset your password",
		Plain: fmt.Sprintf(
			"Hi %s,\nUse the link below to reset your password:\n%s\nIf you didn't request this, you can ignore this email.",
			username, resetURL,
		),
	})
}

// Dispatch runs a send and logs the outcome; the error stops here.
func Dispatch(ctx context.Context, what string, send func(context.Context) error) {
	if err := send(ctx); err != nil {
		logging.FromContext(ctx).Error("email send failed", "email", what, "error", err)
	}
}
