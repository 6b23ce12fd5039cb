// Package mailer delivers outbound account email through the Resend
// HTTP API, with a log-only fallback for development.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mealdiary/mealdiary"
)

type ResendMailer struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
}

var _ mealdiary.Mailer = (*ResendMailer)(nil)

func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key not set")
	}

	return &ResendMailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) SendPasswordReset(ctx context.Context, toEmail, link string) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: "Reset your password",
		HTML: `
			<p>A password reset was requested for your account.</p>
			<p>The link below is valid for 15 minutes:</p>
			<p><a href="` + link + `">Reset Password</a></p>
			<p>If you did not request this, you can ignore this email.</p>
		`,
	}

	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewBuffer(b),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New(
			"failed to send password reset email: " + buf.String(),
		)
	}

	return nil
}
