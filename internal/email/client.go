// Package email sends confirmation emails through a Postmark-style HTTP
// transport. One request per send, no retries; the per-call timeout bounds
// how long a registration can wait on delivery.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bulletin/internal/platform/config"
	"bulletin/internal/subscription/models"
	dErrors "bulletin/pkg/domain-errors"
)

// Client is the outbound mail transport client. Safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	sender      models.SubscriberEmail
	serverToken string
}

// NewClient builds a mail client from configuration. The configured sender
// address is validated up front so a bad deployment fails at startup.
func NewClient(cfg config.EmailConfig) (*Client, error) {
	sender, err := models.ParseSubscriberEmail(cfg.Sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", cfg.Sender, err)
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout.Std()},
		baseURL:     cfg.BaseURL,
		sender:      sender,
		serverToken: cfg.ServerToken,
	}, nil
}

// sendEmailRequest is the transport payload. Field casing follows the
// provider's API.
type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send delivers one email. Transport failures, timeouts, and non-2xx
// responses all surface as delivery errors; the caller decides whether the
// request as a whole fails.
func (c *Client) Send(ctx context.Context, recipient models.SubscriberEmail, subject, htmlBody, textBody string) error {
	payload := sendEmailRequest{
		From:     c.sender.String(),
		To:       recipient.String(),
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal send email request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build send email request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "mail transport request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("mail transport returned status %d", resp.StatusCode))
	}
	return nil
}
