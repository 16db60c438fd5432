package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SendGridMailer posts to the SendGrid v3 mail send endpoint
type SendGridMailer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (m *SendGridMailer) Provider() string { return "sendgrid" }

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	req := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: msg.To}}}},
		From:             sendGridAddress{Email: msg.From, Name: msg.FromName},
		Subject:          msg.Subject,
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = &sendGridAddress{Email: msg.ReplyTo}
	}

	// text/plain must precede text/html
	if msg.Text != "" {
		req.Content = append(req.Content, sendGridContent{Type: "text/plain", Value: msg.Text})
	}
	req.Content = append(req.Content, sendGridContent{Type: "text/html", Value: msg.HTML})

	return postJSON(ctx, m.client, strings.TrimRight(m.baseURL, "/")+"/v3/mail/send", m.apiKey, req, "sendgrid")
}

// ResendMailer posts to the Resend emails endpoint
type ResendMailer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

func (m *ResendMailer) Provider() string { return "resend" }

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	req := resendRequest{
		From:    formatAddress(msg.FromName, msg.From),
		To:      []string{msg.To},
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	return postJSON(ctx, m.client, strings.TrimRight(m.baseURL, "/")+"/emails", m.apiKey, req, "resend")
}

func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload any, provider string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s API error: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s API %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
