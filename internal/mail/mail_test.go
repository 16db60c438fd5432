package mail

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory(sendgridURL, resendURL string) *ProviderFactory {
	return NewFactory(&config.MailConfig{
		SendGridBaseURL: sendgridURL,
		ResendBaseURL:   resendURL,
		Timeout:         5 * time.Second,
	}, zerolog.Nop())
}

func TestFactory_New(t *testing.T) {
	f := testFactory("https://sg.example", "https://rs.example")

	tests := []struct {
		name     string
		settings models.DeliverySettings
		provider string
		wantErr  error
	}{
		{
			name:     "smtp",
			settings: models.DeliverySettings{EmailService: "smtp", SMTPHost: "mail.example.com"},
			provider: "smtp",
		},
		{
			name:     "sendgrid case insensitive",
			settings: models.DeliverySettings{EmailService: " SendGrid ", SendGridAPIKey: "k"},
			provider: "sendgrid",
		},
		{
			name:     "resend",
			settings: models.DeliverySettings{EmailService: "resend", ResendAPIKey: "k"},
			provider: "resend",
		},
		{
			name:     "smtp without host",
			settings: models.DeliverySettings{EmailService: "smtp"},
			wantErr:  ErrMissingCredentials,
		},
		{
			name:     "resend without key",
			settings: models.DeliverySettings{EmailService: "resend"},
			wantErr:  ErrMissingCredentials,
		},
		{
			name:     "unknown provider",
			settings: models.DeliverySettings{EmailService: "pigeon"},
			wantErr:  ErrUnsupportedProvider,
		},
		{
			name:     "empty provider",
			settings: models.DeliverySettings{},
			wantErr:  ErrUnsupportedProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := f.New(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, m.Provider())
		})
	}
}

func TestFactory_SMTPPortDefaults(t *testing.T) {
	f := testFactory("", "")

	m, err := f.New(models.DeliverySettings{EmailService: "smtp", SMTPHost: "h"})
	require.NoError(t, err)
	assert.Equal(t, 587, m.(*SMTPMailer).port)
	assert.False(t, m.(*SMTPMailer).implicit)

	m, err = f.New(models.DeliverySettings{EmailService: "smtp", SMTPHost: "h", SMTPSecure: true})
	require.NoError(t, err)
	assert.Equal(t, 465, m.(*SMTPMailer).port)
	assert.True(t, m.(*SMTPMailer).implicit)

	m, err = f.New(models.DeliverySettings{EmailService: "smtp", SMTPHost: "h", SMTPPort: 465})
	require.NoError(t, err)
	assert.True(t, m.(*SMTPMailer).implicit)
}

var testMessage = Message{
	From:     "noreply@khabar.news",
	FromName: "खबर",
	To:       "desk@khabar.news",
	ReplyTo:  "reader@example.com",
	Subject:  "नया संपर्क संदेश: Hi",
	HTML:     "<p>Hello</p>",
	Text:     "Hello",
}

func TestSendGridMailer_Send(t *testing.T) {
	var got sendGridRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m, err := testFactory(srv.URL, "").New(models.DeliverySettings{EmailService: "sendgrid", SendGridAPIKey: "SG.key"})
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), testMessage))

	assert.Equal(t, "Bearer SG.key", auth)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "desk@khabar.news", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@khabar.news", got.From.Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "reader@example.com", got.ReplyTo.Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
}

func TestResendMailer_Send(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	m, err := testFactory("", srv.URL).New(models.DeliverySettings{EmailService: "resend", ResendAPIKey: "re_key"})
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), testMessage))

	assert.Equal(t, "खबर <noreply@khabar.news>", got.From)
	assert.Equal(t, []string{"desk@khabar.news"}, got.To)
	assert.Equal(t, "<p>Hello</p>", got.HTML)
}

func TestHostedMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	}))
	defer srv.Close()

	m, err := testFactory("", srv.URL).New(models.DeliverySettings{EmailService: "resend", ResendAPIKey: "bad"})
	require.NoError(t, err)

	err = m.Send(context.Background(), testMessage)
	assert.ErrorContains(t, err, "resend API 401")
	assert.ErrorContains(t, err, "invalid key")
}

// fakeSMTPServer accepts one session without TLS or AUTH and reports the transcript
func fakeSMTPServer(t *testing.T) (int, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	transcript := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		var b strings.Builder
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				transcript <- b.String()
				return
			}
			upper := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
				_ = tp.PrintfLine("250 localhost")
			case strings.HasPrefix(upper, "MAIL"), strings.HasPrefix(upper, "RCPT"):
				b.WriteString(line + "\n")
				_ = tp.PrintfLine("250 OK")
			case upper == "DATA":
				_ = tp.PrintfLine("354 go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					transcript <- b.String()
					return
				}
				b.WriteString(strings.Join(lines, "\n"))
				_ = tp.PrintfLine("250 queued")
			case upper == "QUIT":
				_ = tp.PrintfLine("221 bye")
				transcript <- b.String()
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, transcript
}

func TestSMTPMailer_Send(t *testing.T) {
	port, transcript := fakeSMTPServer(t)

	m, err := testFactory("", "").New(models.DeliverySettings{
		EmailService: "smtp",
		SMTPHost:     "127.0.0.1",
		SMTPPort:     port,
	})
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), testMessage))

	select {
	case got := <-transcript:
		assert.Contains(t, got, "MAIL FROM:<noreply@khabar.news>")
		assert.Contains(t, got, "RCPT TO:<desk@khabar.news>")
		assert.Contains(t, got, "To: desk@khabar.news")
		assert.Contains(t, got, "Reply-To: reader@example.com")
		assert.Contains(t, got, "multipart/alternative")
		assert.Contains(t, got, "<p>Hello</p>")
	case <-time.After(5 * time.Second):
		t.Fatal("smtp session did not finish")
	}
}

func TestBuildMIME_EncodesHeaders(t *testing.T) {
	raw, err := buildMIME(testMessage, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Subject: =?utf-8?q?")
	assert.Contains(t, s, "MIME-Version: 1.0")
	assert.Contains(t, s, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, s, "Content-Type: text/html; charset=UTF-8")
	assert.NotContains(t, s, "Subject: नया")
}

func TestBuildMIME_RejectsLineBreaksInHeaders(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Message)
	}{
		{"reply-to", func(m *Message) { m.ReplyTo = "a@b.co\r\nBcc: victim@evil.test" }},
		{"to", func(m *Message) { m.To = "desk@khabar.news\nBcc: victim@evil.test" }},
		{"from", func(m *Message) { m.From = "noreply@khabar.news\r\nX-Injected: 1" }},
		{"from name", func(m *Message) { m.FromName = "खबर\r\nBcc: victim@evil.test" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := testMessage
			tt.modify(&msg)

			raw, err := buildMIME(msg, time.Now())
			require.ErrorIs(t, err, ErrInvalidHeader)
			assert.Nil(t, raw)
		})
	}
}

func TestSMTPMailer_RejectsInjectedHeaderBeforeDialing(t *testing.T) {
	// nothing listens on this port; a dial attempt would surface a connection error instead
	mailer := &SMTPMailer{host: "127.0.0.1", port: 1, timeout: time.Second}

	msg := testMessage
	msg.ReplyTo = "a@b.co\r\nBcc: victim@evil.test"

	err := mailer.Send(context.Background(), msg)
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestContactBody_EscapesInput(t *testing.T) {
	body, err := ContactBody(models.ContactRequest{
		Name:    "<b>Ravi</b>",
		Email:   "ravi@example.com",
		Subject: "Hi",
		Message: "Hello <script>alert(1)</script>",
	}, "खबर", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "नया संपर्क संदेश: Hi", body.Subject)
	assert.Contains(t, body.HTML, "&lt;b&gt;Ravi&lt;/b&gt;")
	assert.NotContains(t, body.HTML, "<script>")
	assert.Contains(t, body.HTML, "संदेश / Message")
	assert.Contains(t, body.Text, "Hello <script>alert(1)</script>")
	assert.NotContains(t, body.HTML, "फ़ोन / Phone")
}

func TestSubmissionBody_OptionalFields(t *testing.T) {
	body, err := SubmissionBody(models.SubmissionRequest{
		Title:        "सड़क दुर्घटना",
		Description:  "विवरण",
		ReporterName: "सीता",
		Contact:      "9999999999",
		DriveLink:    "https://drive.google.com/x",
		Location:     "पटना",
	}, "खबर", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "नई खबर प्रस्तुति: सड़क दुर्घटना", body.Subject)
	assert.Contains(t, body.HTML, `<a href="https://drive.google.com/x">`)
	assert.Contains(t, body.HTML, "पटना")
}
