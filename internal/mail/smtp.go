package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPMailer delivers through an SMTP relay. Port 465 or smtpSecure uses implicit TLS;
// otherwise STARTTLS is negotiated when the server offers it.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	implicit bool
	timeout  time.Duration
}

func (m *SMTPMailer) Provider() string { return "smtp" }

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	body, err := buildMIME(msg, time.Now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	tlsConfig := &tls.Config{
		ServerName: m.host,
		MinVersion: tls.VersionTLS12,
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var conn net.Conn
	dialer := &net.Dialer{}
	if m.implicit {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if !m.implicit {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if m.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.username, m.password, m.host)
			if err = client.Auth(auth); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}
		}
	}

	if err = client.Mail(msg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to create mail writer: %w", err)
	}
	if _, err = writer.Write(body); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close mail writer: %w", err)
	}

	// the message is accepted once DATA closes; a failed QUIT is not a delivery failure
	_ = client.Quit()
	return nil
}

// buildMIME renders a multipart/alternative message with UTF-8 headers
func buildMIME(msg Message, now time.Time) ([]byte, error) {
	for _, h := range []struct{ name, value string }{
		{"From", msg.From},
		{"From name", msg.FromName},
		{"To", msg.To},
		{"Reply-To", msg.ReplyTo},
	} {
		if strings.ContainsAny(h.value, "\r\n") {
			return nil, fmt.Errorf("%w: %s contains a line break", ErrInvalidHeader, h.name)
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	from := msg.From
	if msg.FromName != "" {
		from = mime.QEncoding.Encode("utf-8", msg.FromName) + " <" + msg.From + ">"
	}

	headers := []struct{ key, value string }{
		{"From", from},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", "<" + uuid.NewString() + "@khabar>"},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	if msg.ReplyTo != "" {
		headers = append(headers, struct{ key, value string }{"Reply-To", msg.ReplyTo})
	}

	var head bytes.Buffer
	for _, h := range headers {
		head.WriteString(h.key + ": " + h.value + "\r\n")
	}
	head.WriteString("\r\n")

	parts := []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, fmt.Errorf("building message: %w", err)
		}
		if _, err := pw.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("building message: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building message: %w", err)
	}

	return append(head.Bytes(), buf.Bytes()...), nil
}
