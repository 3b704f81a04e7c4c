package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
)

// Message is one fully-rendered outgoing email.
type Message struct {
	From        string
	To          string
	Subject     string
	HTML        string
	Attachments []dto.Attachment
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig holds relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	DefaultFrom string
}

// Addr returns the relay address.
func (c *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPSender delivers messages over an authenticated SMTP relay.
type SMTPSender struct {
	config *SMTPConfig
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(config *SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

const mimeBoundary = "lycs-immo-mail-boundary"

// Send delivers one message. Attachments arrive base64-encoded and are passed
// through into the MIME body as-is.
func (s *SMTPSender) Send(_ context.Context, msg *Message) error {
	from := msg.From
	if from == "" {
		from = s.config.DefaultFrom
	}

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	return smtp.SendMail(s.config.Addr(), auth, from, []string{msg.To}, buildMIME(from, msg))
}

func buildMIME(from string, msg *Message) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(msg.HTML)
		return []byte(b.String())
	}

	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&b, "Content-Type: %s; name=%q\r\n", contentType, att.Filename)
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", att.Filename)
		b.WriteString(wrapBase64(att.Content))
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return []byte(b.String())
}

// wrapBase64 re-wraps base64 content at RFC-compliant line length. Invalid
// input is passed through untouched; the relay rejects it with a clearer
// error than we could produce here.
func wrapBase64(content string) string {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return content
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	const lineLen = 76
	var b strings.Builder
	for len(encoded) > lineLen {
		b.WriteString(encoded[:lineLen])
		b.WriteString("\r\n")
		encoded = encoded[lineLen:]
	}
	b.WriteString(encoded)
	return b.String()
}
