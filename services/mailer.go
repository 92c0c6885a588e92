package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"conference-management-api/config"
)

// MailMessage is a fully rendered outbound email handed to a transport.
type MailMessage struct {
	To       string
	CC       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// MailResult carries the transport delivery identifier. The console
// transport returns a synthetic one so callers need no conditional logic.
type MailResult struct {
	DeliveryID string `json:"delivery_id"`
}

type MailOptions struct {
	CC []string
}

// MailTransport delivers one rendered message.
type MailTransport interface {
	Send(ctx context.Context, msg *MailMessage) (MailResult, error)
}

// Mailer renders named templates and hands them to the configured transport.
type Mailer struct {
	transport MailTransport
	logger    zerolog.Logger
}

// NewMailer selects the transport from the explicit mail configuration.
// An unconfigured system falls back to the console transport.
func NewMailer(cfg config.MailConfig, logger zerolog.Logger) *Mailer {
	var transport MailTransport
	switch cfg.Transport {
	case config.MailTransportSMTP:
		transport = newSMTPTransport(cfg)
	case config.MailTransportSendgrid:
		transport = newSendgridTransport(cfg)
	default:
		transport = newConsoleTransport(logger)
	}
	logger.Info().Str("transport", cfg.Transport).Msg("mail transport configured")
	return &Mailer{transport: transport, logger: logger}
}

// NewMailerWithTransport wires an explicit transport; used by tests and by
// the AMQP consumer.
func NewMailerWithTransport(transport MailTransport, logger zerolog.Logger) *Mailer {
	return &Mailer{transport: transport, logger: logger}
}

// Send renders the named template with data and delivers it to recipient.
// CC addresses are lower-cased and deduplicated, and never duplicate the
// recipient.
func (m *Mailer) Send(ctx context.Context, recipient, templateName string, data map[string]string, opts MailOptions) (MailResult, error) {
	content, err := buildEmailContent(templateName, data)
	if err != nil {
		return MailResult{}, err
	}

	msg := &MailMessage{
		To:       strings.ToLower(strings.TrimSpace(recipient)),
		CC:       NormalizeCC(opts.CC, recipient),
		Subject:  content.Subject,
		HTMLBody: content.renderHTML(),
		TextBody: content.renderText(),
	}
	if msg.To == "" {
		return MailResult{}, fmt.Errorf("mail template %s: empty recipient", templateName)
	}

	res, err := m.transport.Send(ctx, msg)
	if err != nil {
		return MailResult{}, err
	}
	m.logger.Info().
		Str("template", templateName).
		Str("to", msg.To).
		Str("delivery_id", res.DeliveryID).
		Msg("email dispatched")
	return res, nil
}

// NormalizeCC lower-cases, trims and deduplicates CC addresses, dropping
// empties and the primary recipient.
func NormalizeCC(cc []string, recipient string) []string {
	recipient = strings.ToLower(strings.TrimSpace(recipient))
	seen := make(map[string]bool, len(cc))
	out := make([]string, 0, len(cc))
	for _, addr := range cc {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || addr == recipient || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

/* ==========================
   Console transport
   ========================== */

type consoleTransport struct {
	logger zerolog.Logger
}

func newConsoleTransport(logger zerolog.Logger) *consoleTransport {
	return &consoleTransport{logger: logger}
}

func (t *consoleTransport) Send(_ context.Context, msg *MailMessage) (MailResult, error) {
	id := uuid.NewString()
	t.logger.Info().
		Str("to", msg.To).
		Strs("cc", msg.CC).
		Str("subject", msg.Subject).
		Str("delivery_id", id).
		Msg("console mail transport")
	t.logger.Info().Msg(msg.TextBody)
	return MailResult{DeliveryID: id}, nil
}

/* ==========================
   SMTP transport
   ========================== */

type smtpTransport struct {
	cfg config.MailConfig
}

func newSMTPTransport(cfg config.MailConfig) *smtpTransport {
	return &smtpTransport{cfg: cfg}
}

func (t *smtpTransport) Send(_ context.Context, msg *MailMessage) (MailResult, error) {
	if t.cfg.SMTPHost == "" || t.cfg.From == "" {
		return MailResult{}, fmt.Errorf("smtp not configured (SMTP_HOST/MAIL_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", t.cfg.From)
	m.SetHeader("To", msg.To)
	if len(msg.CC) > 0 {
		m.SetHeader("Cc", msg.CC...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	m.AddAlternative("text/html", msg.HTMLBody)

	d := mail.NewDialer(t.cfg.SMTPHost, t.cfg.SMTPPort, t.cfg.SMTPUser, t.cfg.SMTPPass)

	// Forced STARTTLS on port 587 (Gmail/Office365 style).
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         t.cfg.SMTPHost,
		InsecureSkipVerify: t.cfg.SkipTLSVerify, // dev only
	}

	if err := d.DialAndSend(m); err != nil {
		return MailResult{}, err
	}
	// SMTP gives no message id back; synthesize one for the caller.
	return MailResult{DeliveryID: uuid.NewString()}, nil
}

/* ==========================
   Sendgrid (HTTP API) transport
   ========================== */

type sendgridTransport struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func newSendgridTransport(cfg config.MailConfig) *sendgridTransport {
	fromName, fromAddr := splitFromHeader(cfg.From)
	return &sendgridTransport{
		client: sendgrid.NewSendClient(cfg.SendgridKey),
		from:   sgmail.NewEmail(fromName, fromAddr),
	}
}

func (t *sendgridTransport) Send(_ context.Context, msg *MailMessage) (MailResult, error) {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))
	for _, cc := range msg.CC {
		p.AddCCs(sgmail.NewEmail("", cc))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(t.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.TextBody),
		sgmail.NewContent("text/html", msg.HTMLBody),
	)

	resp, err := t.client.Send(m)
	if err != nil {
		return MailResult{}, err
	}
	if resp.StatusCode >= 300 {
		return MailResult{}, fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}

	id := ""
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		id = ids[0]
	}
	if id == "" {
		id = uuid.NewString()
	}
	return MailResult{DeliveryID: id}, nil
}

// splitFromHeader splits `Name <addr>` into its parts; a bare address is
// returned with an empty name.
func splitFromHeader(from string) (name, addr string) {
	open := strings.LastIndex(from, "<")
	end := strings.LastIndex(from, ">")
	if open >= 0 && end > open {
		return strings.TrimSpace(from[:open]), strings.TrimSpace(from[open+1 : end])
	}
	return "", strings.TrimSpace(from)
}
