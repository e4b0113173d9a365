package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/authkeeper/internal/autherr"
)

// SMTPConfig содержит параметры подключения к SMTP серверу
type SMTPConfig struct {
	Host     string
	Username string
	Password string
	From     string
	Port     int
}

// Addr returns host:port of the SMTP server
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay
type SMTPSender struct {
	logger *slog.Logger
	send   sendFunc
	now    func() time.Time
	cfg    SMTPConfig
}

// NewSMTPSender создает отправителя через SMTP
func NewSMTPSender(logger *slog.Logger, cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		logger: logger,
		cfg:    cfg,
		send:   smtp.SendMail,
		now:    time.Now,
	}
}

// Send delivers one plain-text message. Failures are reported as ErrDelivery.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return autherr.Wrap(autherr.ErrDelivery, to, fmt.Errorf("header contains line break"))
	}

	if err := ctx.Err(); err != nil {
		return autherr.Wrap(autherr.ErrDelivery, to, err)
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := s.buildMessage(to, subject, body)
	if err := s.send(s.cfg.Addr(), auth, s.cfg.From, []string{to}, msg); err != nil {
		return autherr.Wrap(autherr.ErrDelivery, to, err)
	}

	s.logger.DebugContext(ctx, "mail sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

func (s *SMTPSender) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.cfg.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + s.now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
