package mailer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/strandtech/storefront/config"
	"github.com/strandtech/storefront/internal/domain"
)

// Sender abstracts the SMTP dialer so tests can swap it out.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends operator notifications for incoming contact messages. It is a
// no-op unless smtp is enabled in the configuration.
type Mailer struct {
	cfg    config.SmtpConfig
	sender Sender
}

func NewMailer(cfg config.SmtpConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	if m.Enabled() {
		m.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Passwd)
	}
	return m
}

// Enabled reports whether notifications are configured end to end.
func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled && m.cfg.Host != "" && m.cfg.Sender != "" && m.cfg.NotifyTo != ""
}

// SendMessageNotify forwards one stored contact message to the configured
// operator address. Errors are returned for the caller to log; delivery
// failures never affect the HTTP response that stored the message.
func (m *Mailer) SendMessageNotify(msg *domain.Message) error {
	if !m.Enabled() || m.sender == nil {
		return nil
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s <%s>\r\n\r\n", msg.Fullname, msg.Email)
	body.WriteString(msg.Message)

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.cfg.Sender)
	mail.SetHeader("To", m.cfg.NotifyTo)
	mail.SetHeader("Subject", fmt.Sprintf("New contact message from %s", msg.Fullname))
	mail.SetBody("text/plain", body.String())

	if err := m.sender.DialAndSend(mail); err != nil {
		return err
	}
	zap.L().Info("contact message notification sent",
		zap.Int64("message_id", msg.ID),
		zap.String("to", m.cfg.NotifyTo))
	return nil
}
