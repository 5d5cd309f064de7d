package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/strandtech/storefront/config"
	"github.com/strandtech/storefront/internal/domain"
)

type fakeSender struct {
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return nil
}

func TestDisabledMailerIsNoop(t *testing.T) {
	m := NewMailer(config.SmtpConfig{Enabled: false})
	require.False(t, m.Enabled())
	require.NoError(t, m.SendMessageNotify(&domain.Message{Fullname: "x"}))
}

func TestEnabledRequiresFullConfig(t *testing.T) {
	m := NewMailer(config.SmtpConfig{Enabled: true, Host: "smtp.test"})
	require.False(t, m.Enabled(), "sender and notify address are mandatory")
}

func TestSendMessageNotify(t *testing.T) {
	m := NewMailer(config.SmtpConfig{
		Enabled:  true,
		Host:     "smtp.test",
		Port:     587,
		Sender:   "noreply@store.test",
		NotifyTo: "ops@store.test",
	})
	fake := &fakeSender{}
	m.sender = fake

	err := m.SendMessageNotify(&domain.Message{
		ID:       7,
		Fullname: "Jordan Blake",
		Email:    "jordan@example.com",
		Message:  "Is the HP LaserJet in stock?",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	require.Equal(t, []string{"ops@store.test"}, fake.sent[0].GetHeader("To"))
	require.Contains(t, fake.sent[0].GetHeader("Subject")[0], "Jordan Blake")
}
