package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPProvider_Validate(t *testing.T) {
	assert.Error(t, NewSMTPProvider(SMTPConfig{}).Validate())
	assert.Error(t, NewSMTPProvider(SMTPConfig{Host: "smtp.local", Port: 587}).Validate())
	assert.NoError(t, NewSMTPProvider(SMTPConfig{Host: "smtp.local", Port: 587, FromEmail: "a@b.ch"}).Validate())
}

func TestSMTPProvider_BuildMessage(t *testing.T) {
	p := NewSMTPProvider(SMTPConfig{Host: "smtp.local", Port: 587, FromEmail: "noreply@mietlink.ch", FromName: "MietLink"})

	m := p.buildMessage(&Email{
		To:      []string{"regie@example.ch"},
		ReplyTo: "vermieter@example.ch",
		Subject: "Top 3 Kandidaten",
		Body:    "Anbei finden Sie die drei besten Kandidaten.",
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "regie@example.ch")
	assert.Contains(t, raw, "MietLink")
	assert.Contains(t, raw, "Top 3 Kandidaten")
	assert.Contains(t, raw, "Reply-To: vermieter@example.ch")
}

func TestNoopProvider(t *testing.T) {
	p := &NoopProvider{}
	assert.ErrorIs(t, p.Send(context.Background(), &Email{}), ErrNoRecipients)
	assert.ErrorIs(t, p.Send(context.Background(), &Email{To: []string{""}}), ErrNoRecipients)
	require.NoError(t, p.Send(context.Background(), &Email{To: []string{"x@y.ch"}}))
	assert.Len(t, p.Sent, 1)
}
