package email

import (
	"context"
	"errors"
)

var ErrNoRecipients = errors.New("email has no recipients")

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет email сообщение
	Send(ctx context.Context, email *Email) error

	// Validate проверяет конфигурацию провайдера
	Validate() error
}

// NoopProvider используется, когда SMTP не настроен: письмо только логируется
type NoopProvider struct {
	Sent []*Email
}

func (p *NoopProvider) Send(ctx context.Context, email *Email) error {
	if !email.hasRecipients() {
		return ErrNoRecipients
	}
	p.Sent = append(p.Sent, email)
	return nil
}

func (p *NoopProvider) Validate() error { return nil }
