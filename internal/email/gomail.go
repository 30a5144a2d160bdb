package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/lexgestion/portal-api/config"
)

type gomailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewGomailService builds the SMTP-backed notifier
func NewGomailService(cfg config.SMTPConfig) Service {
	return &gomailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *gomailService) SendRoleApproved(ctx context.Context, to, name, role string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Tu cuenta ha sido habilitada")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hola %s,\n\nTu cuenta fue habilitada con el rol %q. Ya podés ingresar al portal.\n",
		name, role,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send approval email: %w", err)
	}
	return nil
}
