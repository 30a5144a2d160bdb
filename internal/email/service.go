package email

import (
	"context"
)

// Service sends portal notifications
type Service interface {
	SendRoleApproved(ctx context.Context, to, name, role string) error
}

// Noop is used when SMTP is not configured; the portal works without
// outbound mail.
type Noop struct{}

func (Noop) SendRoleApproved(ctx context.Context, to, name, role string) error {
	return nil
}
