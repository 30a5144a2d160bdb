package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	"github.com/lexgestion/portal-api/pkg/logger"
	"github.com/lexgestion/portal-api/pkg/messaging"
)

// Provisioner creates the default profile row for freshly signed-up
// identities. It is the asynchronous half the resolver's bounded poll
// waits for; the resolver's own provisioning fallback covers any event
// this worker misses.
type Provisioner struct {
	profiles repository.ProfileRepository
	broker   messaging.Broker
	logger   *logger.Logger
}

func NewProvisioner(profiles repository.ProfileRepository, broker messaging.Broker, logger *logger.Logger) *Provisioner {
	return &Provisioner{
		profiles: profiles,
		broker:   broker,
		logger:   logger,
	}
}

// Run consumes auth events until ctx is cancelled
func (p *Provisioner) Run(ctx context.Context) error {
	msgs, err := p.broker.Subscribe(ctx, identity.Channel)
	if err != nil {
		return err
	}

	p.logger.Info("profile provisioner started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-msgs:
			if !ok {
				return nil
			}
			var event identity.AuthEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				p.logger.Warn(err, "discarding malformed auth event")
				continue
			}
			if event.Type != identity.EventSignedUp {
				continue
			}
			p.provision(ctx, event)
		}
	}
}

func (p *Provisioner) provision(ctx context.Context, event identity.AuthEvent) {
	profile := &model.Profile{
		ID:       event.UserID,
		Email:    event.Email,
		FullName: fullNameFor(event),
		Role:     model.RolePending,
	}

	if err := p.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// The resolver beat us to it; nothing to do.
			return
		}
		p.logger.Error(err, "profile provisioning failed", "user_id", event.UserID)
		return
	}

	p.logger.Info("profile provisioned", "user_id", event.UserID)
}

func fullNameFor(event identity.AuthEvent) string {
	if event.Metadata != nil {
		if name, ok := event.Metadata["full_name"].(string); ok && name != "" {
			return name
		}
	}
	if at := strings.Index(event.Email, "@"); at > 0 {
		return event.Email[:at]
	}
	return "Usuario"
}
