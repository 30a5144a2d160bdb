package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	"github.com/lexgestion/portal-api/internal/session"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Outcome is the result of a bounded poll
type Outcome int

const (
	OutcomeResolved Outcome = iota
	OutcomeTimedOut
)

func (o Outcome) String() string {
	if o == OutcomeResolved {
		return "resolved"
	}
	return "timed_out"
}

// PollConfig bounds the post-signup wait for the asynchronously provisioned
// profile row.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    500 * time.Millisecond,
		MaxAttempts: 10,
	}
}

const (
	fallbackFullName   = "Usuario"
	defaultFallbackTTL = 30 * time.Second
)

// Resolver obtains or provisions the durable profile for an identity and
// writes the result into the principal's session store. It is idempotent:
// the primary key on profiles absorbs duplicate-create races between an
// explicit resolve and the async provisioner. A degraded fallback is
// remembered for fallbackTTL so an unreachable store is not retried on
// every request.
type Resolver struct {
	repo      repository.ProfileRepository
	sessions  *session.Manager
	fallbacks *cache.Cache
	logger    *logger.Logger
}

func NewResolver(repo repository.ProfileRepository, sessions *session.Manager,
	fallbackTTL time.Duration, logger *logger.Logger) *Resolver {
	if fallbackTTL <= 0 {
		fallbackTTL = defaultFallbackTTL
	}
	return &Resolver{
		repo:      repo,
		sessions:  sessions,
		fallbacks: cache.New(fallbackTTL, 2*fallbackTTL),
		logger:    logger,
	}
}

// Resolve returns the profile for the identity, creating a default one when
// the row does not exist yet. When the store is unreachable it returns an
// in-memory degraded profile so the caller can still render; that fallback
// is never persisted.
func (r *Resolver) Resolve(ctx context.Context, identity *model.Identity) (*model.Profile, error) {
	if identity == nil {
		return nil, fmt.Errorf("cannot resolve profile without an identity")
	}

	// A recent outage already produced a fallback; the store is not
	// retried until the entry expires.
	if v, ok := r.fallbacks.Get(identity.ID.String()); ok {
		prof := v.(*model.Profile)
		r.remember(identity, prof)
		return prof, nil
	}

	profile, err := r.repo.Get(ctx, identity.ID)
	if err == nil {
		r.remember(identity, profile)
		return profile, nil
	}

	if !errors.Is(err, repository.ErrNotFound) {
		// Transport failure, not a missing row: degrade instead of blocking.
		r.logger.Warn(err, "profile store unreachable, using in-memory fallback", "user_id", identity.ID)
		fallback := r.defaultProfile(identity)
		fallback.Ephemeral = true
		r.fallbacks.SetDefault(identity.ID.String(), fallback)
		r.remember(identity, fallback)
		return fallback, nil
	}

	created := r.defaultProfile(identity)
	if err := r.repo.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Lost the race against the provisioner; the row is there now.
			existing, err := r.repo.Get(ctx, identity.ID)
			if err == nil {
				r.remember(identity, existing)
				return existing, nil
			}
			r.logger.Warn(err, "re-query after provisioning race failed", "user_id", identity.ID)
		} else {
			r.logger.Warn(err, "profile provisioning failed, using in-memory fallback", "user_id", identity.ID)
		}
		created.Ephemeral = true
		r.fallbacks.SetDefault(identity.ID.String(), created)
		r.remember(identity, created)
		return created, nil
	}

	r.remember(identity, created)
	return created, nil
}

// Await polls for the profile row until it appears or the attempt cap is
// reached; provisioning happens out of band after sign-up, with unspecified
// latency. On exhaustion it runs one forced Resolve and accepts whatever
// that returns, including the in-memory fallback. Cancelling ctx stops the
// poll immediately; no timer outlives the caller.
func (r *Resolver) Await(ctx context.Context, identity *model.Identity, cfg PollConfig) (*model.Profile, Outcome, error) {
	if cfg.MaxAttempts <= 0 || cfg.Interval <= 0 {
		cfg = DefaultPollConfig()
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		profile, err := r.repo.Get(ctx, identity.ID)
		if err == nil {
			r.remember(identity, profile)
			return profile, OutcomeResolved, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn(err, "profile poll attempt failed", "attempt", attempt)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, OutcomeTimedOut, ctx.Err()
		case <-ticker.C:
		}
	}

	profile, err := r.Resolve(ctx, identity)
	if err != nil {
		return nil, OutcomeTimedOut, err
	}
	return profile, OutcomeTimedOut, nil
}

func (r *Resolver) defaultProfile(identity *model.Identity) *model.Profile {
	return &model.Profile{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: deriveFullName(identity),
		Role:     model.RolePending,
	}
}

func (r *Resolver) remember(identity *model.Identity, profile *model.Profile) {
	if !profile.Ephemeral {
		r.fallbacks.Delete(identity.ID.String())
	}
	store := r.sessions.For(identity.ID)
	store.SetIdentity(identity)
	store.SetProfile(profile)
}

// deriveFullName prefers the sign-up metadata name, then the email local
// part, then a literal placeholder.
func deriveFullName(identity *model.Identity) string {
	if name := identity.FullNameFromMetadata(); name != "" {
		return name
	}
	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}
	return fallbackFullName
}
