package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
)

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(base BaseRepository) repository.ProfileRepository {
	return &profileRepository{base}
}

// Create inserts a profile keyed by the identity id. The primary key absorbs
// the race with the async provisioner: a concurrent insert surfaces as
// ErrAlreadyExists and the caller re-queries.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.Role,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("profile %s: %w", profile.ID, repository.ErrAlreadyExists)
	}

	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, email, full_name, COALESCE(role, '') AS role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// A row may predate role backfill; absent roles behave as pending.
	profile.Role = model.ParseRole(string(profile.Role))

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	query := `
		UPDATE profiles SET
			full_name = $1,
			updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query,
		profile.FullName,
		time.Now(),
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("profile %s: %w", profile.ID, repository.ErrNotFound)
	}

	return nil
}

func (r *profileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	query := `
		UPDATE profiles SET
			role = $1,
			updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, role, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("profile %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

func (r *profileRepository) List(ctx context.Context, filter *model.ProfileFilter) ([]*model.Profile, error) {
	query := `
		SELECT id, email, full_name, COALESCE(role, '') AS role, created_at, updated_at
		FROM profiles
		WHERE 1 = 1
	`
	args := []interface{}{}

	if filter != nil && filter.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filter.Role)
	}

	if filter != nil && filter.SearchTerm != "" {
		query += fmt.Sprintf(" AND (email ILIKE $%d OR full_name ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.SearchTerm+"%")
	}

	query += " ORDER BY created_at DESC"

	var profiles []*model.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	for _, p := range profiles {
		p.Role = model.ParseRole(string(p.Role))
	}

	return profiles, nil
}
