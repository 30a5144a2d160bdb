package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
)

type identityRepository struct {
	BaseRepository
}

func NewIdentityRepository(base BaseRepository) repository.IdentityRepository {
	return &identityRepository{base}
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity, passwordHash string) error {
	query := `
		INSERT INTO identities (id, email, password_hash, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	identity.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			identity.ID,
			identity.Email,
			passwordHash,
			identity.Metadata,
			identity.CreatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("identity %s: %w", identity.Email, repository.ErrAlreadyExists)
			}
			return fmt.Errorf("failed to create identity: %w", err)
		}
		return nil
	})
}

func (r *identityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	query := `
		SELECT id, email, metadata, created_at FROM identities
		WHERE id = $1
	`

	var identity model.Identity
	if err := r.db.GetContext(ctx, &identity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("identity %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return &identity, nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*model.Identity, string, error) {
	query := `
		SELECT id, email, password_hash, metadata, created_at FROM identities
		WHERE email = $1
	`

	var row struct {
		model.Identity
		PasswordHash string `db:"password_hash"`
	}
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", fmt.Errorf("identity %s: %w", email, repository.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to get identity by email: %w", err)
	}

	return &row.Identity, row.PasswordHash, nil
}
