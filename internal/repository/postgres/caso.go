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

type casoRepository struct {
	BaseRepository
}

func NewCasoRepository(base BaseRepository) repository.CasoRepository {
	return &casoRepository{base}
}

// casoRow flattens the caso/empresa/cliente join for scanning
type casoRow struct {
	model.Caso
	EmpresaNombre    sql.NullString `db:"empresa_nombre"`
	EmpresaCreatedAt sql.NullTime   `db:"empresa_created_at"`
	ClienteEmail     sql.NullString `db:"cliente_email"`
	ClienteFullName  sql.NullString `db:"cliente_full_name"`
	ClienteRole      sql.NullString `db:"cliente_role"`
}

const casoSelect = `
	SELECT c.id, c.empresa_id, c.cliente_id, c.titulo, c.estado, c.created_at,
	       e.nombre AS empresa_nombre, e.created_at AS empresa_created_at,
	       p.email AS cliente_email, p.full_name AS cliente_full_name,
	       COALESCE(p.role, '') AS cliente_role
	FROM casos c
	LEFT JOIN empresas e ON e.id = c.empresa_id
	LEFT JOIN profiles p ON p.id = c.cliente_id
`

func (r *casoRepository) Create(ctx context.Context, caso *model.Caso) error {
	query := `
		INSERT INTO casos (id, empresa_id, cliente_id, titulo, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	caso.ID = uuid.New()
	caso.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		caso.ID,
		caso.EmpresaID,
		caso.ClienteID,
		caso.Titulo,
		caso.Estado,
		caso.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create caso: %w", err)
	}

	return nil
}

func (r *casoRepository) Get(ctx context.Context, id uuid.UUID) (*model.Caso, error) {
	query := casoSelect + ` WHERE c.id = $1`

	var row casoRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("caso %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get caso: %w", err)
	}

	casos := r.assemble([]casoRow{row})
	if err := r.loadAsignaciones(ctx, casos); err != nil {
		return nil, err
	}
	return casos[0], nil
}

func (r *casoRepository) ListAll(ctx context.Context) ([]*model.Caso, error) {
	query := casoSelect + ` ORDER BY c.created_at DESC`
	return r.list(ctx, query)
}

func (r *casoRepository) ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]*model.Caso, error) {
	query := casoSelect + ` WHERE c.cliente_id = $1 ORDER BY c.created_at DESC`
	return r.list(ctx, query, clienteID)
}

func (r *casoRepository) ListByAsignado(ctx context.Context, usuarioID uuid.UUID) ([]*model.Caso, error) {
	query := casoSelect + `
		WHERE c.id IN (SELECT caso_id FROM asignaciones WHERE usuario_id = $1)
		ORDER BY c.created_at DESC`
	return r.list(ctx, query, usuarioID)
}

func (r *casoRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Caso, error) {
	var rows []casoRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list casos: %w", err)
	}

	casos := r.assemble(rows)
	if err := r.loadAsignaciones(ctx, casos); err != nil {
		return nil, err
	}
	return casos, nil
}

func (r *casoRepository) assemble(rows []casoRow) []*model.Caso {
	casos := make([]*model.Caso, 0, len(rows))
	for i := range rows {
		caso := rows[i].Caso
		caso.Asignaciones = []*model.Asignacion{}

		if rows[i].EmpresaNombre.Valid {
			caso.Empresa = &model.Empresa{
				ID:        caso.EmpresaID,
				Nombre:    rows[i].EmpresaNombre.String,
				CreatedAt: rows[i].EmpresaCreatedAt.Time,
			}
		}
		if rows[i].ClienteEmail.Valid {
			caso.Cliente = &model.Profile{
				ID:       caso.ClienteID,
				Email:    rows[i].ClienteEmail.String,
				FullName: rows[i].ClienteFullName.String,
				Role:     model.ParseRole(rows[i].ClienteRole.String),
			}
		}
		casos = append(casos, &caso)
	}
	return casos
}

// asignacionRow flattens the asignacion/profile join for scanning
type asignacionRow struct {
	model.Asignacion
	UsuarioEmail    sql.NullString `db:"usuario_email"`
	UsuarioFullName sql.NullString `db:"usuario_full_name"`
	UsuarioRole     sql.NullString `db:"usuario_role"`
}

func (r *casoRepository) loadAsignaciones(ctx context.Context, casos []*model.Caso) error {
	if len(casos) == 0 {
		return nil
	}

	ids := make([]string, 0, len(casos))
	byID := make(map[uuid.UUID]*model.Caso, len(casos))
	for _, c := range casos {
		ids = append(ids, c.ID.String())
		byID[c.ID] = c
	}

	query := `
		SELECT a.id, a.caso_id, a.usuario_id, a.rol_asignado, a.created_at,
		       p.email AS usuario_email, p.full_name AS usuario_full_name,
		       COALESCE(p.role, '') AS usuario_role
		FROM asignaciones a
		LEFT JOIN profiles p ON p.id = a.usuario_id
		WHERE a.caso_id = ANY($1)
		ORDER BY a.created_at
	`

	var rows []asignacionRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load asignaciones: %w", err)
	}

	for i := range rows {
		asignacion := rows[i].Asignacion
		if rows[i].UsuarioEmail.Valid {
			asignacion.Usuario = &model.Profile{
				ID:       asignacion.UsuarioID,
				Email:    rows[i].UsuarioEmail.String,
				FullName: rows[i].UsuarioFullName.String,
				Role:     model.ParseRole(rows[i].UsuarioRole.String),
			}
		}
		if caso, ok := byID[asignacion.CasoID]; ok {
			caso.Asignaciones = append(caso.Asignaciones, &asignacion)
		}
	}

	return nil
}

func (r *casoRepository) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	query := `UPDATE casos SET estado = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, estado, id)
	if err != nil {
		return fmt.Errorf("failed to update caso estado: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("caso %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// DeleteWithTareas removes a case and every dependent row in one
// transaction; the schema does not cascade on its own.
func (r *casoRepository) DeleteWithTareas(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tareas WHERE caso_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete tareas for caso: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM solicitudes_horas WHERE caso_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete solicitudes for caso: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM asignaciones WHERE caso_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete asignaciones for caso: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM casos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete caso: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("caso %s: %w", id, repository.ErrNotFound)
		}
		return nil
	})
}

func (r *casoRepository) CreateAsignacion(ctx context.Context, asignacion *model.Asignacion) error {
	query := `
		INSERT INTO asignaciones (id, caso_id, usuario_id, rol_asignado, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (caso_id, usuario_id) DO NOTHING
	`

	asignacion.ID = uuid.New()
	asignacion.CreatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		asignacion.ID,
		asignacion.CasoID,
		asignacion.UsuarioID,
		asignacion.RolAsignado,
		asignacion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create asignacion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("asignacion: %w", repository.ErrAlreadyExists)
	}

	return nil
}

func (r *casoRepository) DeleteAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) error {
	query := `DELETE FROM asignaciones WHERE caso_id = $1 AND usuario_id = $2`

	result, err := r.db.ExecContext(ctx, query, casoID, usuarioID)
	if err != nil {
		return fmt.Errorf("failed to delete asignacion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("asignacion: %w", repository.ErrNotFound)
	}

	return nil
}

func (r *casoRepository) HasAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM asignaciones WHERE caso_id = $1 AND usuario_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, casoID, usuarioID); err != nil {
		return false, fmt.Errorf("failed to check asignacion: %w", err)
	}
	return exists, nil
}
