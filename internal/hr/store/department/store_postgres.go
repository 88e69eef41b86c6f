package department

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"employeeapp/internal/hr/models"
	"employeeapp/internal/platform/postgres"
	"employeeapp/pkg/domain"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/platform/tx"
	"employeeapp/pkg/requestcontext"
)

const departmentColumns = `id, name, budget_code, location, owner_id, created_at, updated_at`

// PostgresStore persists departments in PostgreSQL.
// Employee rows are removed by the ON DELETE CASCADE foreign key.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed department store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, department *models.Department) error {
	now := requestcontext.Now(ctx)
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO departments (name, budget_code, location, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at`,
		department.Name, department.BudgetCode, department.Location, int64(department.OwnerID), now,
	).Scan((*int64)(&department.ID), &department.CreatedAt, &department.UpdatedAt)
	if postgres.IsInvalidValue(err) {
		return fmt.Errorf("insert department: %w", sentinel.ErrInvalidValue)
	}
	if err != nil {
		return fmt.Errorf("insert department: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RecordID) (*models.Department, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1`, int64(id))
	d, err := scanDepartment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find department: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+departmentColumns+` FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var out []*models.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, department *models.Department) error {
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		UPDATE departments
		SET name = $2, budget_code = $3, location = $4, updated_at = $5
		WHERE id = $1
		RETURNING owner_id, created_at, updated_at`,
		int64(department.ID), department.Name, department.BudgetCode, department.Location, requestcontext.Now(ctx),
	).Scan((*int64)(&department.OwnerID), &department.CreatedAt, &department.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if postgres.IsInvalidValue(err) {
		return fmt.Errorf("update department: %w", sentinel.ErrInvalidValue)
	}
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.RecordID) error {
	res, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// OwnerOf returns the identity that created the department.
func (s *PostgresStore) OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error) {
	var owner int64
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT owner_id FROM departments WHERE id = $1`, int64(id)).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find department owner: %w", err)
	}
	return domain.RecordID(owner), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDepartment(row scanner) (*models.Department, error) {
	var d models.Department
	if err := row.Scan(
		(*int64)(&d.ID), &d.Name, &d.BudgetCode, &d.Location,
		(*int64)(&d.OwnerID), &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
