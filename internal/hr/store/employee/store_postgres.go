package employee

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

const employeeColumns = `id, first_name, last_name, email, salary, department_id, owner_id, created_at, updated_at`

// PostgresStore persists employees in PostgreSQL. Every query runs on the
// transaction bound to ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed employee store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, employee *models.Employee) error {
	now := requestcontext.Now(ctx)
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO employees (first_name, last_name, email, salary, department_id, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at`,
		employee.FirstName, employee.LastName, employee.Email, employee.Salary,
		nullID(employee.DepartmentID), int64(employee.OwnerID), now,
	).Scan((*int64)(&employee.ID), &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return mapWriteError("insert employee", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RecordID) (*models.Employee, error) {
	return s.findOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
// It must be called with a transaction bound to ctx.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, id domain.RecordID) (*models.Employee, error) {
	if _, ok := tx.From(ctx); !ok {
		return nil, errors.New("find for update: no transaction in context")
	}
	return s.findOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, id domain.RecordID) (*models.Employee, error) {
	row := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, int64(id))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Employee, error) {
	rows, err := tx.ExecutorFrom(ctx, s.db).QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []*models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

// Update writes every field except salary.
func (s *PostgresStore) Update(ctx context.Context, employee *models.Employee) error {
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, department_id = $5, updated_at = $6
		WHERE id = $1
		RETURNING salary, owner_id, created_at, updated_at`,
		int64(employee.ID), employee.FirstName, employee.LastName, employee.Email,
		nullID(employee.DepartmentID), requestcontext.Now(ctx),
	).Scan(&employee.Salary, (*int64)(&employee.OwnerID), &employee.CreatedAt, &employee.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return mapWriteError("update employee", err)
	}
	return nil
}

// Save writes the salary of employee. It is the transactional write used by
// the salary update.
func (s *PostgresStore) Save(ctx context.Context, employee *models.Employee) error {
	now := requestcontext.Now(ctx)
	res, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE employees SET salary = $2, updated_at = $3 WHERE id = $1`,
		int64(employee.ID), employee.Salary, now,
	)
	if err != nil {
		return mapWriteError("save employee salary", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	employee.UpdatedAt = now
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.RecordID) error {
	res, err := tx.ExecutorFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// OwnerOf returns the identity that created the employee.
func (s *PostgresStore) OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error) {
	var owner int64
	err := tx.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `SELECT owner_id FROM employees WHERE id = $1`, int64(id)).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find employee owner: %w", err)
	}
	return domain.RecordID(owner), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*models.Employee, error) {
	var (
		e    models.Employee
		dept sql.NullInt64
	)
	if err := row.Scan(
		(*int64)(&e.ID), &e.FirstName, &e.LastName, &e.Email, &e.Salary,
		&dept, (*int64)(&e.OwnerID), &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if dept.Valid {
		e.DepartmentID = domain.RecordID(dept.Int64)
	}
	return &e, nil
}

func nullID(id domain.RecordID) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: !id.IsZero()}
}

func mapWriteError(op string, err error) error {
	switch {
	case postgres.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	case postgres.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrInvalidReference)
	case postgres.IsInvalidValue(err):
		return fmt.Errorf("%s: %w", op, sentinel.ErrInvalidValue)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
