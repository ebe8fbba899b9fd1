package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/hospital-admin/internal/persistence"
)

const departmentColumns = `id, name, status, created_at, updated_at`

// DepartmentRepository implements persistence.DepartmentRepository using
// SQLite. Name uniqueness is case-insensitive via the schema's NOCASE collation.
type DepartmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDepartmentRepository creates a new SQLite department repository.
func NewDepartmentRepository(pool *ConnectionPool) *DepartmentRepository {
	return &DepartmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateDepartment inserts a new department.
func (r *DepartmentRepository) CreateDepartment(ctx context.Context, department persistence.Department) error {
	if department.ID == "" || department.Name == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO departments (` + departmentColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		department.ID,
		department.Name,
		department.Status,
		department.CreatedAt.UTC().Format(time.RFC3339),
		department.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateDepartment updates an existing department.
func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, department persistence.Department) error {
	if department.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE departments
		SET name = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		department.Name,
		department.Status,
		department.UpdatedAt.UTC().Format(time.RFC3339),
		department.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetDepartment retrieves a department by id.
func (r *DepartmentRepository) GetDepartment(ctx context.Context, id string) (persistence.Department, error) {
	if id == "" {
		return persistence.Department{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)

	department, err := scanDepartment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Department{}, persistence.ErrNotFound
		}
		return persistence.Department{}, r.mapper.MapError(err)
	}
	return department, nil
}

// ListDepartments returns departments ordered by name. When activeOnly is set
// only departments with Active status are returned.
func (r *DepartmentRepository) ListDepartments(ctx context.Context, activeOnly bool) ([]persistence.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	var args []any
	if activeOnly {
		query += ` WHERE status = ?`
		args = append(args, "Active")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var departments []persistence.Department
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return departments, nil
}

// DeleteDepartment removes a department by id. Departments still referenced
// by users fail with ErrForeignKeyViolation.
func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanDepartment(scanner rowScanner) (persistence.Department, error) {
	var department persistence.Department
	var createdAtStr, updatedAtStr string

	err := scanner.Scan(
		&department.ID,
		&department.Name,
		&department.Status,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Department{}, err
	}

	if department.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Department{}, fmt.Errorf("sqlite: failed to parse created_at: %w", err)
	}
	if department.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Department{}, fmt.Errorf("sqlite: failed to parse updated_at: %w", err)
	}
	return department, nil
}
