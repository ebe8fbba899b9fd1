package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DepartmentRepository captures the persistence operations needed by the
// department service.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) (Department, error)
	GetDepartment(ctx context.Context, id string) (Department, error)
	UpdateDepartment(ctx context.Context, department Department) (Department, error)
	ListDepartments(ctx context.Context, activeOnly bool) ([]Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

// DepartmentService orchestrates validation and persistence for departments.
// Department names are unique case-insensitively; the repository enforces the
// constraint and reports ErrDuplicate.
type DepartmentService struct {
	departments DepartmentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDepartmentService wires dependencies for the department service.
func NewDepartmentService(departments DepartmentRepository, idGenerator func() string, now func() time.Time) *DepartmentService {
	return NewDepartmentServiceWithLogger(departments, idGenerator, now, nil)
}

// NewDepartmentServiceWithLogger wires dependencies with a specified logger.
func NewDepartmentServiceWithLogger(departments DepartmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DepartmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DepartmentService{
		departments: departments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *DepartmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DepartmentService", operation, attrs...)
}

// CreateDepartment validates input and persists a new department.
func (s *DepartmentService) CreateDepartment(ctx context.Context, input DepartmentInput) (department Department, err error) {
	if s == nil || s.departments == nil {
		err = fmt.Errorf("department repository not configured")
		return
	}

	normalized := normalizeDepartmentInput(input)

	logger := s.loggerWith(ctx, "CreateDepartment", "name", normalized.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("department_id", department.ID).InfoContext(ctx, "department created")
	}()

	vErr := validateDepartmentInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	department, err = s.departments.CreateDepartment(ctx, Department{
		ID:        s.idGenerator(),
		Name:      normalized.Name,
		Status:    normalized.Status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		department = Department{}
	}
	return
}

// GetDepartment returns the department with the given id.
func (s *DepartmentService) GetDepartment(ctx context.Context, id string) (Department, error) {
	if s == nil || s.departments == nil {
		return Department{}, fmt.Errorf("department repository not configured")
	}
	return s.departments.GetDepartment(ctx, id)
}

// ListDepartments returns all departments ordered by name.
func (s *DepartmentService) ListDepartments(ctx context.Context) ([]Department, error) {
	if s == nil || s.departments == nil {
		return nil, fmt.Errorf("department repository not configured")
	}
	return s.departments.ListDepartments(ctx, false)
}

// ListActiveDepartments returns only departments with Active status.
func (s *DepartmentService) ListActiveDepartments(ctx context.Context) ([]Department, error) {
	if s == nil || s.departments == nil {
		return nil, fmt.Errorf("department repository not configured")
	}
	return s.departments.ListDepartments(ctx, true)
}

// UpdateDepartment applies name and status changes to an existing department.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id string, input DepartmentInput) (department Department, err error) {
	if s == nil || s.departments == nil {
		err = fmt.Errorf("department repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDepartment", "department_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "department updated")
	}()

	var existing Department
	existing, err = s.departments.GetDepartment(ctx, id)
	if err != nil {
		return
	}

	normalized := normalizeDepartmentInput(input)
	if normalized.Name == "" {
		normalized.Name = existing.Name
	}
	if normalized.Status == "" {
		normalized.Status = existing.Status
	}

	vErr := validateDepartmentInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = normalized.Name
	updated.Status = normalized.Status
	updated.UpdatedAt = s.now()

	department, err = s.departments.UpdateDepartment(ctx, updated)
	return
}

// DeleteDepartment removes a department. Departments that still have staff
// assigned cannot be deleted; the storage layer rejects the removal.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id string) (err error) {
	if s == nil || s.departments == nil {
		return fmt.Errorf("department repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteDepartment", "department_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "department deleted")
	}()

	err = s.departments.DeleteDepartment(ctx, id)
	return
}

func normalizeDepartmentInput(input DepartmentInput) DepartmentInput {
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = DepartmentActive
	}
	return DepartmentInput{
		Name:   strings.TrimSpace(input.Name),
		Status: status,
	}
}

func validateDepartmentInput(input DepartmentInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Status != DepartmentActive && input.Status != DepartmentInactive {
		vErr.add("status", "status must be Active or Inactive")
	}

	return vErr
}
