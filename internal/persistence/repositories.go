package persistence

import (
	"context"
	"time"
)

// UserFilter narrows user queries.
type UserFilter struct {
	DepartmentID string
	Role         string
	Search       string
	Limit        int
	Offset       int
}

// UserRepository exposes CRUD operations for staff accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmployeeID(ctx context.Context, employeeID string) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	DeleteUser(ctx context.Context, id string) error
}

// DepartmentRepository exposes CRUD operations for departments.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) error
	UpdateDepartment(ctx context.Context, department Department) error
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context, activeOnly bool) ([]Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

// ReportRepository stores monthly ward reports keyed by (year, month).
type ReportRepository interface {
	// UpsertReport inserts the report or, when the (year, month) key already
	// exists, overwrites the payload fields in a single atomic statement.
	// Status, created_by, and created_at survive an update.
	UpsertReport(ctx context.Context, report MonthlyReport) error
	SetReportStatus(ctx context.Context, year, month int, status string, updatedBy *string, updatedAt time.Time) error
	GetReport(ctx context.Context, year, month int) (MonthlyReport, error)
	ListReportsByYear(ctx context.Context, year int) ([]MonthlyReport, error)
	ListReports(ctx context.Context, limit, offset int) ([]MonthlyReport, error)
	DeleteReport(ctx context.Context, year, month int) error
}
