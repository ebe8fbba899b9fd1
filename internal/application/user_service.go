package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, identity Identity, passwordHash string) (Identity, error)
	GetUser(ctx context.Context, id string) (Identity, error)
	GetUserByEmployeeID(ctx context.Context, employeeID string) (Identity, error)
	GetCredentials(ctx context.Context, id string) (Credentials, error)
	UpdateUser(ctx context.Context, identity Identity) (Identity, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ListUsers(ctx context.Context, params ListUsersParams) ([]Identity, error)
	DeleteUser(ctx context.Context, id string) error
}

// DepartmentDirectory answers existence and status questions about departments.
type DepartmentDirectory interface {
	GetDepartment(ctx context.Context, id string) (Department, error)
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

var (
	employeeIDPattern = regexp.MustCompile(`^[A-Z]{2,4}\d{3,6}$`)
	namePattern       = regexp.MustCompile(`^[a-zA-Z\s.\-']+$`)
	letterPattern     = regexp.MustCompile(`[A-Za-z]`)
	digitPattern      = regexp.MustCompile(`\d`)
)

// UserService orchestrates validation, hashing, and persistence for staff
// accounts. Role and department authorization is applied by callers before
// these methods run; the service only carries actor ids for audit purposes.
type UserService struct {
	users        UserRepository
	departments  DepartmentDirectory
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, departments DepartmentDirectory, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, departments, hash, idGenerator, now, nil)
}

// NewUserServiceWithLogger wires dependencies with a specified logger.
func NewUserServiceWithLogger(users UserRepository, departments DepartmentDirectory, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultPasswordParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		departments:  departments,
		hashPassword: hash,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input, verifies the target department is active, and
// persists a new staff account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (identity Identity, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	normalized := normalizeUserInput(input)

	logger := s.loggerWith(ctx, "CreateUser", "employee_id", normalized.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", identity.ID).InfoContext(ctx, "user created")
	}()

	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.requireActiveDepartment(ctx, normalized.DepartmentID); err != nil {
		return
	}

	var hash string
	hash, err = s.hashPassword(normalized.Password)
	if err != nil {
		return
	}

	now := s.now()
	identity, err = s.users.CreateUser(ctx, Identity{
		ID:           s.idGenerator(),
		EmployeeID:   normalized.EmployeeID,
		Name:         normalized.Name,
		Role:         normalized.Role,
		DepartmentID: normalized.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, hash)
	if err != nil {
		identity = Identity{}
	}
	return
}

// GetUser returns the staff account with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (Identity, error) {
	if s == nil || s.users == nil {
		return Identity{}, fmt.Errorf("user repository not configured")
	}
	return s.users.GetUser(ctx, id)
}

// GetUserByEmployeeID returns the staff account with the given employee id.
func (s *UserService) GetUserByEmployeeID(ctx context.Context, employeeID string) (Identity, error) {
	if s == nil || s.users == nil {
		return Identity{}, fmt.Errorf("user repository not configured")
	}
	return s.users.GetUserByEmployeeID(ctx, NormalizeEmployeeID(employeeID))
}

// ListUsers returns accounts matching the filter, paginated.
func (s *UserService) ListUsers(ctx context.Context, params ListUsersParams) ([]Identity, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	if params.Limit <= 0 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return s.users.ListUsers(ctx, params)
}

// UpdateUser applies the non-nil fields of the update to an existing account.
// A department change is validated against the department catalog.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserUpdateInput) (identity Identity, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser", "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	var existing Identity
	existing, err = s.users.GetUser(ctx, id)
	if err != nil {
		return
	}

	updated := existing
	vErr := &ValidationError{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || !namePattern.MatchString(name) {
			vErr.add("name", "name can only contain letters, spaces, dots, hyphens, and apostrophes")
		} else {
			updated.Name = name
		}
	}
	if input.Role != nil {
		if !ValidRole(*input.Role) {
			vErr.add("role", "role is not recognised")
		} else {
			updated.Role = *input.Role
		}
	}
	if input.DepartmentID != nil {
		if strings.TrimSpace(*input.DepartmentID) == "" {
			vErr.add("department_id", "department is required")
		} else {
			updated.DepartmentID = *input.DepartmentID
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if input.DepartmentID != nil && s.departments != nil {
		if _, derr := s.departments.GetDepartment(ctx, updated.DepartmentID); derr != nil {
			if errors.Is(derr, ErrNotFound) {
				vErr.add("department_id", "department does not exist")
				err = vErr
				return
			}
			err = derr
			return
		}
	}

	updated.UpdatedAt = s.now()
	identity, err = s.users.UpdateUser(ctx, updated)
	return
}

// UpdatePassword verifies the current password before storing a hash of the
// new one. A wrong current password is a validation failure, not an
// authentication failure; the caller is already authenticated.
func (s *UserService) UpdatePassword(ctx context.Context, id string, input PasswordChangeInput) (err error) {
	if s == nil || s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "UpdatePassword", "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update password", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password updated")
	}()

	var creds Credentials
	creds, err = s.users.GetCredentials(ctx, id)
	if err != nil {
		return
	}

	if verr := VerifyPassword(creds.PasswordHash, input.CurrentPassword); verr != nil {
		vErr := &ValidationError{}
		vErr.add("current_password", "current password is incorrect")
		err = vErr
		return
	}

	if msg := validatePassword(input.NewPassword); msg != "" {
		vErr := &ValidationError{}
		vErr.add("new_password", msg)
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(input.NewPassword)
	if err != nil {
		return
	}

	err = s.users.UpdatePassword(ctx, id, hash)
	return
}

// DeleteUser removes an account permanently. Accounts carry no status flag;
// deletion is a hard delete.
func (s *UserService) DeleteUser(ctx context.Context, id string) (err error) {
	if s == nil || s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser", "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	err = s.users.DeleteUser(ctx, id)
	return
}

func (s *UserService) requireActiveDepartment(ctx context.Context, departmentID string) error {
	if s.departments == nil {
		return nil
	}
	department, err := s.departments.GetDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("department_id", "department not found or inactive")
			return vErr
		}
		return err
	}
	if department.Status != DepartmentActive {
		vErr := &ValidationError{}
		vErr.add("department_id", "department not found or inactive")
		return vErr
	}
	return nil
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		EmployeeID:   NormalizeEmployeeID(input.EmployeeID),
		Name:         strings.TrimSpace(input.Name),
		Role:         strings.TrimSpace(input.Role),
		DepartmentID: strings.TrimSpace(input.DepartmentID),
		Password:     input.Password,
	}
}

// ValidateEmployeeID reports whether the value matches the required pattern
// of 2-4 upper-case letters followed by 3-6 digits, e.g. EMP001.
func ValidateEmployeeID(employeeID string) bool {
	return employeeIDPattern.MatchString(employeeID)
}

func validateUserInput(input UserInput, withPassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee id is required")
	} else if !ValidateEmployeeID(input.EmployeeID) {
		vErr.add("employee_id", "employee id must be 2-4 letters followed by 3-6 digits")
	}

	if input.Name == "" {
		vErr.add("name", "name is required")
	} else if !namePattern.MatchString(input.Name) {
		vErr.add("name", "name can only contain letters, spaces, dots, hyphens, and apostrophes")
	}

	if input.Role == "" {
		vErr.add("role", "role is required")
	} else if !ValidRole(input.Role) {
		vErr.add("role", "role is not recognised")
	}

	if input.DepartmentID == "" {
		vErr.add("department_id", "department is required")
	}

	if withPassword {
		if msg := validatePassword(input.Password); msg != "" {
			vErr.add("password", msg)
		}
	}

	return vErr
}

func validatePassword(password string) string {
	switch {
	case len(password) < 6:
		return "password must be at least 6 characters long"
	case !letterPattern.MatchString(password):
		return "password must contain at least one letter"
	case !digitPattern.MatchString(password):
		return "password must contain at least one digit"
	}
	return ""
}
