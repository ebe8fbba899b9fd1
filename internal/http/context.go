package http

import (
	"context"
	"log/slog"

	"github.com/example/hospital-admin/internal/application"
	"github.com/example/hospital-admin/internal/logging"
)

type contextKey string

const (
	identityContextKey     contextKey = "identity"
	userIDContextKey       contextKey = "user_id"
	departmentIDContextKey contextKey = "department_id"
	reportKeyContextKey    contextKey = "report_key"
)

// ContextWithIdentity returns a derived context containing the authenticated identity.
func ContextWithIdentity(ctx context.Context, identity application.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the authenticated identity from context if available.
func IdentityFromContext(ctx context.Context) (application.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(application.Identity)
	return identity, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithDepartmentID injects the department identifier resolved from the request path.
func ContextWithDepartmentID(ctx context.Context, departmentID string) context.Context {
	return context.WithValue(ctx, departmentIDContextKey, departmentID)
}

// DepartmentIDFromContext extracts a department identifier previously associated with the context.
func DepartmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(departmentIDContextKey).(string)
	return id, ok
}

// ContextWithReportKey injects the report period resolved from the request path.
func ContextWithReportKey(ctx context.Context, key application.ReportKey) context.Context {
	return context.WithValue(ctx, reportKeyContextKey, key)
}

// ReportKeyFromContext extracts a report period previously associated with the context.
func ReportKeyFromContext(ctx context.Context) (application.ReportKey, bool) {
	key, ok := ctx.Value(reportKeyContextKey).(application.ReportKey)
	return key, ok
}

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request-scoped logger from the context, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
