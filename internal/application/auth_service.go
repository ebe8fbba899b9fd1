package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CredentialStore exposes the identity lookups required by the auth service.
type CredentialStore interface {
	GetCredentialsByEmployeeID(ctx context.Context, employeeID string) (Credentials, error)
	GetIdentity(ctx context.Context, id string) (Identity, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	EmployeeID string
	Password   string
}

// AuthService coordinates credential verification and the bearer token
// lifecycle. Tokens are stateless; there is no revocation store, so an issued
// token stays valid until it expires.
type AuthService struct {
	credentials    CredentialStore
	tokens         *TokenService
	verifyPassword PasswordVerifier
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, tokens *TokenService, verify PasswordVerifier) *AuthService {
	return NewAuthServiceWithLogger(credentials, tokens, verify, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, tokens *TokenService, verify PasswordVerifier, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	return &AuthService{
		credentials:    credentials,
		tokens:         tokens,
		verifyPassword: verify,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a fresh bearer token. Unknown
// employee ids and wrong passwords are reported identically.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	employeeID := NormalizeEmployeeID(params.EmployeeID)

	logger := s.loggerWith(ctx, "Authenticate", "employee_id", employeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.Identity.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if employeeID == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds Credentials
	creds, err = s.credentials.GetCredentialsByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var token IssuedToken
	token, err = s.tokens.Issue(creds.Identity)
	if err != nil {
		return
	}

	result = AuthenticateResult{Identity: creds.Identity, Token: token}
	return
}

// CurrentIdentity verifies a bearer token and re-loads the identity it
// references. The account is read fresh so that role and department reflect
// the current record, and deleted accounts fail authentication.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (identity Identity, err error) {
	if s == nil || s.tokens == nil {
		err = ErrUnauthorized
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var claims Claims
	claims, err = s.tokens.Verify(trimmed)
	if err != nil {
		err = ErrUnauthorized
		return
	}

	identity, err = s.credentials.GetIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	return identity, nil
}

// OptionalIdentity resolves the identity when a valid token is present. An
// absent or invalid token is not an error; callers receive ok=false.
func (s *AuthService) OptionalIdentity(ctx context.Context, token string) (Identity, bool) {
	identity, err := s.CurrentIdentity(ctx, token)
	if err != nil {
		return Identity{}, false
	}
	return identity, true
}

// RefreshToken re-issues a token with fresh claims and lifetime. The old
// token is not invalidated; it remains usable until its own expiry.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (issued IssuedToken, err error) {
	if s == nil || s.tokens == nil || s.credentials == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	logger := s.loggerWith(ctx, "RefreshToken", "token_provided", strings.TrimSpace(token) != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "token refresh failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "token refreshed")
	}()

	var claims Claims
	claims, err = s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		err = ErrUnauthorized
		return
	}

	var identity Identity
	identity, err = s.credentials.GetIdentity(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	return s.tokens.Issue(identity)
}

// NormalizeEmployeeID trims surrounding whitespace and upper-cases the value.
func NormalizeEmployeeID(employeeID string) string {
	return strings.ToUpper(strings.TrimSpace(employeeID))
}
