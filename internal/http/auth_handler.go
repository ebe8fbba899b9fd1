package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/hospital-admin/internal/application"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RefreshToken(ctx context.Context, token string) (application.IssuedToken, error)
}

// AuthHandler serves login, token refresh, and identity introspection.
type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Login authenticates an employee id and password and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employeeID := application.NormalizeEmployeeID(req.EmployeeID)
	logger := h.log(r.Context(), "Login", "employee_id", employeeID)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		EmployeeID: employeeID,
		Password:   req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			logger.ErrorContext(r.Context(), "authentication rejected", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
				ErrorCode: "AUTH_INVALID_CREDENTIALS",
				Message:   "incorrect employee id or password",
			})
			return
		}
		logger.ErrorContext(r.Context(), "authentication failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", result.Identity.ID).InfoContext(r.Context(), "user authenticated")

	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		AccessToken: result.Token.Token,
		TokenType:   result.Token.TokenType,
		ExpiresIn:   result.Token.ExpiresIn,
		User:        toIdentityDTO(result.Identity),
	})
}

// Refresh re-issues a token for the caller's current account state.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.log(r.Context(), "Refresh", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing bearer token for refresh")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
		return
	}

	logger := h.log(r.Context(), "Refresh")

	issued, err := h.service.RefreshToken(r.Context(), token)
	if err != nil {
		logger.ErrorContext(r.Context(), "token refresh failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "token refreshed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{
		AccessToken: issued.Token,
		TokenType:   issued.TokenType,
		ExpiresIn:   issued.ExpiresIn,
	})
}

// Logout acknowledges a logout. Tokens are stateless, so the server keeps no
// session to revoke; the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.log(r.Context(), "Logout").InfoContext(r.Context(), "user logged out")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.log(r.Context(), "Me", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing identity for introspection")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, identityResponse{User: toIdentityDTO(identity)})
}

type loginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        identityDTO `json:"user"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type identityResponse struct {
	User identityDTO `json:"user"`
}

type identityDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toIdentityDTO(identity application.Identity) identityDTO {
	return identityDTO{
		ID:           identity.ID,
		EmployeeID:   identity.EmployeeID,
		Name:         identity.Name,
		Role:         identity.Role,
		DepartmentID: identity.DepartmentID,
		CreatedAt:    identity.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    identity.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
