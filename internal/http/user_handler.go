package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/hospital-admin/internal/application"
)

type userService interface {
	CreateUser(ctx context.Context, input application.UserInput) (application.Identity, error)
	GetUser(ctx context.Context, id string) (application.Identity, error)
	ListUsers(ctx context.Context, params application.ListUsersParams) ([]application.Identity, error)
	UpdateUser(ctx context.Context, id string, input application.UserUpdateInput) (application.Identity, error)
	UpdatePassword(ctx context.Context, id string, input application.PasswordChangeInput) error
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler serves staff account management. Creation, update, and deletion
// are restricted to administrators; listing is a management operation; an
// account is always readable by its owner.
type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// Create registers a new staff account. Administrators only.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireAdmin(identity); err != nil {
		h.log(r.Context(), "Create", "actor_id", identity.ID, "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted user creation")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "actor_id", identity.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode user request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", identity.ID)

	user, err := h.service.CreateUser(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "user creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "user created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, identityResponse{User: toIdentityDTO(user)})
}

// Get returns one staff account. Owners can read their own account; all other
// reads require a management role.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if identity.ID != userID {
		if err := application.RequireManagement(identity); err != nil {
			h.log(r.Context(), "Get", "actor_id", identity.ID, "user_id", userID, "error_kind", "forbidden").ErrorContext(r.Context(), "unauthorized user read")
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.log(r.Context(), "Get", "actor_id", identity.ID, "user_id", userID).ErrorContext(r.Context(), "user read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, identityResponse{User: toIdentityDTO(user)})
}

// List returns staff accounts filtered by the query string. Management only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireManagement(identity); err != nil {
		h.log(r.Context(), "List", "actor_id", identity.ID, "error_kind", "forbidden").ErrorContext(r.Context(), "unauthorized user listing")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "List", "actor_id", identity.ID)

	users, err := h.service.ListUsers(r.Context(), listUsersParams(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "user listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(users)).InfoContext(r.Context(), "users listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listUsersResponse{Users: toIdentityDTOs(users)})
}

// Update applies a partial change to a staff account. Administrators only.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireAdmin(identity); err != nil {
		h.log(r.Context(), "Update", "actor_id", identity.ID, "user_id", userID, "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted user update")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "actor_id", identity.ID, "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode user update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", identity.ID, "user_id", userID)

	user, err := h.service.UpdateUser(r.Context(), userID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "user update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, identityResponse{User: toIdentityDTO(user)})
}

// ChangePassword changes the caller's own password. Changing another user's
// password is forbidden even for administrators; reset flows go through
// account update.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if identity.ID != userID {
		h.log(r.Context(), "ChangePassword", "actor_id", identity.ID, "user_id", userID, "error_kind", "forbidden").ErrorContext(r.Context(), "attempted password change for another account")
		h.responder.handleServiceError(r.Context(), w, application.ErrForbidden)
		return
	}

	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ChangePassword", "actor_id", identity.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode password change", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ChangePassword", "actor_id", identity.ID)

	err := h.service.UpdatePassword(r.Context(), userID, application.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "password change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password changed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Delete removes a staff account. Administrators only; self-deletion is
// rejected so the system cannot lose its last administrator by accident.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireAdmin(identity); err != nil {
		h.log(r.Context(), "Delete", "actor_id", identity.ID, "user_id", userID, "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted user deletion")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if identity.ID == userID {
		h.log(r.Context(), "Delete", "actor_id", identity.ID, "error_kind", "forbidden").ErrorContext(r.Context(), "administrator attempted self-deletion")
		h.responder.handleServiceError(r.Context(), w, application.ErrForbidden)
		return
	}

	logger := h.log(r.Context(), "Delete", "actor_id", identity.ID, "user_id", userID)

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		logger.ErrorContext(r.Context(), "user deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func listUsersParams(r *http.Request) application.ListUsersParams {
	query := r.URL.Query()
	params := application.ListUsersParams{
		DepartmentID: strings.TrimSpace(query.Get("department_id")),
		Role:         strings.TrimSpace(query.Get("role")),
		Search:       strings.TrimSpace(query.Get("search")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		params.Offset = offset
	}
	return params
}

type userRequest struct {
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id"`
	Password     string `json:"password"`
}

func (r userRequest) toInput() application.UserInput {
	return application.UserInput{
		EmployeeID:   strings.TrimSpace(r.EmployeeID),
		Name:         strings.TrimSpace(r.Name),
		Role:         strings.TrimSpace(r.Role),
		DepartmentID: strings.TrimSpace(r.DepartmentID),
		Password:     r.Password,
	}
}

type userUpdateRequest struct {
	Name         *string `json:"name"`
	Role         *string `json:"role"`
	DepartmentID *string `json:"department_id"`
}

func (r userUpdateRequest) toInput() application.UserUpdateInput {
	return application.UserUpdateInput{
		Name:         r.Name,
		Role:         r.Role,
		DepartmentID: r.DepartmentID,
	}
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type listUsersResponse struct {
	Users []identityDTO `json:"users"`
}

func toIdentityDTOs(users []application.Identity) []identityDTO {
	if len(users) == 0 {
		return nil
	}
	out := make([]identityDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toIdentityDTO(user))
	}
	return out
}
