package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/hospital-admin/internal/application"
)

type departmentService interface {
	CreateDepartment(ctx context.Context, input application.DepartmentInput) (application.Department, error)
	GetDepartment(ctx context.Context, id string) (application.Department, error)
	ListDepartments(ctx context.Context) ([]application.Department, error)
	ListActiveDepartments(ctx context.Context) ([]application.Department, error)
	UpdateDepartment(ctx context.Context, id string, input application.DepartmentInput) (application.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

// DepartmentHandler serves the department catalog. Reads are open to any
// authenticated staff member; writes are restricted to administrators.
type DepartmentHandler struct {
	service   departmentService
	responder responder
	logger    *slog.Logger
}

// NewDepartmentHandler creates a DepartmentHandler.
func NewDepartmentHandler(service departmentService, logger *slog.Logger) *DepartmentHandler {
	base := defaultLogger(logger)
	return &DepartmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DepartmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DepartmentHandler", operation, attrs...)
}

// Create registers a new department. Administrators only.
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireAdmin(identity); err != nil {
		h.log(r.Context(), "Create", "actor_id", identity.ID, "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted department creation")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "actor_id", identity.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode department request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", identity.ID)

	department, err := h.service.CreateDepartment(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "department creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("department_id", department.ID).InfoContext(r.Context(), "department created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, departmentResponse{Department: toDepartmentDTO(department)})
}

// Get returns one department.
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departmentID, ok := DepartmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(departmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDepartmentID)
		return
	}

	department, err := h.service.GetDepartment(r.Context(), departmentID)
	if err != nil {
		h.log(r.Context(), "Get", "department_id", departmentID).ErrorContext(r.Context(), "department read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, departmentResponse{Department: toDepartmentDTO(department)})
}

// List returns departments ordered by name. ?active=true narrows the listing
// to Active departments.
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	var departments []application.Department
	var err error
	if r.URL.Query().Get("active") == "true" {
		departments, err = h.service.ListActiveDepartments(r.Context())
	} else {
		departments, err = h.service.ListDepartments(r.Context())
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "department listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(departments)).InfoContext(r.Context(), "departments listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDepartmentsResponse{Departments: toDepartmentDTOs(departments)})
}

// Update applies name and status changes to a department. Administrators only.
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departmentID, ok := DepartmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(departmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDepartmentID)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireAdmin(identity); err != nil {
		h.log(r.Context(), "Update", "actor_id", identity.ID, "department_id", departmentID, "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted department update")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "actor_id", identity.ID, "department_id", departmentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode department update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", identity.ID, "department_id", departmentID)

	department, err := h.service.UpdateDepartment(r.Context(), departmentID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "department update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "department updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, departmentResponse{Department: toDepartmentDTO(department)})
}

// Delete removes a department. Administrators only.
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departmentID, ok := DepartmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(departmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDepartmentID)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireAdmin(identity); err != nil {
		h.log(r.Context(), "Delete", "actor_id", identity.ID, "department_id", departmentID, "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted department deletion")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Delete", "actor_id", identity.ID, "department_id", departmentID)

	if err := h.service.DeleteDepartment(r.Context(), departmentID); err != nil {
		logger.ErrorContext(r.Context(), "department deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "department deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type departmentRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (r departmentRequest) toInput() application.DepartmentInput {
	return application.DepartmentInput{
		Name:   strings.TrimSpace(r.Name),
		Status: strings.TrimSpace(r.Status),
	}
}

type departmentResponse struct {
	Department departmentDTO `json:"department"`
}

type listDepartmentsResponse struct {
	Departments []departmentDTO `json:"departments"`
}

type departmentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toDepartmentDTO(department application.Department) departmentDTO {
	return departmentDTO{
		ID:        department.ID,
		Name:      department.Name,
		Status:    department.Status,
		CreatedAt: department.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: department.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toDepartmentDTOs(departments []application.Department) []departmentDTO {
	if len(departments) == 0 {
		return nil
	}
	out := make([]departmentDTO, 0, len(departments))
	for _, department := range departments {
		out = append(out, toDepartmentDTO(department))
	}
	return out
}
