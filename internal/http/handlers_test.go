package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/hospital-admin/internal/application"
)

var (
	adminIdentity = application.Identity{
		ID:           "admin-1",
		EmployeeID:   "ADM001",
		Name:         "System Administrator",
		Role:         application.RoleAdministrator,
		DepartmentID: "dept-admin",
	}
	doctorIdentity = application.Identity{
		ID:           "doctor-1",
		EmployeeID:   "DOC001",
		Name:         "Ravi Gunaratne",
		Role:         application.RoleDoctor,
		DepartmentID: "dept-med",
	}
	nurseIdentity = application.Identity{
		ID:           "nurse-1",
		EmployeeID:   "NUR001",
		Name:         "Asha Perera",
		Role:         application.RoleNurse,
		DepartmentID: "dept-med",
	}
)

type testEnv struct {
	auth        *authServiceStub
	users       *userServiceStub
	departments *departmentServiceStub
	reports     *reportServiceStub
	handler     http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		auth:        &authServiceStub{},
		users:       &userServiceStub{},
		departments: &departmentServiceStub{},
		reports:     &reportServiceStub{},
	}

	resolver := &identityResolverStub{identities: map[string]application.Identity{
		"admin-token":  adminIdentity,
		"doctor-token": doctorIdentity,
		"nurse-token":  nurseIdentity,
	}}

	env.handler = NewRouter(RouterConfig{
		Auth:         NewAuthHandler(env.auth, nil),
		Users:        NewUserHandler(env.users, nil),
		Departments:  NewDepartmentHandler(env.departments, nil),
		Reports:      NewReportHandler(env.reports, nil),
		Authenticate: RequireAuth(resolver, nil),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	e.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("login returns a bearer token", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.auth.authenticateResult = application.AuthenticateResult{
			Identity: nurseIdentity,
			Token:    application.IssuedToken{Token: "issued-token", TokenType: "bearer", ExpiresIn: 1800},
		}

		recorder := env.do(t, http.MethodPost, "/auth/login", "", `{"employee_id":"nur001","password":"secret1"}`)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		var payload struct {
			AccessToken string      `json:"access_token"`
			TokenType   string      `json:"token_type"`
			ExpiresIn   int64       `json:"expires_in"`
			User        identityDTO `json:"user"`
		}
		decodeBody(t, recorder, &payload)
		if payload.AccessToken != "issued-token" || payload.TokenType != "bearer" || payload.ExpiresIn != 1800 {
			t.Fatalf("unexpected token payload: %#v", payload)
		}
		if payload.User.EmployeeID != "NUR001" {
			t.Fatalf("unexpected user payload: %#v", payload.User)
		}
		if env.auth.lastAuthenticate.EmployeeID != "NUR001" {
			t.Fatalf("expected normalized employee id, got %q", env.auth.lastAuthenticate.EmployeeID)
		}
	})

	t.Run("login rejects bad credentials with a stable error code", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.auth.authenticateErr = application.ErrInvalidCredentials

		recorder := env.do(t, http.MethodPost, "/auth/login", "", `{"employee_id":"NUR001","password":"wrong"}`)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}

		var payload errorResponse
		decodeBody(t, recorder, &payload)
		if payload.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("unexpected error code: %q", payload.ErrorCode)
		}
	})

	t.Run("login rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodPost, "/auth/login", "", `{"employee_id":`)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("login only answers POST", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodGet, "/auth/login", "", "")
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
		if allow := recorder.Header().Get("Allow"); allow != http.MethodPost {
			t.Fatalf("expected Allow header, got %q", allow)
		}
	})

	t.Run("me returns the authenticated account", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodGet, "/auth/me", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		var payload identityResponse
		decodeBody(t, recorder, &payload)
		if payload.User.ID != "nurse-1" || payload.User.Role != application.RoleNurse {
			t.Fatalf("unexpected identity payload: %#v", payload.User)
		}
	})

	t.Run("me requires a token", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodGet, "/auth/me", "", "")
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("invalid tokens are rejected with a stable error code", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodGet, "/auth/me", "forged-token", "")
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}

		var payload errorResponse
		decodeBody(t, recorder, &payload)
		if payload.ErrorCode != "AUTH_TOKEN_INVALID" {
			t.Fatalf("unexpected error code: %q", payload.ErrorCode)
		}
	})

	t.Run("refresh re-issues from the presented token", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.auth.refreshResult = application.IssuedToken{Token: "fresh-token", TokenType: "bearer", ExpiresIn: 1800}

		recorder := env.do(t, http.MethodPost, "/auth/refresh", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if env.auth.lastRefreshToken != "nurse-token" {
			t.Fatalf("expected bearer token to be forwarded, got %q", env.auth.lastRefreshToken)
		}
	})

	t.Run("refresh without a token is unauthorized", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodPost, "/auth/refresh", "", "")
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("logout acknowledges with no content", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodPost, "/auth/logout", "", "")
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("administrators can create accounts", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.createResult = application.Identity{ID: "staff-9", EmployeeID: "EMP009", Role: application.RoleNurse}

		recorder := env.do(t, http.MethodPost, "/users", "admin-token", `{"employee_id":"EMP009","name":"New Nurse","role":"Nurse","department_id":"dept-med","password":"secret1"}`)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if env.users.lastCreateInput.EmployeeID != "EMP009" {
			t.Fatalf("unexpected input: %#v", env.users.lastCreateInput)
		}
	})

	t.Run("non-administrators cannot create accounts", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		for _, token := range []string{"nurse-token", "doctor-token"} {
			recorder := env.do(t, http.MethodPost, "/users", token, `{"employee_id":"EMP009"}`)
			if recorder.Code != http.StatusForbidden {
				t.Fatalf("expected 403 for %s, got %d", token, recorder.Code)
			}
			var payload errorResponse
			decodeBody(t, recorder, &payload)
			if payload.ErrorCode != "AUTH_FORBIDDEN" {
				t.Fatalf("unexpected error code: %q", payload.ErrorCode)
			}
		}
	})

	t.Run("validation failures surface field errors", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		vErr := &application.ValidationError{FieldErrors: map[string]string{"employee_id": "employee id is required"}}
		env.users.createErr = vErr

		recorder := env.do(t, http.MethodPost, "/users", "admin-token", `{}`)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}

		var payload errorResponse
		decodeBody(t, recorder, &payload)
		if payload.Errors["employee_id"] == "" {
			t.Fatalf("expected field errors, got %#v", payload)
		}
	})

	t.Run("duplicate employee ids conflict", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.createErr = application.ErrDuplicate

		recorder := env.do(t, http.MethodPost, "/users", "admin-token", `{"employee_id":"EMP009"}`)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("owners can read their own account", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.getResult = nurseIdentity

		recorder := env.do(t, http.MethodGet, "/users/nurse-1", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
	})

	t.Run("reading another account requires management", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.getResult = adminIdentity

		if recorder := env.do(t, http.MethodGet, "/users/admin-1", "nurse-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for nurse, got %d", recorder.Code)
		}
		if recorder := env.do(t, http.MethodGet, "/users/admin-1", "doctor-token", ""); recorder.Code != http.StatusOK {
			t.Fatalf("expected 200 for doctor, got %d", recorder.Code)
		}
	})

	t.Run("listing requires management and forwards filters", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.listResult = []application.Identity{nurseIdentity}

		if recorder := env.do(t, http.MethodGet, "/users", "nurse-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for nurse, got %d", recorder.Code)
		}

		recorder := env.do(t, http.MethodGet, "/users?department_id=dept-med&role=Nurse&search=asha&limit=10&offset=5", "doctor-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		params := env.users.lastListParams
		if params.DepartmentID != "dept-med" || params.Role != "Nurse" || params.Search != "asha" || params.Limit != 10 || params.Offset != 5 {
			t.Fatalf("unexpected list params: %#v", params)
		}
	})

	t.Run("updates are administrator only", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.updateResult = nurseIdentity

		if recorder := env.do(t, http.MethodPut, "/users/nurse-1", "doctor-token", `{"name":"X"}`); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for doctor, got %d", recorder.Code)
		}

		recorder := env.do(t, http.MethodPut, "/users/nurse-1", "admin-token", `{"role":"Doctor"}`)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if env.users.lastUpdateID != "nurse-1" || env.users.lastUpdateInput.Role == nil || *env.users.lastUpdateInput.Role != "Doctor" {
			t.Fatalf("unexpected update call: id=%q input=%#v", env.users.lastUpdateID, env.users.lastUpdateInput)
		}
	})

	t.Run("password changes are owner only", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPut, "/users/nurse-1/password", "nurse-token", `{"current_password":"old1","new_password":"fresh99"}`)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if env.users.lastPasswordID != "nurse-1" || env.users.lastPasswordInput.NewPassword != "fresh99" {
			t.Fatalf("unexpected password call: %#v", env.users.lastPasswordInput)
		}

		// Even administrators may not change another user's password.
		if recorder := env.do(t, http.MethodPut, "/users/nurse-1/password", "admin-token", `{"current_password":"old1","new_password":"fresh99"}`); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for admin, got %d", recorder.Code)
		}
	})

	t.Run("deletion is administrator only and never self", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		if recorder := env.do(t, http.MethodDelete, "/users/nurse-1", "doctor-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for doctor, got %d", recorder.Code)
		}
		if recorder := env.do(t, http.MethodDelete, "/users/admin-1", "admin-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for self-deletion, got %d", recorder.Code)
		}

		recorder := env.do(t, http.MethodDelete, "/users/nurse-1", "admin-token", "")
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if env.users.lastDeleteID != "nurse-1" {
			t.Fatalf("unexpected delete target: %q", env.users.lastDeleteID)
		}
	})

	t.Run("missing accounts map to not found", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.users.getErr = application.ErrNotFound

		recorder := env.do(t, http.MethodGet, "/users/ghost", "admin-token", "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestDepartmentEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("reads are open to authenticated staff", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.departments.listResult = []application.Department{{ID: "dept-med", Name: "General Medicine", Status: application.DepartmentActive}}

		recorder := env.do(t, http.MethodGet, "/departments", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if env.departments.activeOnlyCalled {
			t.Fatal("expected full listing")
		}

		recorder = env.do(t, http.MethodGet, "/departments?active=true", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if !env.departments.activeOnlyCalled {
			t.Fatal("expected active-only listing")
		}
	})

	t.Run("writes are administrator only", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.departments.createResult = application.Department{ID: "dept-new", Name: "Cardiology", Status: application.DepartmentActive}

		if recorder := env.do(t, http.MethodPost, "/departments", "doctor-token", `{"name":"Cardiology"}`); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for doctor, got %d", recorder.Code)
		}

		recorder := env.do(t, http.MethodPost, "/departments", "admin-token", `{"name":"Cardiology"}`)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", recorder.Code)
		}

		if recorder := env.do(t, http.MethodDelete, "/departments/dept-new", "nurse-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for nurse delete, got %d", recorder.Code)
		}
		if recorder := env.do(t, http.MethodDelete, "/departments/dept-new", "admin-token", ""); recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204 for admin delete, got %d", recorder.Code)
		}
	})

	t.Run("nested department paths are not routes", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodGet, "/departments/dept-med/staff", "admin-token", "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("duplicate names conflict", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.departments.createErr = application.ErrDuplicate

		recorder := env.do(t, http.MethodPost, "/departments", "admin-token", `{"name":"Cardiology"}`)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})
}

func TestReportEndpoints(t *testing.T) {
	t.Parallel()

	savedReport := application.Report{
		Year:       2025,
		Month:      3,
		ReportDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		ReportInput: application.ReportInput{
			TotalBeds:        40,
			AdmissionsMale:   55,
			AdmissionsFemale: 45,
		},
		Status: application.ReportStatusDraft,
	}

	t.Run("any authenticated staff member can save a report", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.reports.saveResult = savedReport

		recorder := env.do(t, http.MethodPut, "/reports/monthly/2025/3", "nurse-token", `{"total_beds":40,"admissions_male":55,"admissions_female":45}`)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if env.reports.lastKey != (application.ReportKey{Year: 2025, Month: 3}) {
			t.Fatalf("unexpected key: %#v", env.reports.lastKey)
		}
		if env.reports.lastActorID != "nurse-1" {
			t.Fatalf("expected actor id forwarded, got %q", env.reports.lastActorID)
		}

		var payload struct {
			Report struct {
				ReportDate      string `json:"report_date"`
				TotalAdmissions int    `json:"total_admissions"`
				Status          string `json:"status"`
			} `json:"report"`
		}
		decodeBody(t, recorder, &payload)
		if payload.Report.ReportDate != "2025-03-01" {
			t.Fatalf("unexpected report date: %q", payload.Report.ReportDate)
		}
		if payload.Report.TotalAdmissions != 100 {
			t.Fatalf("expected derived total admissions, got %d", payload.Report.TotalAdmissions)
		}
	})

	t.Run("submission is open, approval is gated", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		submitted := savedReport
		submitted.Status = application.ReportStatusSubmitted
		env.reports.submitResult = submitted
		approved := savedReport
		approved.Status = application.ReportStatusApproved
		env.reports.approveResult = approved

		if recorder := env.do(t, http.MethodPost, "/reports/monthly/2025/3/submit", "nurse-token", ""); recorder.Code != http.StatusOK {
			t.Fatalf("expected 200 for submit, got %d", recorder.Code)
		}
		if recorder := env.do(t, http.MethodPost, "/reports/monthly/2025/3/approve", "nurse-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for nurse approval, got %d", recorder.Code)
		}
		if recorder := env.do(t, http.MethodPost, "/reports/monthly/2025/3/approve", "doctor-token", ""); recorder.Code != http.StatusOK {
			t.Fatalf("expected 200 for doctor approval, got %d", recorder.Code)
		}
		if env.reports.lastActorID != "doctor-1" {
			t.Fatalf("expected approver id forwarded, got %q", env.reports.lastActorID)
		}
	})

	t.Run("rule violations map to bad request with the reason", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.reports.submitErr = application.NewBusinessRuleError("cannot submit an already approved report")

		recorder := env.do(t, http.MethodPost, "/reports/monthly/2025/3/submit", "nurse-token", "")
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}

		var payload errorResponse
		decodeBody(t, recorder, &payload)
		if payload.Message != "cannot submit an already approved report" {
			t.Fatalf("unexpected message: %q", payload.Message)
		}
	})

	t.Run("deletion requires management", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		if recorder := env.do(t, http.MethodDelete, "/reports/monthly/2025/3", "nurse-token", ""); recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for nurse, got %d", recorder.Code)
		}
		if recorder := env.do(t, http.MethodDelete, "/reports/monthly/2025/3", "doctor-token", ""); recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204 for doctor, got %d", recorder.Code)
		}
	})

	t.Run("listing supports year filtering and pagination", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.reports.listByYearResult = []application.Report{savedReport}

		recorder := env.do(t, http.MethodGet, "/reports/monthly?year=2025", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if env.reports.lastYear != 2025 {
			t.Fatalf("expected year filter, got %d", env.reports.lastYear)
		}

		recorder = env.do(t, http.MethodGet, "/reports/monthly?limit=5&offset=10", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if env.reports.lastLimit != 5 || env.reports.lastOffset != 10 {
			t.Fatalf("expected pagination forwarded, got limit=%d offset=%d", env.reports.lastLimit, env.reports.lastOffset)
		}
	})

	t.Run("statistics are served per year", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.reports.statisticsResult = application.ReportStatistics{Year: 2025, TotalReports: 3, CompletionRate: 25}

		recorder := env.do(t, http.MethodGet, "/reports/monthly/statistics/2025", "nurse-token", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		var payload statisticsDTO
		decodeBody(t, recorder, &payload)
		if payload.Year != 2025 || payload.TotalReports != 3 || payload.CompletionRate != 25 {
			t.Fatalf("unexpected statistics payload: %#v", payload)
		}
	})

	t.Run("non-numeric periods are not routes", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		recorder := env.do(t, http.MethodGet, "/reports/monthly/march/3", "nurse-token", "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("missing reports map to not found", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.reports.getErr = application.ErrNotFound

		recorder := env.do(t, http.MethodGet, "/reports/monthly/2025/3", "nurse-token", "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

// ------------------------------- stubs ------------------------------------

type identityResolverStub struct {
	identities map[string]application.Identity
}

func (s *identityResolverStub) CurrentIdentity(ctx context.Context, token string) (application.Identity, error) {
	identity, ok := s.identities[token]
	if !ok {
		return application.Identity{}, application.ErrUnauthorized
	}
	return identity, nil
}

type authServiceStub struct {
	authenticateResult application.AuthenticateResult
	authenticateErr    error
	refreshResult      application.IssuedToken
	refreshErr         error

	lastAuthenticate application.AuthenticateParams
	lastRefreshToken string
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	s.lastAuthenticate = params
	if s.authenticateErr != nil {
		return application.AuthenticateResult{}, s.authenticateErr
	}
	return s.authenticateResult, nil
}

func (s *authServiceStub) RefreshToken(ctx context.Context, token string) (application.IssuedToken, error) {
	s.lastRefreshToken = token
	if s.refreshErr != nil {
		return application.IssuedToken{}, s.refreshErr
	}
	return s.refreshResult, nil
}

type userServiceStub struct {
	createResult application.Identity
	createErr    error
	getResult    application.Identity
	getErr       error
	listResult   []application.Identity
	listErr      error
	updateResult application.Identity
	updateErr    error
	passwordErr  error
	deleteErr    error

	lastCreateInput   application.UserInput
	lastListParams    application.ListUsersParams
	lastUpdateID      string
	lastUpdateInput   application.UserUpdateInput
	lastPasswordID    string
	lastPasswordInput application.PasswordChangeInput
	lastDeleteID      string
}

func (s *userServiceStub) CreateUser(ctx context.Context, input application.UserInput) (application.Identity, error) {
	s.lastCreateInput = input
	if s.createErr != nil {
		return application.Identity{}, s.createErr
	}
	return s.createResult, nil
}

func (s *userServiceStub) GetUser(ctx context.Context, id string) (application.Identity, error) {
	if s.getErr != nil {
		return application.Identity{}, s.getErr
	}
	return s.getResult, nil
}

func (s *userServiceStub) ListUsers(ctx context.Context, params application.ListUsersParams) ([]application.Identity, error) {
	s.lastListParams = params
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *userServiceStub) UpdateUser(ctx context.Context, id string, input application.UserUpdateInput) (application.Identity, error) {
	s.lastUpdateID = id
	s.lastUpdateInput = input
	if s.updateErr != nil {
		return application.Identity{}, s.updateErr
	}
	return s.updateResult, nil
}

func (s *userServiceStub) UpdatePassword(ctx context.Context, id string, input application.PasswordChangeInput) error {
	s.lastPasswordID = id
	s.lastPasswordInput = input
	return s.passwordErr
}

func (s *userServiceStub) DeleteUser(ctx context.Context, id string) error {
	s.lastDeleteID = id
	return s.deleteErr
}

type departmentServiceStub struct {
	createResult application.Department
	createErr    error
	getResult    application.Department
	getErr       error
	listResult   []application.Department
	listErr      error
	updateResult application.Department
	updateErr    error
	deleteErr    error

	activeOnlyCalled bool
}

func (s *departmentServiceStub) CreateDepartment(ctx context.Context, input application.DepartmentInput) (application.Department, error) {
	if s.createErr != nil {
		return application.Department{}, s.createErr
	}
	return s.createResult, nil
}

func (s *departmentServiceStub) GetDepartment(ctx context.Context, id string) (application.Department, error) {
	if s.getErr != nil {
		return application.Department{}, s.getErr
	}
	return s.getResult, nil
}

func (s *departmentServiceStub) ListDepartments(ctx context.Context) ([]application.Department, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *departmentServiceStub) ListActiveDepartments(ctx context.Context) ([]application.Department, error) {
	s.activeOnlyCalled = true
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *departmentServiceStub) UpdateDepartment(ctx context.Context, id string, input application.DepartmentInput) (application.Department, error) {
	if s.updateErr != nil {
		return application.Department{}, s.updateErr
	}
	return s.updateResult, nil
}

func (s *departmentServiceStub) DeleteDepartment(ctx context.Context, id string) error {
	return s.deleteErr
}

type reportServiceStub struct {
	saveResult       application.Report
	saveErr          error
	getResult        application.Report
	getErr           error
	listByYearResult []application.Report
	listResult       []application.Report
	listErr          error
	submitResult     application.Report
	submitErr        error
	approveResult    application.Report
	approveErr       error
	deleteErr        error
	statisticsResult application.ReportStatistics
	statisticsErr    error

	lastKey     application.ReportKey
	lastInput   application.ReportInput
	lastActorID string
	lastYear    int
	lastLimit   int
	lastOffset  int
}

func (s *reportServiceStub) CreateOrUpdate(ctx context.Context, key application.ReportKey, input application.ReportInput, actorID string) (application.Report, error) {
	s.lastKey = key
	s.lastInput = input
	s.lastActorID = actorID
	if s.saveErr != nil {
		return application.Report{}, s.saveErr
	}
	return s.saveResult, nil
}

func (s *reportServiceStub) Get(ctx context.Context, key application.ReportKey) (application.Report, error) {
	s.lastKey = key
	if s.getErr != nil {
		return application.Report{}, s.getErr
	}
	return s.getResult, nil
}

func (s *reportServiceStub) ListByYear(ctx context.Context, year int) ([]application.Report, error) {
	s.lastYear = year
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listByYearResult, nil
}

func (s *reportServiceStub) List(ctx context.Context, limit, offset int) ([]application.Report, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *reportServiceStub) Submit(ctx context.Context, key application.ReportKey, actorID string) (application.Report, error) {
	s.lastKey = key
	s.lastActorID = actorID
	if s.submitErr != nil {
		return application.Report{}, s.submitErr
	}
	return s.submitResult, nil
}

func (s *reportServiceStub) Approve(ctx context.Context, key application.ReportKey, actorID string) (application.Report, error) {
	s.lastKey = key
	s.lastActorID = actorID
	if s.approveErr != nil {
		return application.Report{}, s.approveErr
	}
	return s.approveResult, nil
}

func (s *reportServiceStub) Delete(ctx context.Context, key application.ReportKey) error {
	s.lastKey = key
	return s.deleteErr
}

func (s *reportServiceStub) Statistics(ctx context.Context, year int) (application.ReportStatistics, error) {
	s.lastYear = year
	if s.statisticsErr != nil {
		return application.ReportStatistics{}, s.statisticsErr
	}
	return s.statisticsResult, nil
}
