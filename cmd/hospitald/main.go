package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/hospital-admin/internal/application"
	"github.com/example/hospital-admin/internal/config"
	httptransport "github.com/example/hospital-admin/internal/http"
	"github.com/example/hospital-admin/internal/persistence"
	"github.com/example/hospital-admin/internal/persistence/sqlite"
)

const (
	defaultAdminEmployeeID = "ADM001"
	defaultAdminPassword   = "admin123"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.RunMigrations(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userStore := sqlite.NewUserRepository(pool)
	departmentStore := sqlite.NewDepartmentRepository(pool)
	reportStore := sqlite.NewReportRepository(pool)

	userRepo := newUserRepositoryAdapter(userStore)
	departmentRepo := newDepartmentRepositoryAdapter(departmentStore)
	reportRepo := newReportRepositoryAdapter(reportStore)
	credentialStore := newCredentialStoreAdapter(userStore)

	tokenService := application.NewTokenService(application.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
	}, now)

	authService := application.NewAuthServiceWithLogger(credentialStore, tokenService, nil, logger)
	userService := application.NewUserServiceWithLogger(userRepo, departmentRepo, nil, idGenerator, now, logger)
	departmentService := application.NewDepartmentServiceWithLogger(departmentRepo, idGenerator, now, logger)
	reportService := application.NewReportServiceWithLogger(reportRepo, now, logger)

	if cfg.CreateDefaultAdmin {
		if err := seedDefaultAdmin(context.Background(), logger, userStore, departmentStore, idGenerator); err != nil {
			logger.Error("failed to seed default administrator", "error", err)
			os.Exit(1)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Departments:  httptransport.NewDepartmentHandler(departmentService, logger),
		Reports:      httptransport.NewReportHandler(reportService, logger),
		Authenticate: httptransport.RequireAuth(authService, logger),
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("hospital administration API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// seedDefaultAdmin creates a bootstrap administrator account when the user
// table is empty. The fixed credentials exist only to make the first login
// possible; the password must be changed immediately.
func seedDefaultAdmin(ctx context.Context, logger *slog.Logger, users persistence.UserRepository, departments persistence.DepartmentRepository, idGenerator func() string) error {
	count, err := users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	department := persistence.Department{
		ID:        idGenerator(),
		Name:      "Administration",
		Status:    application.DepartmentActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := departments.CreateDepartment(ctx, department); err != nil {
		if !errors.Is(err, persistence.ErrDuplicate) {
			return err
		}
		existing, lerr := departments.ListDepartments(ctx, false)
		if lerr != nil {
			return lerr
		}
		for _, candidate := range existing {
			if candidate.Name == department.Name {
				department = candidate
				break
			}
		}
	}

	hash, err := application.CreatePasswordHash(defaultAdminPassword, application.DefaultPasswordParams)
	if err != nil {
		return err
	}

	admin := persistence.User{
		ID:           idGenerator(),
		EmployeeID:   defaultAdminEmployeeID,
		Name:         "System Administrator",
		Role:         application.RoleAdministrator,
		DepartmentID: department.ID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		return err
	}

	logger.Warn("default administrator created; change its password immediately", "employee_id", defaultAdminEmployeeID)
	return nil
}

// mapPersistenceError translates storage sentinels into the application
// layer's error vocabulary.
func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrDuplicate
	default:
		return err
	}
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, identity application.Identity, passwordHash string) (application.Identity, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(identity, passwordHash)); err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetUser(ctx, identity.ID)
	if err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	return toApplicationIdentity(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.Identity, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	return toApplicationIdentity(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmployeeID(ctx context.Context, employeeID string) (application.Identity, error) {
	stored, err := a.repo.GetUserByEmployeeID(ctx, employeeID)
	if err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	return toApplicationIdentity(stored), nil
}

func (a *userRepositoryAdapter) GetCredentials(ctx context.Context, id string) (application.Credentials, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.Credentials{}, mapPersistenceError(err)
	}
	return application.Credentials{
		Identity:     toApplicationIdentity(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, identity application.Identity) (application.Identity, error) {
	current, err := a.repo.GetUser(ctx, identity.ID)
	if err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(identity, current.PasswordHash)); err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetUser(ctx, identity.ID)
	if err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	return toApplicationIdentity(stored), nil
}

func (a *userRepositoryAdapter) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	current, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return mapPersistenceError(err)
	}
	current.PasswordHash = passwordHash
	current.UpdatedAt = time.Now().UTC()
	return mapPersistenceError(a.repo.UpdateUser(ctx, current))
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context, params application.ListUsersParams) ([]application.Identity, error) {
	models, err := a.repo.ListUsers(ctx, persistence.UserFilter{
		DepartmentID: params.DepartmentID,
		Role:         params.Role,
		Search:       params.Search,
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	identities := make([]application.Identity, 0, len(models))
	for _, model := range models {
		identities = append(identities, toApplicationIdentity(model))
	}
	return identities, nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return mapPersistenceError(a.repo.DeleteUser(ctx, id))
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetCredentialsByEmployeeID(ctx context.Context, employeeID string) (application.Credentials, error) {
	stored, err := a.repo.GetUserByEmployeeID(ctx, employeeID)
	if err != nil {
		return application.Credentials{}, mapPersistenceError(err)
	}
	return application.Credentials{
		Identity:     toApplicationIdentity(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetIdentity(ctx context.Context, id string) (application.Identity, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.Identity{}, mapPersistenceError(err)
	}
	return toApplicationIdentity(stored), nil
}

type departmentRepositoryAdapter struct {
	repo persistence.DepartmentRepository
}

func newDepartmentRepositoryAdapter(repo persistence.DepartmentRepository) *departmentRepositoryAdapter {
	return &departmentRepositoryAdapter{repo: repo}
}

func (a *departmentRepositoryAdapter) CreateDepartment(ctx context.Context, department application.Department) (application.Department, error) {
	if err := a.repo.CreateDepartment(ctx, toPersistenceDepartment(department)); err != nil {
		return application.Department{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetDepartment(ctx, department.ID)
	if err != nil {
		return application.Department{}, mapPersistenceError(err)
	}
	return toApplicationDepartment(stored), nil
}

func (a *departmentRepositoryAdapter) GetDepartment(ctx context.Context, id string) (application.Department, error) {
	stored, err := a.repo.GetDepartment(ctx, id)
	if err != nil {
		return application.Department{}, mapPersistenceError(err)
	}
	return toApplicationDepartment(stored), nil
}

func (a *departmentRepositoryAdapter) UpdateDepartment(ctx context.Context, department application.Department) (application.Department, error) {
	if err := a.repo.UpdateDepartment(ctx, toPersistenceDepartment(department)); err != nil {
		return application.Department{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetDepartment(ctx, department.ID)
	if err != nil {
		return application.Department{}, mapPersistenceError(err)
	}
	return toApplicationDepartment(stored), nil
}

func (a *departmentRepositoryAdapter) ListDepartments(ctx context.Context, activeOnly bool) ([]application.Department, error) {
	models, err := a.repo.ListDepartments(ctx, activeOnly)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	departments := make([]application.Department, 0, len(models))
	for _, model := range models {
		departments = append(departments, toApplicationDepartment(model))
	}
	return departments, nil
}

func (a *departmentRepositoryAdapter) DeleteDepartment(ctx context.Context, id string) error {
	err := a.repo.DeleteDepartment(ctx, id)
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return application.NewBusinessRuleError("cannot delete a department with assigned staff")
	}
	return mapPersistenceError(err)
}

type reportRepositoryAdapter struct {
	repo persistence.ReportRepository
}

func newReportRepositoryAdapter(repo persistence.ReportRepository) *reportRepositoryAdapter {
	return &reportRepositoryAdapter{repo: repo}
}

func (a *reportRepositoryAdapter) UpsertReport(ctx context.Context, report application.Report) (application.Report, error) {
	if err := a.repo.UpsertReport(ctx, toPersistenceReport(report)); err != nil {
		return application.Report{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetReport(ctx, report.Year, report.Month)
	if err != nil {
		return application.Report{}, mapPersistenceError(err)
	}
	return toApplicationReport(stored), nil
}

func (a *reportRepositoryAdapter) GetReport(ctx context.Context, year, month int) (application.Report, error) {
	stored, err := a.repo.GetReport(ctx, year, month)
	if err != nil {
		return application.Report{}, mapPersistenceError(err)
	}
	return toApplicationReport(stored), nil
}

func (a *reportRepositoryAdapter) SetReportStatus(ctx context.Context, year, month int, status string, updatedBy *string, updatedAt time.Time) error {
	return mapPersistenceError(a.repo.SetReportStatus(ctx, year, month, status, updatedBy, updatedAt))
}

func (a *reportRepositoryAdapter) ListReportsByYear(ctx context.Context, year int) ([]application.Report, error) {
	models, err := a.repo.ListReportsByYear(ctx, year)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return toApplicationReports(models), nil
}

func (a *reportRepositoryAdapter) ListReports(ctx context.Context, limit, offset int) ([]application.Report, error) {
	models, err := a.repo.ListReports(ctx, limit, offset)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return toApplicationReports(models), nil
}

func (a *reportRepositoryAdapter) DeleteReport(ctx context.Context, year, month int) error {
	return mapPersistenceError(a.repo.DeleteReport(ctx, year, month))
}

func toApplicationIdentity(model persistence.User) application.Identity {
	return application.Identity{
		ID:           model.ID,
		EmployeeID:   model.EmployeeID,
		Name:         model.Name,
		Role:         model.Role,
		DepartmentID: model.DepartmentID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceUser(identity application.Identity, passwordHash string) persistence.User {
	return persistence.User{
		ID:           identity.ID,
		EmployeeID:   identity.EmployeeID,
		Name:         identity.Name,
		Role:         identity.Role,
		DepartmentID: identity.DepartmentID,
		PasswordHash: passwordHash,
		CreatedAt:    identity.CreatedAt,
		UpdatedAt:    identity.UpdatedAt,
	}
}

func toApplicationDepartment(model persistence.Department) application.Department {
	return application.Department{
		ID:        model.ID,
		Name:      model.Name,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceDepartment(department application.Department) persistence.Department {
	return persistence.Department{
		ID:        department.ID,
		Name:      department.Name,
		Status:    department.Status,
		CreatedAt: department.CreatedAt,
		UpdatedAt: department.UpdatedAt,
	}
}

func toApplicationReports(models []persistence.MonthlyReport) []application.Report {
	if len(models) == 0 {
		return nil
	}
	reports := make([]application.Report, 0, len(models))
	for _, model := range models {
		reports = append(reports, toApplicationReport(model))
	}
	return reports
}

func toApplicationReport(model persistence.MonthlyReport) application.Report {
	return application.Report{
		Year:       model.Year,
		Month:      model.Month,
		ReportDate: model.ReportDate,

		ReportInput: application.ReportInput{
			TotalBeds:          model.TotalBeds,
			TotalBedsHDU:       model.TotalBedsHDU,
			TotalBedsWard:      model.TotalBedsWard,
			TotalBedsIsolation: model.TotalBedsIsolation,
			AdmissionsMale:     model.AdmissionsMale,
			AdmissionsFemale:   model.AdmissionsFemale,
			AdmissionsAH:       model.AdmissionsAH,
			AdmissionsAMCA:     model.AdmissionsAMCA,
			AdmissionsSAMA:     model.AdmissionsSAMA,
			AdmissionsKU:       model.AdmissionsKU,
			AdmissionsMUNT:     model.AdmissionsMUNT,
			AdmissionsWard02:   model.AdmissionsWard02,
			AdmissionsIsolate:  model.AdmissionsIsolate,
			AdmissionsHDUUnit:  model.AdmissionsHDUUnit,

			BedOccupancyRate:          model.BedOccupancyRate,
			AvgLengthOfStay:           model.AvgLengthOfStay,
			MidnightTotal:             model.MidnightTotal,
			Discharges:                model.Discharges,
			LAMA:                      model.LAMA,
			ReAdmissions:              model.ReAdmissions,
			DischargeSameDay:          model.DischargeSameDay,
			TransferToOtherHospitals:  model.TransferToOtherHospitals,
			TransferFromOtherHospital: model.TransferFromOtherHospital,
			WeekdayTransfersIn:        model.WeekdayTransfersIn,
			WeekdayTransfersOut:       model.WeekdayTransfersOut,
			WeekendTransfersIn:        model.WeekendTransfersIn,
			WeekendTransfersOut:       model.WeekendTransfersOut,
			Missing:                   model.Missing,
			NumberOfDeath:             model.NumberOfDeath,
			DeathWithin24Hrs:          model.DeathWithin24Hrs,
			DeathWithin48Hrs:          model.DeathWithin48Hrs,
			DeathRate:                 model.DeathRate,

			NoOfHD:           model.NoOfHD,
			XRayInward:       model.XRayInward,
			XRayDepartmental: model.XRayDepartmental,
			ECGInward:        model.ECGInward,
			ECGDepartmental:  model.ECGDepartmental,
			ABG:              model.ABG,
			WITMeetings:      model.WITMeetings,

			ReferralsCardiology:     model.ReferralsCardiology,
			ReferralsChestPhysician: model.ReferralsChestPhysician,
			ReferralsRadiodiagnosis: model.ReferralsRadiodiagnosis,
			ReferralsRheumatology:   model.ReferralsRheumatology,
			ReferralsOthers:         model.ReferralsOthers,
			TotalReferrals:          model.TotalReferrals,
		},

		Status:        model.Status,
		CreatedBy:     model.CreatedBy,
		LastUpdatedBy: model.LastUpdatedBy,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceReport(report application.Report) persistence.MonthlyReport {
	return persistence.MonthlyReport{
		Year:       report.Year,
		Month:      report.Month,
		ReportDate: report.ReportDate,

		TotalBeds:          report.TotalBeds,
		TotalBedsHDU:       report.TotalBedsHDU,
		TotalBedsWard:      report.TotalBedsWard,
		TotalBedsIsolation: report.TotalBedsIsolation,
		AdmissionsMale:     report.AdmissionsMale,
		AdmissionsFemale:   report.AdmissionsFemale,
		AdmissionsAH:       report.AdmissionsAH,
		AdmissionsAMCA:     report.AdmissionsAMCA,
		AdmissionsSAMA:     report.AdmissionsSAMA,
		AdmissionsKU:       report.AdmissionsKU,
		AdmissionsMUNT:     report.AdmissionsMUNT,
		AdmissionsWard02:   report.AdmissionsWard02,
		AdmissionsIsolate:  report.AdmissionsIsolate,
		AdmissionsHDUUnit:  report.AdmissionsHDUUnit,

		BedOccupancyRate:          report.BedOccupancyRate,
		AvgLengthOfStay:           report.AvgLengthOfStay,
		MidnightTotal:             report.MidnightTotal,
		Discharges:                report.Discharges,
		LAMA:                      report.LAMA,
		ReAdmissions:              report.ReAdmissions,
		DischargeSameDay:          report.DischargeSameDay,
		TransferToOtherHospitals:  report.TransferToOtherHospitals,
		TransferFromOtherHospital: report.TransferFromOtherHospital,
		WeekdayTransfersIn:        report.WeekdayTransfersIn,
		WeekdayTransfersOut:       report.WeekdayTransfersOut,
		WeekendTransfersIn:        report.WeekendTransfersIn,
		WeekendTransfersOut:       report.WeekendTransfersOut,
		Missing:                   report.Missing,
		NumberOfDeath:             report.NumberOfDeath,
		DeathWithin24Hrs:          report.DeathWithin24Hrs,
		DeathWithin48Hrs:          report.DeathWithin48Hrs,
		DeathRate:                 report.DeathRate,

		NoOfHD:           report.NoOfHD,
		XRayInward:       report.XRayInward,
		XRayDepartmental: report.XRayDepartmental,
		ECGInward:        report.ECGInward,
		ECGDepartmental:  report.ECGDepartmental,
		ABG:              report.ABG,
		WITMeetings:      report.WITMeetings,

		ReferralsCardiology:     report.ReferralsCardiology,
		ReferralsChestPhysician: report.ReferralsChestPhysician,
		ReferralsRadiodiagnosis: report.ReferralsRadiodiagnosis,
		ReferralsRheumatology:   report.ReferralsRheumatology,
		ReferralsOthers:         report.ReferralsOthers,
		TotalReferrals:          report.TotalReferrals,

		Status:        report.Status,
		CreatedBy:     report.CreatedBy,
		LastUpdatedBy: report.LastUpdatedBy,
		CreatedAt:     report.CreatedAt,
		UpdatedAt:     report.UpdatedAt,
	}
}
