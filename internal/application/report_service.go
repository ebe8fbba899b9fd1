package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ReportRepository captures the persistence operations needed by the report
// service. UpsertReport must be atomic for a given (year, month) key: either
// the row is inserted, or its payload fields are overwritten while status,
// created_by, and created_at are preserved.
type ReportRepository interface {
	UpsertReport(ctx context.Context, report Report) (Report, error)
	GetReport(ctx context.Context, year, month int) (Report, error)
	SetReportStatus(ctx context.Context, year, month int, status string, updatedBy *string, updatedAt time.Time) error
	ListReportsByYear(ctx context.Context, year int) ([]Report, error)
	ListReports(ctx context.Context, limit, offset int) ([]Report, error)
	DeleteReport(ctx context.Context, year, month int) error
}

// ReportService owns the monthly report lifecycle: draft on first save,
// submitted after handover, approved as the terminal state. Role checks for
// transitions are applied by callers; the service enforces only the state
// machine itself.
type ReportService struct {
	reports ReportRepository
	now     func() time.Time
	logger  *slog.Logger
}

// NewReportService wires dependencies for the report service.
func NewReportService(reports ReportRepository, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(reports, now, nil)
}

// NewReportServiceWithLogger wires dependencies with a specified logger.
func NewReportServiceWithLogger(reports ReportRepository, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{reports: reports, now: now, logger: defaultLogger(logger)}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// CreateOrUpdate saves the payload for the given month. A missing report is
// created in draft; an existing one has its payload overwritten in place
// regardless of current status, which is the sole non-status-gated mutation.
// Callers that want submitted or approved reports to be immutable must guard
// before calling.
func (s *ReportService) CreateOrUpdate(ctx context.Context, key ReportKey, input ReportInput, actorID string) (report Report, err error) {
	if s == nil || s.reports == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateOrUpdate", "year", key.Year, "month", key.Month, "actor_id", actorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", report.Status).InfoContext(ctx, "report saved")
	}()

	vErr := validateReportInput(key, input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	actor := actorRef(actorID)
	now := s.now()
	report, err = s.reports.UpsertReport(ctx, Report{
		Year:          key.Year,
		Month:         key.Month,
		ReportDate:    time.Date(key.Year, time.Month(key.Month), 1, 0, 0, 0, 0, time.UTC),
		ReportInput:   input,
		Status:        ReportStatusDraft,
		CreatedBy:     actor,
		LastUpdatedBy: actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		report = Report{}
	}
	return
}

// Get returns the report for the given month.
func (s *ReportService) Get(ctx context.Context, key ReportKey) (Report, error) {
	if s == nil || s.reports == nil {
		return Report{}, fmt.Errorf("report repository not configured")
	}
	return s.reports.GetReport(ctx, key.Year, key.Month)
}

// ListByYear returns the reports filed for a year ordered by month.
func (s *ReportService) ListByYear(ctx context.Context, year int) ([]Report, error) {
	if s == nil || s.reports == nil {
		return nil, fmt.Errorf("report repository not configured")
	}
	return s.reports.ListReportsByYear(ctx, year)
}

// List returns reports newest first, paginated.
func (s *ReportService) List(ctx context.Context, limit, offset int) ([]Report, error) {
	if s == nil || s.reports == nil {
		return nil, fmt.Errorf("report repository not configured")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reports.ListReports(ctx, limit, offset)
}

// Submit moves a report to submitted. Submitting an already submitted report
// is permitted and idempotent; an approved report can no longer be submitted.
func (s *ReportService) Submit(ctx context.Context, key ReportKey, actorID string) (report Report, err error) {
	if s == nil || s.reports == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Submit", "year", key.Year, "month", key.Month, "actor_id", actorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "report submitted for approval")
	}()

	var current Report
	current, err = s.reports.GetReport(ctx, key.Year, key.Month)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = NewBusinessRuleError(fmt.Sprintf("no report found for %d/%d", key.Year, key.Month))
		}
		return
	}

	if current.Status == ReportStatusApproved {
		err = NewBusinessRuleError("cannot submit an already approved report")
		return
	}

	report, err = s.setStatus(ctx, current, ReportStatusSubmitted, actorID)
	return
}

// Approve moves a submitted report to the terminal approved state. The
// caller is responsible for restricting this to approval-grade roles.
func (s *ReportService) Approve(ctx context.Context, key ReportKey, actorID string) (report Report, err error) {
	if s == nil || s.reports == nil {
		err = fmt.Errorf("report repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Approve", "year", key.Year, "month", key.Month, "actor_id", actorID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to approve report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "report approved")
	}()

	var current Report
	current, err = s.reports.GetReport(ctx, key.Year, key.Month)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = NewBusinessRuleError(fmt.Sprintf("no report found for %d/%d", key.Year, key.Month))
		}
		return
	}

	if current.Status != ReportStatusSubmitted {
		err = NewBusinessRuleError("can only approve submitted reports")
		return
	}

	report, err = s.setStatus(ctx, current, ReportStatusApproved, actorID)
	return
}

// Delete removes a report permanently. Only drafts may be deleted.
func (s *ReportService) Delete(ctx context.Context, key ReportKey) (err error) {
	if s == nil || s.reports == nil {
		return fmt.Errorf("report repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "year", key.Year, "month", key.Month)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "report deleted")
	}()

	var current Report
	current, err = s.reports.GetReport(ctx, key.Year, key.Month)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = NewBusinessRuleError(fmt.Sprintf("no report found for %d/%d", key.Year, key.Month))
		}
		return
	}

	if current.Status != ReportStatusDraft {
		err = NewBusinessRuleError("can only delete draft reports")
		return
	}

	err = s.reports.DeleteReport(ctx, key.Year, key.Month)
	return
}

// Statistics aggregates the reports filed for a year. An empty year yields
// zero values rather than a division by zero.
func (s *ReportService) Statistics(ctx context.Context, year int) (ReportStatistics, error) {
	if s == nil || s.reports == nil {
		return ReportStatistics{}, fmt.Errorf("report repository not configured")
	}

	reports, err := s.reports.ListReportsByYear(ctx, year)
	if err != nil {
		return ReportStatistics{}, err
	}

	stats := ReportStatistics{Year: year, TotalReports: len(reports)}
	if len(reports) == 0 {
		return stats, nil
	}

	var admissions, discharges, occupancy float64
	for _, report := range reports {
		switch report.Status {
		case ReportStatusDraft:
			stats.DraftReports++
		case ReportStatusSubmitted:
			stats.SubmittedReports++
		case ReportStatusApproved:
			stats.ApprovedReports++
		}
		admissions += float64(report.TotalAdmissions())
		discharges += float64(report.Discharges)
		occupancy += report.OccupancyPercentage()
	}

	count := float64(len(reports))
	stats.CompletionRate = round2(count / 12 * 100)
	stats.AvgAdmissions = round2(admissions / count)
	stats.AvgDischarges = round2(discharges / count)
	stats.AvgOccupancyRate = round2(occupancy / count)
	return stats, nil
}

func (s *ReportService) setStatus(ctx context.Context, current Report, status, actorID string) (Report, error) {
	actor := actorRef(actorID)
	now := s.now()
	if err := s.reports.SetReportStatus(ctx, current.Year, current.Month, status, actor, now); err != nil {
		return Report{}, err
	}
	current.Status = status
	current.LastUpdatedBy = actor
	current.UpdatedAt = now
	return current, nil
}

func actorRef(actorID string) *string {
	if actorID == "" {
		return nil
	}
	return &actorID
}

func validateReportInput(key ReportKey, input ReportInput) *ValidationError {
	vErr := &ValidationError{}

	if key.Month < 1 || key.Month > 12 {
		vErr.add("month", "month must be between 1 and 12")
	}
	if key.Year < 2020 {
		vErr.add("year", "year must be 2020 or later")
	}
	if input.TotalBeds < 1 {
		vErr.add("total_beds", "total beds must be at least 1")
	}
	if input.BedOccupancyRate < 0 || input.BedOccupancyRate > 100 {
		vErr.add("bed_occupancy_rate", "rate must be between 0 and 100")
	}
	if input.DeathRate < 0 || input.DeathRate > 100 {
		vErr.add("death_rate", "rate must be between 0 and 100")
	}
	if input.AvgLengthOfStay < 0 {
		vErr.add("avg_length_of_stay", "value must not be negative")
	}

	counters := []struct {
		field string
		value int
	}{
		{"total_beds_hdu", input.TotalBedsHDU},
		{"total_beds_ward", input.TotalBedsWard},
		{"total_beds_isolation", input.TotalBedsIsolation},
		{"admissions_male", input.AdmissionsMale},
		{"admissions_female", input.AdmissionsFemale},
		{"admissions_ah", input.AdmissionsAH},
		{"admissions_amca", input.AdmissionsAMCA},
		{"admissions_sama", input.AdmissionsSAMA},
		{"admissions_ku", input.AdmissionsKU},
		{"admissions_munt", input.AdmissionsMUNT},
		{"admissions_ward02", input.AdmissionsWard02},
		{"admissions_isolation", input.AdmissionsIsolate},
		{"admissions_hdu_unit", input.AdmissionsHDUUnit},
		{"midnight_total", input.MidnightTotal},
		{"discharges", input.Discharges},
		{"lama", input.LAMA},
		{"re_admissions", input.ReAdmissions},
		{"discharge_same_day", input.DischargeSameDay},
		{"transfer_to_other_hospitals", input.TransferToOtherHospitals},
		{"transfer_from_other_hospitals", input.TransferFromOtherHospital},
		{"weekday_transfers_in", input.WeekdayTransfersIn},
		{"weekday_transfers_out", input.WeekdayTransfersOut},
		{"weekend_transfers_in", input.WeekendTransfersIn},
		{"weekend_transfers_out", input.WeekendTransfersOut},
		{"missing", input.Missing},
		{"number_of_death", input.NumberOfDeath},
		{"death_within_24hrs", input.DeathWithin24Hrs},
		{"death_within_48hrs", input.DeathWithin48Hrs},
		{"no_of_hd", input.NoOfHD},
		{"xray_inward", input.XRayInward},
		{"xray_departmental", input.XRayDepartmental},
		{"ecg_inward", input.ECGInward},
		{"ecg_departmental", input.ECGDepartmental},
		{"abg", input.ABG},
		{"referrals_cardiology", input.ReferralsCardiology},
		{"referrals_chest_physician", input.ReferralsChestPhysician},
		{"referrals_radiodiagnosis", input.ReferralsRadiodiagnosis},
		{"referrals_rheumatology", input.ReferralsRheumatology},
		{"referrals_others", input.ReferralsOthers},
		{"total_referrals", input.TotalReferrals},
	}
	for _, counter := range counters {
		if counter.value < 0 {
			vErr.add(counter.field, "count must not be negative")
		}
	}

	return vErr
}
