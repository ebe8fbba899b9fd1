package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/hospital-admin/internal/persistence"
)

// reportPayloadColumns are the columns a re-save overwrites. Lifecycle
// columns (status, created_by, created_at) are deliberately absent so they
// survive an upsert of an existing month.
var reportPayloadColumns = []string{
	"report_date",
	"total_beds",
	"total_beds_hdu",
	"total_beds_ward",
	"total_beds_isolation",
	"admissions_male",
	"admissions_female",
	"admissions_ah",
	"admissions_amca",
	"admissions_sama",
	"admissions_ku",
	"admissions_munt",
	"admissions_ward02",
	"admissions_isolation",
	"admissions_hdu_unit",
	"bed_occupancy_rate",
	"avg_length_of_stay",
	"midnight_total",
	"discharges",
	"lama",
	"re_admissions",
	"discharge_same_day",
	"transfer_to_other_hospitals",
	"transfer_from_other_hospitals",
	"weekday_transfers_in",
	"weekday_transfers_out",
	"weekend_transfers_in",
	"weekend_transfers_out",
	"missing",
	"number_of_death",
	"death_within_24hrs",
	"death_within_48hrs",
	"death_rate",
	"no_of_hd",
	"xray_inward",
	"xray_departmental",
	"ecg_inward",
	"ecg_departmental",
	"abg",
	"wit_meetings",
	"referrals_cardiology",
	"referrals_chest_physician",
	"referrals_radiodiagnosis",
	"referrals_rheumatology",
	"referrals_others",
	"total_referrals",
}

var reportColumns = "year, month, " + strings.Join(reportPayloadColumns, ", ") +
	", status, created_by, last_updated_by, created_at, updated_at"

// ReportRepository implements persistence.ReportRepository using SQLite.
type ReportRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReportRepository creates a new SQLite report repository.
func NewReportRepository(pool *ConnectionPool) *ReportRepository {
	return &ReportRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// UpsertReport inserts the report or overwrites the payload of an existing
// (year, month) row in a single statement. Concurrent saves of the same month
// cannot produce duplicate rows; the last write wins.
func (r *ReportRepository) UpsertReport(ctx context.Context, report persistence.MonthlyReport) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 2+len(reportPayloadColumns)+5), ", ")

	updates := make([]string, 0, len(reportPayloadColumns)+2)
	for _, column := range reportPayloadColumns {
		updates = append(updates, column+" = excluded."+column)
	}
	updates = append(updates, "last_updated_by = excluded.last_updated_by", "updated_at = excluded.updated_at")

	query := `
		INSERT INTO monthly_reports (` + reportColumns + `)
		VALUES (` + placeholders + `)
		ON CONFLICT (year, month) DO UPDATE SET ` + strings.Join(updates, ", ")

	args := []any{report.Year, report.Month}
	args = append(args, reportPayloadArgs(report)...)
	args = append(args,
		report.Status,
		nullableString(report.CreatedBy),
		nullableString(report.LastUpdatedBy),
		report.CreatedAt.UTC().Format(time.RFC3339),
		report.UpdatedAt.UTC().Format(time.RFC3339),
	)

	if _, err := r.helper.Exec(ctx, query, args...); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// SetReportStatus updates the lifecycle status of an existing report.
func (r *ReportRepository) SetReportStatus(ctx context.Context, year, month int, status string, updatedBy *string, updatedAt time.Time) error {
	query := `
		UPDATE monthly_reports
		SET status = ?, last_updated_by = ?, updated_at = ?
		WHERE year = ? AND month = ?
	`

	result, err := r.helper.Exec(ctx, query,
		status,
		nullableString(updatedBy),
		updatedAt.UTC().Format(time.RFC3339),
		year,
		month,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetReport retrieves the report for the given month.
func (r *ReportRepository) GetReport(ctx context.Context, year, month int) (persistence.MonthlyReport, error) {
	row := r.helper.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM monthly_reports WHERE year = ? AND month = ?`,
		year, month,
	)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.MonthlyReport{}, persistence.ErrNotFound
		}
		return persistence.MonthlyReport{}, r.mapper.MapError(err)
	}
	return report, nil
}

// ListReportsByYear returns the reports for a year ordered by month.
func (r *ReportRepository) ListReportsByYear(ctx context.Context, year int) ([]persistence.MonthlyReport, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT `+reportColumns+` FROM monthly_reports WHERE year = ? ORDER BY month ASC`,
		year,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectReports(rows)
}

// ListReports returns reports newest first, paginated.
func (r *ReportRepository) ListReports(ctx context.Context, limit, offset int) ([]persistence.MonthlyReport, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT `+reportColumns+` FROM monthly_reports ORDER BY year DESC, month DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	return r.collectReports(rows)
}

// DeleteReport removes the report for the given month.
func (r *ReportRepository) DeleteReport(ctx context.Context, year, month int) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM monthly_reports WHERE year = ? AND month = ?`, year, month)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) collectReports(rows *sql.Rows) ([]persistence.MonthlyReport, error) {
	var reports []persistence.MonthlyReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reports, nil
}

func reportPayloadArgs(report persistence.MonthlyReport) []any {
	return []any{
		report.ReportDate.UTC().Format(time.RFC3339),
		report.TotalBeds,
		report.TotalBedsHDU,
		report.TotalBedsWard,
		report.TotalBedsIsolation,
		report.AdmissionsMale,
		report.AdmissionsFemale,
		report.AdmissionsAH,
		report.AdmissionsAMCA,
		report.AdmissionsSAMA,
		report.AdmissionsKU,
		report.AdmissionsMUNT,
		report.AdmissionsWard02,
		report.AdmissionsIsolate,
		report.AdmissionsHDUUnit,
		report.BedOccupancyRate,
		report.AvgLengthOfStay,
		report.MidnightTotal,
		report.Discharges,
		report.LAMA,
		report.ReAdmissions,
		report.DischargeSameDay,
		report.TransferToOtherHospitals,
		report.TransferFromOtherHospital,
		report.WeekdayTransfersIn,
		report.WeekdayTransfersOut,
		report.WeekendTransfersIn,
		report.WeekendTransfersOut,
		report.Missing,
		report.NumberOfDeath,
		report.DeathWithin24Hrs,
		report.DeathWithin48Hrs,
		report.DeathRate,
		report.NoOfHD,
		report.XRayInward,
		report.XRayDepartmental,
		report.ECGInward,
		report.ECGDepartmental,
		report.ABG,
		report.WITMeetings,
		report.ReferralsCardiology,
		report.ReferralsChestPhysician,
		report.ReferralsRadiodiagnosis,
		report.ReferralsRheumatology,
		report.ReferralsOthers,
		report.TotalReferrals,
	}
}

func scanReport(scanner rowScanner) (persistence.MonthlyReport, error) {
	var report persistence.MonthlyReport
	var reportDateStr, createdAtStr, updatedAtStr string
	var createdBy, lastUpdatedBy sql.NullString

	err := scanner.Scan(
		&report.Year,
		&report.Month,
		&reportDateStr,
		&report.TotalBeds,
		&report.TotalBedsHDU,
		&report.TotalBedsWard,
		&report.TotalBedsIsolation,
		&report.AdmissionsMale,
		&report.AdmissionsFemale,
		&report.AdmissionsAH,
		&report.AdmissionsAMCA,
		&report.AdmissionsSAMA,
		&report.AdmissionsKU,
		&report.AdmissionsMUNT,
		&report.AdmissionsWard02,
		&report.AdmissionsIsolate,
		&report.AdmissionsHDUUnit,
		&report.BedOccupancyRate,
		&report.AvgLengthOfStay,
		&report.MidnightTotal,
		&report.Discharges,
		&report.LAMA,
		&report.ReAdmissions,
		&report.DischargeSameDay,
		&report.TransferToOtherHospitals,
		&report.TransferFromOtherHospital,
		&report.WeekdayTransfersIn,
		&report.WeekdayTransfersOut,
		&report.WeekendTransfersIn,
		&report.WeekendTransfersOut,
		&report.Missing,
		&report.NumberOfDeath,
		&report.DeathWithin24Hrs,
		&report.DeathWithin48Hrs,
		&report.DeathRate,
		&report.NoOfHD,
		&report.XRayInward,
		&report.XRayDepartmental,
		&report.ECGInward,
		&report.ECGDepartmental,
		&report.ABG,
		&report.WITMeetings,
		&report.ReferralsCardiology,
		&report.ReferralsChestPhysician,
		&report.ReferralsRadiodiagnosis,
		&report.ReferralsRheumatology,
		&report.ReferralsOthers,
		&report.TotalReferrals,
		&report.Status,
		&createdBy,
		&lastUpdatedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.MonthlyReport{}, err
	}

	if report.ReportDate, err = time.Parse(time.RFC3339, reportDateStr); err != nil {
		return persistence.MonthlyReport{}, fmt.Errorf("sqlite: failed to parse report_date: %w", err)
	}
	if report.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.MonthlyReport{}, fmt.Errorf("sqlite: failed to parse created_at: %w", err)
	}
	if report.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.MonthlyReport{}, fmt.Errorf("sqlite: failed to parse updated_at: %w", err)
	}
	if createdBy.Valid {
		report.CreatedBy = &createdBy.String
	}
	if lastUpdatedBy.Valid {
		report.LastUpdatedBy = &lastUpdatedBy.String
	}
	return report, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
