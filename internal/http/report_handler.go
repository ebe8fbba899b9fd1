package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/hospital-admin/internal/application"
)

type reportService interface {
	CreateOrUpdate(ctx context.Context, key application.ReportKey, input application.ReportInput, actorID string) (application.Report, error)
	Get(ctx context.Context, key application.ReportKey) (application.Report, error)
	ListByYear(ctx context.Context, year int) ([]application.Report, error)
	List(ctx context.Context, limit, offset int) ([]application.Report, error)
	Submit(ctx context.Context, key application.ReportKey, actorID string) (application.Report, error)
	Approve(ctx context.Context, key application.ReportKey, actorID string) (application.Report, error)
	Delete(ctx context.Context, key application.ReportKey) error
	Statistics(ctx context.Context, year int) (application.ReportStatistics, error)
}

// ReportHandler serves the monthly ward report lifecycle. Saving and
// submitting are open to any authenticated staff member; approval requires an
// approval-grade role and deletion a management role.
type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

// Save creates the report for the month or overwrites its payload.
func (h *ReportHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ReportKeyFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
		return
	}

	identity, _ := IdentityFromContext(r.Context())

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "actor_id", identity.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode report payload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save", "actor_id", identity.ID, "year", key.Year, "month", key.Month)

	report, err := h.service.CreateOrUpdate(r.Context(), key, req.toInput(), identity.ID)
	if err != nil {
		logger.ErrorContext(r.Context(), "report save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", report.Status).InfoContext(r.Context(), "report saved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reportResponse{Report: toReportDTO(report)})
}

// Get returns the report for one month.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ReportKeyFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
		return
	}

	report, err := h.service.Get(r.Context(), key)
	if err != nil {
		h.log(r.Context(), "Get", "year", key.Year, "month", key.Month).ErrorContext(r.Context(), "report read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, reportResponse{Report: toReportDTO(report)})
}

// List returns reports. ?year=YYYY narrows to one year ordered by month,
// otherwise reports are returned newest first with limit/offset pagination.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	query := r.URL.Query()

	var reports []application.Report
	var err error
	if yearParam := query.Get("year"); yearParam != "" {
		year, convErr := strconv.Atoi(yearParam)
		if convErr != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
			return
		}
		reports, err = h.service.ListByYear(r.Context(), year)
	} else {
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))
		reports, err = h.service.List(r.Context(), limit, offset)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "report listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reports)).InfoContext(r.Context(), "reports listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReportsResponse{Reports: toReportDTOs(reports)})
}

// Submit moves the report to submitted for approval.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ReportKeyFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	logger := h.log(r.Context(), "Submit", "actor_id", identity.ID, "year", key.Year, "month", key.Month)

	report, err := h.service.Submit(r.Context(), key, identity.ID)
	if err != nil {
		logger.ErrorContext(r.Context(), "report submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reportResponse{Report: toReportDTO(report)})
}

// Approve moves a submitted report to the terminal approved state.
// Approval-grade roles only.
func (h *ReportHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ReportKeyFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireRole(identity, application.ApprovalRoles...); err != nil {
		h.log(r.Context(), "Approve", "actor_id", identity.ID, "error_kind", "forbidden").ErrorContext(r.Context(), "unauthorized report approval attempt")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Approve", "actor_id", identity.ID, "year", key.Year, "month", key.Month)

	report, err := h.service.Approve(r.Context(), key, identity.ID)
	if err != nil {
		logger.ErrorContext(r.Context(), "report approval failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report approved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reportResponse{Report: toReportDTO(report)})
}

// Delete removes a draft report. Management only.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, ok := ReportKeyFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	if err := application.RequireManagement(identity); err != nil {
		h.log(r.Context(), "Delete", "actor_id", identity.ID, "error_kind", "forbidden").ErrorContext(r.Context(), "unauthorized report deletion attempt")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Delete", "actor_id", identity.ID, "year", key.Year, "month", key.Month)

	if err := h.service.Delete(r.Context(), key); err != nil {
		logger.ErrorContext(r.Context(), "report deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "report deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Statistics aggregates the reports filed for one year.
func (h *ReportHandler) Statistics(w http.ResponseWriter, r *http.Request, yearParam string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	year, err := strconv.Atoi(strings.TrimSpace(yearParam))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReportPeriod)
		return
	}

	logger := h.log(r.Context(), "Statistics", "year", year)

	stats, err := h.service.Statistics(r.Context(), year)
	if err != nil {
		logger.ErrorContext(r.Context(), "report statistics failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("total_reports", stats.TotalReports).InfoContext(r.Context(), "report statistics computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStatisticsDTO(stats))
}

type reportRequest struct {
	TotalBeds          int `json:"total_beds"`
	TotalBedsHDU       int `json:"total_beds_hdu"`
	TotalBedsWard      int `json:"total_beds_ward"`
	TotalBedsIsolation int `json:"total_beds_isolation"`
	AdmissionsMale     int `json:"admissions_male"`
	AdmissionsFemale   int `json:"admissions_female"`
	AdmissionsAH       int `json:"admissions_ah"`
	AdmissionsAMCA     int `json:"admissions_amca"`
	AdmissionsSAMA     int `json:"admissions_sama"`
	AdmissionsKU       int `json:"admissions_ku"`
	AdmissionsMUNT     int `json:"admissions_munt"`
	AdmissionsWard02   int `json:"admissions_ward02"`
	AdmissionsIsolate  int `json:"admissions_isolation"`
	AdmissionsHDUUnit  int `json:"admissions_hdu_unit"`

	BedOccupancyRate          float64 `json:"bed_occupancy_rate"`
	AvgLengthOfStay           float64 `json:"avg_length_of_stay"`
	MidnightTotal             int     `json:"midnight_total"`
	Discharges                int     `json:"discharges"`
	LAMA                      int     `json:"lama"`
	ReAdmissions              int     `json:"re_admissions"`
	DischargeSameDay          int     `json:"discharge_same_day"`
	TransferToOtherHospitals  int     `json:"transfer_to_other_hospitals"`
	TransferFromOtherHospital int     `json:"transfer_from_other_hospitals"`
	WeekdayTransfersIn        int     `json:"weekday_transfers_in"`
	WeekdayTransfersOut       int     `json:"weekday_transfers_out"`
	WeekendTransfersIn        int     `json:"weekend_transfers_in"`
	WeekendTransfersOut       int     `json:"weekend_transfers_out"`
	Missing                   int     `json:"missing"`
	NumberOfDeath             int     `json:"number_of_death"`
	DeathWithin24Hrs          int     `json:"death_within_24hrs"`
	DeathWithin48Hrs          int     `json:"death_within_48hrs"`
	DeathRate                 float64 `json:"death_rate"`

	NoOfHD           int  `json:"no_of_hd"`
	XRayInward       int  `json:"xray_inward"`
	XRayDepartmental int  `json:"xray_departmental"`
	ECGInward        int  `json:"ecg_inward"`
	ECGDepartmental  int  `json:"ecg_departmental"`
	ABG              int  `json:"abg"`
	WITMeetings      bool `json:"wit_meetings"`

	ReferralsCardiology     int `json:"referrals_cardiology"`
	ReferralsChestPhysician int `json:"referrals_chest_physician"`
	ReferralsRadiodiagnosis int `json:"referrals_radiodiagnosis"`
	ReferralsRheumatology   int `json:"referrals_rheumatology"`
	ReferralsOthers         int `json:"referrals_others"`
	TotalReferrals          int `json:"total_referrals"`
}

func (r reportRequest) toInput() application.ReportInput {
	return application.ReportInput{
		TotalBeds:          r.TotalBeds,
		TotalBedsHDU:       r.TotalBedsHDU,
		TotalBedsWard:      r.TotalBedsWard,
		TotalBedsIsolation: r.TotalBedsIsolation,
		AdmissionsMale:     r.AdmissionsMale,
		AdmissionsFemale:   r.AdmissionsFemale,
		AdmissionsAH:       r.AdmissionsAH,
		AdmissionsAMCA:     r.AdmissionsAMCA,
		AdmissionsSAMA:     r.AdmissionsSAMA,
		AdmissionsKU:       r.AdmissionsKU,
		AdmissionsMUNT:     r.AdmissionsMUNT,
		AdmissionsWard02:   r.AdmissionsWard02,
		AdmissionsIsolate:  r.AdmissionsIsolate,
		AdmissionsHDUUnit:  r.AdmissionsHDUUnit,

		BedOccupancyRate:          r.BedOccupancyRate,
		AvgLengthOfStay:           r.AvgLengthOfStay,
		MidnightTotal:             r.MidnightTotal,
		Discharges:                r.Discharges,
		LAMA:                      r.LAMA,
		ReAdmissions:              r.ReAdmissions,
		DischargeSameDay:          r.DischargeSameDay,
		TransferToOtherHospitals:  r.TransferToOtherHospitals,
		TransferFromOtherHospital: r.TransferFromOtherHospital,
		WeekdayTransfersIn:        r.WeekdayTransfersIn,
		WeekdayTransfersOut:       r.WeekdayTransfersOut,
		WeekendTransfersIn:        r.WeekendTransfersIn,
		WeekendTransfersOut:       r.WeekendTransfersOut,
		Missing:                   r.Missing,
		NumberOfDeath:             r.NumberOfDeath,
		DeathWithin24Hrs:          r.DeathWithin24Hrs,
		DeathWithin48Hrs:          r.DeathWithin48Hrs,
		DeathRate:                 r.DeathRate,

		NoOfHD:           r.NoOfHD,
		XRayInward:       r.XRayInward,
		XRayDepartmental: r.XRayDepartmental,
		ECGInward:        r.ECGInward,
		ECGDepartmental:  r.ECGDepartmental,
		ABG:              r.ABG,
		WITMeetings:      r.WITMeetings,

		ReferralsCardiology:     r.ReferralsCardiology,
		ReferralsChestPhysician: r.ReferralsChestPhysician,
		ReferralsRadiodiagnosis: r.ReferralsRadiodiagnosis,
		ReferralsRheumatology:   r.ReferralsRheumatology,
		ReferralsOthers:         r.ReferralsOthers,
		TotalReferrals:          r.TotalReferrals,
	}
}

type reportResponse struct {
	Report reportDTO `json:"report"`
}

type listReportsResponse struct {
	Reports []reportDTO `json:"reports"`
}

type reportDTO struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	ReportDate string `json:"report_date"`

	reportRequest

	TotalAdmissions     int     `json:"total_admissions"`
	TotalXRays          int     `json:"total_xrays"`
	TotalECGs           int     `json:"total_ecgs"`
	TotalTransfersIn    int     `json:"total_transfers_in"`
	TotalTransfersOut   int     `json:"total_transfers_out"`
	NetTransferBalance  int     `json:"net_transfer_balance"`
	MortalityRate       float64 `json:"mortality_rate"`
	OccupancyPercentage float64 `json:"occupancy_percentage"`

	Status        string  `json:"status"`
	CreatedBy     *string `json:"created_by"`
	LastUpdatedBy *string `json:"last_updated_by"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toReportDTO(report application.Report) reportDTO {
	return reportDTO{
		Year:       report.Year,
		Month:      report.Month,
		ReportDate: report.ReportDate.UTC().Format("2006-01-02"),

		reportRequest: reportRequest{
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
		},

		TotalAdmissions:     report.TotalAdmissions(),
		TotalXRays:          report.TotalXRays(),
		TotalECGs:           report.TotalECGs(),
		TotalTransfersIn:    report.TotalTransfersIn(),
		TotalTransfersOut:   report.TotalTransfersOut(),
		NetTransferBalance:  report.NetTransferBalance(),
		MortalityRate:       report.MortalityRatePercentage(),
		OccupancyPercentage: report.OccupancyPercentage(),

		Status:        report.Status,
		CreatedBy:     report.CreatedBy,
		LastUpdatedBy: report.LastUpdatedBy,
		CreatedAt:     report.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     report.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toReportDTOs(reports []application.Report) []reportDTO {
	if len(reports) == 0 {
		return nil
	}
	out := make([]reportDTO, 0, len(reports))
	for _, report := range reports {
		out = append(out, toReportDTO(report))
	}
	return out
}

type statisticsDTO struct {
	Year             int     `json:"year"`
	TotalReports     int     `json:"total_reports"`
	DraftReports     int     `json:"draft_reports"`
	SubmittedReports int     `json:"submitted_reports"`
	ApprovedReports  int     `json:"approved_reports"`
	CompletionRate   float64 `json:"completion_rate"`
	AvgAdmissions    float64 `json:"avg_admissions"`
	AvgDischarges    float64 `json:"avg_discharges"`
	AvgOccupancyRate float64 `json:"avg_occupancy_rate"`
}

func toStatisticsDTO(stats application.ReportStatistics) statisticsDTO {
	return statisticsDTO{
		Year:             stats.Year,
		TotalReports:     stats.TotalReports,
		DraftReports:     stats.DraftReports,
		SubmittedReports: stats.SubmittedReports,
		ApprovedReports:  stats.ApprovedReports,
		CompletionRate:   stats.CompletionRate,
		AvgAdmissions:    stats.AvgAdmissions,
		AvgDischarges:    stats.AvgDischarges,
		AvgOccupancyRate: stats.AvgOccupancyRate,
	}
}
