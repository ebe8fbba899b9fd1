package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/hospital-admin/internal/application"
	"github.com/example/hospital-admin/internal/persistence"
)

var (
	staffCounter      uint64
	departmentCounter uint64
)

var referenceTime = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Staff fixtures -----------------------------

// StaffFixture represents a deterministic staff account that can be
// materialised for application or persistence tests.
type StaffFixture struct {
	ID           string
	EmployeeID   string
	Name         string
	Role         string
	DepartmentID string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffOption configures the generated staff fixture.
type StaffOption func(*StaffFixture)

// NewStaffFixture returns a deterministic staff fixture with optional overrides.
func NewStaffFixture(opts ...StaffOption) StaffFixture {
	idx := atomic.AddUint64(&staffCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := StaffFixture{
		ID:           fmt.Sprintf("staff-%03d", idx),
		EmployeeID:   fmt.Sprintf("EMP%03d", idx),
		Name:         fmt.Sprintf("Staff Member %03d", idx),
		Role:         application.RoleNurse,
		DepartmentID: fmt.Sprintf("dept-%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithStaffID overrides the generated account ID.
func WithStaffID(id string) StaffOption {
	return func(f *StaffFixture) {
		f.ID = id
	}
}

// WithStaffEmployeeID overrides the generated employee id.
func WithStaffEmployeeID(employeeID string) StaffOption {
	return func(f *StaffFixture) {
		f.EmployeeID = employeeID
	}
}

// WithStaffName overrides the generated display name.
func WithStaffName(name string) StaffOption {
	return func(f *StaffFixture) {
		f.Name = name
	}
}

// WithStaffRole sets the role on the generated fixture.
func WithStaffRole(role string) StaffOption {
	return func(f *StaffFixture) {
		f.Role = role
	}
}

// WithStaffDepartment sets the department assignment.
func WithStaffDepartment(departmentID string) StaffOption {
	return func(f *StaffFixture) {
		f.DepartmentID = departmentID
	}
}

// WithStaffPasswordHash overrides the generated password hash.
func WithStaffPasswordHash(hash string) StaffOption {
	return func(f *StaffFixture) {
		f.PasswordHash = hash
	}
}

// WithStaffTimestamps sets both created and updated timestamps on the fixture.
func WithStaffTimestamps(created, updated time.Time) StaffOption {
	return func(f *StaffFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Identity returns the fixture as an application.Identity value.
func (f StaffFixture) Identity() application.Identity {
	return application.Identity{
		ID:           f.ID,
		EmployeeID:   f.EmployeeID,
		Name:         f.Name,
		Role:         f.Role,
		DepartmentID: f.DepartmentID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.Credentials.
func (f StaffFixture) Credentials() application.Credentials {
	return application.Credentials{
		Identity:     f.Identity(),
		PasswordHash: f.PasswordHash,
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f StaffFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		EmployeeID:   f.EmployeeID,
		Name:         f.Name,
		Role:         f.Role,
		DepartmentID: f.DepartmentID,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UserInput with a plaintext
// password suitable for service-level creation tests.
func (f StaffFixture) Input(password string) application.UserInput {
	return application.UserInput{
		EmployeeID:   f.EmployeeID,
		Name:         f.Name,
		Role:         f.Role,
		DepartmentID: f.DepartmentID,
		Password:     password,
	}
}

// -------------------------- Department fixtures ---------------------------

// DepartmentFixture represents a deterministic department record.
type DepartmentFixture struct {
	ID        string
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DepartmentOption configures the generated department fixture.
type DepartmentOption func(*DepartmentFixture)

// NewDepartmentFixture returns a deterministic department fixture with
// optional overrides.
func NewDepartmentFixture(opts ...DepartmentOption) DepartmentFixture {
	idx := atomic.AddUint64(&departmentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := DepartmentFixture{
		ID:        fmt.Sprintf("dept-%03d", idx),
		Name:      fmt.Sprintf("Department %03d", idx),
		Status:    application.DepartmentActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDepartmentID overrides the generated department ID.
func WithDepartmentID(id string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.ID = id
	}
}

// WithDepartmentName overrides the generated name.
func WithDepartmentName(name string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.Name = name
	}
}

// WithDepartmentStatus sets the lifecycle status.
func WithDepartmentStatus(status string) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.Status = status
	}
}

// WithDepartmentTimestamps sets both created and updated timestamps.
func WithDepartmentTimestamps(created, updated time.Time) DepartmentOption {
	return func(f *DepartmentFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Department value.
func (f DepartmentFixture) Application() application.Department {
	return application.Department{
		ID:        f.ID,
		Name:      f.Name,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Department value.
func (f DepartmentFixture) Persistence() persistence.Department {
	return persistence.Department{
		ID:        f.ID,
		Name:      f.Name,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.DepartmentInput.
func (f DepartmentFixture) Input() application.DepartmentInput {
	return application.DepartmentInput{
		Name:   f.Name,
		Status: f.Status,
	}
}

// ---------------------------- Report fixtures -----------------------------

// ReportFixture represents a deterministic monthly ward report.
type ReportFixture struct {
	Year          int
	Month         int
	Payload       application.ReportInput
	Status        string
	CreatedBy     *string
	LastUpdatedBy *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReportOption configures the generated report fixture.
type ReportOption func(*ReportFixture)

// NewReportFixture returns a report fixture for March of the reference year
// populated with a plausible ward census. Overrides adjust the period,
// lifecycle state, or individual counters.
func NewReportFixture(opts ...ReportOption) ReportFixture {
	fixture := ReportFixture{
		Year:   referenceTime.Year(),
		Month:  int(referenceTime.Month()),
		Status: application.ReportStatusDraft,
		Payload: application.ReportInput{
			TotalBeds:          40,
			TotalBedsHDU:       6,
			TotalBedsWard:      30,
			TotalBedsIsolation: 4,
			AdmissionsMale:     55,
			AdmissionsFemale:   48,
			AdmissionsAH:       20,
			AdmissionsAMCA:     15,
			AdmissionsSAMA:     12,
			AdmissionsKU:       18,
			AdmissionsMUNT:     10,
			AdmissionsWard02:   14,
			AdmissionsIsolate:  6,
			AdmissionsHDUUnit:  8,

			BedOccupancyRate: 78.5,
			AvgLengthOfStay:  4.2,
			MidnightTotal:    32,
			Discharges:       95,
			LAMA:             3,
			ReAdmissions:     7,
			DischargeSameDay: 4,

			TransferToOtherHospitals:  2,
			TransferFromOtherHospital: 5,
			WeekdayTransfersIn:        8,
			WeekdayTransfersOut:       6,
			WeekendTransfersIn:        3,
			WeekendTransfersOut:       2,

			Missing:          0,
			NumberOfDeath:    4,
			DeathWithin24Hrs: 1,
			DeathWithin48Hrs: 1,
			DeathRate:        4.21,

			NoOfHD:           12,
			XRayInward:       30,
			XRayDepartmental: 22,
			ECGInward:        25,
			ECGDepartmental:  15,
			ABG:              9,
			WITMeetings:      true,

			ReferralsCardiology:     6,
			ReferralsChestPhysician: 4,
			ReferralsRadiodiagnosis: 5,
			ReferralsRheumatology:   2,
			ReferralsOthers:         3,
			TotalReferrals:          20,
		},
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReportPeriod sets the year and month the report covers.
func WithReportPeriod(year, month int) ReportOption {
	return func(f *ReportFixture) {
		f.Year = year
		f.Month = month
	}
}

// WithReportStatus sets the lifecycle status.
func WithReportStatus(status string) ReportOption {
	return func(f *ReportFixture) {
		f.Status = status
	}
}

// WithReportPayload replaces the statistical payload wholesale.
func WithReportPayload(payload application.ReportInput) ReportOption {
	return func(f *ReportFixture) {
		f.Payload = payload
	}
}

// WithReportActors sets the creating and last-updating account ids.
func WithReportActors(createdBy, lastUpdatedBy string) ReportOption {
	return func(f *ReportFixture) {
		created := createdBy
		updated := lastUpdatedBy
		f.CreatedBy = &created
		f.LastUpdatedBy = &updated
	}
}

// WithReportTimestamps sets both created and updated timestamps.
func WithReportTimestamps(created, updated time.Time) ReportOption {
	return func(f *ReportFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// ReportDate returns the first day of the reporting period.
func (f ReportFixture) ReportDate() time.Time {
	return time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Application returns the fixture as an application.Report value.
func (f ReportFixture) Application() application.Report {
	return application.Report{
		Year:          f.Year,
		Month:         f.Month,
		ReportDate:    f.ReportDate(),
		ReportInput:   f.Payload,
		Status:        f.Status,
		CreatedBy:     copyStringPtr(f.CreatedBy),
		LastUpdatedBy: copyStringPtr(f.LastUpdatedBy),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Input returns the statistical payload alone.
func (f ReportFixture) Input() application.ReportInput {
	return f.Payload
}

// Persistence returns the fixture as a persistence.MonthlyReport value.
func (f ReportFixture) Persistence() persistence.MonthlyReport {
	p := f.Payload
	return persistence.MonthlyReport{
		Year:       f.Year,
		Month:      f.Month,
		ReportDate: f.ReportDate(),

		TotalBeds:          p.TotalBeds,
		TotalBedsHDU:       p.TotalBedsHDU,
		TotalBedsWard:      p.TotalBedsWard,
		TotalBedsIsolation: p.TotalBedsIsolation,
		AdmissionsMale:     p.AdmissionsMale,
		AdmissionsFemale:   p.AdmissionsFemale,
		AdmissionsAH:       p.AdmissionsAH,
		AdmissionsAMCA:     p.AdmissionsAMCA,
		AdmissionsSAMA:     p.AdmissionsSAMA,
		AdmissionsKU:       p.AdmissionsKU,
		AdmissionsMUNT:     p.AdmissionsMUNT,
		AdmissionsWard02:   p.AdmissionsWard02,
		AdmissionsIsolate:  p.AdmissionsIsolate,
		AdmissionsHDUUnit:  p.AdmissionsHDUUnit,

		BedOccupancyRate:          p.BedOccupancyRate,
		AvgLengthOfStay:           p.AvgLengthOfStay,
		MidnightTotal:             p.MidnightTotal,
		Discharges:                p.Discharges,
		LAMA:                      p.LAMA,
		ReAdmissions:              p.ReAdmissions,
		DischargeSameDay:          p.DischargeSameDay,
		TransferToOtherHospitals:  p.TransferToOtherHospitals,
		TransferFromOtherHospital: p.TransferFromOtherHospital,
		WeekdayTransfersIn:        p.WeekdayTransfersIn,
		WeekdayTransfersOut:       p.WeekdayTransfersOut,
		WeekendTransfersIn:        p.WeekendTransfersIn,
		WeekendTransfersOut:       p.WeekendTransfersOut,
		Missing:                   p.Missing,
		NumberOfDeath:             p.NumberOfDeath,
		DeathWithin24Hrs:          p.DeathWithin24Hrs,
		DeathWithin48Hrs:          p.DeathWithin48Hrs,
		DeathRate:                 p.DeathRate,

		NoOfHD:           p.NoOfHD,
		XRayInward:       p.XRayInward,
		XRayDepartmental: p.XRayDepartmental,
		ECGInward:        p.ECGInward,
		ECGDepartmental:  p.ECGDepartmental,
		ABG:              p.ABG,
		WITMeetings:      p.WITMeetings,

		ReferralsCardiology:     p.ReferralsCardiology,
		ReferralsChestPhysician: p.ReferralsChestPhysician,
		ReferralsRadiodiagnosis: p.ReferralsRadiodiagnosis,
		ReferralsRheumatology:   p.ReferralsRheumatology,
		ReferralsOthers:         p.ReferralsOthers,
		TotalReferrals:          p.TotalReferrals,

		Status:        f.Status,
		CreatedBy:     copyStringPtr(f.CreatedBy),
		LastUpdatedBy: copyStringPtr(f.LastUpdatedBy),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
