package application

import "time"

// Role names form a closed set. Authorization is an exact string match
// against allow-lists, with no hierarchy between roles.
const (
	RoleAdministrator   = "Administrator"
	RoleDoctor          = "Doctor"
	RoleNurse           = "Nurse"
	RoleLabTechnician   = "Lab Technician"
	RolePharmacist      = "Pharmacist"
	RoleReceptionist    = "Receptionist"
	RoleRadiologist     = "Radiologist"
	RolePhysiotherapist = "Physiotherapist"
	RoleDietitian       = "Dietitian"
	RoleSocialWorker    = "Social Worker"
)

// Roles lists every recognised role.
var Roles = []string{
	RoleAdministrator,
	RoleDoctor,
	RoleNurse,
	RoleLabTechnician,
	RolePharmacist,
	RoleReceptionist,
	RoleRadiologist,
	RolePhysiotherapist,
	RoleDietitian,
	RoleSocialWorker,
}

// ValidRole reports whether the value names a recognised role.
func ValidRole(role string) bool {
	for _, known := range Roles {
		if role == known {
			return true
		}
	}
	return false
}

// Identity represents an authenticated staff member as seen by services.
type Identity struct {
	ID           string
	EmployeeID   string
	Name         string
	Role         string
	DepartmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials pairs an identity with its stored password hash. The hash never
// leaves the authentication path.
type Credentials struct {
	Identity     Identity
	PasswordHash string
}

// Claims are the identity facts embedded in a signed bearer token. They are a
// snapshot taken at issuance time; a later role change does not alter tokens
// already in circulation.
type Claims struct {
	UserID       string
	EmployeeID   string
	Name         string
	Role         string
	DepartmentID string
	TokenType    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// IssuedToken is the result of signing a fresh set of claims.
type IssuedToken struct {
	Token     string
	TokenType string
	ExpiresIn int64
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	Identity Identity
	Token    IssuedToken
}

// UserInput captures caller provided staff account attributes.
type UserInput struct {
	EmployeeID   string
	Name         string
	Role         string
	DepartmentID string
	Password     string
}

// UserUpdateInput captures a partial staff account update. Nil fields are left
// unchanged.
type UserUpdateInput struct {
	Name         *string
	Role         *string
	DepartmentID *string
}

// PasswordChangeInput captures a self-service password change.
type PasswordChangeInput struct {
	CurrentPassword string
	NewPassword     string
}

// ListUsersParams narrows and paginates user listings.
type ListUsersParams struct {
	DepartmentID string
	Role         string
	Search       string
	Limit        int
	Offset       int
}

// Department status values.
const (
	DepartmentActive   = "Active"
	DepartmentInactive = "Inactive"
)

// Department represents an organisational unit.
type Department struct {
	ID        string
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DepartmentInput captures caller provided department fields.
type DepartmentInput struct {
	Name   string
	Status string
}

// Report lifecycle states. A draft may be submitted, a submitted report may
// be approved, and approved is terminal.
const (
	ReportStatusDraft     = "draft"
	ReportStatusSubmitted = "submitted"
	ReportStatusApproved  = "approved"
)

// ReportKey identifies one report per calendar month.
type ReportKey struct {
	Year  int
	Month int
}

// ReportInput carries the statistical payload for a monthly ward report. The
// lifecycle core treats these counters as opaque; only the validation helper
// inspects them.
type ReportInput struct {
	TotalBeds          int
	TotalBedsHDU       int
	TotalBedsWard      int
	TotalBedsIsolation int
	AdmissionsMale     int
	AdmissionsFemale   int
	AdmissionsAH       int
	AdmissionsAMCA     int
	AdmissionsSAMA     int
	AdmissionsKU       int
	AdmissionsMUNT     int
	AdmissionsWard02   int
	AdmissionsIsolate  int
	AdmissionsHDUUnit  int

	BedOccupancyRate          float64
	AvgLengthOfStay           float64
	MidnightTotal             int
	Discharges                int
	LAMA                      int
	ReAdmissions              int
	DischargeSameDay          int
	TransferToOtherHospitals  int
	TransferFromOtherHospital int
	WeekdayTransfersIn        int
	WeekdayTransfersOut       int
	WeekendTransfersIn        int
	WeekendTransfersOut       int
	Missing                   int
	NumberOfDeath             int
	DeathWithin24Hrs          int
	DeathWithin48Hrs          int
	DeathRate                 float64

	NoOfHD           int
	XRayInward       int
	XRayDepartmental int
	ECGInward        int
	ECGDepartmental  int
	ABG              int
	WITMeetings      bool

	ReferralsCardiology     int
	ReferralsChestPhysician int
	ReferralsRadiodiagnosis int
	ReferralsRheumatology   int
	ReferralsOthers         int
	TotalReferrals          int
}

// Report represents a persisted monthly ward report with lifecycle metadata.
type Report struct {
	Year       int
	Month      int
	ReportDate time.Time

	ReportInput

	Status        string
	CreatedBy     *string
	LastUpdatedBy *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalAdmissions is the derived sum of male and female admissions.
func (r Report) TotalAdmissions() int {
	return r.AdmissionsMale + r.AdmissionsFemale
}

// TotalXRays is the derived sum of in-ward and departmental X-ray procedures.
func (r Report) TotalXRays() int {
	return r.XRayInward + r.XRayDepartmental
}

// TotalECGs is the derived sum of in-ward and departmental ECG procedures.
func (r Report) TotalECGs() int {
	return r.ECGInward + r.ECGDepartmental
}

// TotalTransfersIn is the derived count of incoming transfers.
func (r Report) TotalTransfersIn() int {
	return r.TransferFromOtherHospital + r.WeekdayTransfersIn + r.WeekendTransfersIn
}

// TotalTransfersOut is the derived count of outgoing transfers.
func (r Report) TotalTransfersOut() int {
	return r.TransferToOtherHospitals + r.WeekdayTransfersOut + r.WeekendTransfersOut
}

// NetTransferBalance is incoming minus outgoing transfers.
func (r Report) NetTransferBalance() int {
	return r.TotalTransfersIn() - r.TotalTransfersOut()
}

// MortalityRatePercentage derives deaths as a percentage of discharges,
// zero when there were no discharges.
func (r Report) MortalityRatePercentage() float64 {
	if r.Discharges > 0 {
		return round2(float64(r.NumberOfDeath) / float64(r.Discharges) * 100)
	}
	return 0
}

// OccupancyPercentage derives occupancy from the midnight census when both
// inputs are present, otherwise falls back to the stored rate.
func (r Report) OccupancyPercentage() float64 {
	if r.TotalBeds > 0 && r.MidnightTotal > 0 {
		return round2(float64(r.MidnightTotal) / float64(r.TotalBeds) * 100)
	}
	return r.BedOccupancyRate
}

// ReportStatistics aggregates the reports filed for one year.
type ReportStatistics struct {
	Year             int
	TotalReports     int
	DraftReports     int
	SubmittedReports int
	ApprovedReports  int
	CompletionRate   float64
	AvgAdmissions    float64
	AvgDischarges    float64
	AvgOccupancyRate float64
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
