package persistence

import "time"

// User represents a hospital staff account.
type User struct {
	ID           string
	EmployeeID   string
	Name         string
	Role         string
	DepartmentID string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Department represents an organisational unit staff are assigned to.
type Department struct {
	ID        string
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonthlyReport represents a ward statistical report keyed by (year, month).
type MonthlyReport struct {
	Year       int
	Month      int
	ReportDate time.Time

	// Admissions
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

	// Discharges and patient flow
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

	// Diagnostics
	NoOfHD           int
	XRayInward       int
	XRayDepartmental int
	ECGInward        int
	ECGDepartmental  int
	ABG              int
	WITMeetings      bool

	// Referrals
	ReferralsCardiology     int
	ReferralsChestPhysician int
	ReferralsRadiodiagnosis int
	ReferralsRheumatology   int
	ReferralsOthers         int
	TotalReferrals          int

	// Lifecycle metadata
	Status        string
	CreatedBy     *string
	LastUpdatedBy *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
