package models

import (
	"fmt"
	"time"
)

// DriveStatus is the informal lifecycle of a placement drive
type DriveStatus string

const (
	DriveActive DriveStatus = "active"
	DriveClosed DriveStatus = "closed"
)

// DefaultJobType is the employment category when none is given
const DefaultJobType = "Full-time"

// ParseDriveStatus validates a drive status
func ParseDriveStatus(s string) (DriveStatus, error) {
	switch st := DriveStatus(s); st {
	case DriveActive, DriveClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown drive status %q", s)
}

// Drive is a placement drive (one posted opening)
type Drive struct {
	ID                  string      `json:"id,omitempty"`
	CompanyName         string      `json:"companyName" example:"Acme Corp"`
	RoleOffered         string      `json:"roleOffered" example:"Software Engineer"`
	SalaryOffered       string      `json:"salaryOffered" example:"12.5"`
	JobDescription      string      `json:"jobDescription"`
	Requirements        string      `json:"requirements"`
	EligibilityCriteria string      `json:"eligibilityCriteria"`
	AdditionalInfo      string      `json:"additionalInfo"`
	Location            string      `json:"location"`
	JobType             string      `json:"jobType" example:"Full-time"`
	ApplicationDeadline string      `json:"applicationDeadline,omitempty" example:"2024-12-31"`
	InterviewDate       string      `json:"interviewDate,omitempty" example:"2025-01-10"`
	CGPACriteria        float64     `json:"cgpaCriteria" example:"7"` // 0 means no threshold
	ContactEmail        string      `json:"contactEmail"`
	Status              DriveStatus `json:"status" example:"active"`
	CreatedAt           time.Time   `json:"createdAt"`
	CreatedBy           string      `json:"createdBy"`
	CreatedByEmail      string      `json:"createdByEmail"`
	ApplicationsCount   int         `json:"applicationsCount"` // informal, may drift from the real count
}

// EligibleFor reports whether an applicant with the given grade may see and
// apply to the drive.
func (d *Drive) EligibleFor(cgpa float64) bool {
	if d.Status != DriveActive {
		return false
	}
	return d.CGPACriteria <= 0 || d.CGPACriteria <= cgpa
}
