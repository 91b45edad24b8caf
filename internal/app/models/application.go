package models

import (
	"fmt"
	"time"
)

// ApplicationStatus is the state of an application. Every status may move to
// every other, including itself.
type ApplicationStatus string

const (
	StatusApplied  ApplicationStatus = "Applied"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
	StatusOnHold   ApplicationStatus = "On Hold"
)

// ApplicationStatuses lists every valid status
var ApplicationStatuses = []ApplicationStatus{StatusApplied, StatusApproved, StatusRejected, StatusOnHold}

// ParseApplicationStatus validates an application status
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Application is one applicant's submission against one drive. Applicant and
// drive fields are copied at submission and never re-synced.
type Application struct {
	ID            string            `json:"id,omitempty"`
	DriveID       string            `json:"driveId"`
	StudentID     string            `json:"studentId"`
	StudentName   string            `json:"studentName"`
	StudentEmail  string            `json:"studentEmail"`
	StudentBranch string            `json:"studentBranch"`
	StudentCGPA   float64           `json:"studentCgpa"`
	CompanyName   string            `json:"companyName"`
	RoleOffered   string            `json:"roleOffered"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"appliedAt"`
	UpdatedAt     *time.Time        `json:"updatedAt,omitempty"`
	UpdatedBy     string            `json:"updatedBy,omitempty"`
}
