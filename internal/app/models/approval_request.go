package models

import (
	"fmt"
	"time"
)

// ApprovalStatus is the state of an approval request
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ParseApprovalStatus validates an approval status
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch st := ApprovalStatus(s); st {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown approval status %q", s)
}

// ApprovalRequest asks a department head to activate a new applicant account
type ApprovalRequest struct {
	ID           string         `json:"id,omitempty"`
	StudentID    string         `json:"studentId"`
	StudentName  string         `json:"studentName"`
	StudentEmail string         `json:"studentEmail"`
	Department   string         `json:"department"`
	Branch       string         `json:"branch"`
	Status       ApprovalStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	ApprovedBy   string         `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time     `json:"approvedAt,omitempty"`
	RejectedBy   string         `json:"rejectedBy,omitempty"`
	RejectedAt   *time.Time     `json:"rejectedAt,omitempty"`
}
