package models

import "fmt"

// Role is the capability a visitor acts under for a session
type Role string

const (
	RoleStudent Role = "student" // applicant
	RoleManager Role = "manager" // drive manager
	RoleHOD     Role = "hod"     // department head
)

// Profile collections, one per role
const (
	CollectionStudents        = "students"
	CollectionManagers        = "managers"
	CollectionHODs            = "hods"
	CollectionPlacementDrives = "placementDrives"
	CollectionApplications    = "applications"
	CollectionHODRequests     = "hodRequests"
	CollectionSessions        = "sessions"
)

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleManager, RoleHOD:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Collection returns the profile collection for the role
func (r Role) Collection() string {
	switch r {
	case RoleStudent:
		return CollectionStudents
	case RoleManager:
		return CollectionManagers
	case RoleHOD:
		return CollectionHODs
	}
	return ""
}

// SelfService reports whether a profile for the role may be created at sign-in
// by an account that never signed up for it. Staff roles are only granted at
// sign-up.
func (r Role) SelfService() bool {
	switch r {
	case RoleStudent:
		return true
	case RoleManager, RoleHOD:
		return false
	}
	return false
}

// DisplayName is the label shown for the role
func (r Role) DisplayName() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleManager:
		return "Placement Manager"
	case RoleHOD:
		return "Head of Department"
	}
	return string(r)
}
