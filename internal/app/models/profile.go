package models

import (
	"fmt"
	"time"
)

// Profile is the role-specific profile document of a signed-in identity.
// Exactly one of StudentProfile, ManagerProfile or HODProfile.
type Profile interface {
	Role() Role
	Base() *ProfileBase
	isProfile()
}

// ProfileBase holds the fields every role profile carries
type ProfileBase struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudentProfile is an applicant's profile
type StudentProfile struct {
	ProfileBase
	Branch     string  `json:"branch"`
	CGPA       float64 `json:"cgpa"`
	Year       string  `json:"year"`
	Department string  `json:"department"`
	Approved   bool    `json:"approved"`
}

// ManagerProfile is a placement manager's profile
type ManagerProfile struct {
	ProfileBase
	Department string `json:"department"`
	Experience string `json:"experience"`
}

// HODProfile is a head of department's profile
type HODProfile struct {
	ProfileBase
	Department    string `json:"department"`
	Experience    string `json:"experience"`
	Qualification string `json:"qualification"`
}

func (*StudentProfile) Role() Role { return RoleStudent }
func (*ManagerProfile) Role() Role { return RoleManager }
func (*HODProfile) Role() Role     { return RoleHOD }

func (p *StudentProfile) Base() *ProfileBase { return &p.ProfileBase }
func (p *ManagerProfile) Base() *ProfileBase { return &p.ProfileBase }
func (p *HODProfile) Base() *ProfileBase     { return &p.ProfileBase }

func (*StudentProfile) isProfile() {}
func (*ManagerProfile) isProfile() {}
func (*HODProfile) isProfile()     {}

// Default profile values for a first sign-in
const (
	DefaultStudentBranch    = "Computer Science"
	DefaultStudentYear      = "2024"
	DefaultManagerDept      = "Placement Office"
	DefaultManagerExp       = "0 years"
	DefaultHODDept          = "Computer Science"
	DefaultHODExperience    = "15 years"
	DefaultHODQualification = "Ph.D. Computer Science"
)

// NewDefaultProfile builds the profile created for a role the first time an
// identity signs in under it.
func NewDefaultProfile(role Role, base ProfileBase) (Profile, error) {
	switch role {
	case RoleStudent:
		return &StudentProfile{
			ProfileBase: base,
			Branch:      DefaultStudentBranch,
			Year:        DefaultStudentYear,
			Department:  DefaultStudentBranch,
		}, nil
	case RoleManager:
		return &ManagerProfile{
			ProfileBase: base,
			Department:  DefaultManagerDept,
			Experience:  DefaultManagerExp,
		}, nil
	case RoleHOD:
		return &HODProfile{
			ProfileBase:   base,
			Department:    DefaultHODDept,
			Experience:    DefaultHODExperience,
			Qualification: DefaultHODQualification,
		}, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

// NewEmptyProfile returns a zero profile of the role's concrete type, ready to
// be decoded into.
func NewEmptyProfile(role Role) (Profile, error) {
	switch role {
	case RoleStudent:
		return &StudentProfile{}, nil
	case RoleManager:
		return &ManagerProfile{}, nil
	case RoleHOD:
		return &HODProfile{}, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

// ProfileDepartment returns the department the profile belongs to
func ProfileDepartment(p Profile) string {
	switch v := p.(type) {
	case *StudentProfile:
		return v.Department
	case *ManagerProfile:
		return v.Department
	case *HODProfile:
		return v.Department
	}
	return ""
}
