package models

// DepartmentOverview summarizes placements for one department
type DepartmentOverview struct {
	Department       string  `json:"department" example:"Computer Science"`
	Students         int     `json:"students"`
	ApprovedStudents int     `json:"approvedStudents"`
	PendingRequests  int     `json:"pendingRequests"`
	PlacedStudents   int     `json:"placedStudents"`
	PlacementRate    float64 `json:"placementRate" example:"42.5"` // percent of students placed
	ActiveCompanies  int     `json:"activeCompanies"`
}
