package dto

// CreateDriveRequest posts a new placement drive
type CreateDriveRequest struct {
	CompanyName         string   `json:"companyName" binding:"required,notblank,singleline,max=200" example:"Acme Corp"`
	RoleOffered         string   `json:"roleOffered" binding:"required,notblank,singleline,max=200" example:"Software Engineer"`
	SalaryOffered       string   `json:"salaryOffered" binding:"required,max=100" example:"12.5"`
	JobDescription      string   `json:"jobDescription" binding:"required"`
	Requirements        string   `json:"requirements"`
	EligibilityCriteria string   `json:"eligibilityCriteria"`
	AdditionalInfo      string   `json:"additionalInfo"`
	Location            string   `json:"location" binding:"required,singleline,max=200" example:"Bengaluru"`
	JobType             string   `json:"jobType" binding:"omitempty,singleline,max=50" example:"Full-time"`
	ApplicationDeadline string   `json:"applicationDeadline" binding:"omitempty,isodate" example:"2024-12-31"`
	InterviewDate       string   `json:"interviewDate" binding:"omitempty,isodate" example:"2025-01-10"`
	CGPACriteria        *float64 `json:"cgpaCriteria" binding:"omitempty,gte=0,lte=10" example:"7"`
	ContactEmail        string   `json:"contactEmail" binding:"omitempty,email" example:"hr@acme.example"`
}

// UpdateDriveStatusRequest opens or closes a drive
type UpdateDriveStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active closed" example:"closed"`
}
