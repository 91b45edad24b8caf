package dto

import "time"

// APIResponse is the envelope of every successful response. Warning carries a
// non-fatal problem the caller should show next to the result.
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Warning   string       `json:"warning,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse wraps data in a success envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// WithWarning attaches a non-fatal warning
func (r APIResponse) WithWarning(warning string) APIResponse {
	r.Warning = warning
	return r
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"memory"`
}
