package dto

import "github.com/yigit/campusconnect/internal/app/models"

// UpdateApplicationStatusRequest moves an application to a new status
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Approved"`
}

// NotificationResponse reports the notification side effect of a status change
type NotificationResponse struct {
	Channel   string `json:"channel" example:"simulated"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// TransitionResponse is the result of a status change. The status change has
// been stored even when the notification was not delivered.
type TransitionResponse struct {
	Application  *models.Application  `json:"application"`
	Notification NotificationResponse `json:"notification"`
}

// ApplicationSnapshot is one message of the live application feed
type ApplicationSnapshot struct {
	Type         string                `json:"type" example:"snapshot"`
	Applications []*models.Application `json:"applications"`
}
