package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/logger"
)

// GenericErrorMessage is shown for every failure the caller cannot act on
const GenericErrorMessage = "Something went wrong. Please try again."

// HandleAPIError maps a service error to its status code and error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	writeError(c, status, detail)
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, apperrors.Message(err, "Invalid email or password"))
	case errors.Is(err, apperrors.ErrAccountExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeAccountExists, apperrors.Message(err, "An account with this email already exists"))
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Your session has expired. Please sign in again.")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Your session is no longer valid. Please sign in again.")
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrApprovalPending):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeApprovalPending, "Your account is awaiting approval from your department")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, withCode(dto.NewErrorDetail(dto.ErrorCodeForbidden, apperrors.Message(err, "Permission denied")), err)
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, withCode(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, apperrors.Message(err, "Resource not found")), err)
	case errors.Is(err, apperrors.ErrDuplicateApplication):
		detail := dto.NewErrorDetail(dto.ErrorCodeDuplicateApplication, apperrors.Message(err, "You have already applied to this drive"))
		return http.StatusConflict, detail.WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, apperrors.Message(err, "Resource already exists"))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, withCode(dto.NewErrorDetail(dto.ErrorCodeConflict, apperrors.Message(err, "Conflict")), err)
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, withCode(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, apperrors.Message(err, "Validation failed")), err)
	case errors.Is(err, apperrors.ErrApprovalPartiallyApplied):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodePartiallyApplied, GenericErrorMessage)
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, GenericErrorMessage)
}

// withCode attaches the domain code and details of a CustomError
func withCode(detail *dto.ErrorDetail, err error) *dto.ErrorDetail {
	var ce *apperrors.CustomError
	if !errors.As(err, &ce) {
		return detail
	}
	if ce.Code != "" || len(ce.Details) > 0 {
		details := map[string]interface{}{}
		for k, v := range ce.Details {
			details[k] = v
		}
		if ce.Code != "" {
			details["reason"] = ce.Code
		}
		detail.WithDetails(details)
	}
	return detail
}

func writeError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	})
}
