package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// PartialApprovalWarning accompanies an approval whose profile update failed
const PartialApprovalWarning = "The request was approved, but the student's account could not be activated. Ask an administrator to set it manually."

// ApprovalController handles the department approval queue
type ApprovalController struct {
	approvalService *services.ApprovalService
	logger          zerolog.Logger
}

// NewApprovalController creates a new ApprovalController
func NewApprovalController(approvalService *services.ApprovalService, logger zerolog.Logger) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
		logger:          logger,
	}
}

// ListPending lists the pending requests of the head's department
// @Summary Pending approval requests
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ApprovalRequest} "Pending requests"
// @Failure 403 {object} dto.ErrorResponse "Only heads of department"
// @Router /approvals [get]
func (c *ApprovalController) ListPending(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	requests, err := c.approvalService.ListPending(ctx.Request.Context(), sess)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(requests))
}

// Approve approves a student
// @Summary Approve a student
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.ApprovalRequest} "Request approved"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already resolved"
// @Router /approvals/{id}/approve [post]
func (c *ApprovalController) Approve(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	req, err := c.approvalService.Approve(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrApprovalPartiallyApplied) && req != nil {
			ctx.JSON(http.StatusOK, dto.NewAPIResponse(req).WithWarning(PartialApprovalWarning))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(req))
}

// Reject rejects a student
// @Summary Reject a student
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.ApprovalRequest} "Request rejected"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already resolved"
// @Router /approvals/{id}/reject [post]
func (c *ApprovalController) Reject(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	req, err := c.approvalService.Reject(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(req))
}
