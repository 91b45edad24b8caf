package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// DriveController handles placement drive operations
type DriveController struct {
	driveService *services.DriveService
	logger       zerolog.Logger
}

// NewDriveController creates a new DriveController
func NewDriveController(driveService *services.DriveService, logger zerolog.Logger) *DriveController {
	return &DriveController{
		driveService: driveService,
		logger:       logger,
	}
}

// ListDrives lists the drives visible to the caller
// @Summary List placement drives
// @Description Managers and heads see every drive, newest first. Students see active drives they are eligible for.
// @Tags drives
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Drive} "Drives"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /drives [get]
func (c *DriveController) ListDrives(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	drives, err := c.driveService.ListForSession(ctx.Request.Context(), sess)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(drives))
}

// CreateDrive posts a new drive
// @Summary Create a placement drive
// @Tags drives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDriveRequest true "Drive information"
// @Success 201 {object} dto.APIResponse{data=models.Drive} "Drive created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Only placement managers can create drives"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /drives [post]
func (c *DriveController) CreateDrive(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.CreateDriveRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	drive, err := c.driveService.CreateDrive(ctx.Request.Context(), sess, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(drive))
}

// GetDrive returns one drive. Students get 404 for drives hidden from their list.
// @Summary Get a placement drive
// @Tags drives
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Success 200 {object} dto.APIResponse{data=models.Drive} "Drive"
// @Failure 404 {object} dto.ErrorResponse "Drive not found"
// @Router /drives/{id} [get]
func (c *DriveController) GetDrive(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	drive, err := c.driveService.GetForSession(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(drive))
}

// UpdateDriveStatus opens or closes a drive
// @Summary Open or close a placement drive
// @Tags drives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Param request body dto.UpdateDriveStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Drive} "Drive updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Drive not found"
// @Router /drives/{id}/status [patch]
func (c *DriveController) UpdateDriveStatus(ctx *gin.Context) {
	var req dto.UpdateDriveStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	drive, err := c.driveService.SetDriveStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("driveId", drive.ID).Str("status", string(drive.Status)).Msg("Drive status changed")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(drive))
}
