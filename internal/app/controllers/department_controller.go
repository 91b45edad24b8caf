package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// DepartmentController serves the head of department dashboard
type DepartmentController struct {
	departmentService *services.DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
	}
}

// Overview returns placement figures for the head's department
// @Summary Department placement overview
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.DepartmentOverview} "Overview"
// @Failure 403 {object} dto.ErrorResponse "Only heads of department"
// @Router /department/overview [get]
func (c *DepartmentController) Overview(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	overview, err := c.departmentService.Overview(ctx.Request.Context(), sess)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(overview))
}
