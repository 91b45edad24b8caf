package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/websocket"
)

// NotificationWarning accompanies a status change whose notification failed
const NotificationWarning = "Status updated, but the applicant could not be notified."

// ApplicationController handles applications and their status workflow
type ApplicationController struct {
	applicationService *services.ApplicationService
	workflow           *services.StatusWorkflow
	live               *websocket.Handler
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(
	applicationService *services.ApplicationService,
	workflow *services.StatusWorkflow,
	live *websocket.Handler,
	logger zerolog.Logger,
) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		workflow:           workflow,
		live:               live,
		logger:             logger,
	}
}

// Submit applies the signed-in student to a drive
// @Summary Apply to a placement drive
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Success 201 {object} dto.APIResponse{data=models.Application} "Application submitted"
// @Failure 403 {object} dto.ErrorResponse "Not eligible or approval pending"
// @Failure 404 {object} dto.ErrorResponse "Drive not found"
// @Failure 409 {object} dto.ErrorResponse "Already applied or drive closed"
// @Router /drives/{id}/applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	app, err := c.applicationService.Submit(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(app))
}

// ListApplications lists the applications visible to the caller
// @Summary List applications
// @Description Managers see every application, students their own, newest first
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	apps, err := c.applicationService.ListForSession(ctx.Request.Context(), sess)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(apps))
}

// UpdateStatus moves an application to a new status and notifies the applicant
// @Summary Change application status
// @Description The status change is kept even when the notification fails; the response then carries a warning.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.TransitionResponse} "Status changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	res, err := c.workflow.Transition(ctx.Request.Context(), ctx.Param("id"), req.Status, sess)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	body := dto.TransitionResponse{
		Application: res.Application,
		Notification: dto.NotificationResponse{
			Channel:   res.Notification.Channel,
			Delivered: res.Notification.Delivered,
		},
	}
	if res.Notification.Err != nil {
		body.Notification.Error = res.Notification.Err.Error()
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(body).WithWarning(NotificationWarning))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(body))
}

// Live streams the caller's applications over a websocket
// @Summary Live application view
// @Description Pushes the full set of visible applications on connect and after every change. Pass the token as a query parameter.
// @Tags applications, websocket
// @Security BearerAuth
// @Param token query string false "Bearer token for browsers that cannot set headers"
// @Success 101 {object} dto.ApplicationSnapshot "Switching Protocols to WebSocket"
// @Router /applications/live [get]
func (c *ApplicationController) Live(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	feed, err := c.applicationService.SubscribeForSession(context.Background(), sess)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	topic := "applications:all"
	if _, isStudent := sess.Student(); isStudent {
		topic = "applications:" + sess.Identity.UID
	}

	src := func(ctx context.Context) (interface{}, error) {
		apps, err := feed.Next(ctx)
		if err != nil {
			return nil, err
		}
		return dto.ApplicationSnapshot{Type: "snapshot", Applications: apps}, nil
	}
	c.live.Stream(ctx, topic, sess.Identity.UID, src, feed.Cancel)
}
