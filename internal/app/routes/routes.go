package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/campusconnect/internal/app/controllers"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	driveController *controllers.DriveController,
	applicationController *controllers.ApplicationController,
	approvalController *controllers.ApprovalController,
	departmentController *controllers.DepartmentController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	approvalRequired bool,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", healthController.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authController.SignUp)
		auth.POST("/signin", authController.SignIn)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/signout", authController.SignOut)
	authenticated.GET("/session", authController.Session)

	managerOnly := authMiddleware.RoleRequired(models.RoleManager)
	studentOnly := authMiddleware.RoleRequired(models.RoleStudent)
	hodOnly := authMiddleware.RoleRequired(models.RoleHOD)

	drives := authenticated.Group("/drives")
	{
		drives.GET("", driveController.ListDrives)
		drives.GET("/:id", driveController.GetDrive)
		drives.POST("", managerOnly, driveController.CreateDrive)
		drives.PATCH("/:id/status", managerOnly, driveController.UpdateDriveStatus)

		// Students apply only once their department has approved them
		drives.POST("/:id/applications", studentOnly, authMiddleware.ApprovalRequired(approvalRequired), applicationController.Submit)
	}

	applications := authenticated.Group("/applications")
	{
		applications.GET("", applicationController.ListApplications)
		applications.GET("/live", applicationController.Live)
		applications.PATCH("/:id/status", managerOnly, applicationController.UpdateStatus)
	}

	approvals := authenticated.Group("/approvals")
	approvals.Use(hodOnly)
	{
		approvals.GET("", approvalController.ListPending)
		approvals.POST("/:id/approve", approvalController.Approve)
		approvals.POST("/:id/reject", approvalController.Reject)
	}

	authenticated.GET("/department/overview", hodOnly, departmentController.Overview)
}
