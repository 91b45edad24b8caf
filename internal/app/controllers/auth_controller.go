// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// AuthController handles sign-up, sign-in and sign-out
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// SignUp handles account creation
// @Summary Create an account
// @Description Creates an account and the profile of the chosen role. Students are queued for department approval.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Account and role information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Account created and signed in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 409 {object} dto.ErrorResponse "An account with this email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	res, err := c.authService.SignUp(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("role", req.Role).Msg("Sign-up failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(newAuthResponse(res)))
}

// SignIn handles role-based sign-in
// @Summary Sign in
// @Description Verifies credentials and loads the profile of the chosen role, creating it with defaults when missing
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Credentials and role"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Signed in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/signin [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	res, err := c.authService.SignIn(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("role", req.Role).Msg("Sign-in failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(newAuthResponse(res)))
}

// SignOut ends the current session
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Signed out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/signout [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	if err := c.authService.SignOut(ctx.Request.Context(), sess); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Signed out"}))
}

// Session returns the signed-in identity and role profile
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Current session"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(newSessionResponse(sess)))
}

func newAuthResponse(res *services.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: res.Token,
			TokenType:   "Bearer",
			ExpiresIn:   res.ExpiresIn,
		},
		Session: newSessionResponse(res.Session),
	}
}

func newSessionResponse(sess *session.Session) dto.SessionResponse {
	return dto.SessionResponse{
		UID:         sess.Identity.UID,
		Email:       sess.Identity.Email,
		DisplayName: sess.ActorName(),
		Role:        string(sess.Role),
		Profile:     sess.Profile,
	}
}
