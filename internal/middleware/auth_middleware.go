package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/session"
	"github.com/yigit/campusconnect/internal/pkg/auth"
)

// SessionKey is the gin context key holding the signed-in session
const SessionKey = "session"

// Authenticator resolves a bearer token into a loaded session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// JWTAuth resolves the session of the request. Browsers cannot set headers
// on a websocket handshake, so the token query parameter is accepted too.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			writeError(c, http.StatusUnauthorized,
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("Authorization header missing"))
			return
		}

		token, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			writeError(c, http.StatusUnauthorized,
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("Invalid token format"))
			return
		}

		sess, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(SessionKey, sess)
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Next()
	}
}

// RoleRequired lets the request through only for the listed roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			writeError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}

		for _, role := range roles {
			if sess.Role == role {
				c.Next()
				return
			}
		}

		writeError(c, http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation"))
	}
}

// ApprovalRequired blocks students whose account has not been approved by
// their department. Other roles pass. A disabled gate passes everyone.
func (m *AuthMiddleware) ApprovalRequired(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		sess, ok := CurrentSession(c)
		if !ok {
			writeError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}
		if student, isStudent := sess.Student(); isStudent && !student.Approved {
			writeError(c, http.StatusForbidden,
				dto.NewErrorDetail(dto.ErrorCodeApprovalPending, "Your account is awaiting approval from your department"))
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session resolved by JWTAuth
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil && sess.Loaded()
}
