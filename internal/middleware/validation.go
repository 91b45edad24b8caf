package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusconnect/internal/app/models/dto"
)

// BindJSON binds and validates the request body into obj. On failure it
// writes a 400 with one message per failed field and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		writeError(c, http.StatusBadRequest, dto.HandleValidationError(err))
		return false
	}
	return true
}
