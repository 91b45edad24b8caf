package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusconnect/internal/app/models/dto"
)

// HealthController reports liveness
type HealthController struct {
	storeBackend string
}

// NewHealthController creates a new HealthController
func NewHealthController(storeBackend string) *HealthController {
	return &HealthController{storeBackend: storeBackend}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.HealthResponse{Status: "ok", Store: c.storeBackend}))
}
