package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthAPI serves liveness and readiness checks.
type HealthAPI struct {
	Pinger interface {
		Ping(ctx context.Context) error
	}
}

func (h *HealthAPI) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthAPI) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthAPI) ready(c *gin.Context) {
	if h.Pinger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing"})
		return
	}
	if err := h.Pinger.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
