package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// Liveness answers process-up checks without touching dependencies.
func (s *Server) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Health
// @Description  Readiness probe reporting dependency health
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /healthz [get]
func (s *Server) Health(c *gin.Context) {
	ctx := c.Request.Context()
	services := map[string]string{}
	degraded := false
	unhealthy := false

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		services["database"] = "unhealthy"
		unhealthy = true
	} else {
		services["database"] = "healthy"
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// Rate limiting falls back to in-process windows; the
			// service still works.
			services["redis"] = "unhealthy"
			degraded = true
		} else {
			services["redis"] = "healthy"
		}
	}

	status := "healthy"
	code := http.StatusOK
	switch {
	case unhealthy:
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	c.JSON(code, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   Version,
	})
}
