package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Dashboard Stats
// @Description  Aggregate invoice totals and recent activity
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboard.Stats
// @Router       /api/v1/dashboard/stats [get]
func (s *Server) DashboardStats(c *gin.Context) {
	resp, err := s.dashboardSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
