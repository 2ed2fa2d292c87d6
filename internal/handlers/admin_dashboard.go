package handlers

import (
	"context"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type DashboardService interface {
	Get(ctx context.Context, q services.DashboardQuery) (*services.Dashboard, error)
}

// AdminDashboard re-runs every aggregation on each request
func AdminDashboard(dashboard DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := services.ParseDashboardRange(c.Query("from"), c.Query("to"), c.Query("country"), time.Now())
		if err != nil {
			respondError(c, err, "Dashboard")
			return
		}

		data, err := dashboard.Get(c.Request.Context(), q)
		if err != nil {
			respondError(c, err, "Dashboard")
			return
		}
		c.JSON(200, data)
	}
}
