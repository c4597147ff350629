package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-labs/librarypro-api/internal/service"
	"github.com/studyhub-labs/librarypro-api/pkg/response"
)

// DashboardHandler exposes the admin dashboard endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Member counters, current-month revenue and the due/overdue
// @Description alert table sorted by due date.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// UrgentAlerts godoc
// @Summary Urgent alerts
// @Description Members overdue past the configured notification threshold.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/alerts [get]
func (h *DashboardHandler) UrgentAlerts(c *gin.Context) {
	alerts, err := h.dashboard.UrgentAlerts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}
