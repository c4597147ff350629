package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-labs/librarypro-api/internal/service"
	"github.com/studyhub-labs/librarypro-api/pkg/response"
)

// InsightsHandler exposes analytics endpoints.
type InsightsHandler struct {
	insights *service.InsightsService
}

// NewInsightsHandler constructs InsightsHandler.
func NewInsightsHandler(insights *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Insights godoc
// @Summary Collection insights
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights [get]
func (h *InsightsHandler) Insights(c *gin.Context) {
	insights, err := h.insights.Insights(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, insights, nil)
}

// Predictions godoc
// @Summary Payment risk predictions
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights/predictions [get]
func (h *InsightsHandler) Predictions(c *gin.Context) {
	predictions, err := h.insights.Predictions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, predictions, nil)
}

// RevenueForecast godoc
// @Summary Revenue forecast
// @Description Trailing six-month revenue and a naive linear projection.
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /insights/forecast [get]
func (h *InsightsHandler) RevenueForecast(c *gin.Context) {
	forecast, err := h.insights.RevenueForecast(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, forecast, nil)
}
