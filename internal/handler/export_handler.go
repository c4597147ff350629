package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-labs/librarypro-api/internal/service"
	"github.com/studyhub-labs/librarypro-api/pkg/response"
)

// ExportHandler streams member and payment exports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Students godoc
// @Summary Export members
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "Format (csv, xlsx, pdf)" default(csv)
// @Success 200 {file} binary
// @Router /exports/students [get]
func (h *ExportHandler) Students(c *gin.Context) {
	file, err := h.exports.Students(c.Request.Context(), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, file)
}

// Payments godoc
// @Summary Export payments
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "Format (csv, xlsx, pdf)" default(csv)
// @Param year query int false "Restrict to year"
// @Param month query int false "Restrict to month (1-12)"
// @Success 200 {file} binary
// @Router /exports/payments [get]
func (h *ExportHandler) Payments(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	file, err := h.exports.Payments(c.Request.Context(), c.DefaultQuery("format", service.FormatCSV), year, time.Month(month))
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, file)
}

// Receipt godoc
// @Summary Payment receipt
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Payment ID"
// @Success 200 {file} binary
// @Router /payments/{id}/receipt [get]
func (h *ExportHandler) Receipt(c *gin.Context) {
	file, err := h.exports.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, file)
}

func stream(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(200, file.ContentType, file.Content)
}
