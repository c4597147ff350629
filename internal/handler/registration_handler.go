package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-labs/librarypro-api/internal/service"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
	"github.com/studyhub-labs/librarypro-api/pkg/response"
)

// RegistrationHandler exposes the public signup flow and the admin review
// queue.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Plans godoc
// @Summary Plan catalogue
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /plans [get]
func (h *RegistrationHandler) Plans(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.registrations.Plans(), nil)
}

// Register godoc
// @Summary Submit registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "Filter by status (pending/completed)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	registrations, pagination, err := h.registrations.List(c.Request.Context(), c.Query("status"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, pagination)
}

// Complete godoc
// @Summary Complete registration
// @Description Converts a pending registration into a member.
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 201 {object} response.Envelope
// @Router /registrations/{id}/complete [post]
func (h *RegistrationHandler) Complete(c *gin.Context) {
	student, err := h.registrations.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
