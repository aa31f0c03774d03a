package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type MonitoringHandler struct {
	BaseHandler
	monitoringService services.MonitoringService
	validator         *validator.Validator
}

func NewMonitoringHandler(
	monitoringService services.MonitoringService,
	validator *validator.Validator,
	logger utils.Logger,
) *MonitoringHandler {
	return &MonitoringHandler{
		BaseHandler:       NewBaseHandler(logger),
		monitoringService: monitoringService,
		validator:         validator,
	}
}

// GetDashboard returns live exam administration statistics
// @Summary Dashboard statistics
// @Tags monitoring
// @Produce json
// @Success 200 {object} repositories.DashboardStats
// @Failure 403 {object} ErrorResponse
// @Router /monitoring/dashboard [get]
func (h *MonitoringHandler) GetDashboard(c *gin.Context) {
	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	stats, err := h.monitoringService.Dashboard(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// PauseAllTests pauses every active test
// @Summary Pause all tests
// @Tags monitoring
// @Produce json
// @Success 200 {object} services.MassControlResponse
// @Failure 403 {object} ErrorResponse
// @Router /monitoring/pause-all [post]
func (h *MonitoringHandler) PauseAllTests(c *gin.Context) {
	h.LogRequest(c, "Pausing all active tests")

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	response, err := h.monitoringService.PauseAll(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResumeAllTests resumes every paused test
// @Summary Resume all tests
// @Tags monitoring
// @Produce json
// @Success 200 {object} services.MassControlResponse
// @Failure 403 {object} ErrorResponse
// @Router /monitoring/resume-all [post]
func (h *MonitoringHandler) ResumeAllTests(c *gin.Context) {
	h.LogRequest(c, "Resuming all paused tests")

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	response, err := h.monitoringService.ResumeAll(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExtendTime extends the window of every active test
// @Summary Extend all active test windows
// @Tags monitoring
// @Accept json
// @Produce json
// @Param request body validator.ExtendTimeRequest true "Extension in minutes"
// @Success 200 {object} services.MassControlResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /monitoring/extend-time [post]
func (h *MonitoringHandler) ExtendTime(c *gin.Context) {
	var req validator.ExtendTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Extending active test windows", "minutes", req.Minutes)

	response, err := h.monitoringService.ExtendTime(c.Request.Context(), req.Minutes, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSetting reads one global setting
// @Summary Get setting
// @Tags monitoring
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /settings/{key} [get]
func (h *MonitoringHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid key",
		})
		return
	}

	value, err := h.monitoringService.GetSetting(c.Request.Context(), key)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// SetSetting writes one global setting
// @Summary Set setting
// @Tags monitoring
// @Accept json
// @Param key path string true "Setting key"
// @Param setting body validator.SettingUpdateRequest true "Setting value"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /settings/{key} [put]
func (h *MonitoringHandler) SetSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid key",
		})
		return
	}

	var req validator.SettingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating global setting", "key", key)

	if err := h.monitoringService.SetSetting(c.Request.Context(), key, &req, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Setting updated successfully",
	})
}

// ListSettings lists all global settings
// @Summary List settings
// @Tags monitoring
// @Produce json
// @Success 200 {array} models.GlobalSetting
// @Failure 403 {object} ErrorResponse
// @Router /settings [get]
func (h *MonitoringHandler) ListSettings(c *gin.Context) {
	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	settings, err := h.monitoringService.ListSettings(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
