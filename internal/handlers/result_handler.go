package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	validator     *validator.Validator
}

func NewResultHandler(
	resultService services.ResultService,
	validator *validator.Validator,
	logger utils.Logger,
) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		validator:     validator,
	}
}

// GetResult retrieves a graded session
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	result, err := h.resultService.GetByID(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListResults lists sessions with filters. Students only ever see their own.
// @Summary List results
// @Tags results
// @Produce json
// @Param status query string false "Result status"
// @Param test_id query uint false "Test ID"
// @Param student_id query uint false "Student ID (staff only)"
// @Param group_id query uint false "Group ID (staff only)"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.ResultListResponse
// @Router /results [get]
func (h *ResultHandler) ListResults(c *gin.Context) {
	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	results, err := h.resultService.List(c.Request.Context(), h.parseResultFilters(c), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GrantRetake allows a student to retake a test
// @Summary Grant retake
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /results/{id}/retake [post]
func (h *ResultHandler) GrantRetake(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Granting retake", "result_id", id)

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	result, err := h.resultService.GrantRetake(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BulkGrantRetake grants retakes on a set of results
// @Summary Bulk grant retakes
// @Tags results
// @Accept json
// @Produce json
// @Param request body validator.BulkRetakeRequest true "Result IDs"
// @Success 200 {object} services.RetakeGrantResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /results/retake [post]
func (h *ResultHandler) BulkGrantRetake(c *gin.Context) {
	h.LogRequest(c, "Granting bulk retake")

	var req validator.BulkRetakeRequest
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

	response, err := h.resultService.BulkGrantRetake(c.Request.Context(), req.ResultIDs, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResultHandler) parseResultFilters(c *gin.Context) repositories.ResultFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.ResultFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "completed_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		resultStatus := models.ResultStatus(status)
		filters.Status = &resultStatus
	}
	filters.TestID = h.parseUintQuery(c, "test_id")
	filters.StudentID = h.parseUintQuery(c, "student_id")
	filters.GroupID = h.parseUintQuery(c, "group_id")

	if canRetake := c.Query("can_retake"); canRetake != "" {
		if value, err := strconv.ParseBool(canRetake); err == nil {
			filters.CanRetake = &value
		}
	}

	return filters
}
