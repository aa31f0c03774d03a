package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
	validator   *validator.Validator
}

func NewTestHandler(
	testService services.TestService,
	validator *validator.Validator,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
		validator:   validator,
	}
}

// CreateTest creates a new test
// @Summary Create test
// @Description Creates a new exam definition
// @Tags tests
// @Accept json
// @Produce json
// @Param test body validator.TestCreateRequest true "Test data"
// @Success 201 {object} services.TestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	h.LogRequest(c, "Creating test")

	var req validator.TestCreateRequest
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

	test, err := h.testService.Create(c.Request.Context(), &req, requester.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest retrieves a test by ID
// @Summary Get test
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	test, err := h.testService.GetByID(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// UpdateTest updates a test
// @Summary Update test
// @Tags tests
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param test body validator.TestUpdateRequest true "Updated fields"
// @Success 200 {object} services.TestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [put]
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating test", "test_id", id)

	var req validator.TestUpdateRequest
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

	test, err := h.testService.Update(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest deletes a test without recorded sessions
// @Summary Delete test
// @Tags tests
// @Param id path uint true "Test ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Test deleted successfully",
	})
}

// ListTests lists tests with filters
// @Summary List tests
// @Tags tests
// @Produce json
// @Param status query string false "Test status"
// @Param subject_id query uint false "Subject ID"
// @Param group_id query uint false "Assigned group ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.TestListResponse
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	tests, err := h.testService.List(c.Request.Context(), h.parseTestFilters(c), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// ListAvailableTests lists the active tests assigned to the caller's group
// @Summary List available tests
// @Tags tests
// @Produce json
// @Success 200 {object} services.TestListResponse
// @Failure 403 {object} ErrorResponse
// @Router /tests/available [get]
func (h *TestHandler) ListAvailableTests(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	tests, err := h.testService.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// AssignGroups assigns a test to academic groups
// @Summary Assign groups
// @Tags tests
// @Accept json
// @Param id path uint true "Test ID"
// @Param groups body validator.AssignGroupsRequest true "Group IDs"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/groups [post]
func (h *TestHandler) AssignGroups(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Assigning groups to test", "test_id", id)

	var req validator.AssignGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: errs,
		})
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	if err := h.testService.AssignGroups(c.Request.Context(), id, req.GroupIDs, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Groups assigned successfully",
	})
}

// UnassignGroup removes a group assignment
// @Summary Unassign group
// @Tags tests
// @Param id path uint true "Test ID"
// @Param group_id path uint true "Group ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/groups/{group_id} [delete]
func (h *TestHandler) UnassignGroup(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	groupID := h.parseIDParam(c, "group_id")
	if groupID == 0 {
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	if err := h.testService.UnassignGroup(c.Request.Context(), id, groupID, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Group unassigned successfully",
	})
}

// UpdateTestStatus transitions a test to a new status
// @Summary Update test status
// @Tags tests
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/status [put]
func (h *TestHandler) UpdateTestStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
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

	h.LogRequest(c, "Updating test status", "test_id", id, "status", req.Status)

	test, err := h.testService.UpdateStatus(c.Request.Context(), id, models.TestStatus(req.Status), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// GetTestStats returns aggregate session statistics of a test
// @Summary Get test statistics
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} repositories.TestStats
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/stats [get]
func (h *TestHandler) GetTestStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	stats, err := h.testService.GetStats(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *TestHandler) parseTestFilters(c *gin.Context) repositories.TestFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.TestFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		testStatus := models.TestStatus(status)
		filters.Status = &testStatus
	}
	filters.SubjectID = h.parseUintQuery(c, "subject_id")
	filters.GroupID = h.parseUintQuery(c, "group_id")

	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
