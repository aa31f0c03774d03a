package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
	validator      *validator.Validator
}

func NewStudentHandler(
	studentService services.StudentService,
	validator *validator.Validator,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		validator:      validator,
	}
}

// GetMyProfile returns the caller's own academic profile
// @Summary Get own profile
// @Tags students
// @Produce json
// @Success 200 {object} services.StudentResponse
// @Failure 403 {object} ErrorResponse
// @Router /students/me [get]
func (h *StudentHandler) GetMyProfile(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	profile, err := h.studentService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetStudent retrieves a student profile by ID
// @Summary Get student
// @Tags students
// @Produce json
// @Param id path uint true "Student ID"
// @Success 200 {object} services.StudentResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// UpdateStudent updates a student profile
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Param id path uint true "Student ID"
// @Param student body validator.StudentUpdateRequest true "Updated fields"
// @Success 200 {object} services.StudentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{id} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating student", "student_id", id)

	var req validator.StudentUpdateRequest
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

	student, err := h.studentService.Update(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// ListStudents lists student profiles with filters
// @Summary List students
// @Tags students
// @Produce json
// @Param group_id query uint false "Group ID"
// @Param status query string false "Student status"
// @Param query query string false "Name or student number"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.StudentListResponse
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.StudentFilters{
		GroupID: h.parseUintQuery(c, "group_id"),
		Query:   c.Query("query"),
		Limit:   size,
		Offset:  (page - 1) * size,
	}
	if status := c.Query("status"); status != "" {
		studentStatus := models.StudentStatus(status)
		filters.Status = &studentStatus
	}

	students, err := h.studentService.List(c.Request.Context(), filters, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}
