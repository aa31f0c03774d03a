package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) getUserID(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// getRequester builds the caller identity from the auth middleware context.
func (h *BaseHandler) getRequester(c *gin.Context) (services.Requester, bool) {
	userID := h.getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return services.Requester{}, false
	}

	role := models.RoleStudent
	if v, exists := c.Get("user_role"); exists {
		if r, ok := v.(models.UserRole); ok {
			role = r
		}
	}

	return services.Requester{UserID: userID, Role: role}, true
}

// parseIDParam parses a numeric path parameter. On failure it writes the
// 400 response itself and returns 0; valid IDs are never 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQuery(c *gin.Context, param string) *uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}

// handleServiceError maps service errors to HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule": businessRuleError.Rule,
			},
		})
		return
	}

	switch {
	// Lookup failures
	case errors.Is(err, services.ErrTestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Test not found"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Exam session not found"})
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Student not found"})
	case errors.Is(err, services.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Group not found"})
	case errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Subject not found"})
	case errors.Is(err, services.ErrSettingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Setting not found"})

	// Exam start guards
	case errors.Is(err, services.ErrTestNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Test is not active"})
	case errors.Is(err, services.ErrTestNotOpenYet):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Test window has not opened yet"})
	case errors.Is(err, services.ErrTestExpired):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Test window has closed"})
	case errors.Is(err, services.ErrTestAlreadyTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Test already taken and retake not granted"})
	case errors.Is(err, services.ErrMobileNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Mobile access is not allowed for this test"})
	case errors.Is(err, services.ErrNoStudentProfile):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "No student profile linked to this account"})
	case errors.Is(err, services.ErrTestNotAssigned):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Test is not assigned to your group"})
	case errors.Is(err, services.ErrTestHasNoQuestions):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Test has no questions"})
	case errors.Is(err, services.ErrStudentNotActive):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Student profile is not active"})

	// Submit guards
	case errors.Is(err, services.ErrSessionNotStarted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "No exam session in progress"})
	case errors.Is(err, services.ErrSessionAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Exam session already submitted"})
	case errors.Is(err, services.ErrSessionNotOwned):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Exam session belongs to another student"})

	// Test management
	case errors.Is(err, services.ErrTestHasSessions):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Test has recorded sessions and cannot be deleted"})

	default:
		utils.LoggerFromContext(c, h.logger).Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
