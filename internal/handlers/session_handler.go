package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.ExamSessionService
	validator      *validator.Validator
}

func NewSessionHandler(
	sessionService services.ExamSessionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// StartSession starts or resumes an exam session
// @Summary Start exam session
// @Description Starts a new exam session for a test, or resumes the one in progress
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} services.SessionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tests/{id}/session/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Starting exam session", "test_id", testID)

	userID := h.getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), testID, userID, isMobileRequest(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if session.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, session)
}

// SubmitSession submits the active exam session for grading
// @Summary Submit exam session
// @Description Grades the caller's active session on this test
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param submission body validator.SubmitSessionRequest true "Selected answers"
// @Success 200 {object} services.ResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tests/{id}/session/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Submitting exam session", "test_id", testID)

	var req validator.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), testID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetActiveSession returns the caller's session in progress
// @Summary Get active session
// @Description Returns the caller's in_progress session on this test
// @Tags sessions
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id}/session [get]
func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	session, err := h.sessionService.GetActive(c.Request.Context(), testID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
