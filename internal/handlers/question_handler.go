package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

// Excel import uploads are capped at 10 MiB.
const maxImportSize = 10 << 20

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

func NewQuestionHandler(
	questionService services.QuestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// CreateQuestion adds a question to a test's bank
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param question body validator.QuestionCreateRequest true "Question data"
// @Success 201 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Creating question", "test_id", testID)

	var req validator.QuestionCreateRequest
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

	question, err := h.questionService.Create(c.Request.Context(), testID, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestions lists the question bank of a test
// @Summary List questions
// @Tags questions
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {array} services.QuestionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/questions [get]
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	questions, err := h.questionService.GetByTest(c.Request.Context(), testID, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// UpdateQuestion updates a question
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param question body validator.QuestionUpdateRequest true "Updated fields"
// @Success 200 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	var req validator.QuestionUpdateRequest
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

	question, err := h.questionService.Update(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question
// @Summary Delete question
// @Tags questions
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question deleted successfully",
	})
}

// ImportQuestions bulk-creates questions from an Excel workbook
// @Summary Import questions from Excel
// @Description Reads a workbook with columns: text, options A-D, correct letter, optional points
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Test ID"
// @Param file formData file true "Excel workbook"
// @Success 200 {object} services.ImportReport
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /tests/{id}/questions/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Importing questions", "test_id", testID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File too large",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	requester, ok := h.getRequester(c)
	if !ok {
		return
	}

	report, err := h.questionService.ImportExcel(c.Request.Context(), testID, file, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
