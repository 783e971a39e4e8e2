package handlers

import (
	"net/http"

	"github.com/eduzayn/lms-edunexia-sub001/internal/services"
	"github.com/eduzayn/lms-edunexia-sub001/internal/utils"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
	"github.com/gin-gonic/gin"
)

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

// CreateQuestion adds a question to an assessment
// @Summary Create question
// @Description Adds a question to an assessment; order defaults to the end of the list
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), assessmentID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question with its options
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} services.QuestionResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// UpdateQuestion updates a question
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param question body services.UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question and its options
// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// GetAssessmentQuestions lists the questions of an assessment in order
// @Summary List assessment questions
// @Tags questions
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {array} services.QuestionResponse
// @Router /assessments/{id}/questions [get]
func (h *QuestionHandler) GetAssessmentQuestions(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	questions, err := h.questionService.GetByAssessment(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// ReorderQuestions rewrites the display order of an assessment's questions
// @Summary Reorder questions
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param order body services.ReorderQuestionsRequest true "New question order"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/questions/reorder [put]
func (h *QuestionHandler) ReorderQuestions(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	var req services.ReorderQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	if err := h.questionService.Reorder(c.Request.Context(), assessmentID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questions reordered"})
}

// AddOption appends an option to a question
// @Summary Add question option
// @Description Adds an option; text defaults to "New Option" and order to the end of the list
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param option body services.CreateOptionRequest true "Option data"
// @Success 201 {object} models.QuestionOption
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id}/options [post]
func (h *QuestionHandler) AddOption(c *gin.Context) {
	questionID := h.parseIDParam(c, "id")
	if questionID == 0 {
		return
	}

	var req services.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	option, err := h.questionService.AddOption(c.Request.Context(), questionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, option)
}

// UpdateOption updates an option
// @Summary Update question option
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Option ID"
// @Param option body services.UpdateOptionRequest true "Fields to update"
// @Success 200 {object} models.QuestionOption
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /options/{id} [put]
func (h *QuestionHandler) UpdateOption(c *gin.Context) {
	optionID := h.parseIDParam(c, "id")
	if optionID == 0 {
		return
	}

	var req services.UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	option, err := h.questionService.UpdateOption(c.Request.Context(), optionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, option)
}

// DeleteOption removes an option
// @Summary Delete question option
// @Tags questions
// @Produce json
// @Param id path uint true "Option ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /options/{id} [delete]
func (h *QuestionHandler) DeleteOption(c *gin.Context) {
	optionID := h.parseIDParam(c, "id")
	if optionID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	if err := h.questionService.DeleteOption(c.Request.Context(), optionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Option deleted"})
}

// GetOptions lists the options of a question in order
// @Summary List question options
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {array} models.QuestionOption
// @Router /questions/{id}/options [get]
func (h *QuestionHandler) GetOptions(c *gin.Context) {
	questionID := h.parseIDParam(c, "id")
	if questionID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	options, err := h.questionService.GetOptions(c.Request.Context(), questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}
