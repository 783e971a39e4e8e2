package handlers

import (
	"net/http"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/services"
	"github.com/eduzayn/lms-edunexia-sub001/internal/utils"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	gradingService    services.GradingService
	reportService     services.ReportService
	validator         *validator.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	gradingService services.GradingService,
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		gradingService:    gradingService,
		reportService:     reportService,
		validator:         validator,
	}
}

// StartSubmission starts or resumes an attempt on an assessment
// @Summary Start submission
// @Description Starts a new attempt, or resumes the caller's in-progress attempt if one exists
// @Tags submissions
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 201 {object} services.SubmissionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/submissions [post]
func (h *SubmissionHandler) StartSubmission(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	studentID := h.getUserID(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Starting submission", "assessment_id", assessmentID)

	submission, err := h.submissionService.Start(c.Request.Context(), assessmentID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// GetSubmission retrieves a submission
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// GetSubmissionWithAnswers retrieves a submission with its answers
// @Summary Get submission with answers
// @Description Grades and correct answers are hidden while the submission is in progress
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id}/answers [get]
func (h *SubmissionHandler) GetSubmissionWithAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	submission, err := h.submissionService.GetByIDWithAnswers(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// UpdateSubmission applies a sparse update to an in-progress submission
// @Summary Update submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param submission body services.UpdateSubmissionRequest true "Fields to update"
// @Success 200 {object} services.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id} [patch]
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSubmissionRequest
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

	submission, err := h.submissionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// SaveAnswer records or replaces the caller's answer to a question
// @Summary Save answer
// @Description Upserts the answer keyed by submission and question
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param answer body services.SaveAnswerRequest true "Answer data"
// @Success 200 {object} models.SubmissionAnswer
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /submissions/{id}/answers [put]
func (h *SubmissionHandler) SaveAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID := h.getUserID(c)
	if studentID == "" {
		return
	}

	answer, err := h.submissionService.SaveAnswer(c.Request.Context(), id, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// SubmitSubmission finalizes an attempt and triggers grading
// @Summary Submit submission
// @Description Marks the attempt submitted and grades it; essay and code answers leave it in needs_review
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionGradingResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/submit [post]
func (h *SubmissionHandler) SubmitSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	studentID := h.getUserID(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Submitting submission", "submission_id", id)

	result, err := h.submissionService.Submit(c.Request.Context(), id, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAssessmentSubmissions lists the submissions of an assessment
// @Summary List assessment submissions
// @Description Students only see their own attempts; teachers only their own assessments
// @Tags submissions
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} services.SubmissionListResponse
// @Router /assessments/{id}/submissions [get]
func (h *SubmissionHandler) GetAssessmentSubmissions(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	filters := h.parseSubmissionFilters(c)

	list, err := h.submissionService.GetByAssessment(c.Request.Context(), assessmentID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetMySubmissions lists the caller's attempts on an assessment
// @Summary List own submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {array} services.SubmissionResponse
// @Router /assessments/{id}/submissions/mine [get]
func (h *SubmissionHandler) GetMySubmissions(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	studentID := h.getUserID(c)
	if studentID == "" {
		return
	}

	submissions, err := h.submissionService.GetMySubmissions(c.Request.Context(), assessmentID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// GradeSubmission regrades a submitted attempt
// @Summary Grade submission
// @Tags grading
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionGradingResult
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	result, err := h.gradingService.GradeSubmission(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GradeAnswer records a manual grade for one essay or code answer
// @Summary Grade answer
// @Description Awards points to a manually graded answer; the submission becomes graded once no ungraded answers remain
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Answer ID"
// @Param grade body services.GradeAnswerRequest true "Grade data"
// @Success 200 {object} services.GradingResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /answers/{id}/grade [post]
func (h *SubmissionHandler) GradeAnswer(c *gin.Context) {
	answerID := h.parseIDParam(c, "id")
	if answerID == 0 {
		return
	}

	var req services.GradeAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	graderID := h.getUserID(c)
	if graderID == "" {
		return
	}

	h.LogRequest(c, "Grading answer", "answer_id", answerID)

	result, err := h.gradingService.GradeAnswer(c.Request.Context(), answerID, &req, graderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGradingOverview returns grading progress for an assessment
// @Summary Get grading overview
// @Tags grading
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} repositories.GradingStats
// @Router /assessments/{id}/grading [get]
func (h *SubmissionHandler) GetGradingOverview(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.gradingService.GetGradingOverview(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportSubmissions downloads the grade book of an assessment as xlsx
// @Summary Export submissions
// @Tags grading
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Assessment ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /assessments/{id}/submissions/export [get]
func (h *SubmissionHandler) ExportSubmissions(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Exporting submissions", "assessment_id", assessmentID)

	content, filename, err := h.reportService.ExportSubmissions(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

func (h *SubmissionHandler) parseSubmissionFilters(c *gin.Context) repositories.SubmissionFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)
	if page < 1 {
		page = 1
	}

	filters := repositories.SubmissionFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		submissionStatus := models.SubmissionStatus(status)
		filters.Status = &submissionStatus
	}

	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	return filters
}
