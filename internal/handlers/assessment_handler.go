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

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
	validator         *validator.Validator
}

func NewAssessmentHandler(
	assessmentService services.AssessmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
		validator:         validator,
	}
}

// GetAssessmentTypes lists the available assessment types
// @Summary List assessment types
// @Tags assessments
// @Produce json
// @Success 200 {array} models.AssessmentType
// @Failure 500 {object} ErrorResponse
// @Router /assessment-types [get]
func (h *AssessmentHandler) GetAssessmentTypes(c *gin.Context) {
	types, err := h.assessmentService.GetTypes(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types)
}

// CreateAssessment creates a new assessment
// @Summary Create assessment
// @Description Creates a new assessment in draft status, filling documented defaults for omitted fields
// @Tags assessments
// @Accept json
// @Produce json
// @Param assessment body services.CreateAssessmentRequest true "Assessment data"
// @Success 201 {object} services.AssessmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /assessments [post]
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	var req services.CreateAssessmentRequest
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

	assessment, err := h.assessmentService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assessment)
}

// GetAssessment retrieves an assessment by ID
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} services.AssessmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	assessment, err := h.assessmentService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// GetAssessmentWithDetails retrieves an assessment with questions and options
// @Summary Get assessment with details
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} services.AssessmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/details [get]
func (h *AssessmentHandler) GetAssessmentWithDetails(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	assessment, err := h.assessmentService.GetByIDWithDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// UpdateAssessment updates an existing assessment
// @Summary Update assessment
// @Description Applies a sparse update; only fields present in the payload change
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param assessment body services.UpdateAssessmentRequest true "Fields to update"
// @Success 200 {object} services.AssessmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [put]
func (h *AssessmentHandler) UpdateAssessment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAssessmentRequest
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

	assessment, err := h.assessmentService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// DeleteAssessment soft deletes an assessment
// @Summary Delete assessment
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/{id} [delete]
func (h *AssessmentHandler) DeleteAssessment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Deleting assessment", "assessment_id", id)

	if err := h.assessmentService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Assessment deleted"})
}

// ListAssessments lists assessments visible to the caller
// @Summary List assessments
// @Description Students see active assessments, teachers their own, admins everything
// @Tags assessments
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param status query string false "Status filter"
// @Param course_id query uint false "Course filter"
// @Success 200 {object} services.AssessmentListResponse
// @Router /assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	filters := h.parseAssessmentFilters(c)

	list, err := h.assessmentService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetAssessmentsByCourse lists the assessments of a course
// @Summary List assessments by course
// @Tags assessments
// @Produce json
// @Param courseId path uint true "Course ID"
// @Success 200 {object} services.AssessmentListResponse
// @Router /courses/{courseId}/assessments [get]
func (h *AssessmentHandler) GetAssessmentsByCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	filters := h.parseAssessmentFilters(c)

	list, err := h.assessmentService.GetByCourse(c.Request.Context(), courseID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetMyAssessments lists assessments created by the caller
// @Summary List own assessments
// @Tags assessments
// @Produce json
// @Success 200 {object} services.AssessmentListResponse
// @Router /assessments/mine [get]
func (h *AssessmentHandler) GetMyAssessments(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	filters := h.parseAssessmentFilters(c)

	list, err := h.assessmentService.GetByCreator(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateAssessmentStatus moves an assessment between statuses
// @Summary Update assessment status
// @Description Valid transitions are draft->active, active->archived and archived->active
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path uint true "Assessment ID"
// @Param status body services.UpdateStatusRequest true "Target status"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/{id}/status [patch]
func (h *AssessmentHandler) UpdateAssessmentStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateStatusRequest
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

	h.LogRequest(c, "Updating assessment status", "assessment_id", id, "status", req.Status)

	if err := h.assessmentService.UpdateStatus(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Status updated"})
}

// PublishAssessment publishes a draft assessment
// @Summary Publish assessment
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/{id}/publish [post]
func (h *AssessmentHandler) PublishAssessment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	if err := h.assessmentService.Publish(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Assessment published"})
}

// ArchiveAssessment archives an active assessment
// @Summary Archive assessment
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/{id}/archive [post]
func (h *AssessmentHandler) ArchiveAssessment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	if err := h.assessmentService.Archive(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Assessment archived"})
}

// GetAssessmentStats returns submission statistics for an assessment
// @Summary Get assessment statistics
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} repositories.AssessmentStats
// @Router /assessments/{id}/stats [get]
func (h *AssessmentHandler) GetAssessmentStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.assessmentService.GetStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCreatorStats returns aggregate statistics for the caller's assessments
// @Summary Get creator statistics
// @Tags assessments
// @Produce json
// @Success 200 {object} repositories.CreatorStats
// @Router /assessments/creator-stats [get]
func (h *AssessmentHandler) GetCreatorStats(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.assessmentService.GetCreatorStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AssessmentHandler) parseAssessmentFilters(c *gin.Context) repositories.AssessmentFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)
	if page < 1 {
		page = 1
	}

	filters := repositories.AssessmentFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		assessmentStatus := models.AssessmentStatus(status)
		filters.Status = &assessmentStatus
	}

	if courseID := h.parseIntQuery(c, "course_id", 0); courseID > 0 {
		id := uint(courseID)
		filters.CourseID = &id
	}

	if typeID := h.parseIntQuery(c, "type_id", 0); typeID > 0 {
		id := uint(typeID)
		filters.AssessmentTypeID = &id
	}

	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}

	return filters
}
