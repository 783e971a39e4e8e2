package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eduzayn/lms-edunexia-sub001/internal/services"
	"github.com/eduzayn/lms-edunexia-sub001/internal/utils"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.logger.Info(msg, append(args, "path", c.Request.URL.Path, "method", c.Request.Method)...)
}

// parseIDParam reads a positive integer path parameter. On failure it
// writes the 400 response and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// getUserID returns the authenticated principal set by the auth
// middleware. On failure it writes the 401 response and returns "".
func (h *BaseHandler) getUserID(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return ""
	}
	return userID.(string)
}

// handleServiceError maps service errors onto the uniform HTTP error
// taxonomy: 404 not found, 400 validation, 422 business rule,
// 403 permission, 409 conflict, 500 everything else.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	var businessErr *services.BusinessRuleError
	var permissionErr *services.PermissionError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})

	case errors.As(err, &businessErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessErr.Message,
			Details: businessErr,
		})

	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: permissionErr.Reason,
		})

	case errors.Is(err, services.ErrAssessmentNotFound),
		errors.Is(err, services.ErrAssessmentTypeNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrOptionNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrAnswerNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrSubmissionNotActive),
		errors.Is(err, services.ErrSubmissionNotSubmitted),
		errors.Is(err, services.ErrSubmissionAlreadyGraded),
		errors.Is(err, services.ErrAttemptLimitExceeded),
		errors.Is(err, services.ErrAssessmentNotAvailable),
		errors.Is(err, services.ErrQuestionNotInAssessment),
		errors.Is(err, services.ErrAnswerNotManuallyGraded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})

	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
