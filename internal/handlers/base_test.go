package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eduzayn/lms-edunexia-sub001/internal/services"
	"github.com/eduzayn/lms-edunexia-sub001/internal/utils"
	"github.com/gin-gonic/gin"
)

func newTestBaseHandler() BaseHandler {
	gin.SetMode(gin.TestMode)
	return NewBaseHandler(utils.NewSlogLogger(slog.New(slog.DiscardHandler)))
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func TestHandleServiceError(t *testing.T) {
	h := newTestBaseHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"assessment not found", services.ErrAssessmentNotFound, http.StatusNotFound},
		{"question not found", services.ErrQuestionNotFound, http.StatusNotFound},
		{"submission not found", services.ErrSubmissionNotFound, http.StatusNotFound},
		{"wrapped not found", errors.New("context: " + services.ErrOptionNotFound.Error()), http.StatusInternalServerError},
		{"submission not active", services.ErrSubmissionNotActive, http.StatusConflict},
		{"already graded", services.ErrSubmissionAlreadyGraded, http.StatusConflict},
		{"attempt limit", services.ErrAttemptLimitExceeded, http.StatusConflict},
		{"not available", services.ErrAssessmentNotAvailable, http.StatusConflict},
		{"question not in assessment", services.ErrQuestionNotInAssessment, http.StatusConflict},
		{"not manually graded", services.ErrAnswerNotManuallyGraded, http.StatusConflict},
		{"business rule", services.NewBusinessRuleError("RULE", "broken rule", nil), http.StatusUnprocessableEntity},
		{"permission", services.NewPermissionError("u1", 1, "assessment", "edit", "not the owner"), http.StatusForbidden},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, recorder := newTestContext()
			h.handleServiceError(c, tt.err)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	h := newTestBaseHandler()

	t.Run("valid id", func(t *testing.T) {
		c, _ := newTestContext()
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		if got := h.parseIDParam(c, "id"); got != 42 {
			t.Errorf("parseIDParam() = %d, want 42", got)
		}
	})

	t.Run("non-numeric id responds 400", func(t *testing.T) {
		c, recorder := newTestContext()
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		if got := h.parseIDParam(c, "id"); got != 0 {
			t.Errorf("parseIDParam() = %d, want 0", got)
		}
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", recorder.Code)
		}
	})

	t.Run("zero id responds 400", func(t *testing.T) {
		c, recorder := newTestContext()
		c.Params = gin.Params{{Key: "id", Value: "0"}}

		if got := h.parseIDParam(c, "id"); got != 0 {
			t.Errorf("parseIDParam() = %d, want 0", got)
		}
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", recorder.Code)
		}
	})
}

func TestGetUserID(t *testing.T) {
	h := newTestBaseHandler()

	t.Run("authenticated", func(t *testing.T) {
		c, _ := newTestContext()
		c.Set("user_id", "user-1")

		if got := h.getUserID(c); got != "user-1" {
			t.Errorf("getUserID() = %q, want user-1", got)
		}
	})

	t.Run("missing principal responds 401", func(t *testing.T) {
		c, recorder := newTestContext()

		if got := h.getUserID(c); got != "" {
			t.Errorf("getUserID() = %q, want empty", got)
		}
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", recorder.Code)
		}
	})
}

func TestParseIntQuery(t *testing.T) {
	h := newTestBaseHandler()

	c, _ := newTestContext()
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&size=oops", nil)

	if got := h.parseIntQuery(c, "page", 1); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if got := h.parseIntQuery(c, "size", 10); got != 10 {
		t.Errorf("invalid size should fall back, got %d", got)
	}
	if got := h.parseIntQuery(c, "missing", 7); got != 7 {
		t.Errorf("missing param should fall back, got %d", got)
	}
}
