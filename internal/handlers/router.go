package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduzayn/lms-edunexia-sub001/internal/config"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/services"
	"github.com/eduzayn/lms-edunexia-sub001/internal/utils"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
)

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	questionHandler   *QuestionHandler
	submissionHandler *SubmissionHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), validator, logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), validator, logger),
		submissionHandler: NewSubmissionHandler(
			serviceManager.Submission(),
			serviceManager.Grading(),
			serviceManager.Report(),
			validator,
			logger,
		),
		authMiddleware: authMiddleware,
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	teacherOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Reference data
		v1.GET("/assessment-types", hm.assessmentHandler.GetAssessmentTypes)

		// Assessment routes
		assessments := v1.Group("/assessments")
		{
			// Authoring - teachers and admins only
			assessments.POST("", teacherOnly, hm.assessmentHandler.CreateAssessment)
			assessments.PUT("/:id", teacherOnly, hm.assessmentHandler.UpdateAssessment)
			assessments.DELETE("/:id", teacherOnly, hm.assessmentHandler.DeleteAssessment)
			assessments.PATCH("/:id/status", teacherOnly, hm.assessmentHandler.UpdateAssessmentStatus)
			assessments.POST("/:id/publish", teacherOnly, hm.assessmentHandler.PublishAssessment)
			assessments.POST("/:id/archive", teacherOnly, hm.assessmentHandler.ArchiveAssessment)

			// Viewing - all authenticated users, role filtered in the service
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/mine", teacherOnly, hm.assessmentHandler.GetMyAssessments)
			assessments.GET("/creator-stats", teacherOnly, hm.assessmentHandler.GetCreatorStats)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.GET("/:id/details", hm.assessmentHandler.GetAssessmentWithDetails)
			assessments.GET("/:id/stats", teacherOnly, hm.assessmentHandler.GetAssessmentStats)

			// Question management
			assessments.POST("/:id/questions", teacherOnly, hm.questionHandler.CreateQuestion)
			assessments.GET("/:id/questions", hm.questionHandler.GetAssessmentQuestions)
			assessments.PUT("/:id/questions/reorder", teacherOnly, hm.questionHandler.ReorderQuestions)

			// Submission lifecycle
			assessments.POST("/:id/submissions", hm.submissionHandler.StartSubmission)
			assessments.GET("/:id/submissions", hm.submissionHandler.GetAssessmentSubmissions)
			assessments.GET("/:id/submissions/mine", hm.submissionHandler.GetMySubmissions)
			assessments.GET("/:id/submissions/export", teacherOnly, hm.submissionHandler.ExportSubmissions)
			assessments.GET("/:id/grading", teacherOnly, hm.submissionHandler.GetGradingOverview)
		}

		// Course scoped listing
		v1.GET("/courses/:courseId/assessments", hm.assessmentHandler.GetAssessmentsByCourse)

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.GET("/:id", teacherOnly, hm.questionHandler.GetQuestion)
			questions.PUT("/:id", teacherOnly, hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", teacherOnly, hm.questionHandler.DeleteQuestion)
			questions.GET("/:id/options", teacherOnly, hm.questionHandler.GetOptions)
			questions.POST("/:id/options", teacherOnly, hm.questionHandler.AddOption)
		}

		// Option routes
		options := v1.Group("/options")
		{
			options.PUT("/:id", teacherOnly, hm.questionHandler.UpdateOption)
			options.DELETE("/:id", teacherOnly, hm.questionHandler.DeleteOption)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.GET("/:id/answers", hm.submissionHandler.GetSubmissionWithAnswers)
			submissions.PATCH("/:id", hm.submissionHandler.UpdateSubmission)
			submissions.PUT("/:id/answers", hm.submissionHandler.SaveAnswer)
			submissions.POST("/:id/submit", hm.submissionHandler.SubmitSubmission)
			submissions.POST("/:id/grade", teacherOnly, hm.submissionHandler.GradeSubmission)
		}

		// Manual grading
		v1.POST("/answers/:id/grade", teacherOnly, hm.submissionHandler.GradeAnswer)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "assessment-service",
	})
}
