package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type HandlerManager struct {
	attemptHandler    *AttemptHandler
	quizHandler       *QuizHandler
	enrollmentHandler *EnrollmentHandler
	exportHandler     *ExportHandler
}

func NewHandlerManager(serviceManager *services.Manager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		attemptHandler:    NewAttemptHandler(serviceManager.Attempt, logger),
		quizHandler:       NewQuizHandler(serviceManager.Quiz, serviceManager.Stats, logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment, logger),
		exportHandler:     NewExportHandler(serviceManager.Export, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListAvailableQuizzes)
			quizzes.GET("/:quiz_id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:quiz_id/stats", hm.quizHandler.GetQuizStats)

			// Attempt lifecycle
			quizzes.POST("/:quiz_id/attempts", hm.attemptHandler.StartAttempt)
			quizzes.GET("/:quiz_id/attempts", hm.quizHandler.GetAttemptHistory)
			quizzes.GET("/:quiz_id/attempts/active", hm.attemptHandler.GetActiveAttempt)

			// Roster management
			quizzes.POST("/:quiz_id/enrollments", hm.enrollmentHandler.EnrollUsers)
			quizzes.GET("/:quiz_id/enrollments", hm.enrollmentHandler.ListEnrollees)

			// Result export
			quizzes.GET("/:quiz_id/results/export", hm.exportHandler.ExportResults)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.PUT("/:attempt_id/answers", hm.attemptHandler.RecordAnswer)
			attempts.GET("/:attempt_id/questions/:question_id/check", hm.attemptHandler.CheckAnswer)
			attempts.POST("/:attempt_id/submit", hm.attemptHandler.SubmitAttempt)
		}
	}
}

// IdentityMiddleware reads the caller identity set by the upstream gateway.
// The gateway terminates authentication; this service trusts its headers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		if role := c.GetHeader("X-User-Role"); role != "" {
			c.Set("user_role", role)
		}
		c.Next()
	}
}

// HealthCheck provides a simple liveness endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}
