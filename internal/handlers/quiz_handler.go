package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService  services.QuizService
	statsService services.StatsService
}

func NewQuizHandler(quizService services.QuizService, statsService services.StatsService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:  NewBaseHandler(logger),
		quizService:  quizService,
		statsService: statsService,
	}
}

// ListAvailableQuizzes lists quizzes the caller may take
// @Summary List available quizzes
// @Description ACTIVE quizzes that are open or that the caller is enrolled in
// @Tags quizzes
// @Produce json
// @Success 200 {array} services.QuizSummary
// @Router /quizzes [get]
func (h *QuizHandler) ListAvailableQuizzes(c *gin.Context) {
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	summaries, err := h.quizService.ListAvailable(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetQuiz returns a quiz summary
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {object} services.QuizSummary
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}

	summary, err := h.quizService.GetSummary(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetAttemptHistory returns the caller's attempts on a quiz
// @Summary Get attempt history
// @Tags quizzes
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {object} services.AttemptHistory
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/attempts [get]
func (h *QuizHandler) GetAttemptHistory(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	history, err := h.quizService.GetAttemptHistory(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetQuizStats returns aggregate attempt statistics for a quiz
// @Summary Get quiz statistics
// @Description Served from a short-lived cache; submits invalidate eagerly
// @Tags quizzes
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {object} services.QuizStats
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/stats [get]
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}

	stats, err := h.statsService.GetQuizStats(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *QuizHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Quiz not found",
		})
	default:
		h.LogError(c, err, "Unhandled quiz service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
