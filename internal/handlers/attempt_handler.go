package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt starts or resumes an attempt on a quiz
// @Summary Start quiz attempt
// @Description Starts a new attempt, or resumes the open one if it exists
// @Tags attempts
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Success 201 {object} services.StartAttemptResult
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	result, err := h.attemptService.Start(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// GetActiveAttempt returns the taking view for the caller's open attempt
// @Summary Get active attempt
// @Description Returns questions, saved answers and remaining time
// @Tags attempts
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {object} services.ActiveAttemptView
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/attempts/active [get]
func (h *AttemptHandler) GetActiveAttempt(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	view, err := h.attemptService.GetActiveView(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RecordAnswer saves one answer on an open attempt
// @Summary Record answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param answer body services.RecordAnswerRequest true "Answer"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{attempt_id}/answers [put]
func (h *AttemptHandler) RecordAnswer(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	var req services.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.attemptService.RecordAnswer(c.Request.Context(), attemptID, userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckAnswer grades one saved answer mid-attempt
// @Summary Check answer
// @Description Returns correctness for a saved answer when the quiz enables checking
// @Tags attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} services.CheckAnswerResult
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /attempts/{attempt_id}/questions/{question_id}/check [get]
func (h *AttemptHandler) CheckAnswer(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	result, err := h.attemptService.CheckAnswer(c.Request.Context(), attemptID, userID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAttempt submits an attempt for scoring
// @Summary Submit attempt
// @Description Merges the final answer sheet, scores the attempt and returns the result
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param submission body services.SubmitAttemptRequest false "Final answers"
// @Success 200 {object} services.SubmitResult
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{attempt_id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "attempt_id")
	if attemptID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	// An empty body submits the saved answers as-is
	var req services.SubmitAttemptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	result, err := h.attemptService.Submit(c.Request.Context(), attemptID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var limitErr *services.AttemptLimitError
	if errors.As(err, &limitErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: limitErr.Error(),
			Code:    "ATTEMPT_LIMIT_REACHED",
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotEnrolled):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsPolicyViolation(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsStateConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidQuestion):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsDataIntegrity(err):
		h.LogError(c, err, "Quiz has no renderable questions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: err.Error(),
			Code:    "NO_VALID_QUESTIONS",
		})
	default:
		h.LogError(c, err, "Unhandled attempt service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
