package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// EnrollUsers grants users access to a restricted quiz
// @Summary Enroll users
// @Description Bulk enrollment; already-enrolled users are reported as skipped
// @Tags enrollments
// @Accept json
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Param enrollment body services.EnrollUsersRequest true "User IDs"
// @Success 200 {object} services.EnrollResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/enrollments [post]
func (h *EnrollmentHandler) EnrollUsers(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	var req services.EnrollUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.enrollmentService.EnrollUsers(c.Request.Context(), quizID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListEnrollees returns the quiz roster with per-user attempt aggregates
// @Summary List enrollees
// @Tags enrollments
// @Produce json
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {array} services.EnrolleeRow
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/enrollments [get]
func (h *EnrollmentHandler) ListEnrollees(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	rows, err := h.enrollmentService.ListEnrollees(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *EnrollmentHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Quiz not found",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "One or more users do not exist",
		})
	default:
		h.LogError(c, err, "Unhandled enrollment service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
