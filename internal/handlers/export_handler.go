package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportResults streams the submitted results of a quiz as CSV or XLSX
// @Summary Export quiz results
// @Tags exports
// @Produce octet-stream
// @Param quiz_id path string true "Quiz ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{quiz_id}/results/export [get]
func (h *ExportHandler) ExportResults(c *gin.Context) {
	quizID := ParseStringIDParam(c, "quiz_id")
	if quizID == "" {
		return
	}
	userID := RequireUserID(c)
	if userID == "" {
		return
	}

	format := c.DefaultQuery("format", "csv")
	filename := fmt.Sprintf("quiz-results-%s-%s", quizID, time.Now().Format("20060102"))

	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		if err := h.exportService.ExportResultsCSV(c.Request.Context(), quizID, userID, c.Writer); err != nil {
			h.handleServiceError(c, err)
		}
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
		if err := h.exportService.ExportResultsXLSX(c.Request.Context(), quizID, userID, c.Writer); err != nil {
			h.handleServiceError(c, err)
		}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: "format must be csv or xlsx",
		})
	}
}

func (h *ExportHandler) handleServiceError(c *gin.Context, err error) {
	// Headers may already be written when the collection succeeds but the
	// stream fails; only respond with JSON if nothing went out yet
	if c.Writer.Written() {
		h.LogError(c, err, "Export stream failed mid-write")
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
	default:
		h.LogError(c, err, "Unhandled export service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
