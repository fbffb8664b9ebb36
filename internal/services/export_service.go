package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultHeaders = []string{
	"User ID", "Name", "Email", "Status", "Started At", "Submitted At",
	"Score", "Total Points", "Percentage", "Time Taken (minutes)",
}

func (s *exportService) ExportResultsCSV(ctx context.Context, quizID, actorID string, w io.Writer) error {
	rows, err := s.collectResultRows(ctx, quizID, actorID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(resultHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.strings()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *exportService) ExportResultsXLSX(ctx context.Context, quizID, actorID string, w io.Writer) error {
	rows, err := s.collectResultRows(ctx, quizID, actorID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range resultHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row.cells() {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ===== ROW COLLECTION =====

type resultRow struct {
	userID      string
	name        string
	email       string
	status      string
	startedAt   string
	submittedAt string
	score       *float64
	totalPoints float64
	percentage  *float64
	timeTakenM  *float64
}

const exportTimeFormat = "2006-01-02 15:04:05"

func (s *exportService) collectResultRows(ctx context.Context, quizID, actorID string) ([]resultRow, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.CreatedBy != actorID {
		return nil, NewPermissionError(actorID, quizID, "quiz", "export results from", "not the quiz owner")
	}

	attempts, err := s.repo.Attempt().ListSubmittedByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	userIDs := make([]string, 0, len(attempts))
	seen := make(map[string]bool, len(attempts))
	for _, attempt := range attempts {
		if !seen[attempt.UserID] {
			seen[attempt.UserID] = true
			userIDs = append(userIDs, attempt.UserID)
		}
	}
	users, err := s.repo.User().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	userByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	rows := make([]resultRow, 0, len(attempts))
	for _, attempt := range attempts {
		row := resultRow{
			userID:      attempt.UserID,
			status:      string(attempt.Status),
			startedAt:   attempt.StartedAt.Format(exportTimeFormat),
			score:       attempt.Score,
			totalPoints: attempt.TotalPoints,
		}
		if u, ok := userByID[attempt.UserID]; ok {
			row.name = u.Name
			row.email = u.Email
		}
		if attempt.SubmittedAt != nil {
			row.submittedAt = attempt.SubmittedAt.Format(exportTimeFormat)
		}
		if attempt.Score != nil {
			pct := DisplayPercentage(*attempt.Score, attempt.TotalPoints)
			row.percentage = &pct
		}
		if attempt.TimeTaken != nil {
			minutes := float64(*attempt.TimeTaken) / 60
			row.timeTakenM = &minutes
		}
		rows = append(rows, row)
	}

	s.logger.Info("Exporting quiz results", "quiz_id", quizID, "rows", len(rows))
	return rows, nil
}

func (r resultRow) strings() []string {
	out := []string{
		r.userID, r.name, r.email, r.status, r.startedAt, r.submittedAt,
	}
	if r.score != nil {
		out = append(out, strconv.FormatFloat(*r.score, 'f', -1, 64))
	} else {
		out = append(out, "")
	}
	out = append(out, strconv.FormatFloat(r.totalPoints, 'f', -1, 64))
	if r.percentage != nil {
		out = append(out, strconv.FormatFloat(*r.percentage, 'f', 2, 64))
	} else {
		out = append(out, "")
	}
	if r.timeTakenM != nil {
		out = append(out, strconv.FormatFloat(*r.timeTakenM, 'f', 1, 64))
	} else {
		out = append(out, "")
	}
	return out
}

func (r resultRow) cells() []interface{} {
	out := []interface{}{
		r.userID, r.name, r.email, r.status, r.startedAt, r.submittedAt,
	}
	if r.score != nil {
		out = append(out, *r.score)
	} else {
		out = append(out, "")
	}
	out = append(out, r.totalPoints)
	if r.percentage != nil {
		out = append(out, *r.percentage)
	} else {
		out = append(out, "")
	}
	if r.timeTakenM != nil {
		out = append(out, *r.timeTakenM)
	} else {
		out = append(out, "")
	}
	return out
}
