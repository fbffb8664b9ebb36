package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/utils"
)

func newTestExportService(repo *mockRepository) ExportService {
	return NewExportService(repo, utils.NewDevelopmentLogger())
}

func submittedAttempts() []*models.QuizAttempt {
	score := 2.5
	negScore := -1.0
	timeTaken := 540
	submittedAt := time.Date(2026, 3, 10, 13, 30, 0, 0, time.UTC)
	return []*models.QuizAttempt{
		{
			ID:          "attempt-1",
			QuizID:      "quiz-1",
			UserID:      uid1,
			Status:      models.AttemptSubmitted,
			StartedAt:   submittedAt.Add(-9 * time.Minute),
			SubmittedAt: &submittedAt,
			Score:       &score,
			TotalPoints: 3.0,
			TimeTaken:   &timeTaken,
		},
		{
			ID:          "attempt-2",
			QuizID:      "quiz-1",
			UserID:      uid2,
			Status:      models.AttemptSubmitted,
			StartedAt:   submittedAt.Add(-20 * time.Minute),
			SubmittedAt: &submittedAt,
			Score:       &negScore,
			TotalPoints: 3.0,
			TimeTaken:   &timeTaken,
		},
	}
}

func expectExportData(repo *mockRepository) {
	repo.quiz.On("GetByID", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	repo.attempt.On("ListSubmittedByQuiz", mock.Anything, "quiz-1").Return(submittedAttempts(), nil)
	repo.user.On("GetByIDs", mock.Anything, []string{uid1, uid2}).Return([]*models.User{
		{ID: uid1, Name: "Ana", Email: "ana@example.com"},
		{ID: uid2, Name: "Bo", Email: "bo@example.com"},
	}, nil)
}

func TestExportResultsCSV(t *testing.T) {
	repo := newMockRepository()
	svc := newTestExportService(repo)
	expectExportData(repo)

	var buf bytes.Buffer
	err := svc.ExportResultsCSV(context.Background(), "quiz-1", "teacher-1", &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, resultHeaders, records[0])
	assert.Equal(t, "Ana", records[1][1])
	assert.Equal(t, "2.5", records[1][6])
	// Negative scores export signed; the clamp is display-only
	assert.Equal(t, "-1", records[2][6])
	assert.Equal(t, "0.00", records[2][8])
}

func TestExportResultsXLSX(t *testing.T) {
	repo := newMockRepository()
	svc := newTestExportService(repo)
	expectExportData(repo)

	var buf bytes.Buffer
	err := svc.ExportResultsXLSX(context.Background(), "quiz-1", "teacher-1", &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Ana", rows[1][1])
}

func TestExport_NonOwnerIsRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestExportService(repo)

	repo.quiz.On("GetByID", mock.Anything, "quiz-1").Return(activeQuiz(), nil)

	var buf bytes.Buffer
	err := svc.ExportResultsCSV(context.Background(), "quiz-1", "someone-else", &buf)

	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
	assert.Empty(t, buf.Bytes())
}
