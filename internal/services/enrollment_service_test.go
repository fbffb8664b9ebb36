package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

func newTestEnrollmentService(repo *mockRepository) EnrollmentService {
	return NewEnrollmentService(repo, utils.NewDevelopmentLogger(), utils.NewValidator())
}

const (
	uid1 = "11111111-1111-1111-1111-111111111111"
	uid2 = "22222222-2222-2222-2222-222222222222"
)

func TestEnrollUsers_SkipsAlreadyEnrolled(t *testing.T) {
	repo := newMockRepository()
	svc := newTestEnrollmentService(repo)

	quiz := activeQuiz()
	repo.quiz.On("GetByID", mock.Anything, "quiz-1").Return(quiz, nil)
	repo.user.On("GetByIDs", mock.Anything, []string{uid1, uid2}).Return([]*models.User{
		{ID: uid1}, {ID: uid2},
	}, nil)
	repo.enrollment.On("EnrolledUserIDs", mock.Anything, "quiz-1", []string{uid1, uid2}).Return([]string{uid1}, nil)
	repo.enrollment.On("CreateBatch", mock.Anything, mock.MatchedBy(func(es []*models.Enrollment) bool {
		return len(es) == 1 && es[0].UserID == uid2
	})).Return(nil)

	result, err := svc.EnrollUsers(context.Background(), "quiz-1", "teacher-1", &EnrollUsersRequest{
		UserIDs: []string{uid1, uid2},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{uid2}, result.Enrolled)
	assert.Equal(t, []string{uid1}, result.Skipped)
}

func TestEnrollUsers_UnknownUserFailsWholeRequest(t *testing.T) {
	repo := newMockRepository()
	svc := newTestEnrollmentService(repo)

	repo.quiz.On("GetByID", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	repo.user.On("GetByIDs", mock.Anything, []string{uid1, uid2}).Return([]*models.User{
		{ID: uid1},
	}, nil)

	_, err := svc.EnrollUsers(context.Background(), "quiz-1", "teacher-1", &EnrollUsersRequest{
		UserIDs: []string{uid1, uid2},
	})

	assert.ErrorIs(t, err, ErrUserNotFound)
	repo.enrollment.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestEnrollUsers_NonOwnerIsRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestEnrollmentService(repo)

	repo.quiz.On("GetByID", mock.Anything, "quiz-1").Return(activeQuiz(), nil)

	_, err := svc.EnrollUsers(context.Background(), "quiz-1", "someone-else", &EnrollUsersRequest{
		UserIDs: []string{uid1},
	})

	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestListEnrollees_MergesAttemptStats(t *testing.T) {
	repo := newMockRepository()
	svc := newTestEnrollmentService(repo)

	best := 2.0
	last := inProgressAttempt()
	repo.quiz.On("GetByID", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	repo.enrollment.On("GetByQuiz", mock.Anything, "quiz-1").Return([]*models.Enrollment{
		{QuizID: "quiz-1", UserID: uid1, User: models.User{ID: uid1, Name: "Ana", Email: "ana@example.com"}},
		{QuizID: "quiz-1", UserID: uid2, User: models.User{ID: uid2, Name: "Bo", Email: "bo@example.com"}},
	}, nil)
	repo.attempt.On("GetEnrolleeStats", mock.Anything, "quiz-1", []string{uid1, uid2}).Return(map[string]*repositories.EnrolleeStats{
		uid1: {
			AttemptCount:     2,
			SubmittedCount:   1,
			BestScore:        &best,
			LastAttempt:      last,
			HasActiveAttempt: true,
		},
	}, nil)

	rows, err := svc.ListEnrollees(context.Background(), "quiz-1", "teacher-1")

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	// Sorted by name
	assert.Equal(t, "Ana", rows[0].Name)
	assert.Equal(t, 2, rows[0].AttemptCount)
	assert.True(t, rows[0].HasActiveAttempt)
	assert.InDelta(t, 66.67, *rows[0].BestPercentage, 0.01)
	// Never attempted
	assert.Equal(t, 0, rows[1].AttemptCount)
	assert.Nil(t, rows[1].BestScore)
}
