package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

// ===== REPOSITORY MOCKS =====

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id string) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) ListAvailableTo(ctx context.Context, userID string) ([]*models.Quiz, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quiz), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByIDWithAnswers(ctx context.Context, id string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActiveAttempt(ctx context.Context, quizID, userID string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CountSubmitted(ctx context.Context, quizID, userID string) (int64, error) {
	args := m.Called(ctx, quizID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) ListByQuizAndUser(ctx context.Context, quizID, userID string) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListSubmittedByQuiz(ctx context.Context, quizID string) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time, score float64, timeTaken int) (bool, error) {
	args := m.Called(ctx, id, submittedAt, score, timeTaken)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) GetStats(ctx context.Context, quizID string) (*repositories.AttemptStats, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.AttemptStats), args.Error(1)
}

func (m *MockAttemptRepository) GetEnrolleeStats(ctx context.Context, quizID string, userIDs []string) (map[string]*repositories.EnrolleeStats, error) {
	args := m.Called(ctx, quizID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*repositories.EnrolleeStats), args.Error(1)
}

type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Upsert(ctx context.Context, answer *models.QuizAnswer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetByAttempt(ctx context.Context, attemptID string) ([]*models.QuizAnswer, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuizAnswer), args.Error(1)
}

func (m *MockAnswerRepository) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*models.QuizAnswer, error) {
	args := m.Called(ctx, attemptID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAnswer), args.Error(1)
}

type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error {
	args := m.Called(ctx, enrollments)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) IsEnrolled(ctx context.Context, quizID, userID string) (bool, error) {
	args := m.Called(ctx, quizID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentRepository) GetByQuiz(ctx context.Context, quizID string) ([]*models.Enrollment, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) EnrolledUserIDs(ctx context.Context, quizID string, userIDs []string) ([]string, error) {
	args := m.Called(ctx, quizID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// mockRepository bundles the entity mocks behind the aggregate interface.
// InTx runs fn against the same mocks and counts an error return as a
// rollback, so tests can assert that writes inside a failed transaction
// are discarded.
type mockRepository struct {
	quiz       *MockQuizRepository
	question   *MockQuestionRepository
	attempt    *MockAttemptRepository
	answer     *MockAnswerRepository
	enrollment *MockEnrollmentRepository
	user       *MockUserRepository

	txCalls     int
	txRollbacks int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		quiz:       new(MockQuizRepository),
		question:   new(MockQuestionRepository),
		attempt:    new(MockAttemptRepository),
		answer:     new(MockAnswerRepository),
		enrollment: new(MockEnrollmentRepository),
		user:       new(MockUserRepository),
	}
}

func (m *mockRepository) Quiz() repositories.QuizRepository             { return m.quiz }
func (m *mockRepository) Question() repositories.QuestionRepository     { return m.question }
func (m *mockRepository) Attempt() repositories.AttemptRepository       { return m.attempt }
func (m *mockRepository) Answer() repositories.AnswerRepository         { return m.answer }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository { return m.enrollment }
func (m *mockRepository) User() repositories.UserRepository             { return m.user }

func (m *mockRepository) InTx(ctx context.Context, fn func(repositories.Repository) error) error {
	m.txCalls++
	if err := fn(m); err != nil {
		m.txRollbacks++
		return err
	}
	return nil
}
